// Package services defines the business logic for flight search and the
// watchlist. This file centralizes common service-level error values so that
// they can be consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

var (
	// ErrWatchNotFound indicates that the requested watched flight does not
	// exist.
	ErrWatchNotFound = errors.New("watched flight not found")

	// ErrMissingFields is returned when a watch request omits one of the
	// required fields (airline, flight number, route, dates, or price).
	ErrMissingFields = errors.New("missing required fields")

	// ErrOfferRequired is returned when a price confirmation request carries
	// no usable offer payload.
	ErrOfferRequired = errors.New("offer is required")

	// ErrMissingDates is returned when a search request omits the departure
	// or return date.
	ErrMissingDates = errors.New("depart and return dates are required")
)
