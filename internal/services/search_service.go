// Package services – SearchService
//
// This file implements the SearchService, which fronts the flight provider
// for interactive searches. It normalizes query input, runs the
// flexible-date search, groups the returned offers per carrier, and exposes
// firm pricing plus the location/airline reference lookups.
//
// Service-level errors (e.g., ErrMissingDates) are returned for predictable
// cases so handlers can map them to HTTP results consistently.
package services

import (
	"context"
	"strings"

	"github.com/tbourn/go-fare-backend/internal/amadeus"
	"github.com/tbourn/go-fare-backend/internal/offers"
)

// FlightSearcher defines the provider contract required by the search and
// watchlist services. *amadeus.Client satisfies it.
type FlightSearcher interface {
	// SearchOffersWithFlex runs an exact-date search with flexible-date
	// retries. It never fails; a degraded empty result stands in for errors.
	SearchOffersWithFlex(ctx context.Context, q amadeus.SearchQuery) amadeus.SearchResult

	// PriceOffer confirms the firm price of a previously searched offer.
	PriceOffer(ctx context.Context, o offers.Offer) (amadeus.PricedOffer, error)

	// SearchLocations looks up cities and airports by keyword.
	SearchLocations(ctx context.Context, keyword string) ([]amadeus.Location, error)

	// SearchAirlines resolves an IATA carrier code to airline names.
	SearchAirlines(ctx context.Context, code string) ([]amadeus.Airline, error)
}

// SearchService provides interactive flight-search operations: grouped
// searches, firm pricing, and reference lookups.
type SearchService struct {
	// Searcher is the flight provider client used by this service.
	Searcher FlightSearcher
}

// NewSearchService constructs a SearchService.
func NewSearchService(searcher FlightSearcher) *SearchService {
	return &SearchService{Searcher: searcher}
}

// SearchResponse is the outcome of one grouped search: the echoed query, the
// flat price-ascending result list, the per-carrier groups, and the count of
// degraded (errored and swallowed) search attempts.
type SearchResponse struct {
	Origin      string                           `json:"origin"`
	Destination string                           `json:"destination"`
	DepartDate  string                           `json:"departDate"`
	ReturnDate  string                           `json:"returnDate"`
	Adults      int                              `json:"adults"`
	Results     []offers.CarrierOffer            `json:"results"`
	Grouped     map[string][]offers.CarrierOffer `json:"grouped"`
	Degraded    int                              `json:"degraded,omitempty"`
}

// Search runs a flexible-date search for the given query and groups the
// offers per carrier. Origin and destination are upper-cased; adults
// defaults to 1. A query without both dates returns ErrMissingDates.
//
// Provider failures never surface here: the flexible-date sweep downgrades
// them to an empty result and reports them through the Degraded counter.
func (s *SearchService) Search(ctx context.Context, q amadeus.SearchQuery) (*SearchResponse, error) {
	q.Origin = strings.ToUpper(strings.TrimSpace(q.Origin))
	q.Destination = strings.ToUpper(strings.TrimSpace(q.Destination))
	if q.DepartDate == "" || q.ReturnDate == "" {
		return nil, ErrMissingDates
	}
	if q.Adults <= 0 {
		q.Adults = 1
	}

	res := s.Searcher.SearchOffersWithFlex(ctx, q)

	grouped := offers.GroupByCarrier(res.Offers, res.Carriers, q.DepartDate, q.ReturnDate)
	flat := offers.Flatten(grouped)
	if flat == nil {
		flat = []offers.CarrierOffer{}
	}

	return &SearchResponse{
		Origin:      q.Origin,
		Destination: q.Destination,
		DepartDate:  q.DepartDate,
		ReturnDate:  q.ReturnDate,
		Adults:      q.Adults,
		Results:     flat,
		Grouped:     grouped,
		Degraded:    res.Degraded,
	}, nil
}

// ConfirmPrice confirms the firm price of a previously searched offer.
// An offer with neither a provider ID nor itineraries is rejected with
// ErrOfferRequired; provider failures propagate wrapped in
// amadeus.ErrProvider.
func (s *SearchService) ConfirmPrice(ctx context.Context, o offers.Offer) (amadeus.PricedOffer, error) {
	if o.ID == "" && len(o.Itineraries) == 0 {
		return amadeus.PricedOffer{}, ErrOfferRequired
	}
	return s.Searcher.PriceOffer(ctx, o)
}

// Locations looks up cities and airports matching the keyword.
func (s *SearchService) Locations(ctx context.Context, keyword string) ([]amadeus.Location, error) {
	return s.Searcher.SearchLocations(ctx, keyword)
}

// Airlines resolves an IATA carrier code to airline names.
func (s *SearchService) Airlines(ctx context.Context, code string) ([]amadeus.Airline, error) {
	return s.Searcher.SearchAirlines(ctx, code)
}
