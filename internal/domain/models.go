// Package domain defines the persistence models for watched flights and
// their recorded price history. These types are mapped with GORM and form
// the core data layer of the fare-watch application.
package domain

import (
	"time"
)

// WatchedFlight represents a round-trip itinerary a user decided to track.
// A row is created on the first "watch" action; re-watching an offer that
// produces the same offer UID updates the existing row in place instead of
// inserting a duplicate (enforced by the unique index on OfferUID).
//
// Fields:
//   - ID: surrogate auto-increment primary key.
//   - Airline: display name of the airline the user watched.
//   - FlightNumber: e.g. "EK 202"; the leading carrier code is used as a
//     reconciliation fallback during bulk refresh.
//   - Origin / Destination: IATA airport codes.
//   - DepartDate / ReturnDate: travel dates as YYYY-MM-DD strings.
//   - OfferID: provider-native offer identifier, when the provider sent one.
//   - OfferUID: deterministic offer fingerprint; nullable so flights watched
//     without an offer snapshot coexist under the unique index.
//   - OfferJSON / DetailsJSON: serialized snapshots of the raw provider offer
//     and its normalized details, refreshed on every reconciliation match.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type WatchedFlight struct {
	ID           uint      `json:"id"            gorm:"primaryKey"`
	Airline      string    `json:"airline"       gorm:"type:varchar(64);not null"`
	FlightNumber string    `json:"flight_number" gorm:"type:varchar(100);not null"`
	Origin       string    `json:"origin"        gorm:"type:varchar(8);not null"`
	Destination  string    `json:"destination"   gorm:"type:varchar(8);not null"`
	DepartDate   string    `json:"depart_date"   gorm:"type:varchar(10);not null"`
	ReturnDate   string    `json:"return_date"   gorm:"type:varchar(10);not null"`
	OfferID      *string   `json:"offer_id,omitempty"  gorm:"type:varchar(128)"`
	OfferUID     *string   `json:"offer_uid,omitempty" gorm:"type:varchar(1024);uniqueIndex:ux_watched_offer_uid"`
	OfferJSON    *string   `json:"-"             gorm:"type:text"`
	DetailsJSON  *string   `json:"-"             gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for WatchedFlight.
func (WatchedFlight) TableName() string { return "watched_flights" }

// PriceHistory is one observed price for a watched flight. Rows are
// append-only: one row per watch/refresh event, never mutated, and removed
// only by the cascade when the parent WatchedFlight is deleted.
type PriceHistory struct {
	ID              uint      `json:"id"                gorm:"primaryKey"`
	WatchedFlightID uint      `json:"watched_flight_id" gorm:"not null;index:idx_history_flight"`
	Price           float64   `json:"price"             gorm:"not null"`
	Currency        string    `json:"currency"          gorm:"type:varchar(8);not null;default:'USD'"`
	FetchedAt       time.Time `json:"fetched_at"`

	// WatchedFlight is the parent row. History is cascade-deleted when the
	// watched flight is removed.
	WatchedFlight WatchedFlight `json:"-" gorm:"foreignKey:WatchedFlightID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for PriceHistory.
func (PriceHistory) TableName() string { return "price_history" }
