// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// WatchedFlight and PriceHistory models.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a watched flight is not found, functions return
//     gorm.ErrRecordNotFound (also exported here as ErrNotFound).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Functions:
//
//   - UpsertWatchedFlight(ctx, db, wf) -> error
//     Inserts a watched flight. When the row carries an offer fingerprint
//     that already exists, the existing row is updated in place instead of
//     creating a duplicate.
//
//   - ListWatchedFlights(ctx, db) -> []WatchedFlightWithPrices, error
//     Returns the full watchlist annotated with the minimum and latest
//     recorded price per flight, most recent first.
//
//   - GetWatchedFlight(ctx, db, id) -> *WatchedFlightWithPrices, error
//     Fetches a single annotated watchlist row, or ErrNotFound.
//
//   - ListAllWatchedFlights(ctx, db) -> []domain.WatchedFlight, error
//     Returns every watched flight without price annotations, insertion
//     order. Used by the bulk refresh loop.
//
//   - UpdateWatchedOffer(ctx, db, id, offerID, offerUID, offerJSON, detailsJSON) -> error
//     Replaces the stored offer snapshot after a refresh.
//
//   - DeleteWatchedFlight(ctx, db, id) -> error
//     Hard-deletes a watched flight (price history cascades), or
//     ErrNotFound if no row matched.
//
//   - AppendPriceHistory(ctx, db, flightID, price, currency) -> *domain.PriceHistory, error
//     Records one price observation for a watched flight.
//
//   - ListPriceHistory(ctx, db, flightID) -> []domain.PriceHistory, error
//     Returns all observations for a flight, oldest first.
//
// This repository is designed to be wrapped by a higher-level service
// (see services.WatchlistService) which enforces business rules such as
// fingerprinting and refresh offer selection.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-fare-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// WatchedFlightWithPrices is a watchlist row annotated with price aggregates
// computed from the flight's history: the lowest price ever recorded and the
// most recently recorded one. Both are nil when the flight has no history.
type WatchedFlightWithPrices struct {
	domain.WatchedFlight
	MinPrice  *float64 `json:"min_price"`
	LastPrice *float64 `json:"last_price"`
}

const priceAggregates = `watched_flights.*,
(SELECT MIN(ph.price) FROM price_history ph WHERE ph.watched_flight_id = watched_flights.id) AS min_price,
(SELECT ph.price FROM price_history ph WHERE ph.watched_flight_id = watched_flights.id ORDER BY ph.fetched_at DESC, ph.id DESC LIMIT 1) AS last_price`

// UpsertWatchedFlight inserts wf, setting CreatedAt/UpdatedAt to UTC.
//
// When wf carries an offer fingerprint (OfferUID) that collides with an
// existing row, the existing row is updated in place (offer snapshot,
// details, airline and flight number are refreshed) and wf.ID is set to the
// surviving row's ID. Rows without a fingerprint are always inserted.
func UpsertWatchedFlight(ctx context.Context, db *gorm.DB, wf *domain.WatchedFlight) error {
	now := time.Now().UTC()
	wf.CreatedAt = now
	wf.UpdatedAt = now

	if wf.OfferUID == nil {
		return db.WithContext(ctx).Create(wf).Error
	}

	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "offer_uid"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"airline", "flight_number", "offer_id", "offer_json", "details_json", "updated_at",
			}),
		}).
		Create(wf).Error
	if err != nil {
		return err
	}

	// On conflict-update SQLite does not report the surviving row's ID, so
	// resolve it by fingerprint.
	var existing domain.WatchedFlight
	if err := db.WithContext(ctx).
		Where("offer_uid = ?", *wf.OfferUID).
		First(&existing).Error; err != nil {
		return err
	}
	*wf = existing
	return nil
}

// ListWatchedFlights returns every watched flight annotated with min/last
// price aggregates, ordered by creation time descending (most recent first).
// It returns an empty slice when the watchlist is empty.
func ListWatchedFlights(ctx context.Context, db *gorm.DB) ([]WatchedFlightWithPrices, error) {
	var out []WatchedFlightWithPrices
	err := db.WithContext(ctx).
		Model(&domain.WatchedFlight{}).
		Select(priceAggregates).
		Order("watched_flights.created_at DESC, watched_flights.id DESC").
		Scan(&out).Error
	return out, err
}

// GetWatchedFlight fetches a single annotated watchlist row by ID.
// If the record does not exist, it returns ErrNotFound.
func GetWatchedFlight(ctx context.Context, db *gorm.DB, id uint) (*WatchedFlightWithPrices, error) {
	var row WatchedFlightWithPrices
	res := db.WithContext(ctx).
		Model(&domain.WatchedFlight{}).
		Select(priceAggregates).
		Where("watched_flights.id = ?", id).
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &row, nil
}

// ListAllWatchedFlights returns every watched flight without aggregates,
// ordered by ID ascending. Used by the bulk refresh loop, which needs the raw
// rows and does not care about price annotations.
func ListAllWatchedFlights(ctx context.Context, db *gorm.DB) ([]domain.WatchedFlight, error) {
	var out []domain.WatchedFlight
	err := db.WithContext(ctx).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

// UpdateWatchedOffer replaces the stored offer snapshot of the flight
// identified by id after a successful refresh. The provider offer ID is only
// overwritten when the fresh offer actually carries one; the fingerprint,
// offer JSON and details are always replaced. Returns ErrNotFound when the
// flight does not exist.
func UpdateWatchedOffer(ctx context.Context, db *gorm.DB, id uint, offerID, offerUID, offerJSON, detailsJSON *string) error {
	updates := map[string]any{
		"offer_uid":    offerUID,
		"offer_json":   offerJSON,
		"details_json": detailsJSON,
		"updated_at":   time.Now().UTC(),
	}
	if offerID != nil {
		updates["offer_id"] = offerID
	}
	res := db.WithContext(ctx).
		Model(&domain.WatchedFlight{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteWatchedFlight hard-deletes the flight identified by id. Its price
// history rows are removed by the foreign-key cascade. Returns ErrNotFound
// when no row matched.
func DeleteWatchedFlight(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.WatchedFlight{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendPriceHistory records one price observation for flightID with the
// current UTC timestamp. On success, it returns the persisted row.
func AppendPriceHistory(ctx context.Context, db *gorm.DB, flightID uint, price float64, currency string) (*domain.PriceHistory, error) {
	h := &domain.PriceHistory{
		WatchedFlightID: flightID,
		Price:           price,
		Currency:        currency,
		FetchedAt:       time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(h).Error; err != nil {
		return nil, err
	}
	return h, nil
}

// ListPriceHistory returns all price observations for flightID ordered by
// fetch time ascending (oldest first), so callers can chart the series
// without re-sorting. It returns an empty slice when there is no history.
func ListPriceHistory(ctx context.Context, db *gorm.DB, flightID uint) ([]domain.PriceHistory, error) {
	var out []domain.PriceHistory
	err := db.WithContext(ctx).
		Where("watched_flight_id = ?", flightID).
		Order("fetched_at ASC, id ASC").
		Find(&out).Error
	return out, err
}
