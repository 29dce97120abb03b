// Package services – WatchlistService
//
// This file implements the WatchlistService, which manages the lifecycle of
// watched flights: creating watches (with offer fingerprinting and
// duplicate-collapsing), listing with price aggregates, recording and
// serving price history, bulk price refresh against the flight provider,
// and deletion.
//
// Service-level errors (e.g., ErrWatchNotFound) are returned for predictable
// cases so handlers can map them to HTTP results consistently.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-fare-backend/internal/amadeus"
	"github.com/tbourn/go-fare-backend/internal/domain"
	"github.com/tbourn/go-fare-backend/internal/offers"
	"github.com/tbourn/go-fare-backend/internal/repo"
)

// WatchlistRepo defines the repository contract required by WatchlistService.
// Implementations are responsible for persistence of watched flights and
// their price history.
type WatchlistRepo interface {
	// UpsertWatchedFlight inserts a watched flight, collapsing onto an
	// existing row when the offer fingerprint already exists.
	UpsertWatchedFlight(ctx context.Context, db *gorm.DB, wf *domain.WatchedFlight) error

	// ListWatchedFlights returns the watchlist annotated with price
	// aggregates, most recent first.
	ListWatchedFlights(ctx context.Context, db *gorm.DB) ([]repo.WatchedFlightWithPrices, error)

	// GetWatchedFlight fetches one annotated watchlist row by ID.
	GetWatchedFlight(ctx context.Context, db *gorm.DB, id uint) (*repo.WatchedFlightWithPrices, error)

	// ListAllWatchedFlights returns every watched flight without aggregates.
	ListAllWatchedFlights(ctx context.Context, db *gorm.DB) ([]domain.WatchedFlight, error)

	// UpdateWatchedOffer replaces the stored offer snapshot after a refresh.
	UpdateWatchedOffer(ctx context.Context, db *gorm.DB, id uint, offerID, offerUID, offerJSON, detailsJSON *string) error

	// DeleteWatchedFlight hard-deletes a watched flight.
	DeleteWatchedFlight(ctx context.Context, db *gorm.DB, id uint) error

	// AppendPriceHistory records a price observation for a watched flight.
	AppendPriceHistory(ctx context.Context, db *gorm.DB, flightID uint, price float64, currency string) (*domain.PriceHistory, error)

	// ListPriceHistory returns all observations for a flight, oldest first.
	ListPriceHistory(ctx context.Context, db *gorm.DB, flightID uint) ([]domain.PriceHistory, error)
}

// WatchlistService provides watchlist-level operations such as watching a
// flight, listing watches with price aggregates, and refreshing prices
// against the flight provider.
type WatchlistService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the watchlist repository used by this service.
	Repo WatchlistRepo
	// Searcher is the flight provider client used for price refreshes.
	Searcher FlightSearcher
}

// NewWatchlistService constructs a WatchlistService.
func NewWatchlistService(db *gorm.DB, r WatchlistRepo, searcher FlightSearcher) *WatchlistService {
	return &WatchlistService{DB: db, Repo: r, Searcher: searcher}
}

// WatchRequest carries the fields of a "watch this flight" request. Price is
// the observed price at watch time and is required; Offer and Details are
// the raw provider offer and its normalized view as seen in search results.
type WatchRequest struct {
	Airline      string
	FlightNumber string
	Origin       string
	Destination  string
	DepartDate   string
	ReturnDate   string
	Price        *float64
	Currency     string
	Details      *offers.Details
	OfferID      *string
	Offer        *offers.Offer
}

// Watch adds a flight to the watchlist and records its current price as the
// first history observation. When the request carries a raw offer, its
// fingerprint is derived and used to collapse duplicate watches onto the
// existing row (whose snapshot is refreshed instead).
//
// Returns ErrMissingFields when a required field is absent.
func (s *WatchlistService) Watch(ctx context.Context, req WatchRequest) (*repo.WatchedFlightWithPrices, error) {
	if strings.TrimSpace(req.Airline) == "" ||
		strings.TrimSpace(req.FlightNumber) == "" ||
		strings.TrimSpace(req.Origin) == "" ||
		strings.TrimSpace(req.Destination) == "" ||
		req.DepartDate == "" || req.ReturnDate == "" ||
		req.Price == nil {
		return nil, ErrMissingFields
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	wf := &domain.WatchedFlight{
		Airline:      req.Airline,
		FlightNumber: req.FlightNumber,
		Origin:       strings.ToUpper(strings.TrimSpace(req.Origin)),
		Destination:  strings.ToUpper(strings.TrimSpace(req.Destination)),
		DepartDate:   req.DepartDate,
		ReturnDate:   req.ReturnDate,
		OfferID:      req.OfferID,
		OfferJSON:    marshalJSON(req.Offer),
		DetailsJSON:  marshalJSON(req.Details),
	}
	if req.Offer != nil {
		if uid, ok := offers.Fingerprint(*req.Offer); ok {
			wf.OfferUID = &uid
		}
	}

	if err := s.Repo.UpsertWatchedFlight(ctx, s.DB, wf); err != nil {
		return nil, err
	}
	if _, err := s.Repo.AppendPriceHistory(ctx, s.DB, wf.ID, *req.Price, currency); err != nil {
		return nil, err
	}
	return s.Repo.GetWatchedFlight(ctx, s.DB, wf.ID)
}

// List returns the full watchlist annotated with the minimum and latest
// recorded price per flight, most recent first.
func (s *WatchlistService) List(ctx context.Context) ([]repo.WatchedFlightWithPrices, error) {
	items, err := s.Repo.ListWatchedFlights(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []repo.WatchedFlightWithPrices{}
	}
	return items, nil
}

// History returns all price observations for a watched flight, oldest first.
// Returns ErrWatchNotFound when the flight does not exist.
func (s *WatchlistService) History(ctx context.Context, id uint) ([]domain.PriceHistory, error) {
	if _, err := s.Repo.GetWatchedFlight(ctx, s.DB, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWatchNotFound
		}
		return nil, err
	}
	rows, err := s.Repo.ListPriceHistory(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.PriceHistory{}
	}
	return rows, nil
}

// Delete removes a watched flight and its price history.
// Returns ErrWatchNotFound when the flight does not exist.
func (s *WatchlistService) Delete(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteWatchedFlight(ctx, s.DB, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWatchNotFound
		}
		return err
	}
	return nil
}

// RefreshedFlight is one entry of a bulk refresh outcome. Price and Currency
// are nil when no offers came back for the flight's route and dates, meaning
// the price was unavailable rather than zero.
type RefreshedFlight struct {
	ID       uint     `json:"id"`
	Price    *float64 `json:"price"`
	Currency *string  `json:"currency"`
}

// RefreshSummary reports the outcome of a bulk price refresh.
type RefreshSummary struct {
	Count     int               `json:"count"`
	Refreshed []RefreshedFlight `json:"refreshed"`
}

// RefreshAll re-fetches prices for every watched flight, one flight at a
// time. For each flight it runs a flexible-date search, picks the offer that
// best matches the stored identity (provider id, then fingerprint, then
// airline code, then cheapest), records the picked price as a new history
// observation, and replaces the stored offer snapshot.
//
// Flights whose search came back empty are reported with a nil price and
// left untouched. Provider failures never abort the sweep; only database
// errors do.
func (s *WatchlistService) RefreshAll(ctx context.Context) (*RefreshSummary, error) {
	watched, err := s.Repo.ListAllWatchedFlights(ctx, s.DB)
	if err != nil {
		return nil, err
	}

	refreshed := make([]RefreshedFlight, 0, len(watched))
	for _, wf := range watched {
		res := s.Searcher.SearchOffersWithFlex(ctx, amadeus.SearchQuery{
			Origin:      wf.Origin,
			Destination: wf.Destination,
			DepartDate:  wf.DepartDate,
			ReturnDate:  wf.ReturnDate,
			Adults:      1,
		})
		fresh := offers.Flatten(offers.GroupByCarrier(res.Offers, res.Carriers, wf.DepartDate, wf.ReturnDate))

		ref := offers.WatchRef{
			OfferID:     strDeref(wf.OfferID),
			OfferUID:    strDeref(wf.OfferUID),
			AirlineCode: offers.AirlineCodeFromFlightNumber(wf.FlightNumber),
		}
		best, ok := offers.SelectForRefresh(ref, fresh)
		if !ok {
			log.Info().Uint("flight_id", wf.ID).Msg("refresh found no offers, price unavailable")
			refreshed = append(refreshed, RefreshedFlight{ID: wf.ID})
			continue
		}

		price := float64(best.Price)
		if _, err := s.Repo.AppendPriceHistory(ctx, s.DB, wf.ID, price, best.Currency); err != nil {
			return nil, err
		}

		var offerID *string
		if best.OfferID != "" {
			offerID = &best.OfferID
		}
		var offerUID *string
		if best.OfferUID != "" {
			offerUID = &best.OfferUID
		}
		if err := s.Repo.UpdateWatchedOffer(ctx, s.DB, wf.ID, offerID, offerUID,
			marshalJSON(&best.Offer), marshalJSON(&best.Details)); err != nil {
			return nil, err
		}

		currency := best.Currency
		refreshed = append(refreshed, RefreshedFlight{ID: wf.ID, Price: &price, Currency: &currency})
	}

	return &RefreshSummary{Count: len(refreshed), Refreshed: refreshed}, nil
}

// marshalJSON renders v as a JSON string pointer, or nil for a nil input.
// Marshal failures degrade to nil rather than blocking persistence.
func marshalJSON[T any](v *T) *string {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	s := string(raw)
	return &s
}

func strDeref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
