// Flight search HTTP handlers.
//
// This file exposes REST endpoints for interactive flight search:
//   - GET  /flights/search        (flexible-date search, grouped per carrier)
//   - POST /flights/price-confirm (firm price for a previously searched offer)
//   - GET  /locations             (city/airport keyword lookup)
//   - GET  /airlines              (IATA carrier code lookup)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-fare-backend/internal/amadeus"
	"github.com/tbourn/go-fare-backend/internal/domain"
	"github.com/tbourn/go-fare-backend/internal/offers"
	"github.com/tbourn/go-fare-backend/internal/repo"
	"github.com/tbourn/go-fare-backend/internal/services"
	"github.com/tbourn/go-fare-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// SearchService defines interactive search operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type SearchService interface {
	// Search runs a flexible-date search and groups the offers per carrier.
	Search(ctx context.Context, q amadeus.SearchQuery) (*services.SearchResponse, error)
	// ConfirmPrice confirms the firm price of a previously searched offer.
	ConfirmPrice(ctx context.Context, o offers.Offer) (amadeus.PricedOffer, error)
	// Locations looks up cities and airports by keyword.
	Locations(ctx context.Context, keyword string) ([]amadeus.Location, error)
	// Airlines resolves an IATA carrier code to airline names.
	Airlines(ctx context.Context, code string) ([]amadeus.Airline, error)
}

// WatchlistService defines watchlist lifecycle operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type WatchlistService interface {
	// Watch adds a flight to the watchlist, collapsing duplicate offers.
	Watch(ctx context.Context, req services.WatchRequest) (*repo.WatchedFlightWithPrices, error)
	// List returns the watchlist annotated with price aggregates.
	List(ctx context.Context) ([]repo.WatchedFlightWithPrices, error)
	// History returns all price observations for one watched flight.
	History(ctx context.Context, id uint) ([]domain.PriceHistory, error)
	// Delete removes a watched flight and its price history.
	Delete(ctx context.Context, id uint) error
	// RefreshAll re-fetches prices for every watched flight.
	RefreshAll(ctx context.Context) (*services.RefreshSummary, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for flight search and the watchlist.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	searchSvc SearchService
	watchSvc  WatchlistService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(searchSvc SearchService, watchSvc WatchlistService) *Handlers {
	return &Handlers{searchSvc: searchSvc, watchSvc: watchSvc}
}

//
// DTOs
//

// PriceConfirmRequest is the JSON payload for confirming an offer's price.
type PriceConfirmRequest struct {
	// Offer is the raw provider offer exactly as returned by a search.
	Offer offers.Offer `json:"offer"`
}

//
// Handlers
//

// SearchFlights godoc
// @ID          searchFlights
// @Summary     Search flights (flexible dates)
// @Description Runs a round-trip search across the requested dates plus one day either side, grouped per carrier. Provider failures degrade to an empty result.
// @Tags        Flights
// @Produce     json
//
// @Param       origin       query  string  true  "Origin IATA code"       example(JFK)
// @Param       destination  query  string  true  "Destination IATA code"  example(DXB)
// @Param       departDate   query  string  true  "Departure date (YYYY-MM-DD)"  example(2026-10-01)
// @Param       returnDate   query  string  true  "Return date (YYYY-MM-DD)"     example(2026-10-15)
// @Param       adults       query  int     false "Number of adults"  minimum(1) default(1)
// @Param       airline      query  string  false "Restrict to one IATA carrier" example(EK)
//
// @Success     200  {object}  services.SearchResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /flights/search [get]
func (h *Handlers) SearchFlights(c *gin.Context) {
	origin := strings.TrimSpace(c.Query("origin"))
	destination := strings.TrimSpace(c.Query("destination"))
	departDate := strings.TrimSpace(c.Query("departDate"))
	returnDate := strings.TrimSpace(c.Query("returnDate"))

	if origin == "" || destination == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "origin and destination are required")
		return
	}
	if !amadeus.ValidDate(departDate) || !amadeus.ValidDate(returnDate) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "departDate and returnDate must be YYYY-MM-DD")
		return
	}

	q := amadeus.SearchQuery{
		Origin:      origin,
		Destination: destination,
		DepartDate:  departDate,
		ReturnDate:  returnDate,
		Adults:      utils.AtoiDefault(c.Query("adults"), 1),
		Airline:     strings.TrimSpace(c.Query("airline")),
	}

	resp, err := h.searchSvc.Search(c.Request.Context(), q)
	if err != nil {
		if errors.Is(err, services.ErrMissingDates) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "departDate and returnDate are required")
			return
		}
		failErr(c, http.StatusInternalServerError, ErrCodeSearchFailed, "flight search failed", err)
		return
	}
	ok(c, http.StatusOK, resp)
}

// ConfirmPrice godoc
// @ID          confirmPrice
// @Summary     Confirm an offer's firm price
// @Description Re-prices a previously searched offer against the provider and returns the confirmed base, taxes, and grand total.
// @Tags        Flights
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.PriceConfirmRequest  true  "Offer to confirm"
//
// @Success     200  {object}  amadeus.PricedOffer
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     502  {object}  handlers.ErrorResponse  "Provider error"
// @Router      /flights/price-confirm [post]
func (h *Handlers) ConfirmPrice(c *gin.Context) {
	var req PriceConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	priced, err := h.searchSvc.ConfirmPrice(c.Request.Context(), req.Offer)
	if err != nil {
		if errors.Is(err, services.ErrOfferRequired) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "offer is required")
			return
		}
		failErr(c, http.StatusBadGateway, ErrCodePriceConfirmFailed, "flight provider request failed", err)
		return
	}
	ok(c, http.StatusOK, priced)
}

// SearchLocations godoc
// @ID          searchLocations
// @Summary     Look up cities and airports
// @Description Returns cities and airports whose name or code matches the keyword.
// @Tags        Reference
// @Produce     json
//
// @Param       keyword  query  string  true  "Name or code fragment (min 2 chars)"  example(new york)
//
// @Success     200  {array}   amadeus.Location
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     502  {object}  handlers.ErrorResponse  "Provider error"
// @Router      /locations [get]
func (h *Handlers) SearchLocations(c *gin.Context) {
	keyword := strings.TrimSpace(c.Query("keyword"))
	if len(keyword) < 2 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "keyword must be at least 2 characters")
		return
	}

	locs, err := h.searchSvc.Locations(c.Request.Context(), keyword)
	if err != nil {
		failErr(c, http.StatusBadGateway, ErrCodeLookupFailed, "flight provider request failed", err)
		return
	}
	if locs == nil {
		locs = []amadeus.Location{}
	}
	ok(c, http.StatusOK, locs)
}

// SearchAirlines godoc
// @ID          searchAirlines
// @Summary     Look up airlines by IATA code
// @Description Resolves one or more comma-separated IATA carrier codes to airline names.
// @Tags        Reference
// @Produce     json
//
// @Param       code  query  string  true  "IATA carrier code(s)"  example(EK)
//
// @Success     200  {array}   amadeus.Airline
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     502  {object}  handlers.ErrorResponse  "Provider error"
// @Router      /airlines [get]
func (h *Handlers) SearchAirlines(c *gin.Context) {
	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "code is required")
		return
	}

	airlines, err := h.searchSvc.Airlines(c.Request.Context(), code)
	if err != nil {
		failErr(c, http.StatusBadGateway, ErrCodeLookupFailed, "flight provider request failed", err)
		return
	}
	if airlines == nil {
		airlines = []amadeus.Airline{}
	}
	ok(c, http.StatusOK, airlines)
}
