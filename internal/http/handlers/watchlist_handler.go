// Watchlist HTTP handlers.
//
// This file exposes REST endpoints for watched-flight resources:
//   - POST   /watchlist              (watch a flight)
//   - GET    /watchlist              (list, ETag support)
//   - GET    /watchlist/{id}/history (price history)
//   - POST   /watchlist/refresh      (bulk price refresh)
//   - DELETE /watchlist/{id}         (unwatch)
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-fare-backend/internal/domain"
	"github.com/tbourn/go-fare-backend/internal/offers"
	"github.com/tbourn/go-fare-backend/internal/repo"
	"github.com/tbourn/go-fare-backend/internal/services"
)

//
// DTOs
//

// WatchFlightRequest is the JSON payload for watching a flight. Price is the
// observed price at watch time; offer is the raw provider offer from search
// results and, when present, is fingerprinted so duplicate watches collapse
// onto the existing row.
type WatchFlightRequest struct {
	Airline      string          `json:"airline" example:"Emirates"`
	FlightNumber string          `json:"flightNumber" example:"EK 202"`
	Origin       string          `json:"origin" example:"JFK"`
	Destination  string          `json:"destination" example:"DXB"`
	DepartDate   string          `json:"departDate" example:"2026-10-01"`
	ReturnDate   string          `json:"returnDate" example:"2026-10-15"`
	Price        *float64        `json:"price" example:"650.40"`
	Currency     string          `json:"currency" example:"USD"`
	Details      *offers.Details `json:"details,omitempty"`
	OfferID      *string         `json:"offerId,omitempty"`
	Offer        *offers.Offer   `json:"offer,omitempty"`
}

// ListWatchlistResponse wraps the watchlist with its size.
type ListWatchlistResponse struct {
	Flights []repo.WatchedFlightWithPrices `json:"flights"`
	Count   int                            `json:"count"`
}

// PriceHistoryResponse wraps one flight's price observations, oldest first.
type PriceHistoryResponse struct {
	ID      uint                  `json:"id"`
	History []domain.PriceHistory `json:"history"`
}

//
// Helpers
//

// watchID parses the {id} path parameter as an unsigned integer,
// returning (0, false) after writing a 400 response when it is invalid.
func watchID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "id must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

//
// Handlers
//

// CreateWatch godoc
// @ID          createWatch
// @Summary     Watch a flight
// @Description Adds a flight to the watchlist and records its current price as the first history observation. Watching the same offer twice refreshes the existing row instead of creating a duplicate.
// @Tags        Watchlist
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.WatchFlightRequest  true  "Flight to watch"
//
// @Success     201  {object}  repo.WatchedFlightWithPrices
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /watchlist [post]
func (h *Handlers) CreateWatch(c *gin.Context) {
	var req WatchFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	wf, err := h.watchSvc.Watch(c.Request.Context(), services.WatchRequest{
		Airline:      req.Airline,
		FlightNumber: req.FlightNumber,
		Origin:       req.Origin,
		Destination:  req.Destination,
		DepartDate:   req.DepartDate,
		ReturnDate:   req.ReturnDate,
		Price:        req.Price,
		Currency:     req.Currency,
		Details:      req.Details,
		OfferID:      req.OfferID,
		Offer:        req.Offer,
	})
	if err != nil {
		if errors.Is(err, services.ErrMissingFields) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "airline, flightNumber, origin, destination, dates, and price are required")
			return
		}
		failErr(c, http.StatusInternalServerError, ErrCodeWatchFailed, "could not watch flight", err)
		return
	}
	ok(c, http.StatusCreated, wf)
}

// ListWatchlist godoc
// @ID          listWatchlist
// @Summary     List watched flights
// @Description Returns the watchlist, most recent first, each entry annotated with its minimum and latest recorded price. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Watchlist
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
//
// @Success     200  {object} handlers.ListWatchlistResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /watchlist [get]
func (h *Handlers) ListWatchlist(c *gin.Context) {
	ctx := c.Request.Context()

	// ETag pre-check (best effort).
	var db *gorm.DB
	if svc, ok := h.watchSvc.(*services.WatchlistService); ok {
		db = svc.DB
	}
	if db != nil {
		count, maxTS, err := repo.WatchlistStats(ctx, db)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"watchlist:%d:%d"`, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, err := h.watchSvc.List(ctx)
	if err != nil {
		failErr(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list watchlist", err)
		return
	}
	ok(c, http.StatusOK, ListWatchlistResponse{Flights: items, Count: len(items)})
}

// GetPriceHistory godoc
// @ID          getPriceHistory
// @Summary     Price history of a watched flight
// @Description Returns every recorded price observation for the flight, oldest first.
// @Tags        Watchlist
// @Produce     json
//
// @Param       id  path  int  true  "Watched flight ID"  example(42)
//
// @Success     200  {object} handlers.PriceHistoryResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Watched flight not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /watchlist/{id}/history [get]
func (h *Handlers) GetPriceHistory(c *gin.Context) {
	id, okID := watchID(c)
	if !okID {
		return
	}

	rows, err := h.watchSvc.History(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrWatchNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "watched flight not found")
			return
		}
		failErr(c, http.StatusInternalServerError, ErrCodeHistoryFailed, "could not load price history", err)
		return
	}
	ok(c, http.StatusOK, PriceHistoryResponse{ID: id, History: rows})
}

// RefreshWatchlist godoc
// @ID          refreshWatchlist
// @Summary     Refresh all watched prices
// @Description Re-fetches the current price of every watched flight and appends the observations to each flight's history. Flights whose search came back empty are reported with a null price.
// @Tags        Watchlist
// @Produce     json
//
// @Success     200  {object} services.RefreshSummary
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /watchlist/refresh [post]
func (h *Handlers) RefreshWatchlist(c *gin.Context) {
	summary, err := h.watchSvc.RefreshAll(c.Request.Context())
	if err != nil {
		failErr(c, http.StatusInternalServerError, ErrCodeRefreshFailed, "could not refresh watchlist", err)
		return
	}
	ok(c, http.StatusOK, summary)
}

// DeleteWatch godoc
// @ID          deleteWatch
// @Summary     Unwatch a flight
// @Description Deletes a watched flight and its price history. The offer fingerprint becomes free for a future watch.
// @Tags        Watchlist
// @Produce     json
//
// @Param       id  path  int  true  "Watched flight ID"  example(42)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Watched flight not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /watchlist/{id} [delete]
func (h *Handlers) DeleteWatch(c *gin.Context) {
	id, okID := watchID(c)
	if !okID {
		return
	}

	if err := h.watchSvc.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrWatchNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "watched flight not found")
			return
		}
		failErr(c, http.StatusInternalServerError, ErrCodeDeleteFailed, "could not delete watched flight", err)
		return
	}
	noContent(c)
}
