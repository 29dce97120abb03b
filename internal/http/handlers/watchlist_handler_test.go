package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-fare-backend/internal/amadeus"
	"github.com/tbourn/go-fare-backend/internal/domain"
	"github.com/tbourn/go-fare-backend/internal/offers"
	"github.com/tbourn/go-fare-backend/internal/repo"
	"github.com/tbourn/go-fare-backend/internal/services"
)

// ---------- test DB + repo shim ----------

func newWatchDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique DSN per call to avoid cross-test contamination
	dsn := fmt.Sprintf("file:watch_handlers_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// Enforce FKs and migrate schemas
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := db.AutoMigrate(&domain.WatchedFlight{}, &domain.PriceHistory{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Minimal shim implementing services.WatchlistRepo using repo package (like router.go)
type testWatchRepo struct{}

func (testWatchRepo) UpsertWatchedFlight(ctx context.Context, db *gorm.DB, wf *domain.WatchedFlight) error {
	return repo.UpsertWatchedFlight(ctx, db, wf)
}

func (testWatchRepo) ListWatchedFlights(ctx context.Context, db *gorm.DB) ([]repo.WatchedFlightWithPrices, error) {
	return repo.ListWatchedFlights(ctx, db)
}

func (testWatchRepo) GetWatchedFlight(ctx context.Context, db *gorm.DB, id uint) (*repo.WatchedFlightWithPrices, error) {
	return repo.GetWatchedFlight(ctx, db, id)
}

func (testWatchRepo) ListAllWatchedFlights(ctx context.Context, db *gorm.DB) ([]domain.WatchedFlight, error) {
	return repo.ListAllWatchedFlights(ctx, db)
}

func (testWatchRepo) UpdateWatchedOffer(ctx context.Context, db *gorm.DB, id uint, offerID, offerUID, offerJSON, detailsJSON *string) error {
	return repo.UpdateWatchedOffer(ctx, db, id, offerID, offerUID, offerJSON, detailsJSON)
}

func (testWatchRepo) DeleteWatchedFlight(ctx context.Context, db *gorm.DB, id uint) error {
	return repo.DeleteWatchedFlight(ctx, db, id)
}

func (testWatchRepo) AppendPriceHistory(ctx context.Context, db *gorm.DB, flightID uint, price float64, currency string) (*domain.PriceHistory, error) {
	return repo.AppendPriceHistory(ctx, db, flightID, price, currency)
}

func (testWatchRepo) ListPriceHistory(ctx context.Context, db *gorm.DB, flightID uint) ([]domain.PriceHistory, error) {
	return repo.ListPriceHistory(ctx, db, flightID)
}

// Provider stub; the lifecycle endpoints under test never reach it.
type idleSearcher struct{}

func (idleSearcher) SearchOffersWithFlex(context.Context, amadeus.SearchQuery) amadeus.SearchResult {
	return amadeus.SearchResult{}
}

func (idleSearcher) PriceOffer(context.Context, offers.Offer) (amadeus.PricedOffer, error) {
	return amadeus.PricedOffer{}, nil
}

func (idleSearcher) SearchLocations(context.Context, string) ([]amadeus.Location, error) {
	return nil, nil
}

func (idleSearcher) SearchAirlines(context.Context, string) ([]amadeus.Airline, error) {
	return nil, nil
}

func newWatchRouter(watchSvc WatchlistService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(stubSearchSvc{}, watchSvc)
	r := gin.New()
	r.POST("/watchlist", h.CreateWatch)
	r.GET("/watchlist", h.ListWatchlist)
	r.GET("/watchlist/:id/history", h.GetPriceHistory)
	r.POST("/watchlist/refresh", h.RefreshWatchlist)
	r.DELETE("/watchlist/:id", h.DeleteWatch)
	return r
}

const watchBody = `{
	"airline": "Emirates",
	"flightNumber": "EK 202",
	"origin": "jfk",
	"destination": "dxb",
	"departDate": "2026-10-01",
	"returnDate": "2026-10-15",
	"price": 650.40,
	"currency": "USD",
	"offer": {
		"id": "1",
		"itineraries": [{"segments": [{
			"departure": {"iataCode": "JFK", "at": "2026-10-01T22:00:00"},
			"arrival": {"iataCode": "DXB", "at": "2026-10-02T19:00:00"},
			"carrierCode": "EK",
			"number": "202"
		}]}],
		"price": {"currency": "USD", "grandTotal": "650.40"}
	}
}`

// ---------- CreateWatch ----------

func TestCreateWatch_BadJSON_Missing_Success(t *testing.T) {
	// Bad JSON -> 400
	{
		r := newWatchRouter(stubWatchSvc{})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/watchlist", bytes.NewBufferString("{bad"))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("bad json -> %d", w.Code)
		}
	}

	// Missing required fields -> 400
	{
		db := newWatchDB(t)
		svc := services.NewWatchlistService(db, testWatchRepo{}, idleSearcher{})
		r := newWatchRouter(svc)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/watchlist", bytes.NewBufferString(`{"airline":"Emirates"}`))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("missing fields -> %d body=%s", w.Code, w.Body.String())
		}
	}

	// Success -> 201 with first observation recorded
	{
		db := newWatchDB(t)
		svc := services.NewWatchlistService(db, testWatchRepo{}, idleSearcher{})
		r := newWatchRouter(svc)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/watchlist", bytes.NewBufferString(watchBody))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("create -> %d body=%s", w.Code, w.Body.String())
		}
		var out repo.WatchedFlightWithPrices
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("json: %v", err)
		}
		if out.ID == 0 || out.Origin != "JFK" || out.Destination != "DXB" {
			t.Fatalf("unexpected watch: %+v", out)
		}
		if out.LastPrice == nil || *out.LastPrice != 650.40 {
			t.Fatalf("expected last_price 650.40, got %+v", out.LastPrice)
		}
	}
}

// ---------- ListWatchlist ----------

func TestListWatchlist_ETag304_and_Success(t *testing.T) {
	db := newWatchDB(t)
	svc := services.NewWatchlistService(db, testWatchRepo{}, idleSearcher{})
	r := newWatchRouter(svc)

	// Seed through the API
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/watchlist", bytes.NewBufferString(watchBody)))
	if w.Code != http.StatusCreated {
		t.Fatalf("seed -> %d body=%s", w.Code, w.Body.String())
	}

	// Compute expected ETag
	count, maxTS, err := repo.WatchlistStats(context.Background(), db)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	var ts int64
	if maxTS != nil {
		ts = maxTS.Unix()
	}
	etag := fmt.Sprintf(`W/"watchlist:%d:%d"`, count, ts)

	// 304 path
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/watchlist", nil)
	req.Header.Set("If-None-Match", etag)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Fatalf("etag 304 -> %d", w.Code)
	}

	// 200 success
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/watchlist", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("list -> %d body=%s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("ETag"); got != etag {
		t.Fatalf("ETag = %q, want %q", got, etag)
	}
	var out ListWatchlistResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.Count != 1 || len(out.Flights) != 1 || out.Flights[0].Airline != "Emirates" {
		t.Fatalf("unexpected list: %+v", out)
	}
}

func TestListWatchlist_Empty_IsArray(t *testing.T) {
	db := newWatchDB(t)
	svc := services.NewWatchlistService(db, testWatchRepo{}, idleSearcher{})
	r := newWatchRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/watchlist", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("list -> %d", w.Code)
	}
	var out ListWatchlistResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.Count != 0 || out.Flights == nil {
		t.Fatalf("expected empty array, got %+v", out)
	}
}

// ---------- GetPriceHistory ----------

func TestGetPriceHistory_BadID_NotFound_Success(t *testing.T) {
	db := newWatchDB(t)
	svc := services.NewWatchlistService(db, testWatchRepo{}, idleSearcher{})
	r := newWatchRouter(svc)

	// Bad id -> 400
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/watchlist/abc/history", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad id -> %d", w.Code)
	}

	// Unknown id -> 404
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/watchlist/999/history", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown id -> %d body=%s", w.Code, w.Body.String())
	}

	// Seed and fetch
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/watchlist", bytes.NewBufferString(watchBody)))
	if w.Code != http.StatusCreated {
		t.Fatalf("seed -> %d", w.Code)
	}
	var created repo.WatchedFlightWithPrices
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("json: %v", err)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/watchlist/%d/history", created.ID), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("history -> %d body=%s", w.Code, w.Body.String())
	}
	var out PriceHistoryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.ID != created.ID || len(out.History) != 1 || out.History[0].Price != 650.40 {
		t.Fatalf("unexpected history: %+v", out)
	}
}

// ---------- RefreshWatchlist ----------

func TestRefreshWatchlist_Error_And_Success(t *testing.T) {
	// Internal error -> 500
	{
		svc := stubWatchSvc{
			refresh: func(context.Context) (*services.RefreshSummary, error) {
				return nil, gorm.ErrInvalidDB
			},
		}
		r := newWatchRouter(svc)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/watchlist/refresh", nil))
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("refresh error -> %d", w.Code)
		}
		var er ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
			t.Fatalf("json: %v", err)
		}
		if er.Code != ErrCodeRefreshFailed {
			t.Fatalf("code = %q", er.Code)
		}
		if strings.Contains(er.Message, gorm.ErrInvalidDB.Error()) {
			t.Fatalf("internal error detail leaked to client: %q", er.Message)
		}
	}

	// Success -> 200 summary, null price for unavailable flights
	{
		price := 700.0
		currency := "USD"
		svc := stubWatchSvc{
			refresh: func(context.Context) (*services.RefreshSummary, error) {
				return &services.RefreshSummary{
					Count: 2,
					Refreshed: []services.RefreshedFlight{
						{ID: 1, Price: &price, Currency: &currency},
						{ID: 2},
					},
				}, nil
			},
		}
		r := newWatchRouter(svc)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/watchlist/refresh", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("refresh -> %d body=%s", w.Code, w.Body.String())
		}
		var out map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("json: %v", err)
		}
		if int(out["count"].(float64)) != 2 {
			t.Fatalf("count = %v", out["count"])
		}
		entries := out["refreshed"].([]any)
		second := entries[1].(map[string]any)
		if second["price"] != nil {
			t.Fatalf("expected null price for unavailable flight, got %v", second["price"])
		}
	}
}

// ---------- DeleteWatch ----------

func TestDeleteWatch_BadID_NotFound_Success(t *testing.T) {
	db := newWatchDB(t)
	svc := services.NewWatchlistService(db, testWatchRepo{}, idleSearcher{})
	r := newWatchRouter(svc)

	// Bad id -> 400
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/watchlist/0", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad id -> %d", w.Code)
	}

	// Unknown id -> 404
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/watchlist/999", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown id -> %d", w.Code)
	}

	// Seed, delete, then 404 on repeat
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/watchlist", bytes.NewBufferString(watchBody)))
	if w.Code != http.StatusCreated {
		t.Fatalf("seed -> %d", w.Code)
	}
	var created repo.WatchedFlightWithPrices
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("json: %v", err)
	}

	url := fmt.Sprintf("/watchlist/%d", created.ID)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, url, nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete -> %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, url, nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("repeat delete -> %d", w.Code)
	}
}
