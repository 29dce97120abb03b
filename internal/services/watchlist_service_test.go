package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/tbourn/go-fare-backend/internal/amadeus"
	"github.com/tbourn/go-fare-backend/internal/domain"
	"github.com/tbourn/go-fare-backend/internal/offers"
	"github.com/tbourn/go-fare-backend/internal/repo"
)

// ----- Fake repo -----

// fakeWatchRepo keeps watched flights and history in memory, mimicking the
// fingerprint-upsert and aggregate semantics of the real repository.
type fakeWatchRepo struct {
	nextID  uint
	flights []domain.WatchedFlight
	history map[uint][]domain.PriceHistory

	upsertErr  error
	historyErr error
}

func newFakeWatchRepo() *fakeWatchRepo {
	return &fakeWatchRepo{history: map[uint][]domain.PriceHistory{}}
}

func (r *fakeWatchRepo) UpsertWatchedFlight(ctx context.Context, db *gorm.DB, wf *domain.WatchedFlight) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	if wf.OfferUID != nil {
		for i := range r.flights {
			ex := &r.flights[i]
			if ex.OfferUID != nil && *ex.OfferUID == *wf.OfferUID {
				ex.Airline = wf.Airline
				ex.FlightNumber = wf.FlightNumber
				ex.OfferID = wf.OfferID
				ex.OfferJSON = wf.OfferJSON
				ex.DetailsJSON = wf.DetailsJSON
				*wf = *ex
				return nil
			}
		}
	}
	r.nextID++
	wf.ID = r.nextID
	r.flights = append(r.flights, *wf)
	return nil
}

func (r *fakeWatchRepo) ListWatchedFlights(ctx context.Context, db *gorm.DB) ([]repo.WatchedFlightWithPrices, error) {
	out := make([]repo.WatchedFlightWithPrices, 0, len(r.flights))
	for i := len(r.flights) - 1; i >= 0; i-- {
		row, _ := r.annotate(r.flights[i])
		out = append(out, row)
	}
	return out, nil
}

func (r *fakeWatchRepo) GetWatchedFlight(ctx context.Context, db *gorm.DB, id uint) (*repo.WatchedFlightWithPrices, error) {
	for _, wf := range r.flights {
		if wf.ID == id {
			row, _ := r.annotate(wf)
			return &row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeWatchRepo) annotate(wf domain.WatchedFlight) (repo.WatchedFlightWithPrices, bool) {
	row := repo.WatchedFlightWithPrices{WatchedFlight: wf}
	hist := r.history[wf.ID]
	if len(hist) == 0 {
		return row, false
	}
	min := hist[0].Price
	for _, h := range hist[1:] {
		if h.Price < min {
			min = h.Price
		}
	}
	last := hist[len(hist)-1].Price
	row.MinPrice, row.LastPrice = &min, &last
	return row, true
}

func (r *fakeWatchRepo) ListAllWatchedFlights(ctx context.Context, db *gorm.DB) ([]domain.WatchedFlight, error) {
	return append([]domain.WatchedFlight(nil), r.flights...), nil
}

func (r *fakeWatchRepo) UpdateWatchedOffer(ctx context.Context, db *gorm.DB, id uint, offerID, offerUID, offerJSON, detailsJSON *string) error {
	for i := range r.flights {
		if r.flights[i].ID == id {
			if offerID != nil {
				r.flights[i].OfferID = offerID
			}
			r.flights[i].OfferUID = offerUID
			r.flights[i].OfferJSON = offerJSON
			r.flights[i].DetailsJSON = detailsJSON
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeWatchRepo) DeleteWatchedFlight(ctx context.Context, db *gorm.DB, id uint) error {
	for i := range r.flights {
		if r.flights[i].ID == id {
			r.flights = append(r.flights[:i], r.flights[i+1:]...)
			delete(r.history, id)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeWatchRepo) AppendPriceHistory(ctx context.Context, db *gorm.DB, flightID uint, price float64, currency string) (*domain.PriceHistory, error) {
	if r.historyErr != nil {
		return nil, r.historyErr
	}
	h := domain.PriceHistory{ID: uint(len(r.history[flightID]) + 1), WatchedFlightID: flightID, Price: price, Currency: currency}
	r.history[flightID] = append(r.history[flightID], h)
	return &h, nil
}

func (r *fakeWatchRepo) ListPriceHistory(ctx context.Context, db *gorm.DB, flightID uint) ([]domain.PriceHistory, error) {
	return r.history[flightID], nil
}

func floatPtr(f float64) *float64 { return &f }

func watchReq() WatchRequest {
	return WatchRequest{
		Airline:      "Emirates",
		FlightNumber: "EK 202",
		Origin:       "jfk",
		Destination:  "dxb",
		DepartDate:   "2026-10-01",
		ReturnDate:   "2026-10-15",
		Price:        floatPtr(650),
	}
}

// ----- Tests -----

func TestWatch_MissingFields(t *testing.T) {
	s := NewWatchlistService(nil, newFakeWatchRepo(), &fakeSearcher{})

	for name, mutate := range map[string]func(*WatchRequest){
		"airline":       func(r *WatchRequest) { r.Airline = " " },
		"flight number": func(r *WatchRequest) { r.FlightNumber = "" },
		"origin":        func(r *WatchRequest) { r.Origin = "" },
		"destination":   func(r *WatchRequest) { r.Destination = "" },
		"depart date":   func(r *WatchRequest) { r.DepartDate = "" },
		"return date":   func(r *WatchRequest) { r.ReturnDate = "" },
		"price":         func(r *WatchRequest) { r.Price = nil },
	} {
		req := watchReq()
		mutate(&req)
		if _, err := s.Watch(context.Background(), req); !errors.Is(err, ErrMissingFields) {
			t.Errorf("%s missing: err = %v, want ErrMissingFields", name, err)
		}
	}
}

func TestWatch_PersistsFingerprintAndFirstObservation(t *testing.T) {
	r := newFakeWatchRepo()
	s := NewWatchlistService(nil, r, &fakeSearcher{})

	offer := rawOffer("", "EK", "202", "650.40")
	req := watchReq()
	req.Offer = &offer

	row, err := s.Watch(context.Background(), req)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if row.Origin != "JFK" || row.Destination != "DXB" {
		t.Fatalf("route not upper-cased: %+v", row.WatchedFlight)
	}
	if row.OfferUID == nil || !strings.Contains(*row.OfferUID, "price:650.40:USD") {
		t.Fatalf("fingerprint not stored: %v", row.OfferUID)
	}
	if row.OfferJSON == nil {
		t.Fatal("offer snapshot not stored")
	}
	if row.LastPrice == nil || *row.LastPrice != 650 {
		t.Fatalf("first observation not recorded: %v", row.LastPrice)
	}
	if row.MinPrice == nil || *row.MinPrice != 650 {
		t.Fatalf("min price = %v, want 650", row.MinPrice)
	}
}

func TestWatch_DuplicateOfferCollapses(t *testing.T) {
	r := newFakeWatchRepo()
	s := NewWatchlistService(nil, r, &fakeSearcher{})

	offer := rawOffer("", "EK", "202", "650.40")
	req := watchReq()
	req.Offer = &offer

	first, err := s.Watch(context.Background(), req)
	if err != nil {
		t.Fatalf("first Watch: %v", err)
	}
	req.Price = floatPtr(640)
	second, err := s.Watch(context.Background(), req)
	if err != nil {
		t.Fatalf("second Watch: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("duplicate watch created a new row: %d vs %d", second.ID, first.ID)
	}
	if len(r.flights) != 1 {
		t.Fatalf("flights = %d, want 1", len(r.flights))
	}
	if len(r.history[first.ID]) != 2 {
		t.Fatalf("history rows = %d, want 2", len(r.history[first.ID]))
	}
	if second.LastPrice == nil || *second.LastPrice != 640 {
		t.Fatalf("last price = %v, want 640", second.LastPrice)
	}
	if second.MinPrice == nil || *second.MinPrice != 640 {
		t.Fatalf("min price = %v, want 640", second.MinPrice)
	}
}

func TestWatch_NoOfferStillInserts(t *testing.T) {
	r := newFakeWatchRepo()
	s := NewWatchlistService(nil, r, &fakeSearcher{})

	row, err := s.Watch(context.Background(), watchReq())
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if row.OfferUID != nil || row.OfferJSON != nil {
		t.Fatalf("expected no offer snapshot: %+v", row.WatchedFlight)
	}
}

func TestHistory_NotFound(t *testing.T) {
	s := NewWatchlistService(nil, newFakeWatchRepo(), &fakeSearcher{})
	if _, err := s.History(context.Background(), 404); !errors.Is(err, ErrWatchNotFound) {
		t.Fatalf("err = %v, want ErrWatchNotFound", err)
	}
}

func TestHistory_ReturnsObservations(t *testing.T) {
	r := newFakeWatchRepo()
	s := NewWatchlistService(nil, r, &fakeSearcher{})

	row, err := s.Watch(context.Background(), watchReq())
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	rows, err := s.History(context.Background(), row.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(rows) != 1 || rows[0].Price != 650 {
		t.Fatalf("history = %+v", rows)
	}
}

func TestDelete_NotFound(t *testing.T) {
	s := NewWatchlistService(nil, newFakeWatchRepo(), &fakeSearcher{})
	if err := s.Delete(context.Background(), 404); !errors.Is(err, ErrWatchNotFound) {
		t.Fatalf("err = %v, want ErrWatchNotFound", err)
	}
}

func TestRefreshAll_RecordsPricesAndUnavailability(t *testing.T) {
	r := newFakeWatchRepo()

	// Flight 1 has fresh offers; flight 2's route comes back empty.
	f := &fakeSearcher{searchFn: func(q amadeus.SearchQuery) amadeus.SearchResult {
		if q.Origin != "JFK" {
			return amadeus.SearchResult{Offers: []offers.Offer{}, Carriers: map[string]string{}}
		}
		list := []offers.Offer{
			rawOffer("10", "QR", "701", "600.00"),
			rawOffer("11", "EK", "202", "700.00"),
		}
		offers.Tag(list)
		return amadeus.SearchResult{Offers: list, Carriers: map[string]string{"EK": "EMIRATES", "QR": "QATAR AIRWAYS"}}
	}}
	s := NewWatchlistService(nil, r, f)

	first, err := s.Watch(context.Background(), watchReq())
	if err != nil {
		t.Fatalf("watch first: %v", err)
	}
	other := watchReq()
	other.Origin = "CLT"
	second, err := s.Watch(context.Background(), other)
	if err != nil {
		t.Fatalf("watch second: %v", err)
	}

	sum, err := s.RefreshAll(context.Background())
	if err != nil {
		t.Fatalf("RefreshAll: %v", err)
	}
	if sum.Count != 2 || len(sum.Refreshed) != 2 {
		t.Fatalf("summary = %+v", sum)
	}

	// Flight 1 matched its stored airline code (EK) over the cheaper QR offer.
	got := sum.Refreshed[0]
	if got.ID != first.ID || got.Price == nil || *got.Price != 700 {
		t.Fatalf("refreshed[0] = %+v, want EK price 700", got)
	}
	if got.Currency == nil || *got.Currency != "USD" {
		t.Fatalf("refreshed[0].Currency = %v", got.Currency)
	}
	if len(r.history[first.ID]) != 2 {
		t.Fatalf("history rows = %d, want 2", len(r.history[first.ID]))
	}

	// Snapshot replaced with the picked offer.
	var updated domain.WatchedFlight
	for _, wf := range r.flights {
		if wf.ID == first.ID {
			updated = wf
		}
	}
	if updated.OfferID == nil || *updated.OfferID != "11" {
		t.Fatalf("provider id not updated: %v", updated.OfferID)
	}
	if updated.OfferJSON == nil || !strings.Contains(*updated.OfferJSON, `"id":"11"`) {
		t.Fatalf("offer snapshot not updated: %v", updated.OfferJSON)
	}

	// Flight 2 had no offers: nil price, nothing recorded.
	unavailable := sum.Refreshed[1]
	if unavailable.ID != second.ID || unavailable.Price != nil || unavailable.Currency != nil {
		t.Fatalf("refreshed[1] = %+v, want unavailable", unavailable)
	}
	if len(r.history[second.ID]) != 1 {
		t.Fatalf("unavailable flight gained history: %d rows", len(r.history[second.ID]))
	}
}

func TestRefreshAll_PrefersStoredFingerprint(t *testing.T) {
	r := newFakeWatchRepo()

	watchedOffer := rawOffer("", "EK", "202", "700.00")
	uid, ok := offers.Fingerprint(watchedOffer)
	if !ok {
		t.Fatal("fingerprint not derivable")
	}

	f := &fakeSearcher{searchFn: func(q amadeus.SearchQuery) amadeus.SearchResult {
		cheap := rawOffer("", "EK", "999", "500.00")
		same := rawOffer("", "EK", "202", "700.00")
		list := []offers.Offer{cheap, same}
		offers.Tag(list)
		return amadeus.SearchResult{Offers: list, Carriers: map[string]string{"EK": "EMIRATES"}}
	}}
	s := NewWatchlistService(nil, r, f)

	req := watchReq()
	req.Offer = &watchedOffer
	row, err := s.Watch(context.Background(), req)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if row.OfferUID == nil || *row.OfferUID != uid {
		t.Fatalf("stored uid = %v, want %q", row.OfferUID, uid)
	}

	sum, err := s.RefreshAll(context.Background())
	if err != nil {
		t.Fatalf("RefreshAll: %v", err)
	}
	got := sum.Refreshed[0]
	if got.Price == nil || *got.Price != 700 {
		t.Fatalf("picked price = %v, want the fingerprint match at 700", got.Price)
	}
}

func TestRefreshAll_DatabaseErrorAborts(t *testing.T) {
	r := newFakeWatchRepo()
	f := &fakeSearcher{searchFn: func(q amadeus.SearchQuery) amadeus.SearchResult {
		list := []offers.Offer{rawOffer("1", "EK", "202", "650.00")}
		offers.Tag(list)
		return amadeus.SearchResult{Offers: list, Carriers: map[string]string{}}
	}}
	s := NewWatchlistService(nil, r, f)

	if _, err := s.Watch(context.Background(), watchReq()); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	boom := errors.New("disk full")
	r.historyErr = boom
	if _, err := s.RefreshAll(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}
