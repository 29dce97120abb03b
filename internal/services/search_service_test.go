package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/tbourn/go-fare-backend/internal/amadeus"
	"github.com/tbourn/go-fare-backend/internal/offers"
)

// ----- Fake searcher -----

type fakeSearcher struct {
	// searchFn lets tests vary the result per query; when nil, searchResult
	// is returned for every call.
	searchFn     func(q amadeus.SearchQuery) amadeus.SearchResult
	searchResult amadeus.SearchResult
	queries      []amadeus.SearchQuery

	pricedOffer amadeus.PricedOffer
	priceErr    error
	pricedInput *offers.Offer

	locations []amadeus.Location
	locErr    error
	airlines  []amadeus.Airline
	airErr    error
}

func (f *fakeSearcher) SearchOffersWithFlex(ctx context.Context, q amadeus.SearchQuery) amadeus.SearchResult {
	f.queries = append(f.queries, q)
	if f.searchFn != nil {
		return f.searchFn(q)
	}
	return f.searchResult
}

func (f *fakeSearcher) PriceOffer(ctx context.Context, o offers.Offer) (amadeus.PricedOffer, error) {
	f.pricedInput = &o
	return f.pricedOffer, f.priceErr
}

func (f *fakeSearcher) SearchLocations(ctx context.Context, keyword string) ([]amadeus.Location, error) {
	return f.locations, f.locErr
}

func (f *fakeSearcher) SearchAirlines(ctx context.Context, code string) ([]amadeus.Airline, error) {
	return f.airlines, f.airErr
}

// rawOffer builds a one-segment round-trip offer priced at total. An empty
// id leaves identity to the fingerprint.
func rawOffer(id, carrier, number, total string) offers.Offer {
	var o offers.Offer
	o.ID = id
	o.Price.Currency = "USD"
	o.Price.GrandTotal = total
	seg := offers.Segment{
		CarrierCode: carrier,
		Number:      number,
		Duration:    "PT13H",
	}
	seg.Departure.IataCode = "JFK"
	seg.Departure.At = "2026-10-01T22:00:00"
	seg.Arrival.IataCode = "DXB"
	seg.Arrival.At = "2026-10-02T19:00:00"
	o.Itineraries = []offers.Itinerary{{Duration: "PT13H", Segments: []offers.Segment{seg}}}
	return o
}

// ----- Tests -----

func TestSearch_MissingDates(t *testing.T) {
	s := NewSearchService(&fakeSearcher{})
	_, err := s.Search(context.Background(), amadeus.SearchQuery{Origin: "JFK", Destination: "DXB"})
	if !errors.Is(err, ErrMissingDates) {
		t.Fatalf("err = %v, want ErrMissingDates", err)
	}
}

func TestSearch_NormalizesQuery(t *testing.T) {
	f := &fakeSearcher{}
	s := NewSearchService(f)

	_, err := s.Search(context.Background(), amadeus.SearchQuery{
		Origin:      " jfk ",
		Destination: "dxb",
		DepartDate:  "2026-10-01",
		ReturnDate:  "2026-10-15",
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(f.queries) != 1 {
		t.Fatalf("searcher called %d times, want 1", len(f.queries))
	}
	q := f.queries[0]
	if q.Origin != "JFK" || q.Destination != "DXB" {
		t.Fatalf("query not upper-cased: %+v", q)
	}
	if q.Adults != 1 {
		t.Fatalf("adults default = %d, want 1", q.Adults)
	}
}

func TestSearch_GroupsAndFlattens(t *testing.T) {
	list := []offers.Offer{
		rawOffer("1", "EK", "202", "700.00"),
		rawOffer("2", "QR", "701", "650.00"),
	}
	offers.Tag(list)
	f := &fakeSearcher{searchResult: amadeus.SearchResult{
		Offers:   list,
		Carriers: map[string]string{"EK": "EMIRATES", "QR": "QATAR AIRWAYS"},
		Degraded: 2,
	}}
	s := NewSearchService(f)

	resp, err := s.Search(context.Background(), amadeus.SearchQuery{
		Origin: "JFK", Destination: "DXB",
		DepartDate: "2026-10-01", ReturnDate: "2026-10-15",
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Grouped) != 2 {
		t.Fatalf("grouped carriers = %d, want 2", len(resp.Grouped))
	}
	if len(resp.Grouped["EK"]) != 1 || resp.Grouped["EK"][0].Airline != "Emirates" {
		t.Fatalf("unexpected EK group: %+v", resp.Grouped["EK"])
	}
	if len(resp.Results) != 2 || resp.Results[0].Code != "QR" {
		t.Fatalf("flat results not price-ascending: %+v", resp.Results)
	}
	if resp.Results[0].DepartDate != "2026-10-01" || resp.Results[0].ReturnDate != "2026-10-15" {
		t.Fatalf("query dates not echoed on offers: %+v", resp.Results[0])
	}
	if resp.Degraded != 2 {
		t.Fatalf("degraded = %d, want 2", resp.Degraded)
	}
}

func TestSearch_EmptyResultIsNotNil(t *testing.T) {
	s := NewSearchService(&fakeSearcher{})
	resp, err := s.Search(context.Background(), amadeus.SearchQuery{
		Origin: "JFK", Destination: "DXB",
		DepartDate: "2026-10-01", ReturnDate: "2026-10-15",
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Results == nil || len(resp.Results) != 0 {
		t.Fatalf("results = %#v, want empty non-nil slice", resp.Results)
	}
	if len(resp.Grouped) != 0 {
		t.Fatalf("grouped = %#v, want empty", resp.Grouped)
	}
}

func TestConfirmPrice_RequiresOffer(t *testing.T) {
	s := NewSearchService(&fakeSearcher{})
	_, err := s.ConfirmPrice(context.Background(), offers.Offer{})
	if !errors.Is(err, ErrOfferRequired) {
		t.Fatalf("err = %v, want ErrOfferRequired", err)
	}
}

func TestConfirmPrice_PassesOfferThrough(t *testing.T) {
	want := amadeus.PricedOffer{Base: 500, GrandTotal: 650, Taxes: 150, Currency: "USD"}
	f := &fakeSearcher{pricedOffer: want}
	s := NewSearchService(f)

	got, err := s.ConfirmPrice(context.Background(), rawOffer("7", "EK", "202", "650.00"))
	if err != nil {
		t.Fatalf("ConfirmPrice: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("priced = %+v, want %+v", got, want)
	}
	if f.pricedInput == nil || f.pricedInput.ID != "7" {
		t.Fatalf("offer not passed through: %+v", f.pricedInput)
	}
}

func TestConfirmPrice_PropagatesProviderError(t *testing.T) {
	f := &fakeSearcher{priceErr: amadeus.ErrProvider}
	s := NewSearchService(f)
	_, err := s.ConfirmPrice(context.Background(), rawOffer("7", "EK", "202", "650.00"))
	if !errors.Is(err, amadeus.ErrProvider) {
		t.Fatalf("err = %v, want ErrProvider", err)
	}
}

func TestLocationsAndAirlines_PassThrough(t *testing.T) {
	f := &fakeSearcher{
		locations: []amadeus.Location{{IataCode: "JFK", Name: "John F Kennedy Intl"}},
		airlines:  []amadeus.Airline{{Code: "EK", Name: "Emirates"}},
	}
	s := NewSearchService(f)

	locs, err := s.Locations(context.Background(), "new york")
	if err != nil || len(locs) != 1 || locs[0].IataCode != "JFK" {
		t.Fatalf("Locations = %+v, %v", locs, err)
	}
	airs, err := s.Airlines(context.Background(), "EK")
	if err != nil || len(airs) != 1 || airs[0].Name != "Emirates" {
		t.Fatalf("Airlines = %+v, %v", airs, err)
	}
}
