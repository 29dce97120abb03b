package offers

import (
	"math"
	"strconv"
)

// SegmentDetails is the display-ready view of one flight leg.
type SegmentDetails struct {
	Departure        Endpoint `json:"departure"`
	Arrival          Endpoint `json:"arrival"`
	MarketingCarrier string   `json:"marketingCarrier,omitempty"`
	OperatingCarrier string   `json:"operatingCarrier,omitempty"`
	FlightNumber     string   `json:"flightNumber"`
	Duration         string   `json:"duration,omitempty"`
}

// Layover is the connection window between two consecutive segments:
// the connecting airport plus the dwell window from the earlier segment's
// arrival to the later segment's departure.
type Layover struct {
	Airport string `json:"airport"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// ItineraryDetails is the display-ready view of one travel direction.
type ItineraryDetails struct {
	Segments []SegmentDetails `json:"segments"`
	Stops    int              `json:"stops"`
	Layovers []Layover        `json:"layovers"`
}

// Details is the normalized, display-oriented view of an offer. Price is
// the headline number (grand total rounded to the nearest currency unit,
// half up) used for sorting and list views; Base, GrandTotal, and Taxes
// retain full precision for the detail view.
type Details struct {
	Price       int                `json:"price"`
	Currency    string             `json:"currency"`
	Base        float64            `json:"base"`
	GrandTotal  float64            `json:"grandTotal"`
	Taxes       float64            `json:"taxes"`
	Itineraries []ItineraryDetails `json:"itineraries"`
}

// Normalize maps a raw provider offer into its display-ready shape.
//
// The tax figure is an approximation applied in priority order: an explicit
// total-taxes amount wins; otherwise taxes = grandTotal − base − sum(fees),
// clamped to zero. Segment durations are passed through untouched, stops is
// segmentCount−1 (never negative), and layovers are computed for adjacent
// segment pairs only.
func Normalize(o Offer) Details {
	base, grand, taxes := ApproxTaxes(o.Price)

	currency := o.Price.Currency
	if currency == "" {
		currency = "USD"
	}

	itineraries := make([]ItineraryDetails, 0, len(o.Itineraries))
	for _, it := range o.Itineraries {
		segments := make([]SegmentDetails, 0, len(it.Segments))
		for _, s := range it.Segments {
			marketing := s.MarketingCarrier
			if marketing == "" {
				marketing = s.CarrierCode
			}
			operating := ""
			if s.Operating != nil {
				operating = s.Operating.CarrierCode
			}
			segments = append(segments, SegmentDetails{
				Departure:        s.Departure,
				Arrival:          s.Arrival,
				MarketingCarrier: marketing,
				OperatingCarrier: operating,
				FlightNumber:     s.Number,
				Duration:         s.Duration,
			})
		}

		stops := len(segments) - 1
		if stops < 0 {
			stops = 0
		}

		layovers := make([]Layover, 0)
		for i := 0; i+1 < len(segments); i++ {
			layovers = append(layovers, Layover{
				Airport: segments[i].Arrival.IataCode,
				From:    segments[i].Arrival.At,
				To:      segments[i+1].Departure.At,
			})
		}

		itineraries = append(itineraries, ItineraryDetails{
			Segments: segments,
			Stops:    stops,
			Layovers: layovers,
		})
	}

	return Details{
		Price:       roundHalfUp(grand),
		Currency:    currency,
		Base:        base,
		GrandTotal:  grand,
		Taxes:       taxes,
		Itineraries: itineraries,
	}
}

// ApproxTaxes derives (base, grandTotal, taxes) from a raw price block.
// The tax figure is never negative.
func ApproxTaxes(p Price) (base, grand, taxes float64) {
	base = parseAmount(p.Base)
	grand = parseAmount(p.GrandTotal)
	if p.GrandTotal == "" {
		grand = parseAmount(p.Total)
	}

	if p.TotalTaxes != "" {
		if v, err := strconv.ParseFloat(p.TotalTaxes, 64); err == nil {
			return base, grand, math.Max(0, v)
		}
	}

	var fees float64
	for _, f := range p.Fees {
		fees += parseAmount(f.Amount)
	}
	return base, grand, math.Max(0, grand-base-fees)
}

// parseAmount parses a provider decimal string, treating empty or malformed
// values as zero.
func parseAmount(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// roundHalfUp rounds to the nearest integer with ties going up, matching
// the headline price shown in list views.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
