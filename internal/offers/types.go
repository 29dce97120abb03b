// Package offers contains the pure offer-processing core of the fare-watch
// backend: deterministic offer fingerprinting, normalization of raw provider
// offers into display-ready details, grouping by carrier, and the offer
// selection policy used by bulk refresh.
//
// The package is deliberately free of I/O, clocks, and logging so that every
// function is deterministic and trivially testable. Raw offer types mirror
// the provider's flight-offers JSON shape; monetary amounts stay strings in
// the raw types (as the provider sends them) and are parsed only when a
// numeric view is derived.
package offers

// Endpoint is the departure or arrival point of a segment. At is the
// provider's local ISO-8601 timestamp and is passed through untouched.
type Endpoint struct {
	IataCode string `json:"iataCode"`
	Terminal string `json:"terminal,omitempty"`
	At       string `json:"at"`
}

// OperatingCarrier identifies the airline operating a segment when it
// differs from the marketing carrier (codeshares).
type OperatingCarrier struct {
	CarrierCode string `json:"carrierCode"`
}

// Segment is one physical flight leg within an itinerary.
type Segment struct {
	Departure        Endpoint          `json:"departure"`
	Arrival          Endpoint          `json:"arrival"`
	CarrierCode      string            `json:"carrierCode,omitempty"`
	MarketingCarrier string            `json:"marketingCarrier,omitempty"`
	Operating        *OperatingCarrier `json:"operating,omitempty"`
	Number           string            `json:"number"`
	Duration         string            `json:"duration,omitempty"`
}

// Itinerary is one direction of travel (outbound or return), composed of
// one or more segments.
type Itinerary struct {
	Duration string    `json:"duration,omitempty"`
	Segments []Segment `json:"segments"`
}

// Fee is one itemized surcharge on an offer's price.
type Fee struct {
	Amount string `json:"amount"`
	Type   string `json:"type,omitempty"`
}

// Price is the provider's price block. Amounts are decimal strings.
type Price struct {
	Currency   string `json:"currency,omitempty"`
	Total      string `json:"total,omitempty"`
	Base       string `json:"base,omitempty"`
	GrandTotal string `json:"grandTotal,omitempty"`
	TotalTaxes string `json:"totalTaxes,omitempty"`
	Fees       []Fee  `json:"fees,omitempty"`
}

// Tax is one itemized tax inside a traveler pricing block.
type Tax struct {
	Amount string `json:"amount"`
	Code   string `json:"code,omitempty"`
}

// TravelerPrice is the per-traveler price block returned by the pricing
// endpoint; only the itemized taxes are consumed here.
type TravelerPrice struct {
	Taxes []Tax `json:"taxes,omitempty"`
}

// TravelerPricing is one traveler's pricing entry on a priced offer.
type TravelerPricing struct {
	Price TravelerPrice `json:"price"`
}

// Offer is a single priced itinerary quote as returned by the provider.
// UID is not part of the provider payload: it is the deterministic
// fingerprint stamped by the search client (see Fingerprint) so downstream
// consumers never recompute it from a wrapped form.
type Offer struct {
	ID               string            `json:"id,omitempty"`
	UID              string            `json:"_uid,omitempty"`
	Itineraries      []Itinerary       `json:"itineraries,omitempty"`
	Price            Price             `json:"price"`
	TravelerPricings []TravelerPricing `json:"travelerPricings,omitempty"`
}
