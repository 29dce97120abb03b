package amadeus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-fare-backend/internal/offers"
)

const (
	testBaseURL       = "https://test.api.amadeus.com"
	productionBaseURL = "https://api.amadeus.com"

	// maxErrBody caps how much of a provider error body is logged.
	maxErrBody = 500
)

// ErrProvider is the sentinel wrapped by every transport or provider-side
// failure. Callers branch with errors.Is and must not surface the provider's
// error text to end users.
var ErrProvider = errors.New("flight provider error")

// BaseURL maps an environment name to the provider host. Anything other
// than "production" selects the sandbox host.
func BaseURL(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), "production") {
		return productionBaseURL
	}
	return testBaseURL
}

// Config carries the client settings; see config.AmadeusConfig for the
// environment keys they are loaded from.
type Config struct {
	BaseURL   string
	Currency  string        // quote currency, e.g. "USD"
	MaxOffers int           // per-search result cap requested from the provider
	FlexDays  int           // offset magnitude for flexible-date retries
	Timeout   time.Duration // per-call HTTP timeout
}

// Client talks to the Amadeus flight APIs. All methods are safe for
// concurrent use; the only shared state is the cached token inside the
// TokenProvider.
type Client struct {
	baseURL   string
	currency  string
	maxOffers int
	flexDays  int
	httpc     *http.Client
	tokens    TokenProvider
}

// New constructs a Client, applying defaults for unset Config fields.
func New(cfg Config, tokens TokenProvider) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = testBaseURL
	}
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}
	if cfg.MaxOffers <= 0 {
		cfg.MaxOffers = 50
	}
	if cfg.FlexDays <= 0 {
		cfg.FlexDays = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		currency:  cfg.Currency,
		maxOffers: cfg.MaxOffers,
		flexDays:  cfg.FlexDays,
		httpc:     &http.Client{Timeout: cfg.Timeout},
		tokens:    tokens,
	}
}

// SearchQuery describes one round-trip offer search.
type SearchQuery struct {
	Origin      string
	Destination string
	DepartDate  string // YYYY-MM-DD
	ReturnDate  string // YYYY-MM-DD, empty for one-way
	Adults      int
	Airline     string // optional IATA carrier filter
}

// SearchResult is one search response: fingerprint-tagged offers plus the
// provider's carrier-code dictionary. Degraded counts search attempts that
// errored and were downgraded to "no offers" during a flexible-date sweep,
// letting callers tell "no offers exist" apart from "attempts failed".
type SearchResult struct {
	Offers   []offers.Offer    `json:"offers"`
	Carriers map[string]string `json:"carriers"`
	Degraded int               `json:"degraded,omitempty"`
}

type searchResponse struct {
	Data         []offers.Offer `json:"data"`
	Dictionaries struct {
		Carriers map[string]string `json:"carriers"`
	} `json:"dictionaries"`
}

// SearchOffers performs a single exact-date search. Every returned offer is
// tagged with its fingerprint before the result is handed back, so
// downstream consumers never recompute identity from a wrapped form.
// Transport and provider failures propagate wrapped in ErrProvider.
func (c *Client) SearchOffers(ctx context.Context, q SearchQuery) (SearchResult, error) {
	adults := q.Adults
	if adults <= 0 {
		adults = 1
	}

	params := url.Values{}
	params.Set("originLocationCode", strings.ToUpper(strings.TrimSpace(q.Origin)))
	params.Set("destinationLocationCode", strings.ToUpper(strings.TrimSpace(q.Destination)))
	params.Set("departureDate", q.DepartDate)
	if q.ReturnDate != "" {
		params.Set("returnDate", q.ReturnDate)
	}
	params.Set("adults", strconv.Itoa(adults))
	params.Set("currencyCode", c.currency)
	params.Set("max", strconv.Itoa(c.maxOffers))
	if code := strings.ToUpper(strings.TrimSpace(q.Airline)); code != "" {
		params.Set("includedAirlineCodes", code)
	}

	log.Debug().
		Str("origin", q.Origin).
		Str("destination", q.Destination).
		Str("depart", q.DepartDate).
		Str("return", q.ReturnDate).
		Int("adults", adults).
		Str("airline", q.Airline).
		Msg("amadeus search")

	var body searchResponse
	if err := c.getJSON(ctx, "/v2/shopping/flight-offers", params, &body); err != nil {
		providerReqs.WithLabelValues("search", "error").Inc()
		return SearchResult{}, err
	}

	offers.Tag(body.Data)

	outcome := "ok"
	if len(body.Data) == 0 {
		outcome = "empty"
	}
	providerReqs.WithLabelValues("search", outcome).Inc()

	carriers := body.Dictionaries.Carriers
	if carriers == nil {
		carriers = map[string]string{}
	}
	return SearchResult{Offers: body.Data, Carriers: carriers}, nil
}

// SearchOffersWithFlex searches exact dates first; exact dates always win.
// When the exact search yields nothing (or errors), it retries every
// combination of ±flexDays applied independently to the depart and return
// dates, in the fixed order dep−/ret−, dep−/ret+, dep+/ret−, dep+/ret+,
// and returns the first combination with offers. Failures on individual
// attempts are logged and treated as "no offers"; this method never returns
// a provider error, only an empty (possibly degraded) result.
func (c *Client) SearchOffersWithFlex(ctx context.Context, q SearchQuery) SearchResult {
	degraded := 0

	res, err := c.SearchOffers(ctx, q)
	if err != nil {
		log.Warn().Err(err).Msg("exact search failed, trying flexible dates")
		degraded++
	} else if len(res.Offers) > 0 {
		return res
	} else {
		log.Info().Int("flex_days", c.flexDays).Msg("no offers for exact dates, trying flexible dates")
	}

	for _, depOffset := range []int{-1, 1} {
		for _, retOffset := range []int{-1, 1} {
			alt := q
			alt.DepartDate = AddDays(q.DepartDate, depOffset*c.flexDays)
			alt.ReturnDate = AddDays(q.ReturnDate, retOffset*c.flexDays)

			flexAttempts.Inc()
			result, err := c.SearchOffers(ctx, alt)
			if err != nil {
				log.Warn().Err(err).
					Str("depart", alt.DepartDate).
					Str("return", alt.ReturnDate).
					Msg("flexible-date attempt failed")
				degraded++
				continue
			}
			if len(result.Offers) > 0 {
				log.Info().
					Str("depart", alt.DepartDate).
					Str("return", alt.ReturnDate).
					Int("count", len(result.Offers)).
					Msg("flexible-date attempt found offers")
				result.Degraded = degraded
				return result
			}
		}
	}

	log.Info().Msg("no offers found after flexible-date attempts")
	return SearchResult{Offers: []offers.Offer{}, Carriers: map[string]string{}, Degraded: degraded}
}

// PricedOffer is the outcome of a firm-pricing call: the confirmed price
// breakdown plus the (re-tagged) priced offer.
type PricedOffer struct {
	Base       float64      `json:"base"`
	GrandTotal float64      `json:"grandTotal"`
	Taxes      float64      `json:"taxes"`
	Currency   string       `json:"currency"`
	Offer      offers.Offer `json:"offer"`
}

type pricingRequest struct {
	Data struct {
		Type         string         `json:"type"`
		FlightOffers []offers.Offer `json:"flightOffers"`
	} `json:"data"`
}

type pricingResponse struct {
	Data struct {
		FlightOffers []offers.Offer `json:"flightOffers"`
	} `json:"data"`
}

// PriceOffer confirms the firm price for a previously searched offer.
// Itemized traveler taxes are summed when the provider returns them;
// otherwise the tax approximation applies.
func (c *Client) PriceOffer(ctx context.Context, offer offers.Offer) (PricedOffer, error) {
	var reqBody pricingRequest
	reqBody.Data.Type = "flight-offers-pricing"
	reqBody.Data.FlightOffers = []offers.Offer{offer}

	var body pricingResponse
	if err := c.postJSON(ctx, "/v1/shopping/flight-offers/pricing", reqBody, &body); err != nil {
		providerReqs.WithLabelValues("pricing", "error").Inc()
		return PricedOffer{}, err
	}
	providerReqs.WithLabelValues("pricing", "ok").Inc()

	priced := offer
	if len(body.Data.FlightOffers) > 0 {
		priced = body.Data.FlightOffers[0]
	}
	if uid, ok := offers.Fingerprint(priced); ok {
		priced.UID = uid
	}

	base, grand, taxes := offers.ApproxTaxes(priced.Price)
	if len(priced.TravelerPricings) > 0 {
		var sum float64
		for _, tp := range priced.TravelerPricings {
			for _, tax := range tp.Price.Taxes {
				if v, err := strconv.ParseFloat(tax.Amount, 64); err == nil {
					sum += v
				}
			}
		}
		taxes = sum
	}

	currency := priced.Price.Currency
	if currency == "" {
		currency = c.currency
	}
	return PricedOffer{
		Base:       base,
		GrandTotal: grand,
		Taxes:      taxes,
		Currency:   currency,
		Offer:      priced,
	}, nil
}

// Location is one city or airport match from the reference lookup.
type Location struct {
	ID       string `json:"id"`
	IataCode string `json:"iataCode"`
	Name     string `json:"name"`
	SubType  string `json:"subType"`
	Address  struct {
		CityName    string `json:"cityName,omitempty"`
		CountryName string `json:"countryName,omitempty"`
	} `json:"address"`
}

type locationsResponse struct {
	Data []Location `json:"data"`
}

// SearchLocations looks up cities and airports by free-text keyword.
// Keywords shorter than two characters after sanitization return no
// results without a provider call; 400/429 responses degrade to empty.
func (c *Client) SearchLocations(ctx context.Context, keyword string) ([]Location, error) {
	q := sanitizeKeyword(keyword)
	if len(q) < 2 {
		return []Location{}, nil
	}

	params := url.Values{}
	params.Set("subType", "CITY,AIRPORT")
	params.Set("keyword", q)
	params.Set("page[limit]", "20")

	var body locationsResponse
	if err := c.getJSON(ctx, "/v1/reference-data/locations", params, &body); err != nil {
		if isSoftStatus(err) {
			providerReqs.WithLabelValues("locations", "empty").Inc()
			return []Location{}, nil
		}
		providerReqs.WithLabelValues("locations", "error").Inc()
		return nil, err
	}
	providerReqs.WithLabelValues("locations", "ok").Inc()
	return body.Data, nil
}

// Airline is one carrier match from the reference lookup.
type Airline struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type airlinesResponse struct {
	Data []struct {
		IataCode     string `json:"iataCode"`
		BusinessName string `json:"businessName"`
		CommonName   string `json:"commonName"`
		LegalName    string `json:"legalName"`
	} `json:"data"`
}

// SearchAirlines resolves an IATA carrier code to its airline names.
// Codes shorter than two letters after sanitization return no results
// without a provider call; 400/429 responses degrade to empty.
func (c *Client) SearchAirlines(ctx context.Context, code string) ([]Airline, error) {
	q := sanitizeAirlineCode(code)
	if len(q) < 2 {
		return []Airline{}, nil
	}

	params := url.Values{}
	params.Set("airlineCodes", q)

	var body airlinesResponse
	if err := c.getJSON(ctx, "/v1/reference-data/airlines", params, &body); err != nil {
		if isSoftStatus(err) {
			providerReqs.WithLabelValues("airlines", "empty").Inc()
			return []Airline{}, nil
		}
		providerReqs.WithLabelValues("airlines", "error").Inc()
		return nil, err
	}
	providerReqs.WithLabelValues("airlines", "ok").Inc()

	out := make([]Airline, 0, len(body.Data))
	for _, a := range body.Data {
		name := a.BusinessName
		if name == "" {
			name = a.CommonName
		}
		if name == "" {
			name = a.LegalName
		}
		out = append(out, Airline{Code: a.IataCode, Name: name})
	}
	return out, nil
}

//
// Transport plumbing
//

// statusError wraps an unexpected provider HTTP status so callers can
// special-case rate limiting and bad input without parsing error strings.
type statusError struct {
	status int
	op     string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s: amadeus %s failed: status %d", ErrProvider.Error(), e.op, e.status)
}

func (e *statusError) Unwrap() error { return ErrProvider }

// isSoftStatus reports whether err is a 400 or 429 provider response, which
// the reference lookups treat as "no results" rather than a failure.
func isSoftStatus(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.status == http.StatusBadRequest || se.status == http.StatusTooManyRequests
	}
	return false
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProvider, err)
	}
	return c.do(req, path, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProvider, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProvider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, op string, out any) error {
	token, err := c.tokens.Token(req.Context())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProvider, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, maxErrBody))
		log.Warn().
			Str("op", op).
			Int("status", res.StatusCode).
			Str("body", string(snippet)).
			Msg("amadeus error response")
		return &statusError{status: res.StatusCode, op: op}
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrProvider, op, err)
	}
	return nil
}

//
// Input sanitization
//

var (
	keywordJunkRE = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	spacesRE      = regexp.MustCompile(`\s+`)
	nonLetterRE   = regexp.MustCompile(`[^a-zA-Z]`)
)

// sanitizeKeyword keeps letters, digits, and spaces, collapses runs of
// whitespace, trims, and upper-cases.
func sanitizeKeyword(in string) string {
	cleaned := keywordJunkRE.ReplaceAllString(in, " ")
	cleaned = spacesRE.ReplaceAllString(cleaned, " ")
	return strings.ToUpper(strings.TrimSpace(cleaned))
}

// sanitizeAirlineCode keeps letters only, upper-cased, capped at three
// characters (IATA codes are two, ICAO three).
func sanitizeAirlineCode(in string) string {
	cleaned := strings.ToUpper(nonLetterRE.ReplaceAllString(in, ""))
	if len(cleaned) > 3 {
		cleaned = cleaned[:3]
	}
	return cleaned
}
