package offers

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxPerCarrier caps how many offers a single carrier group retains.
const MaxPerCarrier = 5

// CarrierOffer is one offer viewed through the lens of a specific carrier:
// the carrier's resolved display name and code, the normalized price and
// details, the original (fingerprint-tagged) offer, and the query dates it
// was found for. An interline offer produces one CarrierOffer per carrier
// it touches.
type CarrierOffer struct {
	Airline    string  `json:"airline"`
	Code       string  `json:"code"`
	Price      int     `json:"price"`
	Currency   string  `json:"currency"`
	Details    Details `json:"details"`
	Offer      Offer   `json:"raw"`
	OfferID    string  `json:"offerId,omitempty"`
	OfferUID   string  `json:"offerUid,omitempty"`
	DepartDate string  `json:"departDate,omitempty"`
	ReturnDate string  `json:"returnDate,omitempty"`
}

// GroupByCarrier fans offers out per carrier code, keeping for each carrier
// the MaxPerCarrier cheapest offers sorted ascending by price. An offer
// whose segments involve several carriers (marketing or operating codes)
// appears in every relevant group. Carriers with no matching offers do not
// appear as keys.
func GroupByCarrier(list []Offer, carriers map[string]string, departDate, returnDate string) map[string][]CarrierOffer {
	groups := make(map[string][]CarrierOffer)

	for _, o := range list {
		details := Normalize(o)
		for _, code := range carrierCodes(o) {
			groups[code] = append(groups[code], CarrierOffer{
				Airline:    DisplayName(code, carriers),
				Code:       code,
				Price:      details.Price,
				Currency:   details.Currency,
				Details:    details,
				Offer:      o,
				OfferID:    o.ID,
				OfferUID:   o.UID,
				DepartDate: departDate,
				ReturnDate: returnDate,
			})
		}
	}

	for code, g := range groups {
		sortByPrice(g)
		if len(g) > MaxPerCarrier {
			groups[code] = g[:MaxPerCarrier]
		}
	}
	return groups
}

// Flatten concatenates all per-carrier groups into one globally re-sorted
// (ascending by price) list. Offers touching several carriers appear once
// per carrier, which is intentional.
func Flatten(groups map[string][]CarrierOffer) []CarrierOffer {
	var out []CarrierOffer
	for _, g := range groups {
		out = append(out, g...)
	}
	sortByPrice(out)
	return out
}

// carrierCodes returns the de-duplicated, sorted set of carrier codes an
// offer touches across all itineraries and segments. Both the generic
// carrier code and the marketing carrier count.
func carrierCodes(o Offer) []string {
	set := make(map[string]struct{})
	for _, it := range o.Itineraries {
		for _, s := range it.Segments {
			if s.CarrierCode != "" {
				set[s.CarrierCode] = struct{}{}
			}
			if s.MarketingCarrier != "" {
				set[s.MarketingCarrier] = struct{}{}
			}
		}
	}
	codes := make([]string, 0, len(set))
	for c := range set {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// DisplayName resolves a carrier code against the provider's carrier
// dictionary, falling back to the raw code when absent. Dictionary names
// arrive fully upper-cased and are re-cased for display ("EMIRATES" ->
// "Emirates"); mixed-case names are passed through.
func DisplayName(code string, carriers map[string]string) string {
	name := carriers[code]
	if name == "" {
		return code
	}
	if name == strings.ToUpper(name) {
		return cases.Title(language.English).String(strings.ToLower(name))
	}
	return name
}

// sortByPrice orders offers ascending by headline price with deterministic
// tie-breaks (carrier code, then fingerprint) so output is stable across
// map iteration order.
func sortByPrice(g []CarrierOffer) {
	sort.SliceStable(g, func(i, j int) bool {
		if g[i].Price != g[j].Price {
			return g[i].Price < g[j].Price
		}
		if g[i].Code != g[j].Code {
			return g[i].Code < g[j].Code
		}
		return g[i].OfferUID < g[j].OfferUID
	})
}
