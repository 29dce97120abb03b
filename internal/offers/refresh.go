package offers

import "strings"

// WatchRef carries the identifying fields of a watched flight that the
// refresh path uses to pick a matching offer from a fresh search.
type WatchRef struct {
	OfferID     string
	OfferUID    string
	AirlineCode string
}

// AirlineCodeFromFlightNumber extracts the leading carrier token from a
// stored flight number ("EK 202" -> "EK").
func AirlineCodeFromFlightNumber(flightNumber string) string {
	fields := strings.Fields(flightNumber)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}

// SelectForRefresh picks exactly one offer from a fresh fetch to record as
// the new observation for a watched flight, by precedence:
//
//  1. an offer whose provider id or fingerprint matches the stored provider id
//  2. an offer whose fingerprint matches the stored fingerprint
//  3. the first offer whose carrier code matches the stored airline code
//  4. the cheapest offer returned
//
// ok is false only when fresh is empty; callers record "price unavailable"
// in that case rather than fabricating a value.
//
// The step-4 fallback can silently reattach the watch to an itinerary the
// user never asked for; see DESIGN.md before changing it.
func SelectForRefresh(ref WatchRef, fresh []CarrierOffer) (best CarrierOffer, ok bool) {
	if len(fresh) == 0 {
		return CarrierOffer{}, false
	}

	if ref.OfferID != "" {
		for _, o := range fresh {
			if o.OfferID == ref.OfferID || (ref.OfferUID != "" && o.OfferUID == ref.OfferUID) {
				return o, true
			}
		}
	}

	if ref.OfferUID != "" {
		for _, o := range fresh {
			if o.OfferUID == ref.OfferUID {
				return o, true
			}
		}
	}

	if code := strings.ToUpper(ref.AirlineCode); code != "" {
		for _, o := range fresh {
			if strings.ToUpper(o.Code) == code {
				return o, true
			}
		}
	}

	best = fresh[0]
	for _, o := range fresh[1:] {
		if o.Price < best.Price {
			best = o
		}
	}
	return best, true
}
