package offers

import "strings"

// Fingerprint derives a stable identity for an offer. When the provider sent
// its own identifier it is returned verbatim; otherwise a deterministic
// signature is built from every segment (in itinerary order) plus the price:
//
//	DEP-ARR-departureAt-arrivalAt-carrier-number | ... | price:<amount>:<currency>
//
// Two offers with identical routing, times, carriers, flight numbers, and
// price therefore share a fingerprint, and any difference in those fields
// changes it.
//
// Fingerprinting is best effort: when the offer carries neither a price nor
// itineraries there is nothing stable to derive, and ok is false. Callers
// must treat a missing fingerprint as "cannot dedupe" and fall back to the
// provider id or to none at all.
func Fingerprint(o Offer) (uid string, ok bool) {
	if o.ID != "" {
		return o.ID, true
	}
	if len(o.Itineraries) == 0 && o.Price.GrandTotal == "" && o.Price.Total == "" {
		return "", false
	}

	var parts []string
	for _, it := range o.Itineraries {
		for _, s := range it.Segments {
			carrier := s.CarrierCode
			if carrier == "" {
				carrier = s.MarketingCarrier
			}
			parts = append(parts, strings.Join([]string{
				s.Departure.IataCode,
				s.Arrival.IataCode,
				s.Departure.At,
				s.Arrival.At,
				carrier,
				s.Number,
			}, "-"))
		}
	}

	amount := o.Price.GrandTotal
	if amount == "" {
		amount = o.Price.Total
	}
	parts = append(parts, "price:"+amount+":"+o.Price.Currency)

	return strings.Join(parts, "|"), true
}

// Tag stamps every offer in list with its fingerprint. Offers without a
// derivable fingerprint are left untagged.
func Tag(list []Offer) {
	for i := range list {
		if uid, ok := Fingerprint(list[i]); ok {
			list[i].UID = uid
		}
	}
}
