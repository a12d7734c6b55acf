package domain

// RequestPair is one raw (tracking number, carrier slug) input pair.
type RequestPair struct {
	// Tracking is the raw tracking number as submitted by the client.
	Tracking string `json:"tracking"`
	// Slug is the carrier name to resolve against the carrier table.
	Slug string `json:"slug"`
}

// RequestItem is a normalized pair ready for the backend: the number
// stripped to alphanumerics and the slug resolved to a carrier code
// (0 when unresolved).
type RequestItem struct {
	Number      string
	CarrierCode int
}

// CountryInfo is a decoded country reference.
type CountryInfo struct {
	Mnemonic string `json:"mnemonic"`
	Name     string `json:"name"`
	Code     int    `json:"code"`
}

// ContactInfo holds a carrier's published contact details.
type ContactInfo struct {
	Email     string `json:"email"`
	Telephone string `json:"telephone"`
	Website   string `json:"website"`
}

// CarrierInfo is a decoded carrier reference, including its country and a
// derived logo URL.
type CarrierInfo struct {
	Code    int          `json:"code"`
	Country *CountryInfo `json:"country"`
	Contact ContactInfo  `json:"contact"`
	Name    string       `json:"name"`
	Icon    string       `json:"icon"`
}

// StatusInfo is a decoded shipment status. A zero value marshals to an
// empty object, used when the wire carries no status code.
type StatusInfo struct {
	Code  *int   `json:"code,omitempty"`
	Name  string `json:"name,omitempty"`
	Color string `json:"color,omitempty"`
	Tips  string `json:"tips,omitempty"`
}

// Event is one decoded tracking event. A zero value marshals to an empty
// object, used when the latest event is undecodable.
type Event struct {
	Time      int64  `json:"time,omitempty"`
	Country   int    `json:"country,omitempty"`
	Location1 string `json:"location1,omitempty"`
	Location2 string `json:"location2,omitempty"`
	Status    string `json:"status,omitempty"`
}

// Result is the normalized tracking outcome for one number. Field names
// mirror the JSON contract of the service, including the historical
// "lastest_status" spelling clients already depend on.
type Result struct {
	Tracking      string       `json:"tracking"`
	Delay         *int         `json:"delay"`
	Country1      *CountryInfo `json:"country1"`
	Country2      *CountryInfo `json:"country2"`
	ShortenStatus *StatusInfo  `json:"shorten_status"`
	TransitTime   *int         `json:"transit_time"`
	Courier1      *CarrierInfo `json:"courier1"`
	Courier2      *CarrierInfo `json:"courier2"`
	AllStatus     []Event      `json:"all_status"`
	LatestStatus  *Event       `json:"lastest_status"`
	PickedUp      *bool        `json:"picked_up"`
	Returned      *bool        `json:"returned"`
	RetryDelay    bool         `json:"retry_delay"`
}

// Placeholder returns the null-valued result emitted for deferred or
// payload-less numbers; only the number and the retry flag are populated.
func Placeholder(number string) Result {
	return Result{
		Tracking:   number,
		RetryDelay: true,
	}
}
