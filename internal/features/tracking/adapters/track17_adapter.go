package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/core/httpclient"
	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/core/logger"
	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/core/proxychain"
	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/core/store"
	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/features/tracking/domain"
	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/features/tracking/ports"
	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/features/tracking/session"
	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/features/tracking/tables"

	"go.uber.org/zap"
)

const (
	msgOK            = "Ok"
	msgInvalidNumber = "numNon"

	carrierLogoURLFormat = "http://res.17track.net/asset/carrier/logo/120x120/%d.png"
)

// Track17Adapter talks to the reverse-engineered batched tracking endpoint
// and decodes its compact numeric wire format through the reference tables.
type Track17Adapter struct {
	apiURL       string
	referer      string
	proxyTimeout time.Duration
	store        *store.Store
	session      ports.SessionProvider
	transports   *proxychain.Manager
	tables       *tables.Tables
	logger       *zap.Logger
}

// NewTrack17Adapter creates the backend adapter.
func NewTrack17Adapter(
	apiURL string,
	referer string,
	proxyTimeout time.Duration,
	s *store.Store,
	sessions ports.SessionProvider,
	transports *proxychain.Manager,
	tbl *tables.Tables,
) *Track17Adapter {
	return &Track17Adapter{
		apiURL:       apiURL,
		referer:      referer,
		proxyTimeout: proxyTimeout,
		store:        s,
		session:      sessions,
		transports:   transports,
		tables:       tbl,
		logger:       logger.Named("track17"),
	}
}

// wireItem is one submitted number on the wire.
type wireItem struct {
	Num string `json:"num"`
	Fc  int    `json:"fc"`
	Sc  int    `json:"sc"`
}

// trackRequest is the outbound request body.
type trackRequest struct {
	Data []wireItem `json:"data"`
}

// wireEvent is one tracking event in compact form.
type wireEvent struct {
	Time      int64  `json:"a"`
	Country   int    `json:"b"`
	Location1 string `json:"c"`
	Location2 string `json:"d"`
	Message   string `json:"z"`
}

// wireExt carries extension markers whose presence flags pickup/return.
type wireExt struct {
	Pickup json.RawMessage `json:"pickup"`
	Return json.RawMessage `json:"return"`
}

// wireTrack is the compact payload for one number.
type wireTrack struct {
	Country1    int          `json:"b"`
	Country2    int          `json:"c"`
	Status      *int         `json:"e"`
	TransitTime *int         `json:"f"`
	Carrier1    int          `json:"w1"`
	Carrier2    int          `json:"w2"`
	Latest      *wireEvent   `json:"z0"`
	Events      []*wireEvent `json:"z1"`
	Ext         *wireExt     `json:"zex"`
}

// wireEntry is the per-number envelope of the response.
type wireEntry struct {
	No    string     `json:"no"`
	Delay int        `json:"delay"`
	Track *wireTrack `json:"track"`
}

// trackResponse is the full response body.
type trackResponse struct {
	Msg string      `json:"msg"`
	Dat []wireEntry `json:"dat"`
}

// Track submits one batch and returns decoded results keyed by number.
func (a *Track17Adapter) Track(ctx context.Context, items []domain.RequestItem, proxyURL string) (map[string]domain.Result, error) {
	token, err := a.session.Ensure(ctx)
	if err != nil {
		return nil, err
	}

	body := trackRequest{Data: make([]wireItem, 0, len(items))}
	for _, item := range items {
		body.Data = append(body.Data, wireItem{Num: item.Number, Fc: item.CarrierCode})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tracking request: %w", err)
	}

	transport, err := a.transports.TransportFor(proxyURL)
	if err != nil {
		return nil, err
	}

	// Proxied requests get a timeout; direct ones run unbounded. The
	// asymmetry matches the live service and is kept on purpose.
	timeout := time.Duration(0)
	if strings.TrimSpace(proxyURL) != "" {
		timeout = a.proxyTimeout
	} else {
		a.logger.Debug("No proxy configured, sending directly")
	}
	client := httpclient.NewClientWithTransport(transport, timeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build tracking request: %w", err)
	}

	doc := a.store.Read()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Referer", a.referer)
	req.Header.Set("User-Agent", doc.Tracking.UserAgent)
	req.Header.Set(session.HeaderName, token)

	a.logger.Info("Submitting tracking batch",
		zap.Int("count", len(items)),
		zap.Bool("proxied", timeout > 0),
	)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tracking request failed: %w", err)
	}
	defer resp.Body.Close()

	var decoded trackResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to parse tracking response: %w", err)
	}

	switch decoded.Msg {
	case msgOK:
		return a.decode(decoded, items), nil
	case msgInvalidNumber:
		return nil, domain.ErrInvalidTrackingNumber
	default:
		return nil, &domain.BackendError{Message: decoded.Msg}
	}
}

// decode turns the compact response into normalized results keyed by
// tracking number.
func (a *Track17Adapter) decode(resp trackResponse, items []domain.RequestItem) map[string]domain.Result {
	results := make(map[string]domain.Result, len(resp.Dat))

	for _, entry := range resp.Dat {
		if entry.Delay == 1 {
			// The deferral placeholder is emitted once per item of the
			// whole submitted batch, keyed by the deferred number; in a
			// map that collapses to one entry. Quirk of the live service,
			// preserved as observed.
			for range items {
				results[entry.No] = domain.Placeholder(entry.No)
			}
			continue
		}

		if entry.Track == nil {
			results[entry.No] = domain.Placeholder(entry.No)
			continue
		}

		results[entry.No] = a.decodeTrack(entry)
	}

	return results
}

func (a *Track17Adapter) decodeTrack(entry wireEntry) domain.Result {
	track := entry.Track
	delay := entry.Delay

	result := domain.Result{
		Tracking:      entry.No,
		Delay:         &delay,
		Country1:      a.decodeCountry(track.Country1),
		Country2:      a.decodeCountry(track.Country2),
		ShortenStatus: a.decodeStatus(track.Status),
		TransitTime:   decodeTransitTime(track.TransitTime),
		Courier1:      a.decodeCarrier(track.Carrier1),
		Courier2:      a.decodeCarrier(track.Carrier2),
		AllStatus:     decodeEvents(track.Events),
		LatestStatus:  decodeLatest(track.Latest),
		PickedUp:      boolPtr(track.Ext != nil && markerSet(track.Ext.Pickup)),
		Returned:      boolPtr(track.Ext != nil && markerSet(track.Ext.Return)),
		RetryDelay:    false,
	}

	return result
}

// decodeCountry resolves a country code; 0 or unmapped codes decode to nil.
func (a *Track17Adapter) decodeCountry(code int) *domain.CountryInfo {
	if code == 0 {
		return nil
	}
	country, ok := a.tables.CountryByCode(code)
	if !ok {
		return nil
	}
	return &domain.CountryInfo{
		Mnemonic: country.Mnemonic,
		Name:     country.Name,
		Code:     country.NumberKey,
	}
}

// decodeStatus resolves a status code. An absent code decodes to an empty
// object; a present but unmapped code decodes to nil.
func (a *Track17Adapter) decodeStatus(code *int) *domain.StatusInfo {
	if code == nil {
		return &domain.StatusInfo{}
	}
	status, ok := a.tables.StatusByCode(*code)
	if !ok {
		return nil
	}
	key := status.Key
	return &domain.StatusInfo{
		Code:  &key,
		Name:  status.Name,
		Color: status.IconBgColor,
		Tips:  status.Tips,
	}
}

// decodeCarrier resolves a carrier code plus its nested country, contact
// info and derived logo URL; 0 or unmapped codes decode to nil.
func (a *Track17Adapter) decodeCarrier(code int) *domain.CarrierInfo {
	if code == 0 {
		return nil
	}
	carrier, ok := a.tables.CarrierByCode(code)
	if !ok {
		return nil
	}
	return &domain.CarrierInfo{
		Code:    carrier.Key,
		Country: a.decodeCountry(carrier.Country),
		Contact: domain.ContactInfo{
			Email:     carrier.Email,
			Telephone: carrier.Tel,
			Website:   carrier.URL,
		},
		Name: carrier.Name,
		Icon: fmt.Sprintf(carrierLogoURLFormat, carrier.Key),
	}
}

// decodeTransitTime maps negative transit times (the backend's "unknown"
// sentinel) to nil; non-negative values pass through.
func decodeTransitTime(v *int) *int {
	if v == nil || *v < 0 {
		return nil
	}
	t := *v
	return &t
}

// decodeEvent normalizes one event, promoting location2 into an empty
// location1.
func decodeEvent(e *wireEvent) domain.Event {
	location1 := e.Location1
	location2 := e.Location2
	if location1 == "" && location2 != "" {
		location1 = location2
		location2 = ""
	}
	return domain.Event{
		Time:      e.Time,
		Country:   e.Country,
		Location1: location1,
		Location2: location2,
		Status:    e.Message,
	}
}

// decodeEvents normalizes the ordered event sequence, skipping nulls.
func decodeEvents(events []*wireEvent) []domain.Event {
	decoded := make([]domain.Event, 0, len(events))
	for _, e := range events {
		if e == nil {
			continue
		}
		decoded = append(decoded, decodeEvent(e))
	}
	return decoded
}

// decodeLatest normalizes the most recent event, or yields an empty object
// when it is undecodable.
func decodeLatest(e *wireEvent) *domain.Event {
	if e == nil {
		return &domain.Event{}
	}
	decoded := decodeEvent(e)
	return &decoded
}

// markerSet reports whether an extension marker is present and truthy.
func markerSet(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	switch trimmed {
	case "", "null", "false", "0", `""`:
		return false
	default:
		return true
	}
}

func boolPtr(v bool) *bool {
	return &v
}
