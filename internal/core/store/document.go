package store

// ExpiryLayout is the timestamp layout used for the session expiry field,
// e.g. "2025-01-02 15:04:05 UTC".
const ExpiryLayout = "2006-01-02 15:04:05 MST"

// TrackingSection holds the session state of the unofficial tracking backend.
// Field names mirror the on-disk document consumed by operators.
type TrackingSection struct {
	// LastEventID is the captured session-continuation token.
	LastEventID string `json:"last_event_id,omitempty"`
	// LastEventIDExpiry is the capture timestamp in ExpiryLayout, UTC.
	LastEventIDExpiry string `json:"last_event_id_expiry,omitempty"`
	// UserAgent is sent on every outbound tracking request.
	UserAgent string `json:"User_Agent,omitempty"`
	// Proxies is the pool of proxy (or proxy chain) descriptors.
	Proxies []string `json:"TRACKING_PROXY,omitempty"`
	// RefreshHours is how long a captured token stays valid.
	RefreshHours int `json:"TRACK_REFRESH_HOUR,omitempty"`
}

// Document is the root persisted structure of the cache file.
type Document struct {
	Tracking TrackingSection `json:"TRACKING"`
}
