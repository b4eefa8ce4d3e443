package domain

import "time"

// nanosPerMinute is one minute in nanoseconds.
const nanosPerMinute = uint64(time.Minute)

// PriceStore is a cached quote stored in the price map under a PriceKey.
type PriceStore struct {
	Price float64 `json:"price"`
	// ExpiresAt is a unix timestamp in nanoseconds; the entry is fresh strictly before it.
	ExpiresAt uint64 `json:"expiresAt"`
	// DisplayName is set for AMM token entries only.
	DisplayName *string `json:"displayName,omitempty"`
}

// FreshAt reports whether the entry can be served without an upstream call at now.
func (p PriceStore) FreshAt(now time.Time) bool {
	return UnixNano(now) < p.ExpiresAt
}

// Name returns the display name, or "" when none is stored.
func (p PriceStore) Name() string {
	if p.DisplayName == nil {
		return ""
	}
	return *p.DisplayName
}

// UnixNano converts t to unsigned nanoseconds, clamping times before the epoch to 0.
func UnixNano(t time.Time) uint64 {
	n := t.UnixNano()
	if n < 0 {
		return 0
	}
	return uint64(n)
}

// NextMinute returns the start of the next full minute after now, in nanoseconds.
// A time exactly on a minute boundary expires one full minute later.
func NextMinute(now time.Time) uint64 {
	n := UnixNano(now)
	return n + (nanosPerMinute - n%nanosPerMinute)
}
