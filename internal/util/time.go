package util

import (
	"fmt"
	"sync"
	"time"
)

// TimeProvider resolves dates in the configured timezone
type TimeProvider struct {
	location *time.Location
	mu       sync.RWMutex
}

var (
	globalTimeProvider *TimeProvider
	mu                 sync.Mutex
)

// LoadLocation resolves a timezone name; "" and "Local" mean time.Local.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone '%s': %w\nValid examples: Local, UTC, America/New_York, Europe/Berlin", timezone, err)
	}
	return loc, nil
}

// InitializeTimeProvider sets the global provider's timezone. The previous
// provider is kept when timezone is invalid.
func InitializeTimeProvider(timezone string) error {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	globalTimeProvider = &TimeProvider{location: loc}
	return nil
}

// GetTimeProvider returns the global provider, defaulting to Local.
func GetTimeProvider() *TimeProvider {
	mu.Lock()
	defer mu.Unlock()
	if globalTimeProvider == nil {
		globalTimeProvider = &TimeProvider{location: time.Local}
	}
	return globalTimeProvider
}

// Location returns the configured timezone
func (tp *TimeProvider) Location() *time.Location {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	return tp.location
}

// Now returns the current time in the configured timezone
func (tp *TimeProvider) Now() time.Time {
	return time.Now().In(tp.Location())
}

// In converts a time to the configured timezone
func (tp *TimeProvider) In(t time.Time) time.Time {
	return t.In(tp.Location())
}

// CurrentYear returns the calendar year in the configured timezone
func (tp *TimeProvider) CurrentYear() int {
	return tp.Now().Year()
}
