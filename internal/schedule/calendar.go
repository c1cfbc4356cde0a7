package schedule

import (
	"fmt"
	"time"

	"github.com/liamw8lde/trainingplan/internal/config"
)

// Slot is one schedulable opportunity: a date plus its template slot code.
// Identity is (Date, Code.String()).
type Slot struct {
	Date time.Time
	Code SlotCode
}

// Generate builds the full chronological slot list for the season: every
// date in range whose weekday has template codes, skipping season blackout
// dates. Within a day, slots appear in template order. The function is pure
// and idempotent; a malformed template code is a fatal error.
func Generate(cfg *config.Config) ([]Slot, error) {
	blackout := make(map[time.Time]bool)
	for _, b := range cfg.Season.BlackoutDates {
		blackout[b.Date.Time] = true
	}

	var slots []Slot
	d := cfg.Season.StartDate.Time
	for !d.After(cfg.Season.EndDate.Time) {
		if blackout[d] {
			d = d.AddDate(0, 0, 1)
			continue
		}
		for _, raw := range cfg.Template.For(d.Weekday()) {
			code, err := ParseSlotCode(raw)
			if err != nil {
				return nil, fmt.Errorf("template for %s: %w", d.Weekday(), err)
			}
			slots = append(slots, Slot{Date: d, Code: code})
		}
		d = d.AddDate(0, 0, 1)
	}

	return slots, nil
}

// EmptySlots subtracts slots already filled in the store from the calendar,
// preserving generation order.
func EmptySlots(calendar []Slot, store *Store) []Slot {
	var empty []Slot
	for _, s := range calendar {
		if !store.Filled(s.Date, s.Code.String()) {
			empty = append(empty, s)
		}
	}
	return empty
}
