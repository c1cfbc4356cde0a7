package schedule

import (
	"fmt"
	"time"
)

// Entry is one committed assignment: a slot bound to its full player set.
type Entry struct {
	Date    time.Time
	Code    SlotCode
	Players []string
}

// Weekday returns the entry's weekday, derived from its date.
func (e Entry) Weekday() time.Weekday {
	return e.Date.Weekday()
}

// Has reports whether the player is part of this entry.
func (e Entry) Has(player string) bool {
	for _, p := range e.Players {
		if p == player {
			return true
		}
	}
	return false
}

type weekKey struct {
	player string
	year   int
	week   int
}

type monthKey struct {
	player string
	year   int
	month  time.Month
}

type dayKey struct {
	player string
	date   time.Time
}

type atTimeKey struct {
	player string
	date   time.Time
	start  string
}

type startKey struct {
	player string
	start  string
}

type pairKey struct {
	a, b string
}

func normalizePair(a, b string) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

type filledKey struct {
	date time.Time
	code string
}

// Store holds the season's committed assignments plus derived per-player
// counters. The counters are owned exclusively by the store and rebuilt on
// every mutation, so reads always reflect the current entry set.
type Store struct {
	entries []Entry

	filled      map[filledKey]bool
	seasonCount map[string]int
	weekCount   map[weekKey]int
	monthCount  map[monthKey]int
	dayCount    map[dayKey]int
	atTime      map[atTimeKey]int
	startCount  map[startKey]int
	pairCount   map[pairKey]int
}

// NewStore returns an empty schedule store.
func NewStore() *Store {
	s := &Store{}
	s.rebuild()
	return s
}

// Add commits an entry atomically: the full player set or nothing. The
// player count must match the slot's match type and the slot must not
// already be filled.
func (s *Store) Add(e Entry) error {
	want := e.Code.Type.PlayerCount()
	if len(e.Players) != want {
		return fmt.Errorf("slot %s on %s: %d players for a %s match, want %d",
			e.Code, e.Date.Format("2006-01-02"), len(e.Players), e.Code.Type, want)
	}
	seen := make(map[string]bool)
	for _, p := range e.Players {
		if p == "" {
			return fmt.Errorf("slot %s on %s: empty player name", e.Code, e.Date.Format("2006-01-02"))
		}
		if seen[p] {
			return fmt.Errorf("slot %s on %s: player %q listed twice", e.Code, e.Date.Format("2006-01-02"), p)
		}
		seen[p] = true
	}
	if s.filled[filledKey{e.Date, e.Code.String()}] {
		return fmt.Errorf("slot %s on %s is already filled", e.Code, e.Date.Format("2006-01-02"))
	}

	s.entries = append(s.entries, e)
	s.rebuild()
	return nil
}

// Entries returns the committed assignments in commit order. The returned
// slice must not be mutated.
func (s *Store) Entries() []Entry {
	return s.entries
}

// Len returns the number of committed assignments.
func (s *Store) Len() int {
	return len(s.entries)
}

// Filled reports whether the slot identified by (date, code) is taken.
func (s *Store) Filled(date time.Time, code string) bool {
	return s.filled[filledKey{date, code}]
}

// Probe returns a copy of the store with the entry appended and counters
// rebuilt, skipping the group-size check. It exists for what-if rule
// evaluation of partial candidate groups; committed schedules only ever
// grow through Add.
func (s *Store) Probe(e Entry) *Store {
	c := s.Clone()
	c.entries = append(c.entries, e)
	c.rebuild()
	return c
}

// Clone returns an independent copy, used for what-if checks.
func (s *Store) Clone() *Store {
	c := &Store{entries: make([]Entry, len(s.entries))}
	for i, e := range s.entries {
		players := make([]string, len(e.Players))
		copy(players, e.Players)
		c.entries[i] = Entry{Date: e.Date, Code: e.Code, Players: players}
	}
	c.rebuild()
	return c
}

// SeasonCount returns the player's total committed matches.
func (s *Store) SeasonCount(player string) int {
	return s.seasonCount[player]
}

// WeekCount returns the player's matches in the ISO week containing date.
func (s *Store) WeekCount(player string, date time.Time) int {
	y, w := date.ISOWeek()
	return s.weekCount[weekKey{player, y, w}]
}

// MonthCount returns the player's matches in the calendar month of date.
func (s *Store) MonthCount(player string, date time.Time) int {
	return s.monthCount[monthKey{player, date.Year(), date.Month()}]
}

// DayCount returns the player's matches on the given date.
func (s *Store) DayCount(player string, date time.Time) int {
	return s.dayCount[dayKey{player, date}]
}

// AtTimeCount returns how many entries have the player at the exact
// date and start time.
func (s *Store) AtTimeCount(player string, date time.Time, start string) int {
	return s.atTime[atTimeKey{player, date, start}]
}

// StartCount returns the player's season matches at a given start time,
// across all dates.
func (s *Store) StartCount(player, start string) int {
	return s.startCount[startKey{player, start}]
}

// StartsOn returns the start times of the player's entries on a date.
func (s *Store) StartsOn(player string, date time.Time) []string {
	var starts []string
	for _, e := range s.entries {
		if e.Date.Equal(date) && e.Has(player) {
			starts = append(starts, e.Code.Start)
		}
	}
	return starts
}

// PairCount returns how many singles matches the unordered pair has played.
func (s *Store) PairCount(a, b string) int {
	return s.pairCount[normalizePair(a, b)]
}

func (s *Store) rebuild() {
	s.filled = make(map[filledKey]bool)
	s.seasonCount = make(map[string]int)
	s.weekCount = make(map[weekKey]int)
	s.monthCount = make(map[monthKey]int)
	s.dayCount = make(map[dayKey]int)
	s.atTime = make(map[atTimeKey]int)
	s.startCount = make(map[startKey]int)
	s.pairCount = make(map[pairKey]int)

	for _, e := range s.entries {
		s.filled[filledKey{e.Date, e.Code.String()}] = true
		y, w := e.Date.ISOWeek()
		for _, p := range e.Players {
			s.seasonCount[p]++
			s.weekCount[weekKey{p, y, w}]++
			s.monthCount[monthKey{p, e.Date.Year(), e.Date.Month()}]++
			s.dayCount[dayKey{p, e.Date}]++
			s.atTime[atTimeKey{p, e.Date, e.Code.Start}]++
			s.startCount[startKey{p, e.Code.Start}]++
		}
		if e.Code.Type == Singles && len(e.Players) == 2 {
			s.pairCount[normalizePair(e.Players[0], e.Players[1])]++
		}
	}
}
