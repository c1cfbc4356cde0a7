package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MatchType is the kind of match a slot hosts.
type MatchType string

const (
	Singles MatchType = "singles"
	Doubles MatchType = "doubles"
)

// PlayerCount returns the exact number of players a match of this type takes.
func (m MatchType) PlayerCount() int {
	if m == Doubles {
		return 4
	}
	return 2
}

// SlotCode is the parsed form of a template slot code such as
// "E20:00-60 PLA": match-type letter, start time, duration in minutes,
// and court identifier.
type SlotCode struct {
	Type    MatchType
	Start   string // "20:00"
	Minutes int
	Court   string // "PLA" or "PLB"
}

// ParseSlotCode parses the textual grammar <E|D><HH:MM>-<minutes> PL<A|B>.
func ParseSlotCode(code string) (SlotCode, error) {
	if code == "" {
		return SlotCode{}, fmt.Errorf("empty slot code")
	}

	var mt MatchType
	switch code[0] {
	case 'E':
		mt = Singles
	case 'D':
		mt = Doubles
	default:
		return SlotCode{}, fmt.Errorf("slot code %q: match type must be E or D", code)
	}

	start, rest, ok := strings.Cut(code[1:], "-")
	if !ok {
		return SlotCode{}, fmt.Errorf("slot code %q: missing duration separator", code)
	}
	if _, err := time.Parse("15:04", start); err != nil {
		return SlotCode{}, fmt.Errorf("slot code %q: invalid start time %q", code, start)
	}

	minStr, court, ok := strings.Cut(rest, " ")
	if !ok {
		return SlotCode{}, fmt.Errorf("slot code %q: missing court", code)
	}
	minutes, err := strconv.Atoi(minStr)
	if err != nil || minutes <= 0 {
		return SlotCode{}, fmt.Errorf("slot code %q: invalid duration %q", code, minStr)
	}

	if court != "PLA" && court != "PLB" {
		return SlotCode{}, fmt.Errorf("slot code %q: invalid court %q", code, court)
	}

	return SlotCode{Type: mt, Start: start, Minutes: minutes, Court: court}, nil
}

// String renders the canonical code text; parsing it back yields an equal value.
func (c SlotCode) String() string {
	letter := "E"
	if c.Type == Doubles {
		letter = "D"
	}
	return fmt.Sprintf("%s%s-%d %s", letter, c.Start, c.Minutes, c.Court)
}
