package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Date is a wrapper around time.Time for YAML date parsing.
type Date struct {
	Time time.Time
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	t, err := time.Parse("2006-01-02", value.Value)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", value.Value, err)
	}
	d.Time = t
	return nil
}

type BlackoutDate struct {
	Date   Date   `yaml:"date"`
	Reason string `yaml:"reason"`
}

type Season struct {
	StartDate     Date           `yaml:"start_date"`
	EndDate       Date           `yaml:"end_date"`
	BlackoutDates []BlackoutDate `yaml:"blackout_dates"`
}

// WeekTemplate maps each weekday to its ordered list of slot codes.
// A weekday with no codes has no practice slots.
type WeekTemplate struct {
	Monday    []string `yaml:"monday"`
	Tuesday   []string `yaml:"tuesday"`
	Wednesday []string `yaml:"wednesday"`
	Thursday  []string `yaml:"thursday"`
	Friday    []string `yaml:"friday"`
	Saturday  []string `yaml:"saturday"`
	Sunday    []string `yaml:"sunday"`
}

// For returns the slot codes for a weekday, in template order.
func (t *WeekTemplate) For(day time.Weekday) []string {
	switch day {
	case time.Monday:
		return t.Monday
	case time.Tuesday:
		return t.Tuesday
	case time.Wednesday:
		return t.Wednesday
	case time.Thursday:
		return t.Thursday
	case time.Friday:
		return t.Friday
	case time.Saturday:
		return t.Saturday
	case time.Sunday:
		return t.Sunday
	}
	return nil
}

// Vacation blocks a player for a single date or an inclusive date range.
type Vacation struct {
	Date      *Date  `yaml:"date"`
	StartDate *Date  `yaml:"start_date"`
	EndDate   *Date  `yaml:"end_date"`
	Reason    string `yaml:"reason"`
}

// Covers reports whether the vacation blocks the given date.
func (v *Vacation) Covers(d time.Time) bool {
	if v.StartDate != nil && v.EndDate != nil {
		return !d.Before(v.StartDate.Time) && !d.After(v.EndDate.Time)
	}
	if v.Date != nil {
		return v.Date.Time.Equal(d)
	}
	return false
}

// Match-type preference values.
const (
	PrefAny         = "any"
	PrefSinglesOnly = "singles_only"
	PrefDoublesOnly = "doubles_only"
)

type Player struct {
	Name         string     `yaml:"name"`
	Rank         int        `yaml:"rank"` // 1 strongest .. 6 weakest, 0 unranked
	Weekdays     []string   `yaml:"weekdays"`
	Preference   string     `yaml:"preference"`
	Vacations    []Vacation `yaml:"vacations"`
	MonthlyCap   *int       `yaml:"monthly_cap"`
	SeasonCap    *int       `yaml:"season_cap"`
	SeasonTarget int        `yaml:"season_target"`
	Partner      string     `yaml:"partner"` // preferred doubles partner
}

// Unranked reports whether the player has no skill rank.
func (p *Player) Unranked() bool {
	return p.Rank == 0
}

// AllowsWeekday reports whether the player is available on the weekday.
// An empty weekday list means unrestricted.
func (p *Player) AllowsWeekday(day time.Weekday) bool {
	if len(p.Weekdays) == 0 {
		return true
	}
	for _, w := range p.Weekdays {
		if d, err := ParseWeekday(w); err == nil && d == day {
			return true
		}
	}
	return false
}

// OnVacation reports whether any vacation entry covers the date.
func (p *Player) OnVacation(d time.Time) (bool, string) {
	for _, v := range p.Vacations {
		if v.Covers(d) {
			return true, v.Reason
		}
	}
	return false, ""
}

// TimeShareRule caps the fraction of a player's matches at a disfavored
// time once they have reached min_matches, and floors the fraction at all
// other times. Below the threshold the rule is not enforced.
type TimeShareRule struct {
	Player          string  `yaml:"player"`
	MinMatches      int     `yaml:"min_matches"`
	DisfavoredTime  string  `yaml:"disfavored_time"`
	MaxShare        float64 `yaml:"max_disfavored_share"`
	MinFavoredShare float64 `yaml:"min_favored_share"`
}

// SlotBan bars players from a match type on a specific weekday+time+court.
type SlotBan struct {
	Players []string `yaml:"players"`
	Type    string   `yaml:"type"` // "singles" or "doubles"
	Weekday string   `yaml:"weekday"`
	Time    string   `yaml:"time"`
	Court   string   `yaml:"court"`
}

type OnlyTimes struct {
	Player string   `yaml:"player"`
	Times  []string `yaml:"times"`
}

type OnlyWeekdays struct {
	Player   string   `yaml:"player"`
	Weekdays []string `yaml:"weekdays"`
}

// WeekdayTime restricts a player to a single start time on one weekday,
// leaving other weekdays unrestricted.
type WeekdayTime struct {
	Player  string `yaml:"player"`
	Weekday string `yaml:"weekday"`
	Time    string `yaml:"time"`
}

type Restrictions struct {
	NoSingles    []string        `yaml:"no_singles"`
	SlotBans     []SlotBan       `yaml:"slot_bans"`
	OnlyTimes    []OnlyTimes     `yaml:"only_times"`
	OnlyWeekdays []OnlyWeekdays  `yaml:"only_weekdays"`
	WeekdayTimes []WeekdayTime   `yaml:"weekday_times"`
	TimeShares   []TimeShareRule `yaml:"time_shares"`
}

// Policy holds the rank-compatibility bounds and relaxation-tier steps.
// These are club policy, not algorithm, so they live in configuration.
type Policy struct {
	SinglesRankGap    int `yaml:"singles_rank_gap"`
	DoublesRankSpread int `yaml:"doubles_rank_spread"`
	RepeatLimit       int `yaml:"repeat_limit"`
	RelaxRankBy       int `yaml:"relax_rank_by"`
	RelaxRepeatBy     int `yaml:"relax_repeat_by"`
}

type Config struct {
	Season       Season       `yaml:"season"`
	Template     WeekTemplate `yaml:"template"`
	Policy       Policy       `yaml:"policy"`
	Players      []Player     `yaml:"players"`
	Restrictions Restrictions `yaml:"restrictions"`
	TravelPairs  [][]string   `yaml:"travel_pairs"`
}

// PlayerByName returns the roster entry for a name, or nil.
func (c *Config) PlayerByName(name string) *Player {
	for i := range c.Players {
		if c.Players[i].Name == name {
			return &c.Players[i]
		}
	}
	return nil
}

// AllNames returns all roster names in declaration order.
func (c *Config) AllNames() []string {
	names := make([]string, len(c.Players))
	for i, p := range c.Players {
		names[i] = p.Name
	}
	return names
}

// TravelPartner returns the configured travel partner for a player, or "".
func (c *Config) TravelPartner(name string) string {
	for _, pair := range c.TravelPairs {
		if len(pair) != 2 {
			continue
		}
		if pair[0] == name {
			return pair[1]
		}
		if pair[1] == name {
			return pair[0]
		}
	}
	return ""
}

// ParseWeekday converts a lowercase English weekday name.
func ParseWeekday(s string) (time.Weekday, error) {
	switch strings.ToLower(s) {
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	case "sunday":
		return time.Sunday, nil
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}

// LoadFromBytes parses YAML bytes into a Config and validates it.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile reads and parses a YAML config file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromBytes(data)
}

func (c *Config) applyDefaults() {
	if c.Policy.SinglesRankGap == 0 {
		c.Policy.SinglesRankGap = 2
	}
	if c.Policy.DoublesRankSpread == 0 {
		c.Policy.DoublesRankSpread = 3
	}
	if c.Policy.RepeatLimit == 0 {
		c.Policy.RepeatLimit = 2
	}
	if c.Policy.RelaxRankBy == 0 {
		c.Policy.RelaxRankBy = 1
	}
	if c.Policy.RelaxRepeatBy == 0 {
		c.Policy.RelaxRepeatBy = 1
	}
}

func (c *Config) validate() error {
	if !c.Season.EndDate.Time.After(c.Season.StartDate.Time) {
		return fmt.Errorf("end date %s must be after start date %s",
			c.Season.EndDate.Time.Format("2006-01-02"),
			c.Season.StartDate.Time.Format("2006-01-02"))
	}

	hasSlots := false
	for d := time.Sunday; d <= time.Saturday; d++ {
		if len(c.Template.For(d)) > 0 {
			hasSlots = true
			break
		}
	}
	if !hasSlots {
		return fmt.Errorf("template defines no slots on any weekday")
	}

	if len(c.Players) == 0 {
		return fmt.Errorf("at least one player is required")
	}

	seen := make(map[string]bool)
	for _, p := range c.Players {
		if p.Name == "" {
			return fmt.Errorf("player with empty name")
		}
		if seen[p.Name] {
			return fmt.Errorf("player %q appears twice in the roster", p.Name)
		}
		seen[p.Name] = true

		if p.Rank < 0 || p.Rank > 6 {
			return fmt.Errorf("player %q: rank %d out of range 0-6", p.Name, p.Rank)
		}
		switch p.Preference {
		case "", PrefAny, PrefSinglesOnly, PrefDoublesOnly:
		default:
			return fmt.Errorf("player %q: invalid preference %q", p.Name, p.Preference)
		}
		for _, w := range p.Weekdays {
			if _, err := ParseWeekday(w); err != nil {
				return fmt.Errorf("player %q: %w", p.Name, err)
			}
		}
		for _, v := range p.Vacations {
			hasDate := v.Date != nil
			hasRange := v.StartDate != nil || v.EndDate != nil
			if !hasDate && !hasRange {
				return fmt.Errorf("player %q: vacation must have either 'date' or 'start_date'/'end_date'", p.Name)
			}
			if hasDate && hasRange {
				return fmt.Errorf("player %q: vacation cannot have both 'date' and 'start_date'/'end_date'", p.Name)
			}
			if hasRange && (v.StartDate == nil || v.EndDate == nil) {
				return fmt.Errorf("player %q: vacation range must have both 'start_date' and 'end_date'", p.Name)
			}
			if hasRange && v.EndDate.Time.Before(v.StartDate.Time) {
				return fmt.Errorf("player %q: vacation end_date must be on or after start_date", p.Name)
			}
		}
		if p.Partner != "" && p.Partner == p.Name {
			return fmt.Errorf("player %q: partner cannot be themselves", p.Name)
		}
	}

	for _, pair := range c.TravelPairs {
		if len(pair) != 2 {
			return fmt.Errorf("travel pair %v must have exactly two players", pair)
		}
		for _, name := range pair {
			if !seen[name] {
				return fmt.Errorf("travel pair references unknown player %q", name)
			}
		}
	}

	for _, b := range c.Restrictions.SlotBans {
		if b.Weekday != "" {
			if _, err := ParseWeekday(b.Weekday); err != nil {
				return fmt.Errorf("slot ban: %w", err)
			}
		}
		if b.Type != "" && b.Type != "singles" && b.Type != "doubles" {
			return fmt.Errorf("slot ban: invalid type %q", b.Type)
		}
	}
	for _, r := range c.Restrictions.OnlyWeekdays {
		for _, w := range r.Weekdays {
			if _, err := ParseWeekday(w); err != nil {
				return fmt.Errorf("restriction for %q: %w", r.Player, err)
			}
		}
	}
	for _, r := range c.Restrictions.WeekdayTimes {
		if _, err := ParseWeekday(r.Weekday); err != nil {
			return fmt.Errorf("restriction for %q: %w", r.Player, err)
		}
	}

	return nil
}
