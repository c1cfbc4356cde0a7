package rules

import (
	"fmt"
	"strings"

	"github.com/liamw8lde/trainingplan/internal/config"
	"github.com/liamw8lde/trainingplan/internal/schedule"
)

// EligibilityRule is one data-defined per-player exception: a predicate
// over players paired with a predicate over slots. A rule is violated when
// it applies to the player but does not allow the slot.
type EligibilityRule struct {
	Applies  func(p *config.Player) bool
	Allows   func(s schedule.Slot) bool
	Describe string
}

// CustomRules builds the eligibility rule list from the configured
// restriction tables. The rule set is data, not code: adding a new
// exception means adding a config entry, not a conditional.
func CustomRules(cfg *config.Config) []EligibilityRule {
	var rules []EligibilityRule

	for _, r := range cfg.Restrictions.OnlyTimes {
		name, times := r.Player, r.Times
		rules = append(rules, EligibilityRule{
			Applies: func(p *config.Player) bool { return p.Name == name },
			Allows: func(s schedule.Slot) bool {
				for _, t := range times {
					if s.Code.Start == t {
						return true
					}
				}
				return false
			},
			Describe: fmt.Sprintf("only plays at %s", strings.Join(times, ", ")),
		})
	}

	for _, r := range cfg.Restrictions.OnlyWeekdays {
		name, weekdays := r.Player, r.Weekdays
		rules = append(rules, EligibilityRule{
			Applies: func(p *config.Player) bool { return p.Name == name },
			Allows: func(s schedule.Slot) bool {
				for _, w := range weekdays {
					if d, err := config.ParseWeekday(w); err == nil && d == s.Date.Weekday() {
						return true
					}
				}
				return false
			},
			Describe: fmt.Sprintf("only plays on %s", strings.Join(weekdays, ", ")),
		})
	}

	for _, r := range cfg.Restrictions.WeekdayTimes {
		name, weekday, start := r.Player, r.Weekday, r.Time
		rules = append(rules, EligibilityRule{
			Applies: func(p *config.Player) bool { return p.Name == name },
			Allows: func(s schedule.Slot) bool {
				d, err := config.ParseWeekday(weekday)
				if err != nil || d != s.Date.Weekday() {
					return true // restriction only binds on its weekday
				}
				return s.Code.Start == start
			},
			Describe: fmt.Sprintf("on %s only plays at %s", weekday, start),
		})
	}

	return rules
}
