package rules

import (
	"fmt"
	"time"

	"github.com/liamw8lde/trainingplan/internal/config"
	"github.com/liamw8lde/trainingplan/internal/schedule"
)

// Kind identifies a class of rule violation.
type Kind int

const (
	DoubleBooked Kind = iota
	DailyLimit
	WeeklyLimit
	Vacation
	WeekdayUnavailable
	CustomRule
	TimeShare
	SinglesBanned
	SlotBanned
	TravelPairTime
	MonthlyCap
	SeasonCap
	TypePreference
)

func (k Kind) String() string {
	switch k {
	case DoubleBooked:
		return "double_booked"
	case DailyLimit:
		return "daily_limit"
	case WeeklyLimit:
		return "weekly_limit"
	case Vacation:
		return "vacation"
	case WeekdayUnavailable:
		return "weekday_unavailable"
	case CustomRule:
		return "custom_rule"
	case TimeShare:
		return "time_share"
	case SinglesBanned:
		return "singles_banned"
	case SlotBanned:
		return "slot_banned"
	case TravelPairTime:
		return "travel_pair_time"
	case MonthlyCap:
		return "monthly_cap"
	case SeasonCap:
		return "season_cap"
	case TypePreference:
		return "type_preference"
	}
	return "unknown"
}

// Violation is one structured rule violation.
type Violation struct {
	Kind    Kind
	Player  string
	Date    time.Time
	Slot    string
	Message string
}

// Context carries the state a check reads: the what-if schedule (already
// including the candidate assignment), the roster/policy config, and the
// season calendar for co-travel feasibility probing.
type Context struct {
	Store    *schedule.Store
	Cfg      *config.Config
	Calendar []schedule.Slot
}

// Check evaluates every rule class for one player in one candidate slot
// and returns all violations found. The store passed in the context is
// treated as ground truth and must already contain the candidate; nothing
// is mutated. All classes are evaluated, none short-circuits another.
func Check(ctx *Context, player string, slot schedule.Slot) []Violation {
	var out []Violation
	add := func(kind Kind, format string, args ...any) {
		out = append(out, Violation{
			Kind:    kind,
			Player:  player,
			Date:    slot.Date,
			Slot:    slot.Code.String(),
			Message: fmt.Sprintf(format, args...),
		})
	}

	date := slot.Date
	day := date.Format("2006-01-02")
	start := slot.Code.Start

	// Same-datetime double booking.
	if ctx.Store.AtTimeCount(player, date, start) > 1 {
		add(DoubleBooked, "%s is booked twice at %s %s", player, day, start)
	}

	// One match per calendar date.
	if ctx.Store.DayCount(player, date) > 1 {
		add(DailyLimit, "%s plays more than once on %s", player, day)
	}

	// One match per ISO week.
	if ctx.Store.WeekCount(player, date) > 1 {
		_, week := date.ISOWeek()
		add(WeeklyLimit, "%s plays more than once in week %d", player, week)
	}

	// Season blackout dates apply to everyone regardless of roster data.
	for _, b := range ctx.Cfg.Season.BlackoutDates {
		if b.Date.Time.Equal(date) {
			add(Vacation, "%s is a blackout date (%s)", day, b.Reason)
		}
	}

	p := ctx.Cfg.PlayerByName(player)
	if p != nil {
		if away, reason := p.OnVacation(date); away {
			if reason == "" {
				reason = "vacation"
			}
			add(Vacation, "%s is away on %s (%s)", player, day, reason)
		}

		if !p.AllowsWeekday(date.Weekday()) {
			add(WeekdayUnavailable, "%s is not available on %ss", player, date.Weekday())
		}

		if p.MonthlyCap != nil && ctx.Store.MonthCount(player, date) > *p.MonthlyCap {
			add(MonthlyCap, "%s exceeds monthly cap of %d in %s %d",
				player, *p.MonthlyCap, date.Month(), date.Year())
		}

		if p.SeasonCap != nil && ctx.Store.SeasonCount(player) > *p.SeasonCap {
			add(SeasonCap, "%s exceeds season cap of %d", player, *p.SeasonCap)
		}

		switch {
		case p.Preference == config.PrefSinglesOnly && slot.Code.Type == schedule.Doubles:
			add(TypePreference, "%s plays singles only", player)
		case p.Preference == config.PrefDoublesOnly && slot.Code.Type == schedule.Singles:
			add(TypePreference, "%s plays doubles only", player)
		}
	}

	// Custom per-player eligibility rules.
	for _, rule := range CustomRules(ctx.Cfg) {
		if p != nil && rule.Applies(p) && !rule.Allows(slot) {
			add(CustomRule, "%s: %s", player, rule.Describe)
		}
	}

	checkTimeShare(ctx, player, slot, add)
	checkBans(ctx, player, slot, add)
	checkTravelPair(ctx, player, slot, add)

	return out
}

func checkTimeShare(ctx *Context, player string, slot schedule.Slot, add func(Kind, string, ...any)) {
	for _, r := range ctx.Cfg.Restrictions.TimeShares {
		if r.Player != player {
			continue
		}
		total := ctx.Store.SeasonCount(player)
		if total < r.MinMatches {
			continue
		}
		late := ctx.Store.StartCount(player, r.DisfavoredTime)
		lateShare := float64(late) / float64(total)
		favoredShare := float64(total-late) / float64(total)
		if lateShare > r.MaxShare {
			add(TimeShare, "%s has %.0f%% of matches at %s (max %.0f%%)",
				player, lateShare*100, r.DisfavoredTime, r.MaxShare*100)
		}
		if favoredShare < r.MinFavoredShare {
			add(TimeShare, "%s has only %.0f%% of matches outside %s (min %.0f%%)",
				player, favoredShare*100, r.DisfavoredTime, r.MinFavoredShare*100)
		}
	}
}

func checkBans(ctx *Context, player string, slot schedule.Slot, add func(Kind, string, ...any)) {
	if slot.Code.Type == schedule.Singles {
		for _, name := range ctx.Cfg.Restrictions.NoSingles {
			if name == player {
				add(SinglesBanned, "%s may not play singles", player)
			}
		}
	}

	for _, b := range ctx.Cfg.Restrictions.SlotBans {
		banned := false
		for _, name := range b.Players {
			if name == player {
				banned = true
				break
			}
		}
		if !banned {
			continue
		}
		if b.Type != "" && b.Type != string(slot.Code.Type) {
			continue
		}
		if b.Weekday != "" {
			if d, err := config.ParseWeekday(b.Weekday); err != nil || d != slot.Date.Weekday() {
				continue
			}
		}
		if b.Time != "" && b.Time != slot.Code.Start {
			continue
		}
		if b.Court != "" && b.Court != slot.Code.Court {
			continue
		}
		add(SlotBanned, "%s may not play %s on %s at %s on %s",
			player, slot.Code.Type, slot.Date.Weekday(), slot.Code.Start, slot.Code.Court)
	}
}

// checkTravelPair enforces that configured travel partners share the same
// match time on any date where either plays. If the partner is not yet
// assigned that date, a same-time slot must still be open for them.
func checkTravelPair(ctx *Context, player string, slot schedule.Slot, add func(Kind, string, ...any)) {
	partner := ctx.Cfg.TravelPartner(player)
	if partner == "" {
		return
	}

	starts := ctx.Store.StartsOn(partner, slot.Date)
	if len(starts) > 0 {
		for _, s := range starts {
			if s == slot.Code.Start {
				return
			}
		}
		add(TravelPairTime, "%s travels with %s, who plays at %s that day, not %s",
			player, partner, starts[0], slot.Code.Start)
		return
	}

	for _, cand := range ctx.Calendar {
		if !cand.Date.Equal(slot.Date) || cand.Code.Start != slot.Code.Start {
			continue
		}
		if cand.Code == slot.Code {
			continue
		}
		if !ctx.Store.Filled(cand.Date, cand.Code.String()) {
			return
		}
	}
	add(TravelPairTime, "%s travels with %s, but no open slot at %s %s remains for them",
		player, partner, slot.Date.Format("2006-01-02"), slot.Code.Start)
}
