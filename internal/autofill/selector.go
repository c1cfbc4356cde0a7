package autofill

import (
	"sort"

	"github.com/liamw8lde/trainingplan/internal/config"
	"github.com/liamw8lde/trainingplan/internal/rules"
	"github.com/liamw8lde/trainingplan/internal/schedule"
)

// Context is the live state a selection reads: current schedule, roster,
// and the full season calendar.
type Context struct {
	Cfg      *config.Config
	Store    *schedule.Store
	Calendar []schedule.Slot
}

// Selection is a chosen player group and the relaxation tier that produced
// it. Tier 0 is the base policy; higher tiers relaxed a bound.
type Selection struct {
	Players []string
	Tier    int
}

// travelBoost is large enough to dominate every fairness count, so the
// second half of a travel pair is always picked first to complete it.
const travelBoost = -1000.0

type candidate struct {
	name        string
	player      *config.Player
	illegal     bool
	boost       float64
	seasonCount int
	weekCount   int
	sortRank    int // rank 1..6; unranked sorts last as 7
}

// scoreCandidates builds the ordered candidate list for a slot. Players
// whose type preference categorically excludes the slot's match type are
// dropped before sorting. The sort key is the composite chain: violation
// flag, boosts, season count, week count, rank, name.
func scoreCandidates(ctx *Context, slot schedule.Slot) []candidate {
	var cands []candidate
	for i := range ctx.Cfg.Players {
		p := &ctx.Cfg.Players[i]
		if p.Preference == config.PrefSinglesOnly && slot.Code.Type == schedule.Doubles {
			continue
		}
		if p.Preference == config.PrefDoublesOnly && slot.Code.Type == schedule.Singles {
			continue
		}

		whatIf := ctx.Store.Probe(schedule.Entry{
			Date:    slot.Date,
			Code:    slot.Code,
			Players: []string{p.Name},
		})
		violations := rules.Check(&rules.Context{Store: whatIf, Cfg: ctx.Cfg, Calendar: ctx.Calendar}, p.Name, slot)

		c := candidate{
			name:        p.Name,
			player:      p,
			illegal:     len(violations) > 0,
			seasonCount: ctx.Store.SeasonCount(p.Name),
			weekCount:   ctx.Store.WeekCount(p.Name, slot.Date),
			sortRank:    p.Rank,
		}
		if c.sortRank == 0 {
			c.sortRank = 7
		}

		if partner := ctx.Cfg.TravelPartner(p.Name); partner != "" {
			if ctx.Store.AtTimeCount(partner, slot.Date, slot.Code.Start) > 0 {
				c.boost += travelBoost
			}
		}
		if deficit := p.SeasonTarget - c.seasonCount; p.SeasonTarget > 0 && deficit > 0 {
			c.boost -= float64(deficit)
		}

		cands = append(cands, c)
	}

	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.illegal != b.illegal {
			return !a.illegal
		}
		if a.boost != b.boost {
			return a.boost < b.boost
		}
		if a.seasonCount != b.seasonCount {
			return a.seasonCount < b.seasonCount
		}
		if a.weekCount != b.weekCount {
			return a.weekCount < b.weekCount
		}
		if a.sortRank != b.sortRank {
			return a.sortRank < b.sortRank
		}
		return a.name < b.name
	})

	return cands
}

// Select picks a legal group for the slot, or reports failure. If required
// is non-empty, only groups containing that player are considered (used by
// the co-travel cascade).
func Select(ctx *Context, slot schedule.Slot, required string) (Selection, bool) {
	cands := scoreCandidates(ctx, slot)
	if slot.Code.Type == schedule.Singles {
		return selectSingles(ctx, cands, required)
	}
	return selectDoubles(ctx, cands, required)
}

// rankCompatible reports whether two ranks are within the gap. An unranked
// player (rank 0) is compatible with anyone.
func rankCompatible(a, b, gap int) bool {
	if a == 0 || b == 0 {
		return true
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff <= gap
}

// selectSingles scans the legal prefix of the sorted candidates. The scan
// considers only candidates before the first violation-flagged one. Tiers:
// base bounds, then +1 allowed repeat, then +1 rank gap.
func selectSingles(ctx *Context, cands []candidate, required string) (Selection, bool) {
	var prefix []candidate
	for _, c := range cands {
		if c.illegal {
			break
		}
		prefix = append(prefix, c)
	}

	pol := ctx.Cfg.Policy
	tiers := []struct{ gap, limit int }{
		{pol.SinglesRankGap, pol.RepeatLimit},
		{pol.SinglesRankGap, pol.RepeatLimit + pol.RelaxRepeatBy},
		{pol.SinglesRankGap + pol.RelaxRankBy, pol.RepeatLimit},
	}

	for tier, t := range tiers {
		for i := 0; i < len(prefix); i++ {
			for j := i + 1; j < len(prefix); j++ {
				a, b := prefix[i], prefix[j]
				if required != "" && a.name != required && b.name != required {
					continue
				}
				if !rankCompatible(a.player.Rank, b.player.Rank, t.gap) {
					continue
				}
				if ctx.Store.PairCount(a.name, b.name) >= t.limit {
					continue
				}
				return Selection{Players: []string{a.name, b.name}, Tier: tier}, true
			}
		}
	}
	return Selection{}, false
}

// selectDoubles fills four seats from the legal candidates: preferred
// partners first, then boost order under the rank-spread bound. Unranked
// players are accepted unconditionally. The final team spread is
// re-validated; on rejection the bound relaxes by one and the whole
// selection retries once.
func selectDoubles(ctx *Context, cands []candidate, required string) (Selection, bool) {
	var legal []candidate
	for _, c := range cands {
		if !c.illegal {
			legal = append(legal, c)
		}
	}
	if len(legal) < 4 {
		return Selection{}, false
	}

	pol := ctx.Cfg.Policy
	spreads := []int{pol.DoublesRankSpread, pol.DoublesRankSpread + pol.RelaxRankBy}

	for tier, spread := range spreads {
		if team := buildDoublesTeam(ctx, legal, spread, required); team != nil {
			return Selection{Players: team, Tier: tier}, true
		}
	}
	return Selection{}, false
}

func buildDoublesTeam(ctx *Context, legal []candidate, spread int, required string) []string {
	byName := make(map[string]candidate, len(legal))
	for _, c := range legal {
		byName[c.name] = c
	}

	var team []candidate
	selected := make(map[string]bool)
	addOne := func(c candidate) {
		team = append(team, c)
		selected[c.name] = true
	}

	if required != "" {
		c, ok := byName[required]
		if !ok {
			return nil
		}
		addOne(c)
	}

	// Preferred partners ride together when both are legal.
	for _, c := range legal {
		if len(team) > 2 {
			break
		}
		if selected[c.name] || c.player.Partner == "" {
			continue
		}
		mate, ok := byName[c.player.Partner]
		if !ok || selected[mate.name] {
			continue
		}
		addOne(c)
		addOne(mate)
	}

	for _, c := range legal {
		if len(team) == 4 {
			break
		}
		if selected[c.name] {
			continue
		}
		if !spreadAllows(team, c, spread) {
			continue
		}
		addOne(c)
	}

	if len(team) != 4 {
		return nil
	}
	if teamSpread(team) > spread {
		return nil
	}

	names := make([]string, 4)
	for i, c := range team {
		names[i] = c.name
	}
	return names
}

// spreadAllows reports whether adding the candidate keeps the rank spread
// within the bound. Unranked candidates cannot be rank-checked and are
// always allowed.
func spreadAllows(team []candidate, c candidate, spread int) bool {
	if c.player.Rank == 0 {
		return true
	}
	lo, hi := c.player.Rank, c.player.Rank
	for _, m := range team {
		if m.player.Rank == 0 {
			continue
		}
		if m.player.Rank < lo {
			lo = m.player.Rank
		}
		if m.player.Rank > hi {
			hi = m.player.Rank
		}
	}
	return hi-lo <= spread
}

// teamSpread returns max minus min rank across ranked members.
func teamSpread(team []candidate) int {
	lo, hi := 0, 0
	first := true
	for _, m := range team {
		if m.player.Rank == 0 {
			continue
		}
		if first {
			lo, hi = m.player.Rank, m.player.Rank
			first = false
			continue
		}
		if m.player.Rank < lo {
			lo = m.player.Rank
		}
		if m.player.Rank > hi {
			hi = m.player.Rank
		}
	}
	return hi - lo
}
