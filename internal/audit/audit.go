package audit

import (
	"fmt"
	"time"

	"github.com/liamw8lde/trainingplan/internal/config"
	"github.com/liamw8lde/trainingplan/internal/rules"
	"github.com/liamw8lde/trainingplan/internal/schedule"
)

// Finding is one audit result for a committed assignment.
type Finding struct {
	Date    time.Time
	Slot    string
	Player  string
	Message string
}

// Audit re-checks every committed assignment against the full rule set,
// then independently recomputes group sizes, rank compatibility, and
// singles repeat counts. The rank and repeat checks use the maximally
// relaxed policy bounds: anything beyond them is illegal in every tier.
func Audit(cfg *config.Config, store *schedule.Store) ([]Finding, error) {
	calendar, err := schedule.Generate(cfg)
	if err != nil {
		return nil, err
	}

	var findings []Finding
	rctx := &rules.Context{Store: store, Cfg: cfg, Calendar: calendar}

	for _, e := range store.Entries() {
		slot := schedule.Slot{Date: e.Date, Code: e.Code}
		for _, p := range e.Players {
			for _, v := range rules.Check(rctx, p, slot) {
				findings = append(findings, Finding{
					Date:    v.Date,
					Slot:    v.Slot,
					Player:  v.Player,
					Message: v.Message,
				})
			}
		}
	}

	findings = append(findings, checkGroupSizes(store)...)
	findings = append(findings, checkRankBounds(cfg, store)...)
	findings = append(findings, checkRepeatCounts(cfg, store)...)

	return findings, nil
}

// checkGroupSizes confirms the atomic-commit contract: every entry has
// exactly 2 players for singles, 4 for doubles.
func checkGroupSizes(store *schedule.Store) []Finding {
	var findings []Finding
	for _, e := range store.Entries() {
		want := e.Code.Type.PlayerCount()
		if len(e.Players) != want {
			findings = append(findings, Finding{
				Date: e.Date,
				Slot: e.Code.String(),
				Message: fmt.Sprintf("%s match has %d players, want %d",
					e.Code.Type, len(e.Players), want),
			})
		}
	}
	return findings
}

func checkRankBounds(cfg *config.Config, store *schedule.Store) []Finding {
	maxGap := cfg.Policy.SinglesRankGap + cfg.Policy.RelaxRankBy
	maxSpread := cfg.Policy.DoublesRankSpread + cfg.Policy.RelaxRankBy

	var findings []Finding
	for _, e := range store.Entries() {
		lo, hi := 0, 0
		ranked := 0
		for _, name := range e.Players {
			p := cfg.PlayerByName(name)
			if p == nil || p.Unranked() {
				continue
			}
			if ranked == 0 {
				lo, hi = p.Rank, p.Rank
			} else {
				if p.Rank < lo {
					lo = p.Rank
				}
				if p.Rank > hi {
					hi = p.Rank
				}
			}
			ranked++
		}
		if ranked < 2 {
			continue
		}
		spread := hi - lo

		switch e.Code.Type {
		case schedule.Singles:
			if spread > maxGap {
				findings = append(findings, Finding{
					Date: e.Date,
					Slot: e.Code.String(),
					Message: fmt.Sprintf("singles rank gap %d exceeds limit %d (%s)",
						spread, maxGap, playerList(e)),
				})
			}
		case schedule.Doubles:
			if spread > maxSpread {
				findings = append(findings, Finding{
					Date: e.Date,
					Slot: e.Code.String(),
					Message: fmt.Sprintf("doubles rank spread %d exceeds limit %d (%s)",
						spread, maxSpread, playerList(e)),
				})
			}
		}
	}
	return findings
}

func checkRepeatCounts(cfg *config.Config, store *schedule.Store) []Finding {
	limit := cfg.Policy.RepeatLimit + cfg.Policy.RelaxRepeatBy

	type pair struct{ a, b string }
	reported := make(map[pair]bool)

	var findings []Finding
	for _, e := range store.Entries() {
		if e.Code.Type != schedule.Singles || len(e.Players) != 2 {
			continue
		}
		a, b := e.Players[0], e.Players[1]
		if a > b {
			a, b = b, a
		}
		if reported[pair{a, b}] {
			continue
		}
		if count := store.PairCount(a, b); count > limit {
			reported[pair{a, b}] = true
			findings = append(findings, Finding{
				Date: e.Date,
				Slot: e.Code.String(),
				Message: fmt.Sprintf("%s and %s have played %d singles matches (limit %d)",
					a, b, count, limit),
			})
		}
	}
	return findings
}

func playerList(e schedule.Entry) string {
	s := ""
	for i, p := range e.Players {
		if i > 0 {
			s += ", "
		}
		s += p
	}
	return s
}
