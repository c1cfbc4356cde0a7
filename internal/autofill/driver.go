package autofill

import (
	"fmt"
	"time"

	"github.com/liamw8lde/trainingplan/internal/config"
	"github.com/liamw8lde/trainingplan/internal/rules"
	"github.com/liamw8lde/trainingplan/internal/schedule"
)

// Options controls one autopopulation run.
type Options struct {
	MaxFill   int  // stop after this many commits; 0 means no cap
	LegalOnly bool // re-verify zero violations before every commit
}

// FilledSlot records one committed assignment and the relaxation tier that
// produced it (0 = base policy).
type FilledSlot struct {
	Entry schedule.Entry
	Tier  int
}

// SkippedSlot records a slot the run could not fill. Skips are expected
// outcomes, enumerated for manual follow-up.
type SkippedSlot struct {
	Date   time.Time
	Code   string
	Reason string
}

// Report is the outcome of one run.
type Report struct {
	Filled  []FilledSlot
	Skipped []SkippedSlot
}

// Run fills empty slots in generation order, committing each accepted
// group before moving to the next slot. Commits are strictly sequential;
// every selection sees the state left by all earlier commits. An
// unfillable slot is recorded and the run continues. Only a malformed
// season template is an error.
func Run(cfg *config.Config, store *schedule.Store, opts Options) (*Report, error) {
	calendar, err := schedule.Generate(cfg)
	if err != nil {
		return nil, err
	}
	empty := schedule.EmptySlots(calendar, store)

	ctx := &Context{Cfg: cfg, Store: store, Calendar: calendar}
	report := &Report{}
	filled := 0

	atCap := func() bool {
		return opts.MaxFill > 0 && filled >= opts.MaxFill
	}

	for i, slot := range empty {
		if atCap() {
			break
		}
		// A cascade earlier in the run may have taken this slot.
		if store.Filled(slot.Date, slot.Code.String()) {
			continue
		}

		sel, ok := Select(ctx, slot, "")
		if !ok {
			report.Skipped = append(report.Skipped, SkippedSlot{
				Date:   slot.Date,
				Code:   slot.Code.String(),
				Reason: "no legal player combination",
			})
			continue
		}

		entry := schedule.Entry{Date: slot.Date, Code: slot.Code, Players: sel.Players}

		if opts.LegalOnly {
			if v := verifyGroup(ctx, slot, entry); len(v) > 0 {
				report.Skipped = append(report.Skipped, SkippedSlot{
					Date:   slot.Date,
					Code:   slot.Code.String(),
					Reason: fmt.Sprintf("selection failed re-check: %s", v[0].Message),
				})
				continue
			}
		}

		if err := store.Add(entry); err != nil {
			return nil, fmt.Errorf("committing slot: %w", err)
		}
		filled++
		report.Filled = append(report.Filled, FilledSlot{Entry: entry, Tier: sel.Tier})

		cascadeTravel(ctx, entry, empty[i+1:], opts, report, &filled)
	}

	return report, nil
}

// verifyGroup simulates the full group against the live store and checks
// every member. This guards the only-legal mode against drift between the
// per-player scoring simulation and the real post-commit state.
func verifyGroup(ctx *Context, slot schedule.Slot, entry schedule.Entry) []rules.Violation {
	whatIf := ctx.Store.Probe(entry)
	rctx := &rules.Context{Store: whatIf, Cfg: ctx.Cfg, Calendar: ctx.Calendar}
	var all []rules.Violation
	for _, p := range entry.Players {
		all = append(all, rules.Check(rctx, p, slot)...)
	}
	return all
}

// cascadeTravel performs the one-level co-travel fill: for every committed
// player whose travel partner has no assignment on that date yet, it tries
// the remaining pending slots at the same date and time with a selection
// forced to include the partner. Cascaded commits count against the
// max-fill budget. It never chains partner-of-partner lookups.
func cascadeTravel(ctx *Context, committed schedule.Entry, pending []schedule.Slot, opts Options, report *Report, filled *int) {
	for _, player := range committed.Players {
		if opts.MaxFill > 0 && *filled >= opts.MaxFill {
			break
		}
		partner := ctx.Cfg.TravelPartner(player)
		if partner == "" || committed.Has(partner) {
			continue
		}
		if len(ctx.Store.StartsOn(partner, committed.Date)) > 0 {
			continue
		}

		for _, next := range pending {
			if !next.Date.Equal(committed.Date) || next.Code.Start != committed.Code.Start {
				continue
			}
			if ctx.Store.Filled(next.Date, next.Code.String()) {
				continue
			}

			sel, ok := Select(ctx, next, partner)
			if !ok {
				continue
			}
			entry := schedule.Entry{Date: next.Date, Code: next.Code, Players: sel.Players}
			if opts.LegalOnly && len(verifyGroup(ctx, next, entry)) > 0 {
				continue
			}
			if err := ctx.Store.Add(entry); err != nil {
				continue
			}
			(*filled)++
			report.Filled = append(report.Filled, FilledSlot{Entry: entry, Tier: sel.Tier})
			break
		}
	}
}
