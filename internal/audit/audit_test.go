package audit

import (
	"strings"
	"testing"
	"time"

	"github.com/liamw8lde/trainingplan/internal/config"
	"github.com/liamw8lde/trainingplan/internal/schedule"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func mustCode(t *testing.T, s string) schedule.SlotCode {
	t.Helper()
	code, err := schedule.ParseSlotCode(s)
	if err != nil {
		t.Fatal(err)
	}
	return code
}

func addEntry(t *testing.T, s *schedule.Store, d time.Time, code schedule.SlotCode, players ...string) {
	t.Helper()
	if err := s.Add(schedule.Entry{Date: d, Code: code, Players: players}); err != nil {
		t.Fatal(err)
	}
}

func auditConfig(players ...config.Player) *config.Config {
	return &config.Config{
		Season: config.Season{
			StartDate: config.Date{Time: date(2026, time.January, 1)},
			EndDate:   config.Date{Time: date(2026, time.February, 28)},
		},
		Template: config.WeekTemplate{
			Monday:  []string{"D20:00-60 PLA"},
			Tuesday: []string{"E19:00-60 PLA"},
		},
		Policy: config.Policy{
			SinglesRankGap:    2,
			DoublesRankSpread: 3,
			RepeatLimit:       2,
			RelaxRankBy:       1,
			RelaxRepeatBy:     1,
		},
		Players: players,
	}
}

func TestAuditCleanSchedule(t *testing.T) {
	cfg := auditConfig(
		config.Player{Name: "Anna", Rank: 2},
		config.Player{Name: "Ben", Rank: 2},
	)
	store := schedule.NewStore()
	addEntry(t, store, date(2026, time.January, 6), mustCode(t, "E19:00-60 PLA"), "Anna", "Ben")

	findings, err := Audit(cfg, store)
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 0 {
		t.Errorf("clean schedule has findings: %v", findings)
	}
}

func TestAuditRechecksRules(t *testing.T) {
	cfg := auditConfig(
		config.Player{Name: "Anna", Rank: 2, Vacations: []config.Vacation{
			{Date: &config.Date{Time: date(2026, time.January, 6)}, Reason: "away"},
		}},
		config.Player{Name: "Ben", Rank: 2},
	)
	store := schedule.NewStore()
	addEntry(t, store, date(2026, time.January, 6), mustCode(t, "E19:00-60 PLA"), "Anna", "Ben")

	findings, err := Audit(cfg, store)
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) == 0 {
		t.Fatal("vacation conflict not reported")
	}
	found := false
	for _, f := range findings {
		if f.Player == "Anna" {
			found = true
		}
	}
	if !found {
		t.Errorf("findings name nobody on vacation: %v", findings)
	}
}

func TestAuditGroupSizes(t *testing.T) {
	cfg := auditConfig(
		config.Player{Name: "Anna", Rank: 2},
		config.Player{Name: "Ben", Rank: 2},
		config.Player{Name: "Carla", Rank: 2},
	)
	// A three-player doubles entry cannot be committed through Add, so
	// simulate the corrupt state via Probe.
	store := schedule.NewStore().Probe(schedule.Entry{
		Date:    date(2026, time.January, 5),
		Code:    mustCode(t, "D20:00-60 PLA"),
		Players: []string{"Anna", "Ben", "Carla"},
	})

	findings, err := Audit(cfg, store)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, f := range findings {
		if strings.Contains(f.Message, "has 3 players, want 4") {
			found = true
		}
	}
	if !found {
		t.Errorf("group size defect not reported: %v", findings)
	}
}

func TestAuditRankBounds(t *testing.T) {
	t.Run("singles gap beyond every tier", func(t *testing.T) {
		cfg := auditConfig(
			config.Player{Name: "Anna", Rank: 1},
			config.Player{Name: "Walter", Rank: 6},
		)
		store := schedule.NewStore()
		addEntry(t, store, date(2026, time.January, 6), mustCode(t, "E19:00-60 PLA"), "Anna", "Walter")

		findings, err := Audit(cfg, store)
		if err != nil {
			t.Fatal(err)
		}
		found := false
		for _, f := range findings {
			if strings.Contains(f.Message, "rank gap 5 exceeds limit 3") {
				found = true
			}
		}
		if !found {
			t.Errorf("rank gap defect not reported: %v", findings)
		}
	})

	t.Run("unranked players are exempt", func(t *testing.T) {
		cfg := auditConfig(
			config.Player{Name: "Anna", Rank: 1},
			config.Player{Name: "Uwe", Rank: 0},
		)
		store := schedule.NewStore()
		addEntry(t, store, date(2026, time.January, 6), mustCode(t, "E19:00-60 PLA"), "Anna", "Uwe")

		findings, err := Audit(cfg, store)
		if err != nil {
			t.Fatal(err)
		}
		if len(findings) != 0 {
			t.Errorf("unranked pairing reported: %v", findings)
		}
	})
}

func TestAuditRepeatCounts(t *testing.T) {
	cfg := auditConfig(
		config.Player{Name: "Anna", Rank: 2},
		config.Player{Name: "Ben", Rank: 2},
	)
	code := mustCode(t, "E19:00-60 PLA")
	store := schedule.NewStore()
	addEntry(t, store, date(2026, time.January, 6), code, "Anna", "Ben")
	addEntry(t, store, date(2026, time.January, 13), code, "Anna", "Ben")
	addEntry(t, store, date(2026, time.January, 20), code, "Anna", "Ben")
	addEntry(t, store, date(2026, time.January, 27), code, "Anna", "Ben")

	findings, err := Audit(cfg, store)
	if err != nil {
		t.Fatal(err)
	}
	repeat := 0
	for _, f := range findings {
		if strings.Contains(f.Message, "singles matches") {
			repeat++
		}
	}
	if repeat != 1 {
		t.Errorf("repeat defect reported %d times, want exactly once: %v", repeat, findings)
	}
}
