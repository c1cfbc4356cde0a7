package config

import (
	"testing"
	"time"
)

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

const testConfigYAML = `
season:
  start_date: "2025-10-06"
  end_date: "2026-03-29"
  blackout_dates:
    - date: "2025-12-25"
      reason: "Christmas"
    - date: "2026-01-01"
      reason: "New Year"

template:
  monday: ["D20:00-60 PLA", "D20:00-60 PLB"]
  tuesday: ["E19:00-60 PLA"]

policy:
  singles_rank_gap: 2
  doubles_rank_spread: 3
  repeat_limit: 2
  relax_rank_by: 1
  relax_repeat_by: 1

players:
  - name: Anna Berger
    rank: 2
    weekdays: [monday, friday]
  - name: Ben Keller
    rank: 3
    preference: doubles_only
    partner: Carla Weiss
  - name: Carla Weiss
    rank: 3
    partner: Ben Keller
    season_cap: 0
  - name: David Lang
    rank: 1
    season_target: 18
    monthly_cap: 4
    vacations:
      - start_date: "2026-02-09"
        end_date: "2026-02-15"
        reason: "Ski week"
      - date: "2026-03-02"
  - name: Henrik Vogt

restrictions:
  no_singles: [Ben Keller]
  time_shares:
    - player: Anna Berger
      min_matches: 5
      disfavored_time: "20:00"
      max_disfavored_share: 0.30
      min_favored_share: 0.70
  weekday_times:
    - player: Henrik Vogt
      weekday: tuesday
      time: "19:00"

travel_pairs:
  - [Anna Berger, David Lang]
`

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(testConfigYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("season dates", func(t *testing.T) {
		if cfg.Season.StartDate.Time != mustDate("2025-10-06") {
			t.Errorf("start date = %v, want 2025-10-06", cfg.Season.StartDate.Time)
		}
		if cfg.Season.EndDate.Time != mustDate("2026-03-29") {
			t.Errorf("end date = %v, want 2026-03-29", cfg.Season.EndDate.Time)
		}
		if len(cfg.Season.BlackoutDates) != 2 {
			t.Fatalf("blackout dates = %d, want 2", len(cfg.Season.BlackoutDates))
		}
	})

	t.Run("template", func(t *testing.T) {
		if got := cfg.Template.For(time.Monday); len(got) != 2 || got[0] != "D20:00-60 PLA" {
			t.Errorf("monday template = %v", got)
		}
		if got := cfg.Template.For(time.Tuesday); len(got) != 1 || got[0] != "E19:00-60 PLA" {
			t.Errorf("tuesday template = %v", got)
		}
		if got := cfg.Template.For(time.Sunday); len(got) != 0 {
			t.Errorf("sunday template = %v, want empty", got)
		}
	})

	t.Run("policy", func(t *testing.T) {
		if cfg.Policy.SinglesRankGap != 2 {
			t.Errorf("singles rank gap = %d, want 2", cfg.Policy.SinglesRankGap)
		}
		if cfg.Policy.DoublesRankSpread != 3 {
			t.Errorf("doubles rank spread = %d, want 3", cfg.Policy.DoublesRankSpread)
		}
		if cfg.Policy.RepeatLimit != 2 {
			t.Errorf("repeat limit = %d, want 2", cfg.Policy.RepeatLimit)
		}
	})

	t.Run("players", func(t *testing.T) {
		if len(cfg.Players) != 5 {
			t.Fatalf("players = %d, want 5", len(cfg.Players))
		}
		anna := cfg.PlayerByName("Anna Berger")
		if anna == nil || anna.Rank != 2 {
			t.Fatalf("Anna Berger not loaded correctly: %+v", anna)
		}
		if anna.AllowsWeekday(time.Tuesday) {
			t.Error("Anna should not be available on Tuesday")
		}
		if !anna.AllowsWeekday(time.Monday) {
			t.Error("Anna should be available on Monday")
		}

		henrik := cfg.PlayerByName("Henrik Vogt")
		if !henrik.Unranked() {
			t.Errorf("Henrik rank = %d, want unranked", henrik.Rank)
		}
		if !henrik.AllowsWeekday(time.Saturday) {
			t.Error("player without weekday list should be unrestricted")
		}
	})

	t.Run("season cap zero is distinguishable from unset", func(t *testing.T) {
		carla := cfg.PlayerByName("Carla Weiss")
		if carla.SeasonCap == nil || *carla.SeasonCap != 0 {
			t.Errorf("Carla season cap = %v, want pointer to 0", carla.SeasonCap)
		}
		anna := cfg.PlayerByName("Anna Berger")
		if anna.SeasonCap != nil {
			t.Errorf("Anna season cap = %v, want nil", anna.SeasonCap)
		}
	})

	t.Run("vacations", func(t *testing.T) {
		david := cfg.PlayerByName("David Lang")
		if away, reason := david.OnVacation(mustDate("2026-02-11")); !away || reason != "Ski week" {
			t.Errorf("OnVacation(2026-02-11) = %v, %q", away, reason)
		}
		if away, _ := david.OnVacation(mustDate("2026-02-16")); away {
			t.Error("2026-02-16 should be outside the ski week")
		}
		if away, _ := david.OnVacation(mustDate("2026-03-02")); !away {
			t.Error("single-date vacation on 2026-03-02 not recognized")
		}
	})

	t.Run("travel pairs", func(t *testing.T) {
		if got := cfg.TravelPartner("Anna Berger"); got != "David Lang" {
			t.Errorf("TravelPartner(Anna) = %q, want David Lang", got)
		}
		if got := cfg.TravelPartner("David Lang"); got != "Anna Berger" {
			t.Errorf("TravelPartner(David) = %q, want Anna Berger", got)
		}
		if got := cfg.TravelPartner("Ben Keller"); got != "" {
			t.Errorf("TravelPartner(Ben) = %q, want empty", got)
		}
	})

	t.Run("restrictions", func(t *testing.T) {
		if len(cfg.Restrictions.NoSingles) != 1 || cfg.Restrictions.NoSingles[0] != "Ben Keller" {
			t.Errorf("no_singles = %v", cfg.Restrictions.NoSingles)
		}
		if len(cfg.Restrictions.TimeShares) != 1 {
			t.Fatalf("time shares = %d, want 1", len(cfg.Restrictions.TimeShares))
		}
		ts := cfg.Restrictions.TimeShares[0]
		if ts.MinMatches != 5 || ts.MaxShare != 0.30 || ts.MinFavoredShare != 0.70 {
			t.Errorf("time share rule = %+v", ts)
		}
	})
}

func TestPolicyDefaults(t *testing.T) {
	yaml := `
season:
  start_date: "2025-10-06"
  end_date: "2026-03-29"
template:
  monday: ["E19:00-60 PLA"]
players:
  - name: Anna Berger
`
	cfg, err := LoadFromBytes([]byte(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Policy.SinglesRankGap != 2 || cfg.Policy.DoublesRankSpread != 3 {
		t.Errorf("rank defaults = %d/%d, want 2/3",
			cfg.Policy.SinglesRankGap, cfg.Policy.DoublesRankSpread)
	}
	if cfg.Policy.RepeatLimit != 2 || cfg.Policy.RelaxRankBy != 1 || cfg.Policy.RelaxRepeatBy != 1 {
		t.Errorf("relaxation defaults = %d/%d/%d, want 2/1/1",
			cfg.Policy.RepeatLimit, cfg.Policy.RelaxRankBy, cfg.Policy.RelaxRepeatBy)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	base := `
season:
  start_date: "2025-10-06"
  end_date: "2026-03-29"
template:
  monday: ["E19:00-60 PLA"]
players:
  - name: Anna Berger
`

	t.Run("end before start", func(t *testing.T) {
		yaml := `
season:
  start_date: "2026-03-29"
  end_date: "2025-10-06"
template:
  monday: ["E19:00-60 PLA"]
players:
  - name: Anna Berger
`
		if _, err := LoadFromBytes([]byte(yaml)); err == nil {
			t.Error("expected error for end date before start date")
		}
	})

	t.Run("empty template", func(t *testing.T) {
		yaml := `
season:
  start_date: "2025-10-06"
  end_date: "2026-03-29"
players:
  - name: Anna Berger
`
		if _, err := LoadFromBytes([]byte(yaml)); err == nil {
			t.Error("expected error for template without slots")
		}
	})

	t.Run("no players", func(t *testing.T) {
		yaml := `
season:
  start_date: "2025-10-06"
  end_date: "2026-03-29"
template:
  monday: ["E19:00-60 PLA"]
players: []
`
		if _, err := LoadFromBytes([]byte(yaml)); err == nil {
			t.Error("expected error for empty roster")
		}
	})

	t.Run("duplicate player", func(t *testing.T) {
		yaml := base + `  - name: Anna Berger
`
		if _, err := LoadFromBytes([]byte(yaml)); err == nil {
			t.Error("expected error for duplicate player name")
		}
	})

	t.Run("invalid weekday", func(t *testing.T) {
		yaml := `
season:
  start_date: "2025-10-06"
  end_date: "2026-03-29"
template:
  monday: ["E19:00-60 PLA"]
players:
  - name: Anna Berger
    weekdays: [someday]
`
		if _, err := LoadFromBytes([]byte(yaml)); err == nil {
			t.Error("expected error for invalid weekday")
		}
	})

	t.Run("invalid rank", func(t *testing.T) {
		yaml := `
season:
  start_date: "2025-10-06"
  end_date: "2026-03-29"
template:
  monday: ["E19:00-60 PLA"]
players:
  - name: Anna Berger
    rank: 9
`
		if _, err := LoadFromBytes([]byte(yaml)); err == nil {
			t.Error("expected error for rank out of range")
		}
	})

	t.Run("travel pair with unknown player", func(t *testing.T) {
		yaml := base + `travel_pairs:
  - [Anna Berger, Nobody]
`
		if _, err := LoadFromBytes([]byte(yaml)); err == nil {
			t.Error("expected error for unknown travel pair member")
		}
	})

	t.Run("travel pair with wrong size", func(t *testing.T) {
		yaml := base + `travel_pairs:
  - [Anna Berger]
`
		if _, err := LoadFromBytes([]byte(yaml)); err == nil {
			t.Error("expected error for one-member travel pair")
		}
	})

	t.Run("vacation with both date and range", func(t *testing.T) {
		yaml := `
season:
  start_date: "2025-10-06"
  end_date: "2026-03-29"
template:
  monday: ["E19:00-60 PLA"]
players:
  - name: Anna Berger
    vacations:
      - date: "2026-01-05"
        start_date: "2026-01-05"
        end_date: "2026-01-07"
`
		if _, err := LoadFromBytes([]byte(yaml)); err == nil {
			t.Error("expected error for vacation with both forms")
		}
	})
}
