package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/liamw8lde/trainingplan/internal/audit"
	"github.com/liamw8lde/trainingplan/internal/autofill"
	"github.com/liamw8lde/trainingplan/internal/config"
	"github.com/liamw8lde/trainingplan/internal/excel"
	"github.com/liamw8lde/trainingplan/internal/schedule"
)

const defaultConfigFile = "config.yaml"

func resolveConfigPath(configFlag string) (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile, nil
	}
	return "", fmt.Errorf("no config file found. Either create %s in the current directory or pass --config", defaultConfigFile)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "trainingplan",
		Short: "Club practice schedule autopopulation",
	}

	var initOutputPath string
	initCmd := &cobra.Command{
		Use:          "init",
		Short:        "Create a starter config.yaml in the current directory",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(initOutputPath)
		},
	}
	initCmd.Flags().StringVarP(&initOutputPath, "output", "o", defaultConfigFile, "Output path for the config file")

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Fill and audit season schedules",
	}

	var configFile string
	scheduleCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default: config.yaml in current directory)")

	var (
		scheduleFile string
		outputFile   string
		xlsxFile     string
		maxFill      int
		legalOnly    bool
	)
	fillCmd := &cobra.Command{
		Use:          "fill",
		Short:        "Autopopulate empty slots in the season schedule",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			return runFill(configPath, scheduleFile, outputFile, xlsxFile, maxFill, legalOnly)
		},
	}
	fillCmd.Flags().StringVarP(&scheduleFile, "schedule", "s", "schedule.csv", "Existing schedule CSV (missing file starts an empty season)")
	fillCmd.Flags().StringVarP(&outputFile, "output", "o", "schedule.csv", "Output schedule CSV path")
	fillCmd.Flags().StringVar(&xlsxFile, "xlsx", "", "Also write an Excel workbook to this path")
	fillCmd.Flags().IntVar(&maxFill, "max", 0, "Stop after filling this many slots (0 = no cap)")
	fillCmd.Flags().BoolVar(&legalOnly, "legal-only", true, "Commit only assignments with zero rule violations")

	auditCmd := &cobra.Command{
		Use:          "audit <schedule.csv>",
		Short:        "Audit a schedule against all club rules",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			return runAudit(configPath, args[0])
		},
	}

	scheduleCmd.AddCommand(fillCmd, auditCmd)
	rootCmd.AddCommand(initCmd, scheduleCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runInit(outputPath string) error {
	if _, err := os.Stat(outputPath); err == nil {
		return fmt.Errorf("%s already exists; remove it first or use -o to write elsewhere", outputPath)
	}

	if err := os.WriteFile(outputPath, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("✓ Created %s\n", outputPath)
	return nil
}

const configTemplate = `# Winter Training Season Configuration
# ====================================
# This file defines the season, the weekly slot template, the player
# roster, and the club rules used when autopopulating the schedule.

# Season defines the date range of the training plan.
season:
  start_date: "2025-10-06"
  end_date: "2026-03-29"

  # Blackout dates are full days where no slots exist at all.
  blackout_dates:
    - date: "2025-12-24"
      reason: "Christmas Eve"
    - date: "2025-12-25"
      reason: "Christmas"
    - date: "2025-12-31"
      reason: "New Year's Eve"
    - date: "2026-01-01"
      reason: "New Year"

# Weekly slot template. Each weekday lists its slot codes in order.
# Code grammar: <E|D><HH:MM>-<minutes> PL<A|B>
#   E = singles (2 players), D = doubles (4 players),
#   then start time, duration in minutes, and court A or B.
template:
  monday: ["D20:00-60 PLA", "D20:00-60 PLB"]
  tuesday: ["E19:00-60 PLA", "E20:00-60 PLA"]
  friday: ["D19:00-90 PLA", "E19:00-90 PLB"]

# Policy holds the rank-compatibility bounds and relaxation steps.
# Ranks run 1 (strongest) to 6 (weakest); 0 means unranked.
policy:
  singles_rank_gap: 2      # max |rank difference| for a singles pairing
  doubles_rank_spread: 3   # max rank spread across a doubles four
  repeat_limit: 2          # max singles matches for the same pair
  relax_rank_by: 1         # second-tier widening of the rank bounds
  relax_repeat_by: 1       # second-tier widening of the repeat limit

# Player roster. Every field except name is optional:
#   rank, weekdays (default: any), preference (any / singles_only /
#   doubles_only), vacations, monthly_cap, season_cap, season_target,
#   partner (preferred doubles partner).
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
  - name: David Lang
    rank: 1
    season_target: 18
    vacations:
      - start_date: "2026-02-09"
        end_date: "2026-02-15"
        reason: "Ski week"
  - name: Eva Brandt
    rank: 4
    monthly_cap: 4
  - name: Felix Roth
    rank: 5
  - name: Greta Hahn
    rank: 4
  - name: Henrik Vogt

# Per-player exception rules. Each table is a literal list of special
# cases; the engine treats them as data, not code.
restrictions:
  no_singles: []
  slot_bans: []
  only_times: []
  only_weekdays: []
  weekday_times: []
  time_shares:
    - player: Anna Berger
      min_matches: 5
      disfavored_time: "20:00"
      max_disfavored_share: 0.30
      min_favored_share: 0.70

# Travel pairs always play at the same date and time (any court).
travel_pairs: []
`

func runFill(configPath, schedulePath, outputPath, xlsxPath string, maxFill int, legalOnly bool) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := schedule.LoadCSVFile(schedulePath)
	if err != nil {
		return fmt.Errorf("loading schedule: %w", err)
	}

	calendar, err := schedule.Generate(cfg)
	if err != nil {
		return err
	}
	empty := schedule.EmptySlots(calendar, store)
	fmt.Printf("Filling %d empty slots (%d total, %d already filled)...\n",
		len(empty), len(calendar), store.Len())

	report, err := autofill.Run(cfg, store, autofill.Options{MaxFill: maxFill, LegalOnly: legalOnly})
	if err != nil {
		return err
	}

	relaxed := 0
	for _, fs := range report.Filled {
		if fs.Tier > 0 {
			relaxed++
		}
	}
	fmt.Printf("✓ Filled %d slots (%d with relaxed bounds)\n", len(report.Filled), relaxed)

	if len(report.Skipped) > 0 {
		fmt.Printf("\nUnfillable slots (%d):\n", len(report.Skipped))
		for _, s := range report.Skipped {
			fmt.Printf("  ⚠ %s %s: %s\n", s.Date.Format("2006-01-02"), s.Code, s.Reason)
		}
	}

	fmt.Println("\nPer Player Metrics:")
	fmt.Printf("  %-18s %7s %7s %7s\n", "Player", "Matches", "Singles", "Doubles")
	for _, name := range cfg.AllNames() {
		singles, doubles := 0, 0
		for _, e := range store.Entries() {
			if !e.Has(name) {
				continue
			}
			if e.Code.Type == schedule.Singles {
				singles++
			} else {
				doubles++
			}
		}
		fmt.Printf("  %-18s %7d %7d %7d\n", name, store.SeasonCount(name), singles, doubles)
	}

	if err := schedule.SaveCSVFile(outputPath, store); err != nil {
		return err
	}
	fmt.Printf("\n✓ Schedule saved to %s\n", outputPath)

	if xlsxPath != "" {
		f, err := excel.Generate(cfg, store)
		if err != nil {
			return fmt.Errorf("generating Excel: %w", err)
		}
		if err := f.SaveAs(xlsxPath); err != nil {
			return fmt.Errorf("saving workbook: %w", err)
		}
		fmt.Printf("✓ Workbook saved to %s\n", xlsxPath)
	}

	return nil
}

func runAudit(configPath, schedulePath string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if _, err := os.Stat(schedulePath); err != nil {
		return fmt.Errorf("schedule file %s: %w", schedulePath, err)
	}
	store, err := schedule.LoadCSVFile(schedulePath)
	if err != nil {
		return fmt.Errorf("loading schedule: %w", err)
	}

	findings, err := audit.Audit(cfg, store)
	if err != nil {
		return fmt.Errorf("auditing: %w", err)
	}

	for _, f := range findings {
		fmt.Printf("✗ %s %s: %s\n", f.Date.Format("2006-01-02"), f.Slot, f.Message)
	}
	fmt.Printf("\nAudit complete: %d entries, %d findings\n", store.Len(), len(findings))

	if len(findings) > 0 {
		return fmt.Errorf("%d rule violations found", len(findings))
	}
	return nil
}
