package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/convergenps/sheetctl/internal/adminsetup"
	"github.com/convergenps/sheetctl/internal/app"
	"github.com/convergenps/sheetctl/internal/backend"
	"github.com/convergenps/sheetctl/internal/config"
	"github.com/convergenps/sheetctl/internal/domain"
	"github.com/convergenps/sheetctl/internal/infra/repos/journal"
	"github.com/convergenps/sheetctl/internal/infra/repos/profiles"
	"github.com/convergenps/sheetctl/internal/logging"
	"github.com/convergenps/sheetctl/internal/report"
	"github.com/convergenps/sheetctl/internal/smartsheet"
	"github.com/convergenps/sheetctl/internal/validation"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	profilesDir string
	journalPath string
	logLevel    string
)

func main() {
	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:   "sheetctl",
		Short: "Smartsheet to backend import orchestrator",
	}

	rootCmd.PersistentFlags().StringVar(&profilesDir, "profiles-dir", cfg.ProfilesDir, "Profiles directory")
	rootCmd.PersistentFlags().StringVar(&journalPath, "journal", cfg.JournalPath, "Run journal database path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", cfg.LogLevel, "Log level")

	rootCmd.AddCommand(importCmd(cfg))
	rootCmd.AddCommand(inspectCmd(cfg))
	rootCmd.AddCommand(grantAdminCmd(cfg))
	rootCmd.AddCommand(runsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveProfile loads the selected profile (or builds an inline one from
// env config) and applies flag overrides.
func resolveProfile(cfg *config.Config, profileID, profilePath, endpoint, strategy string, categories []string, delayMS int64) (*domain.ImportProfile, error) {
	repo := profiles.NewFileRepository(profilesDir)

	var profile *domain.ImportProfile
	var err error

	switch {
	case profilePath != "":
		profile, err = repo.GetByPath(profilePath)
	case profileID != "":
		profile, err = repo.Get(profileID)
	default:
		profile = &domain.ImportProfile{
			ID:       "inline",
			Name:     "inline",
			Endpoint: cfg.APIBase,
		}
		profile.Strategy = domain.StrategySequential
		profile.Categories = domain.SupportedCategories()
	}
	if err != nil {
		return nil, err
	}

	if endpoint != "" {
		profile.Endpoint = endpoint
	}
	if strategy != "" {
		profile.Strategy = domain.Strategy(strategy)
	}
	if len(categories) > 0 {
		profile.Categories = profile.Categories[:0]
		for _, c := range categories {
			profile.Categories = append(profile.Categories, domain.Category(c))
		}
	}
	if delayMS >= 0 {
		profile.DelayMS = delayMS
	}

	if err := validation.ValidateProfile(profile); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	return profile, nil
}

func importCmd(cfg *config.Config) *cobra.Command {
	var (
		profileID   string
		profilePath string
		endpoint    string
		strategy    string
		categories  []string
		delayMS     int64
		record      bool
		noColor     bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Run an import against the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewLogger(logLevel)

			profile, err := resolveProfile(cfg, profileID, profilePath, endpoint, strategy, categories, delayMS)
			if err != nil {
				return err
			}

			creds := domain.Credentials{Email: cfg.AdminEmail, Password: cfg.AdminPassword}
			if err := validation.ValidateCredentials(creds); err != nil {
				return err
			}

			client, err := backend.New(profile.Endpoint)
			if err != nil {
				return err
			}

			driver := app.NewDriver(client, profile.Categories, profile.InterCallDelay(), logger)
			outcome := driver.Run(cmd.Context(), creds, profile.Strategy)

			report.New(os.Stdout, !noColor).PrintOutcome(outcome)

			if record {
				repo := journal.NewSQLiteRepository(journalPath)
				if err := repo.Init(); err != nil {
					return err
				}
				defer repo.Close()

				rec := journal.NewRecord(profile.Name, profile.Endpoint, outcome)
				if err := repo.Record(rec); err != nil {
					logger.Warn("failed to journal run: %v", err)
				} else {
					logger.Info("run journaled: %s", rec.ID)
				}
			}

			if !outcome.OverallSuccess {
				return fmt.Errorf("import failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&profileID, "profile", "", "Profile ID or name")
	cmd.Flags().StringVar(&profilePath, "profile-path", "", "Profile file path")
	cmd.Flags().StringVar(&endpoint, "api-base", "", "Backend API base URL (overrides profile)")
	cmd.Flags().StringVar(&strategy, "strategy", "", "Import strategy (atomic|sequential)")
	cmd.Flags().StringSliceVar(&categories, "categories", nil, "Categories to import, in order")
	cmd.Flags().Int64Var(&delayMS, "delay-ms", -1, "Pause between category calls in milliseconds")
	cmd.Flags().BoolVar(&record, "record", false, "Journal the run outcome")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	return cmd
}

func inspectCmd(cfg *config.Config) *cobra.Command {
	var (
		profileID   string
		profilePath string
		sheetIDs    []string
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect Smartsheet columns and a sample row",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := smartsheet.New(cfg.SmartsheetBase, cfg.SmartsheetToken)
			if err != nil {
				return err
			}

			sheets := make(map[string]string)
			if profileID != "" || profilePath != "" {
				profile, err := resolveProfile(cfg, profileID, profilePath, "", "", nil, -1)
				if err != nil {
					return err
				}
				for name, id := range profile.Sheets {
					sheets[name] = id
				}
			}
			for _, id := range sheetIDs {
				sheets[id] = id
			}
			if len(sheets) == 0 {
				return fmt.Errorf("no sheets to inspect; pass --sheet or a profile with a sheets map")
			}

			for name, id := range sheets {
				sheet, err := client.GetSheet(cmd.Context(), id)
				if err != nil {
					fmt.Printf("%s: %v\n", name, err)
					continue
				}
				printSheet(name, sheet)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&profileID, "profile", "", "Profile ID or name")
	cmd.Flags().StringVar(&profilePath, "profile-path", "", "Profile file path")
	cmd.Flags().StringSliceVar(&sheetIDs, "sheet", nil, "Sheet ID to inspect (repeatable)")
	return cmd
}

func printSheet(name string, sheet *smartsheet.Sheet) {
	fmt.Printf("\n%s — %s (%d rows)\n", name, sheet.Name, sheet.TotalRowCount)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tTITLE\tTYPE\tID")
	for i, col := range sheet.Columns {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", i+1, col.Title, col.Type, col.ID)
	}
	w.Flush()

	sample := sheet.SampleRow()
	if sample == nil {
		return
	}
	fmt.Println("\nSample row:")
	for i, cell := range sample.Cells {
		if i >= len(sheet.Columns) {
			break
		}
		fmt.Printf("  %-40s: %s\n", sheet.Columns[i].Title, cell)
	}
}

func grantAdminCmd(cfg *config.Config) *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "grant-admin <email>",
		Short: "Grant the admin role to an existing user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := adminsetup.Open(cfg.DatabaseDSN)
			if err != nil {
				return err
			}
			defer db.Close()

			res, err := adminsetup.NewGranter(db).GrantAdmin(cmd.Context(), args[0], note)
			if err != nil {
				return err
			}

			if res.AlreadyAdmin {
				fmt.Printf("%s (%s) already has the admin role\n", res.FullName, res.Email)
				return nil
			}
			fmt.Printf("%s (%s) is now an admin\n", res.FullName, res.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&note, "note", "Initial admin setup", "Audit note for the role history")
	return cmd
}

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Browse journaled runs",
	}

	var limit int
	var format string

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List journaled runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := journal.NewSQLiteRepository(journalPath)
			if err := repo.Init(); err != nil {
				return err
			}
			defer repo.Close()

			list, err := repo.List(limit)
			if err != nil {
				return err
			}

			if format == "json" {
				data, _ := json.MarshalIndent(list, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPROFILE\tSTRATEGY\tSUCCESS\tSTARTED")
			for _, r := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n",
					r.ID[:8], r.ProfileName, r.Strategy, r.OverallSuccess, r.StartedAt.Format("2006-01-02 15:04"))
			}
			w.Flush()
			return nil
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "Limit results")
	listCmd.Flags().StringVar(&format, "format", "table", "Output format (table|json)")

	showCmd := &cobra.Command{
		Use:   "show <run_id>",
		Short: "Show run details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := journal.NewSQLiteRepository(journalPath)
			if err := repo.Init(); err != nil {
				return err
			}
			defer repo.Close()

			rec, err := repo.Get(args[0])
			if err != nil {
				return err
			}

			data, _ := yaml.Marshal(rec)
			fmt.Println(string(data))
			return nil
		},
	}

	cmd.AddCommand(listCmd, showCmd)
	return cmd
}
