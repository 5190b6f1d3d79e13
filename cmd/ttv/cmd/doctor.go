package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/ttv/internal/auth"
	"github.com/Dicklesworthstone/ttv/internal/config"
	"github.com/Dicklesworthstone/ttv/internal/db"
	"github.com/Dicklesworthstone/ttv/internal/streamlink"
)

// CheckResult represents the result of a single diagnostic check.
type CheckResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "pass", "warn", "fail"
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// DoctorReport contains all diagnostic check results.
type DoctorReport struct {
	Timestamp    string        `json:"timestamp"`
	OverallOK    bool          `json:"overall_ok"`
	PassCount    int           `json:"pass_count"`
	WarnCount    int           `json:"warn_count"`
	FailCount    int           `json:"fail_count"`
	Dependencies []CheckResult `json:"dependencies"`
	Config       []CheckResult `json:"config"`
	Database     []CheckResult `json:"database"`
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose setup issues and check dependencies",
	Long: `Runs diagnostic checks and reports any issues.

Checks performed:
  - Dependencies: can the launcher and player actually be executed?
  - Config: are settings valid, are credentials stored, is the token fresh?
  - Database: can the follow list be opened, and at which schema version?

No network calls are made.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")

		report := runDoctorChecks(cmd.Context(), time.Now())
		out := cmd.OutOrStdout()

		if jsonOutput {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(data))
		} else {
			printDoctorReport(out, report)
		}

		if !report.OverallOK {
			return fmt.Errorf("found %d failure(s)", report.FailCount)
		}
		return nil
	},
}

func init() {
	doctorCmd.Flags().Bool("json", false, "output in JSON format")
	rootCmd.AddCommand(doctorCmd)
}

func runDoctorChecks(ctx context.Context, now time.Time) *DoctorReport {
	report := &DoctorReport{
		Timestamp: now.Format(time.RFC3339),
	}

	settings, settingsCheck := checkSettings()
	report.Dependencies = checkDependencies(ctx, settings)
	report.Config = append([]CheckResult{settingsCheck}, checkCredentials(now)...)
	report.Database = checkDatabase()

	allChecks := append([]CheckResult{}, report.Dependencies...)
	allChecks = append(allChecks, report.Config...)
	allChecks = append(allChecks, report.Database...)

	for _, check := range allChecks {
		switch check.Status {
		case "pass":
			report.PassCount++
		case "warn":
			report.WarnCount++
		case "fail":
			report.FailCount++
		}
	}
	report.OverallOK = report.FailCount == 0
	return report
}

func checkSettings() (*config.Settings, CheckResult) {
	path := config.SettingsPath()
	settings, err := config.LoadSettings()
	if err != nil {
		return config.DefaultSettings(), CheckResult{
			Name:    "settings",
			Status:  "fail",
			Message: "settings.yaml is invalid",
			Details: err.Error(),
		}
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return settings, CheckResult{Name: "settings", Status: "pass", Message: "using defaults (no settings.yaml)"}
	}
	return settings, CheckResult{Name: "settings", Status: "pass", Message: path}
}

func checkDependencies(ctx context.Context, settings *config.Settings) []CheckResult {
	command := streamlink.Command{Launcher: settings.Player.Launcher, Player: settings.Player.Player}
	prober := &streamlink.Prober{}

	var results []CheckResult
	for _, bin := range command.Binaries() {
		version, err := prober.Probe(ctx, bin)
		if err != nil {
			results = append(results, CheckResult{
				Name:    bin,
				Status:  "fail",
				Message: "not executable",
				Details: err.Error(),
			})
			continue
		}
		results = append(results, CheckResult{Name: bin, Status: "pass", Message: version})
	}
	return results
}

func checkCredentials(now time.Time) []CheckResult {
	store := config.NewStore("")
	cfg, err := store.Load()
	if err != nil {
		return []CheckResult{{Name: "credentials", Status: "fail", Message: "config.json is unreadable", Details: err.Error()}}
	}

	var results []CheckResult
	creds := cfg.Twitch
	var missing []string
	if creds.TrimmedClientID() == "" {
		missing = append(missing, "client ID")
	}
	if creds.TrimmedClientSecret() == "" {
		missing = append(missing, "client secret")
	}
	if len(missing) > 0 {
		results = append(results, CheckResult{
			Name:    "credentials",
			Status:  "warn",
			Message: (&auth.MissingCredentialsError{Fields: missing}).Error(),
		})
	} else {
		results = append(results, CheckResult{Name: "credentials", Status: "pass", Message: store.Path()})
	}

	switch {
	case !auth.NeedsRefresh(creds, now):
		results = append(results, CheckResult{
			Name:    "access token",
			Status:  "pass",
			Message: "expires in " + formatDurationShort(creds.ExpiresAt.Sub(now)),
		})
	case creds.TrimmedAccessToken() == "":
		results = append(results, CheckResult{Name: "access token", Status: "warn", Message: "none yet; fetched on first use"})
	case creds.ExpiresAt == nil:
		results = append(results, CheckResult{Name: "access token", Status: "warn", Message: "no expiry stored; will be refreshed on next use"})
	default:
		results = append(results, CheckResult{Name: "access token", Status: "warn", Message: "expired; will be refreshed on next use"})
	}
	return results
}

func checkDatabase() []CheckResult {
	store, err := db.Open()
	if err != nil {
		return []CheckResult{{Name: "database", Status: "fail", Message: "cannot open", Details: err.Error()}}
	}
	defer store.Close()

	version, err := store.SchemaVersion()
	if err != nil {
		return []CheckResult{{Name: "database", Status: "fail", Message: "cannot read schema version", Details: err.Error()}}
	}
	return []CheckResult{{
		Name:    "database",
		Status:  "pass",
		Message: fmt.Sprintf("%s (schema v%d)", store.Path(), version),
	}}
}

func printDoctorReport(w io.Writer, report *DoctorReport) {
	fmt.Fprintln(w, "ttv doctor")
	fmt.Fprintln(w)

	sections := []struct {
		title  string
		checks []CheckResult
	}{
		{"Checking playback dependencies...", report.Dependencies},
		{"Checking configuration...", report.Config},
		{"Checking database...", report.Database},
	}
	for _, s := range sections {
		fmt.Fprintln(w, s.title)
		for _, check := range s.checks {
			printCheck(w, check)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Summary: %d passed", report.PassCount)
	if report.WarnCount > 0 {
		fmt.Fprintf(w, ", %d warnings", report.WarnCount)
	}
	if report.FailCount > 0 {
		fmt.Fprintf(w, ", %d failures", report.FailCount)
	}
	fmt.Fprintln(w)
}

func printCheck(w io.Writer, check CheckResult) {
	var symbol string
	switch check.Status {
	case "pass":
		symbol = "  ✓"
	case "warn":
		symbol = "  ⚠"
	case "fail":
		symbol = "  ✗"
	}

	fmt.Fprintf(w, "%s %s: %s\n", symbol, check.Name, check.Message)
	if check.Details != "" && check.Status != "pass" {
		fmt.Fprintf(w, "      %s\n", check.Details)
	}
}
