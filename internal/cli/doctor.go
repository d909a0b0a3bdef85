package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/docroute/internal/config"
	"github.com/example/docroute/internal/db"
	"github.com/example/docroute/internal/logging"
	"github.com/example/docroute/internal/version"
)

// CheckResult represents the outcome of a single check
type CheckResult struct {
	Name    string
	Status  string // "✓", "⚠", "✗"
	Details string // Only shown if Status != "✓"
}

// DoctorCmd returns the doctor command for environment validation
func DoctorCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate docroute configuration and database",
		Long: `Health check for docroute.

Validates:
- Config file presence and log level
- JWT secret for the HTTP API
- Database connectivity and schema version

Examples:
  docroute doctor              # Run full health check
  docroute doctor --quiet      # Exit code only (0=healthy, 1=issues)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			dir, err := config.HomeDir()
			if err != nil {
				return err
			}

			results := []CheckResult{
				checkConfigFile(dir),
				checkLogLevel(cfg),
				checkJWTSecret(cfg),
				checkDatabase(cfg),
			}

			hasErrors := false
			for _, r := range results {
				if r.Status == "✗" {
					hasErrors = true
					break
				}
			}

			if !quiet {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out)
				fmt.Fprintf(out, "%s\n\n", version.String())
				fmt.Fprintln(out, "Check              Status")
				fmt.Fprintln(out, "─────────────────────────")
				for _, r := range results {
					fmt.Fprintf(out, "%-18s %s\n", r.Name, r.Status)
				}
				fmt.Fprintln(out)

				hasDetails := false
				for _, r := range results {
					if r.Status != "✓" && r.Details != "" {
						if !hasDetails {
							fmt.Fprintln(out, "Details:")
							hasDetails = true
						}
						fmt.Fprintf(out, "\n%s:\n%s\n", r.Name, r.Details)
					}
				}

				if hasErrors {
					fmt.Fprintln(out, "\n⚠ Issues found. Run 'docroute init' to create a config and database.")
				} else {
					fmt.Fprintln(out, "All checks passed.")
				}
			}

			if hasErrors {
				return fmt.Errorf("environment validation failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode - exit code only")

	return cmd
}

func checkConfigFile(dir string) CheckResult {
	path := filepath.Join(dir, "config.json")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return CheckResult{Name: "Config", Status: "⚠", Details: fmt.Sprintf("  %s not found, using defaults", path)}
	}
	if _, err := config.LoadConfig(dir); err != nil {
		return CheckResult{Name: "Config", Status: "✗", Details: "  " + err.Error()}
	}
	return CheckResult{Name: "Config", Status: "✓"}
}

func checkLogLevel(cfg *config.Config) CheckResult {
	if !logging.ValidLevel(cfg.LogLevel) {
		return CheckResult{Name: "Log level", Status: "⚠", Details: fmt.Sprintf("  unknown log level %q, falling back to info", cfg.LogLevel)}
	}
	return CheckResult{Name: "Log level", Status: "✓"}
}

func checkJWTSecret(cfg *config.Config) CheckResult {
	if cfg.JWTSecret == "" {
		return CheckResult{Name: "JWT secret", Status: "⚠", Details: "  jwt_secret is empty; 'docroute serve' will refuse to start"}
	}
	return CheckResult{Name: "JWT secret", Status: "✓"}
}

func checkDatabase(cfg *config.Config) CheckResult {
	if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
		return CheckResult{Name: "Database", Status: "✗", Details: fmt.Sprintf("  %s does not exist", cfg.DBPath)}
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return CheckResult{Name: "Database", Status: "✗", Details: "  " + err.Error()}
	}
	defer database.Close()

	current, err := db.CurrentVersion(database)
	if err != nil {
		return CheckResult{Name: "Database", Status: "✗", Details: "  " + err.Error()}
	}
	if current != db.LatestVersion() {
		return CheckResult{Name: "Database", Status: "✗", Details: fmt.Sprintf("  schema version %d, want %d", current, db.LatestVersion())}
	}
	return CheckResult{Name: "Database", Status: "✓"}
}
