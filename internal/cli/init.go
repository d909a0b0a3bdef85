package cli

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/docroute/internal/config"
	"github.com/example/docroute/internal/db"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize docroute configuration and database",
		Long: `Write ~/.docroute/config.json (or $DOCROUTE_HOME/config.json) with a fresh
JWT secret and create the database with the required schema.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.HomeDir()
			if err != nil {
				return err
			}

			cfg, err := config.LoadConfig(dir)
			if err != nil || force {
				cfg = config.Default(dir)
				secret, err := newSecret()
				if err != nil {
					return err
				}
				cfg.JWTSecret = secret
				if err := config.SaveConfig(dir, cfg); err != nil {
					return err
				}
				fmt.Printf("✓ Config written to %s/config.json\n", dir)
			} else {
				fmt.Printf("Config already present in %s (use --force to rewrite)\n", dir)
			}

			fmt.Printf("Initializing database at %s\n", cfg.DBPath)
			database, err := db.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer database.Close()

			fmt.Println("✓ Database initialized successfully")
			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  docroute route create Purchase --step 1:alice,bob:24 --step 2:carol")
			fmt.Println("  docroute document create \"Laptop refresh\" --route ROUTE-001")
			fmt.Println("  docroute document submit DOC-001")

			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Rewrite the config file with defaults and a new secret")

	return cmd
}

func newSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate jwt secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
