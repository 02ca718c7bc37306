package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"drawer-go/internal/app"
	"drawer-go/internal/config"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file named by the defaults.
func loadConfig() (*config.Config, map[string]string, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, defaults, nil
}

// withApp runs fn against a DrawerApp built for command and records its
// outcome in the run log.
func withApp(command string, fn func(a *app.DrawerApp) error) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := app.NewDrawerApp(cfg, command)
	if err != nil {
		return fmt.Errorf("initializing app: %w", err)
	}
	defer a.Close()

	err = fn(a)
	a.Fail(err)
	return err
}

// readPassphrase prompts on the terminal without echo.
func readPassphrase(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("a terminal is required to read the passphrase")
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(b), nil
}

var rootCmd = &cobra.Command{
	Use:          "drawer",
	Short:        "Hierarchical file drawer with an HTTP API",
	SilenceUsage: true,
}

// serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		listen, _ := cmd.Flags().GetString("listen")

		cfg, defaults, err := loadConfig()
		if err != nil {
			return err
		}
		if listen == "" {
			listen = defaults["listen"]
		}

		a, err := app.NewDrawerApp(cfg, "serve")
		if err != nil {
			return fmt.Errorf("initializing app: %w", err)
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		err = a.Serve(ctx, listen)
		a.Fail(err)
		return err
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, defaults, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:  %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:   %s\n", cfg.LogDir)
		fmt.Printf("Listen:    %s\n", cfg.Server.Listen)
		fmt.Printf("Max Size:  %d\n", cfg.Server.MaxUploadSize)
		fmt.Printf("Database:  %s %s\n", cfg.Database.Type, cfg.Database.DataDir)
		switch cfg.Vault.Type {
		case "s3":
			fmt.Printf("Vault:     s3://%s/%s\n", cfg.Vault.S3Bucket, cfg.Vault.S3Prefix)
		default:
			fmt.Printf("Vault:     %s %s\n", cfg.Vault.Type, cfg.Vault.Root)
		}
		return nil
	},
}

// fsck command
var fsckCmd = &cobra.Command{
	Use:   "fsck",
	Short: "Check that every file record has its bytes",
	RunE: func(cmd *cobra.Command, args []string) error {
		prune, _ := cmd.Flags().GetBool("prune")

		return withApp("fsck", func(a *app.DrawerApp) error {
			report, err := a.Service().Verify(prune)
			if err != nil {
				return err
			}
			for _, f := range report.Orphans {
				fmt.Printf("missing  %s  %s\n", f.ID, f.FullPath)
			}
			fmt.Printf("Checked %d file(s), %d missing", report.Checked, len(report.Orphans))
			if prune {
				fmt.Printf(", %d pruned", report.Pruned)
			}
			fmt.Println()
			return nil
		})
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View catalog change history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		return withApp("history", func(a *app.DrawerApp) error {
			ops, err := a.History(limit)
			if err != nil {
				return err
			}
			if len(ops) == 0 {
				fmt.Println("No changes recorded.")
				return nil
			}
			for _, op := range ops {
				fmt.Printf("#%d  %s  %-14s  %s\n",
					op.ID,
					op.At.Format("2006-01-02 15:04:05"),
					op.Operation,
					op.Detail,
				)
			}
			return nil
		})
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage catalog backup keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the backup key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		pass, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if pass != confirm {
			return fmt.Errorf("passphrases do not match")
		}

		if err := app.InitKeys(cfg, pass); err != nil {
			return err
		}
		fmt.Printf("Keys written to %s and %s\n", cfg.Encryption.PublicKeyPath, cfg.Encryption.PrivateKeyPath)
		return nil
	},
}

// catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Back up and restore the catalog",
}

var catalogBackupCmd = &cobra.Command{
	Use:   "backup DEST",
	Short: "Write an encrypted catalog snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("catalog backup", func(a *app.DrawerApp) error {
			if err := a.BackupCatalog(args[0]); err != nil {
				return err
			}
			fmt.Printf("Catalog backed up to %s\n", args[0])
			return nil
		})
	},
}

var catalogRestoreCmd = &cobra.Command{
	Use:   "restore SRC",
	Short: "Replace the catalog with an encrypted snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		pass, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		if err := app.RestoreCatalog(cfg, args[0], pass); err != nil {
			return err
		}
		fmt.Println("Catalog restored. Run 'drawer fsck' to check it against the vault.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", "", "Listen address (overrides DRAWER_LISTEN and the config)")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)

	rootCmd.AddCommand(fsckCmd)
	fsckCmd.Flags().Bool("prune", false, "Delete records whose bytes are missing")

	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of changes to show")

	keysCmd.AddCommand(keysInitCmd)
	rootCmd.AddCommand(keysCmd)

	catalogCmd.AddCommand(catalogBackupCmd)
	catalogCmd.AddCommand(catalogRestoreCmd)
	rootCmd.AddCommand(catalogCmd)
}
