package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/corey/acmatch/internal/app"
	"github.com/corey/acmatch/internal/config"
	"github.com/corey/acmatch/internal/logging"
)

var (
	rootDir    string
	configFile string
	colorFlag  string
	noColor    bool

	// settings is loaded before every command runs.
	settings *config.Config
)

// flagKeys maps flag names to the config keys they override. A flag only
// overrides when set on the command line.
var flagKeys = map[string]string{
	"db":          "db",
	"log-level":   "log.level",
	"cooperative": "build.cooperative",
	"budget":      "build.budget",
	"workers":     "scan.workers",
	"leftmost":    "scan.leftmost",
	"decode":      "scan.decode",
}

var rootCmd = &cobra.Command{
	Use:   "acmatch",
	Short: "Multi-pattern Aho-Corasick matcher",
	Long: "Compile pattern files into automata, store them, and report every occurrence of every\n" +
		"pattern in text with one pass over the input.",
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

// projectRoot returns --root, or the working directory.
func projectRoot() (string, error) {
	if rootDir != "" {
		return rootDir, nil
	}
	return os.Getwd()
}

func loadSettings(cmd *cobra.Command, args []string) error {
	root, err := projectRoot()
	if err != nil {
		return err
	}
	v := config.New(root)
	for flag, key := range flagKeys {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind --%s: %w", flag, err)
			}
		}
	}
	s, err := config.Load(v, root, configFile)
	if err != nil {
		return err
	}

	logging.SetOutput(cmd.ErrOrStderr())
	if err := logging.SetLevel(s.Log.Level); err != nil {
		return err
	}
	logging.Debug().Str("root", root).Str("config", s.File).Str("db", s.DB).Msg("settings loaded")
	settings = s
	return nil
}

// openApp opens the store, turning lock timeouts into actionable guidance.
func openApp() (*app.App, error) {
	root, err := projectRoot()
	if err != nil {
		return nil, err
	}
	a, err := app.New(app.Config{Root: root, Settings: settings})
	if err != nil {
		if isDBLockError(err) {
			return nil, fmt.Errorf("%s", diagnoseDBLock(root))
		}
		return nil, err
	}
	return a, nil
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootDir, "root", "", "Project root holding .acmatch/ (default: working directory)")
	pf.StringVar(&configFile, "config", "", "Config file (default: acmatch.toml in the project root)")
	pf.String("db", "", "Database path (default: .acmatch/acmatch.db)")
	pf.String("log-level", "info", "Log level: trace, debug, info, warn, error")
	pf.StringVar(&colorFlag, "color", "auto", "Color output: auto, always, never")
	pf.BoolVar(&noColor, "no-color", false, "Disable color output")

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
}
