// Command propagenda serves the agenda puzzle game and checks boards offline.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"svw.info/propagenda/internal/config"
	"svw.info/propagenda/internal/infrastructure/metadata"
	"svw.info/propagenda/internal/progression"
	"svw.info/propagenda/internal/usecase"
	"svw.info/propagenda/internal/validator"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries what every subcommand needs once flags and config are resolved.
type app struct {
	configPath string
	logLevel   string
	agendas    string

	cfg    *config.Config
	logger *slog.Logger
}

func rootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "propagenda",
		Short:         "Agenda puzzle game server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default ./"+config.ProjectConfigFile+" if present)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug|info|warn|error (overrides config)")
	cmd.PersistentFlags().StringVar(&a.agendas, "agendas", "", "agenda metadata file or URL (overrides config)")

	cmd.AddCommand(serveCmd(a), checkCmd(a), nextCmd(a), agendasCmd(a))
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.agendas != "" {
		cfg.Agendas.Location = a.agendas
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	lvl, _ := config.ParseLevel(cfg.Log.Level)
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(a.logger)
	a.cfg = cfg
	return nil
}

// service wires providers into the use case layer. seed 0 draws from the clock.
func (a *app) service(seed int64) *usecase.Service {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	src := metadata.Open(a.cfg.Agendas.Location)
	sel := progression.NewSelector(progression.Seeded(seed))
	return usecase.NewService(src, sel, validator.New(), a.logger)
}

// watchPath is the metadata file to watch, or "" when there is nothing to watch.
func (a *app) watchPath() string {
	if !a.cfg.Agendas.Watch || a.cfg.WatchesURL() {
		return ""
	}
	return strings.TrimPrefix(a.cfg.Agendas.Location, "file://")
}
