// Package main provides the fitcoach command line client. It runs the
// assessment wizard and plan chat in the terminal, or generates a single plan
// from flags.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ashureev/fitcoach/internal/agent"
	"github.com/ashureev/fitcoach/internal/config"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "fitcoach"
)

var errNoAPIKey = errors.New("no model API key configured: set GEMINI_API_KEY or API_KEY")

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	logLevel   string
	logFile    string
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Personal fitness coach in your terminal",
		Long: `FitCoach asks a few questions about your goal, body and lifestyle,
generates a 7-day workout and nutrition plan, and lets you chat with an
assistant about that plan.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file path (YAML); defaults to $"+config.ConfigFileEnv)
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "Write logs to this file instead of stderr")

	cmd.AddCommand(assessCmd(opts), planCmd(opts))

	// Version command
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// newLogger builds the text logger for a subcommand. fallback receives the
// output when no log file is given. The returned closer is never nil.
func (o *globalOptions) newLogger(fallback io.Writer) (*slog.Logger, func(), error) {
	out, closer := fallback, func() {}
	if o.logFile != "" {
		f, err := os.OpenFile(o.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closer = func() { _ = f.Close() }
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: parseLevel(o.logLevel)}))
	slog.SetDefault(logger)
	return logger, closer, nil
}

func (o *globalOptions) loadConfig() (*config.Config, error) {
	if o.configPath != "" {
		return config.LoadFile(o.configPath)
	}
	return config.Load()
}

// newAssistant loads configuration and builds the agent service. It refuses
// to run without an API key since every request would fail.
func (o *globalOptions) newAssistant(ctx context.Context, logger *slog.Logger) (*agent.Service, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if !cfg.AIEnabled() {
		return nil, errNoAPIKey
	}
	convLog, err := agent.NewConversationLogger(cfg.ConversationLogging(), logger)
	if err != nil {
		return nil, fmt.Errorf("conversation logger: %w", err)
	}
	svc, err := agent.NewService(ctx, cfg.Agent(), convLog, logger)
	if err != nil {
		_ = convLog.Close()
		return nil, err
	}
	return svc, nil
}
