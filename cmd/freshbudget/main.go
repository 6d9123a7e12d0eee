package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/freshbudget/freshbudget/internal/calculation"
	"github.com/freshbudget/freshbudget/internal/config"
	"github.com/freshbudget/freshbudget/internal/output"
	"github.com/freshbudget/freshbudget/internal/server"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newLogger(level string, json bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewDevelopmentConfig()
	if json {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

var rootCmd = &cobra.Command{
	Use:   "freshbudget",
	Short: "Fiscal-year budget projection engine",
	Long:  "Projects fiscal-year revenue, OPEX, CAPEX and cashflow from monthly volume plans.",
}

var calculateCmd = &cobra.Command{
	Use:   "calculate [input-file]",
	Short: "Run a projection from a YAML request file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		outFile, _ := cmd.Flags().GetString("output")
		verbose, _ := cmd.Flags().GetBool("verbose")

		level := "warn"
		if verbose {
			level = "debug"
		}
		logger, err := newLogger(level, false)
		if err != nil {
			return err
		}
		defer logger.Sync()

		parser := config.NewInputParser()
		req, err := parser.LoadFromFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to load input: %w", err)
		}

		engine := calculation.NewEngine(logger)
		result, err := engine.Calculate(req)
		if err != nil {
			return fmt.Errorf("calculation failed: %w", err)
		}

		formatter, err := output.GetFormatter(format)
		if err != nil {
			return err
		}
		rendered, err := formatter.Format(result)
		if err != nil {
			return fmt.Errorf("failed to render %s output: %w", formatter.Name(), err)
		}

		if outFile != "" {
			return os.WriteFile(outFile, rendered, 0o644)
		}
		_, err = os.Stdout.Write(rendered)
		return err
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgFile, _ := cmd.Flags().GetString("config")

		cfg, err := config.LoadAppConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
			cfg.Listen = listen
		}

		logger, err := newLogger(cfg.LogLevel, !cfg.DevMode)
		if err != nil {
			return err
		}
		defer logger.Sync()

		srv, err := server.NewServer(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		defer srv.Close()

		logger.Info("listening", zap.String("addr", cfg.Listen), zap.String("db", cfg.DBPath))
		return srv.Run(cfg.Listen)
	},
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stdout, "freshbudget %s (commit %s, built %s)\n", version, commit, date)
			if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
				fmt.Fprintln(os.Stdout, bi.Main.Path)
			}
		},
	}
}

func init() {
	calculateCmd.Flags().String("format", "console", "Output format: console, csv, json")
	calculateCmd.Flags().String("output", "", "Write output to file instead of stdout")
	calculateCmd.Flags().Bool("verbose", false, "Enable debug logging")

	serveCmd.Flags().String("config", "", "Runtime configuration file")
	serveCmd.Flags().String("listen", "", "Listen address (overrides configuration)")

	rootCmd.AddCommand(calculateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
