package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Aymnotime/Calculateur--micro-saas-b2b/internal/config"
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/internal/margin"
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/internal/metrics"
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/internal/nir"
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/internal/reimbursement"
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/internal/report"
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/internal/server"
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/pkg/constants"
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/pkg/output"
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/pkg/validation"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "dev"

// options holds the persistent flags shared by every subcommand.
type options struct {
	configPath   string
	logLevel     string
	outputFormat string
}

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
	case "json":
		zapConfig = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
			}
		}

		file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", loggingConfig.OutputFile, err)
		}
		_ = file.Close()

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

// resolveOutputFormat applies the CLI override over the configured format.
func resolveOutputFormat(configured, override string) (string, error) {
	format := configured
	if override != "" {
		format = override
	}
	if format == "" {
		format = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(format); err != nil {
		return "", err
	}
	return format, nil
}

// cliLogger is used by the one-shot calculators, which have no config file.
func cliLogger(opts *options) (*zap.Logger, error) {
	return initializeLogger(config.LoggingConfig{Level: "warn", Format: "console"}, opts.logLevel)
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:          "calculateur",
		Short:        "Calculateurs NIR, remboursement santé et marge e-commerce",
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.outputFormat, "output-format", "", "type of output override: pretty, json")

	rootCmd.AddCommand(runCmd(opts))
	rootCmd.AddCommand(nirCmd(opts))
	rootCmd.AddCommand(reimbursementCmd(opts))
	rootCmd.AddCommand(marginCmd(opts))
	rootCmd.AddCommand(serveCmd(opts))

	return rootCmd
}

func runCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Evaluate every NIR, simulation and product of the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.LoadConfiguration(opts.configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration at %s: %w", opts.configPath, err)
			}

			logger, err := initializeLogger(conf.Logging, opts.logLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			outputFormat, err := resolveOutputFormat(conf.Output.Format, opts.outputFormat)
			if err != nil {
				return err
			}

			for _, warning := range conf.ValidateConfiguration() {
				logger.Warn("Configuration warning: "+warning,
					zap.String("op", "main.run"),
				)
			}

			rep, err := report.Build(logger, *conf)
			if err != nil {
				logger.Error("failed to build report",
					zap.String("op", "main.run"),
					zap.Error(err),
				)
				return err
			}

			return output.Render(cmd.OutOrStdout(), outputFormat, rep)
		},
	}
}

func nirCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "nir <numéro>...",
		Short: "Validate and decode social security numbers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, err := resolveOutputFormat("", opts.outputFormat)
			if err != nil {
				return err
			}

			entries := make([]report.NIREntry, 0, len(args))
			invalid := 0
			for _, raw := range args {
				result := nir.Validate(raw)
				if !result.Valid {
					invalid++
				}
				entries = append(entries, report.NIREntry{Input: raw, Result: result})
			}

			w := cmd.OutOrStdout()
			if outputFormat == constants.OutputFormatJSON {
				if err := output.JSON(w, entries); err != nil {
					return err
				}
			} else {
				for _, e := range entries {
					if err := output.PrettyNIR(w, e.Input, e.Result); err != nil {
						return err
					}
				}
			}

			if invalid > 0 {
				return fmt.Errorf("%d of %d numbers are invalid", invalid, len(args))
			}
			return nil
		},
	}
}

type reimbursementOutput struct {
	Simulation reimbursement.Simulation `json:"simulation"`
	Result     reimbursement.Summary    `json:"result"`
	Sweep      []reimbursement.Point    `json:"sweep,omitempty"`
}

func reimbursementCmd(opts *options) *cobra.Command {
	var (
		sim        config.SimulationConfig
		flatFee    bool
		deductible bool
		sweep      bool
	)

	cmd := &cobra.Command{
		Use:     "remboursement",
		Aliases: []string{"reimbursement"},
		Short:   "Simulate the reimbursement of one medical act",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, err := resolveOutputFormat("", opts.outputFormat)
			if err != nil {
				return err
			}
			logger, err := cliLogger(opts)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			sim.ApplyFlatFee = &flatFee
			sim.ApplyDeductible = &deductible
			input := config.Configuration{Simulations: []config.SimulationConfig{sim}}
			for _, warning := range input.ValidateConfiguration() {
				logger.Warn("Input warning: "+warning, zap.String("op", "main.remboursement"))
			}

			simulation := sim.ToSimulation()
			result, err := reimbursement.Compute(simulation)
			if err != nil {
				return err
			}

			var points []reimbursement.Point
			if sweep {
				points = reimbursement.Sweep(simulation,
					decimal.NewFromFloat(constants.ReimbursementSweepFrom),
					decimal.NewFromFloat(constants.ReimbursementSweepStep),
					constants.ReimbursementSweepPoints,
				)
			}

			w := cmd.OutOrStdout()
			if outputFormat == constants.OutputFormatJSON {
				return output.JSON(w, reimbursementOutput{Simulation: simulation, Result: result.Rounded(), Sweep: points})
			}
			if err := output.PrettyReimbursement(w, simulation, result); err != nil {
				return err
			}
			if len(points) == 0 {
				return nil
			}
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
			return output.PrettyReimbursementSweep(w, points)
		},
	}

	defaults := config.DefaultSimulation()
	flags := cmd.Flags()
	flags.StringVar(&sim.CareType, "care-type", defaults.CareType, "care type: generaliste, specialiste, dentiste, gynecologue, medicament, hospitalisation")
	flags.StringVar(&sim.Sector, "sector", defaults.Sector, "practitioner sector: 1 or 2")
	flags.StringVar(&sim.BilledAmount, "amount", defaults.BilledAmount, "billed amount in euros")
	flags.IntVar(&sim.SupplementalTier, "tier", defaults.SupplementalTier, "supplemental insurance tier in percent")
	flags.BoolVar(&sim.UniversalCoverage, "universal", false, "patient has universal coverage (CSS)")
	flags.BoolVar(&sim.PartialAidCoverage, "partial-aid", false, "patient has partial aid (ACS)")
	flags.BoolVar(&flatFee, "flat-fee", true, "withhold the 1 € flat fee")
	flags.BoolVar(&deductible, "deductible", true, "add the medication deductible")
	flags.BoolVar(&sweep, "sweep", false, "also print the billed amount sweep")

	return cmd
}

type marginOutput struct {
	Params     margin.Params  `json:"params"`
	Margins    margin.Margins `json:"margins"`
	Profitable bool           `json:"profitable"`
	Sweep      []margin.Point `json:"sweep,omitempty"`
}

func marginCmd(opts *options) *cobra.Command {
	var (
		params = margin.DefaultParams()
		sweep  bool
	)

	cmd := &cobra.Command{
		Use:     "marge",
		Aliases: []string{"margin"},
		Short:   "Compute the net margin and ROAS of a product",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, err := resolveOutputFormat("", opts.outputFormat)
			if err != nil {
				return err
			}

			m := margin.Compute(params)
			var points []margin.Point
			if sweep {
				points = margin.Sweep(params, constants.MarginSweepFrom, constants.MarginSweepStep, constants.MarginSweepPoints)
			}

			w := cmd.OutOrStdout()
			if outputFormat == constants.OutputFormatJSON {
				return output.JSON(w, marginOutput{Params: params, Margins: m.Rounded(), Profitable: m.Profitable(), Sweep: points})
			}
			if err := output.PrettyMargins(w, params, m); err != nil {
				return err
			}
			if len(points) == 0 {
				return nil
			}
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
			return output.PrettyMarginSweep(w, points)
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&params.Price, "price", params.Price, "selling price")
	flags.Float64Var(&params.Cost, "cost", params.Cost, "product cost")
	flags.Float64Var(&params.Shipping, "shipping", params.Shipping, "shipping cost")
	flags.Float64Var(&params.PlatformFeePct, "platform-fee-pct", params.PlatformFeePct, "platform fee in percent of the price")
	flags.Float64Var(&params.PlatformFeeFixed, "platform-fee-fixed", params.PlatformFeeFixed, "fixed platform fee")
	flags.Float64Var(&params.PaymentFeePct, "payment-fee-pct", params.PaymentFeePct, "payment fee in percent of the price")
	flags.Float64Var(&params.PaymentFeeFixed, "payment-fee-fixed", params.PaymentFeeFixed, "fixed payment fee")
	flags.Float64Var(&params.AdCost, "ad-cost", params.AdCost, "advertising cost per sale")
	flags.BoolVar(&sweep, "sweep", false, "also print the price sweep")

	return cmd
}

func serveCmd(opts *options) *cobra.Command {
	var (
		serverConfig string
		envFiles     []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the calculator HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := server.LoadEnv(envFiles...); err != nil {
				return err
			}

			cfg, err := server.LoadConfig(serverConfig)
			if err != nil {
				return err
			}

			logger, err := initializeLogger(cfg.Logging, opts.logLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("starting server",
				zap.String("op", "main.serve"),
				zap.String("version", version),
				zap.String("maxBodySize", cfg.MaxBodySize),
			)
			srv := server.New(logger, cfg, metrics.New(), version)
			if err := srv.Run(ctx); err != nil {
				logger.Error("server stopped",
					zap.String("op", "main.serve"),
					zap.Error(err),
				)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&serverConfig, "server-config", constants.DefaultServerConfigFile, "path to the server configuration file")
	cmd.Flags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "dotenv files loaded before the server configuration")

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
