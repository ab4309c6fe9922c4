package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/parcel-sim/parcel-sim/sim"
	"github.com/parcel-sim/parcel-sim/sim/trace"
)

// envPrefix names the environment variables that provide flag defaults,
// e.g. PARCELSIM_SEED for --seed or PARCELSIM_FRAME_MS for --frame-ms.
const envPrefix = "PARCELSIM_"

var (
	// shared flags
	seed         int64   // Seed for queue row selection
	speed        float64 // Clock speed multiplier (simulated minutes per real second)
	scenarioPath string  // YAML scenario overlaid on the defaults
	logLevel     string  // Log verbosity level
	traceLevel   string  // Decision trace level

	// run flags
	durationMinutes float64 // Simulated minutes to run
	frameMs         float64 // Real milliseconds per frame
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "parcel-sim",
	Short: "Tick-driven simulator for a parcel-sorting facility",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := applyEnvDefaults(cmd.Flags()); err != nil {
			return err
		}
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q", logLevel)
		}
		logrus.SetLevel(level)
		return nil
	},
}

// runCmd advances a headless simulation and prints its metrics
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a headless simulation and print metrics",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := buildConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if durationMinutes <= 0 {
			logrus.Fatalf("--duration must be positive, got %f", durationMinutes)
		}
		if frameMs <= 0 {
			logrus.Fatalf("--frame-ms must be positive, got %f", frameMs)
		}

		s, err := sim.NewSimulator(cfg, seed)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("Starting run %s at %s, %g simulated minutes at %gx", s.RunID, s.Clock, durationMinutes, cfg.Clock.Speed)

		s.Run(realMs(durationMinutes, cfg.Clock.Speed), frameMs)

		fmt.Fprintf(os.Stdout, "Simulation ended at %s\n", s.Clock)
		s.Metrics.Print(os.Stdout)
		if s.Trace.Enabled() {
			printTraceSummary(os.Stdout, trace.Summarize(s.Trace))
		}
		logrus.Info("Simulation complete.")
	},
}

// scenarioCmd prints the effective scenario so it can be saved and edited.
var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Print the effective scenario as YAML",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := buildConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		out, err := sim.MarshalScenario(cfg)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		os.Stdout.Write(out)
	},
}

// realMs converts simulated minutes into real milliseconds: one real second
// at 1x is one simulated minute.
func realMs(minutes, speed float64) float64 {
	return minutes * 1000 / speed
}

// buildConfig loads the scenario (or defaults) and applies flag overrides.
// Only flags the user actually set override the file.
func buildConfig(cmd *cobra.Command) (sim.Config, error) {
	cfg := sim.DefaultConfig()
	if scenarioPath != "" {
		loaded, err := sim.LoadScenario(scenarioPath)
		if err != nil {
			return sim.Config{}, err
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("speed") {
		cfg.Clock.Speed = speed
	}
	if flags.Changed("trace") {
		cfg.TraceLevel = traceLevel
	}
	if err := cfg.Validate(); err != nil {
		return sim.Config{}, fmt.Errorf("invalid scenario: %w", err)
	}
	return cfg, nil
}

// applyEnvDefaults loads an optional .env file and sets every flag the user
// did not pass from its PARCELSIM_* variable.
func applyEnvDefaults(flags *pflag.FlagSet) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.Warnf("reading .env: %v", err)
	}
	var firstErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed || firstErr != nil {
			return
		}
		val, ok := os.LookupEnv(envName(f.Name))
		if !ok {
			return
		}
		if err := flags.Set(f.Name, val); err != nil {
			firstErr = fmt.Errorf("%s: %w", envName(f.Name), err)
		}
	})
	return firstErr
}

func envName(flag string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	pf := rootCmd.PersistentFlags()
	pf.Int64Var(&seed, "seed", 42, "Seed for queue row selection")
	pf.Float64Var(&speed, "speed", 1, "Clock speed multiplier (simulated minutes per real second)")
	pf.StringVar(&scenarioPath, "config", "", "YAML scenario file overlaid on the defaults")
	pf.StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	pf.StringVar(&traceLevel, "trace", "none", "Decision trace level (none, decisions)")

	runCmd.Flags().Float64Var(&durationMinutes, "duration", 24*60, "Simulated minutes to run")
	runCmd.Flags().Float64Var(&frameMs, "frame-ms", 1000.0/60, "Real milliseconds per frame")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scenarioCmd)
	rootCmd.AddCommand(serveCmd)
}
