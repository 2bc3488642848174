package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	sim "github.com/trafficjam-sim/trafficjam/sim"
	"github.com/trafficjam-sim/trafficjam/sim/trace"
)

var (
	// CLI flags for the road model
	roadLength     int     // Number of cells on the circular road
	numCars        int     // Number of cars on the road
	vmax           int     // Velocity cap in cells per tick
	tmax           float64 // Simulation stop time
	dt             float64 // Clock increment
	probaSlow      float64 // Per-car per-tick braking probability
	seed           int64   // Master seed for placement and braking draws
	timeAccounting string  // "per-car" or "per-tick"

	// CLI flags for config sources and outputs
	configPath    string // YAML road config applied over the preset
	presetName    string // Named preset from the defaults file
	defaultsPath  string // Preset catalogue
	snapshotsPath string // JSON-lines snapshot output ("-" for stdout)
	snapshotCars  bool   // Include cars and moves in snapshots
	traceLevel    string // Decision trace level
	logLevel      string // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "trafficjam",
	Short: "Cellular-automaton traffic simulator for a single-lane circular road",
}

// runCmd executes the simulation using parameters from presets, config files and CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the traffic simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level %q; valid: none, decisions", traceLevel)
		}

		cfg, err := resolveRoadConfig(cmd.Flags())
		if err != nil {
			logrus.Fatalf("Unable to build road configuration: %v", err)
		}

		s := sim.NewSimulator(sim.NewSeededRandomness(cfg.Seed))
		s.EnableTrace(trace.TraceConfig{Level: trace.TraceLevel(traceLevel)})
		if err := s.Initialize(cfg); err != nil {
			logrus.Fatalf("Unable to initialize simulation: %v", err)
		}

		var observe sim.Observer
		if snapshotsPath != "" {
			out, closeOut, err := openOutput(snapshotsPath)
			if err != nil {
				logrus.Fatalf("Unable to open snapshot output: %v", err)
			}
			defer closeOut()
			observe = sim.NewSnapshotWriter(out, snapshotCars).Observe
		}

		startTime := time.Now()
		if err := s.Run(cmd.Context(), observe); err != nil {
			logrus.Errorf("Simulation stopped early: %v", err)
		}
		logrus.Infof("Simulated %d ticks in %v", s.Tick, time.Since(startTime))

		if err := s.Metrics.Print(os.Stdout); err != nil {
			logrus.Fatalf("Unable to print metrics: %v", err)
		}
		if s.Trace != nil {
			printTraceSummary(trace.Summarize(s.Trace))
		}
		logrus.Info("Simulation complete.")
	},
}

// resolveRoadConfig layers the configuration sources: defaults, then the
// preset, then the config file, then every flag explicitly set on flags.
func resolveRoadConfig(flags *pflag.FlagSet) (sim.RoadConfig, error) {
	cfg := sim.DefaultRoadConfig()
	if presetName != "" {
		preset, err := LookupPreset(defaultsPath, presetName)
		if err != nil {
			return sim.RoadConfig{}, err
		}
		cfg = preset
	}
	if configPath != "" {
		loaded, err := sim.LoadRoadConfig(configPath, cfg)
		if err != nil {
			return sim.RoadConfig{}, err
		}
		cfg = loaded
	}

	// Explicit flags always win over presets and files
	if flags.Changed("length") {
		cfg.Length = roadLength
	}
	if flags.Changed("nb-cars") {
		cfg.NumCars = numCars
	}
	if flags.Changed("vmax") {
		cfg.VMax = vmax
	}
	if flags.Changed("tmax") {
		cfg.TMax = tmax
	}
	if flags.Changed("dt") {
		cfg.DT = dt
	}
	if flags.Changed("proba-slow") {
		cfg.ProbaSlow = probaSlow
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("time-accounting") {
		cfg.TimeAccounting = sim.TimeAccounting(timeAccounting)
	}
	return cfg, cfg.Validate()
}

func openOutput(path string) (*os.File, func(), error) {
	if path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() {
		if err := f.Close(); err != nil {
			logrus.Errorf("Error closing %s: %v", path, err)
		}
	}, nil
}

func printTraceSummary(summary *trace.TraceSummary) {
	fmt.Println("=== Decision Trace ===")
	fmt.Printf("No-passing clamps    : %d (%d distinct slots)\n", summary.TotalClamps, summary.ClampedCars)
	fmt.Printf("Wraparounds          : %d\n", summary.TotalWraps)
	fmt.Printf("Mean overshoot       : %.2f cells\n", summary.MeanOvershoot)
	fmt.Printf("Max overshoot        : %d cells\n", summary.MaxOvershoot)
}

// Execute runs the CLI root command. An interrupt cancels the run between ticks.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// bindRunFlags registers the run flags on fs, resetting the flag variables to
// their defaults.
func bindRunFlags(fs *pflag.FlagSet) {
	defaults := sim.DefaultRoadConfig()

	// Road model
	fs.IntVar(&roadLength, "length", defaults.Length, "Number of cells on the circular road")
	fs.IntVar(&numCars, "nb-cars", defaults.NumCars, "Number of cars (at most the road length)")
	fs.IntVar(&vmax, "vmax", defaults.VMax, "Velocity cap in cells per tick")
	fs.Float64Var(&tmax, "tmax", defaults.TMax, "Simulation stop time")
	fs.Float64Var(&dt, "dt", defaults.DT, "Clock increment")
	fs.Float64Var(&probaSlow, "proba-slow", defaults.ProbaSlow, "Per-car per-tick braking probability")
	fs.Int64Var(&seed, "seed", defaults.Seed, "Seed for initial velocities and braking draws")
	fs.StringVar(&timeAccounting, "time-accounting", string(defaults.TimeAccounting), "Clock advance: per-car (dt after every car) or per-tick")

	// Config sources
	fs.StringVar(&configPath, "config", "", "YAML road configuration file")
	fs.StringVar(&presetName, "preset", "", "Named road preset from the defaults file")
	fs.StringVar(&defaultsPath, "defaults", "defaults.yaml", "Path to the preset catalogue")

	// Outputs
	fs.StringVar(&snapshotsPath, "snapshots", "", "Write per-tick occupancy and density as JSON lines to this path (- for stdout)")
	fs.BoolVar(&snapshotCars, "snapshot-cars", false, "Include cars and moves in snapshots")
	fs.StringVar(&traceLevel, "trace", string(trace.TraceLevelNone), "Decision trace level (none, decisions)")
	fs.StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
}

// init sets up CLI flags and subcommands
func init() {
	bindRunFlags(runCmd.Flags())

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
