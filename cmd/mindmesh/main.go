// Command mindmesh runs the coordination runtime with simulated gesture
// input, printing the directives the minds emit. It is the development
// harness for tuning descriptors: point --config at a YAML file and edit it
// while the session runs.
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/mindmesh"
	"github.com/hupe1980/mindmesh/config"
	"github.com/hupe1980/mindmesh/core"
	"github.com/hupe1980/mindmesh/logging"
	"github.com/hupe1980/mindmesh/persist"
)

var (
	configPath   string
	snapshotPath string
	duration     time.Duration
	interval     time.Duration
	seed         int64
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "mindmesh",
	Short: "mindmesh - coordination runtime for the generative instrument",
	Long: `mindmesh drives the instrument's mind ensemble (conductor, texture,
dynamics) against simulated gesture input and prints the directives they
emit. Descriptors and tuning come from a YAML config file, hot-reloaded while
the session runs.`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a session until interrupted or --duration elapses",
	RunE:  runSession,
}

func init() {
	runCmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file (optional)")
	runCmd.Flags().StringVar(&snapshotPath, "snapshot", "", "JSON snapshot file for learning state (optional)")
	runCmd.Flags().DurationVarP(&duration, "duration", "d", 0, "session length, 0 runs until interrupted")
	runCmd.Flags().DurationVar(&interval, "interval", 0, "tick period, 0 uses the configured interval_ms")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "random seed, 0 seeds from the clock")
	runCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.AddCommand(runCmd)
}

func runSession(cmd *cobra.Command, args []string) error {
	zapCfg := zap.NewProductionConfig()
	if verbose {
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	zl, err := zapCfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()
	logger := logging.NewZapAdapter(zl)

	cfg := config.Default()
	if configPath != "" {
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
	}
	if interval > 0 {
		cfg.Runtime.IntervalMS = int(interval / time.Millisecond)
	}

	signals := core.NewSimulatedSignals(cfg.Signals.Era)
	signals.SetActivity(cfg.Signals.Activity)
	signals.SetZone(cfg.Signals.Zone)

	directives := core.NewChannelSink(256)

	// Learning state always flows through a store so a hot reload, which
	// rebuilds the session, keeps what the minds have learned. A snapshot
	// path additionally makes it survive the process.
	var store persist.Store = persist.NewMemoryStore()
	if snapshotPath != "" {
		store = persist.NewFileStore(snapshotPath)
	}

	newSession := func(c *config.Config) (*mindmesh.MindMesh, error) {
		return mindmesh.NewFromConfig(c, func(o *mindmesh.Options) {
			o.Seed = seed
			o.Signals = signals
			o.Sink = directives
			o.SnapshotStore = store
			o.Logger = logger
		})
	}

	m, err := newSession(cfg)
	if err != nil {
		return err
	}

	// sessMu guards the current session and the activity baseline against
	// the watcher goroutine swapping them mid-reload.
	var sessMu sync.Mutex
	baseActivity := cfg.Signals.Activity

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if duration > 0 {
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	if err := m.Start(); err != nil {
		return err
	}

	if configPath != "" {
		watcher, err := config.NewWatcher(configPath, func(fresh *config.Config) {
			if interval > 0 {
				fresh.Runtime.IntervalMS = int(interval / time.Millisecond)
			}
			signals.SetEra(fresh.Signals.Era)
			signals.SetActivity(fresh.Signals.Activity)
			signals.SetZone(fresh.Signals.Zone)

			// Descriptor and runtime changes need a rebuilt ensemble. The
			// store carries the learned state across the swap.
			next, err := newSession(fresh)
			if err != nil {
				logger.Error("config reload rejected", "error", err)
				return
			}
			sessMu.Lock()
			defer sessMu.Unlock()
			if err := m.Stop(); err != nil {
				logger.Error("session teardown failed", "error", err)
			}
			if err := next.Start(); err != nil {
				logger.Error("reloaded session failed to start", "error", err)
				return
			}
			m = next
			baseActivity = fresh.Signals.Activity
			logger.Info("session rebuilt from config", "path", configPath)
		}, func(o *config.WatcherOptions) {
			o.Logger = logger
		})
		if err != nil {
			return fmt.Errorf("config watcher: %w", err)
		}
		if err := watcher.Start(); err != nil {
			return fmt.Errorf("config watcher: %w", err)
		}
		defer watcher.Stop()
	}

	g, gctx := errgroup.WithContext(ctx)

	// Print directives until the session ends.
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case d := <-directives.C():
				fmt.Printf("%s  %-18s %v\n", d.Timestamp.Format("15:04:05.000"), d.Kind, d.Params)
			}
		}
	})

	// Drift the simulated activity with a slow sine plus the configured
	// baseline, standing in for gesture input.
	g.Go(func() error {
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		start := time.Now()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				elapsed := time.Since(start).Seconds()
				wave := 0.3 * math.Sin(elapsed/7)
				sessMu.Lock()
				base := baseActivity
				sessMu.Unlock()
				signals.SetActivity(base + wave)
				signals.Advance(1, 4)
			}
		}
	})

	err = g.Wait()

	sessMu.Lock()
	stopErr := m.Stop()
	sessMu.Unlock()
	if stopErr != nil {
		logger.Error("session teardown failed", "error", stopErr)
	}
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
