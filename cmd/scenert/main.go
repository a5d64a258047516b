package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/l1jgo/scenert/internal/config"
	"github.com/l1jgo/scenert/internal/core/dispose"
	"github.com/l1jgo/scenert/internal/core/ecs"
	coresys "github.com/l1jgo/scenert/internal/core/system"
	"github.com/l1jgo/scenert/internal/data"
	"github.com/l1jgo/scenert/internal/metrics"
	"github.com/l1jgo/scenert/internal/scripting"
	"github.com/l1jgo/scenert/internal/stage"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(name string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              scenert  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mruntime:\033[0m %s\n\n", name)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Runtime ───────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/scenert.toml"
	if p := os.Getenv("SCENERT_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Runtime.Name)

	// 3. World, classes and scene
	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.host.Destroy()

	var srv *http.Server
	if a.collector != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", a.collector.Handler())
		srv = &http.Server{Addr: cfg.Metrics.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server", zap.Error(err))
			}
		}()
	}

	// 4. Start frame loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Runtime.TickRate)
	defer ticker.Stop()

	printSection("ready")
	if srv != nil {
		printReady(fmt.Sprintf("metrics on %s/metrics", cfg.Metrics.Listen))
	}
	printReady(fmt.Sprintf("frame loop (tick: %s)", cfg.Runtime.TickRate))
	fmt.Println()

	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			if dt > cfg.Runtime.MaxDelta {
				dt = cfg.Runtime.MaxDelta
			}
			a.runner.Tick(dt)
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			hardReset(a.world, log)
			if srv != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				_ = srv.Shutdown(ctx)
				cancel()
			}
			log.Info("stopped")
			return nil
		}
	}
}

// app is the wired runtime: the world, its root, the frame runner and the
// host node owning resources that outlive a hard reset of the world.
type app struct {
	world     *ecs.World
	root      *stage.Stage
	runner    *coresys.Runner
	host      *ecs.Node
	collector *metrics.Collector
}

func newApp(cfg *config.Config, log *zap.Logger) (*app, error) {
	printSection("world")
	id := uuid.New()
	opts := []ecs.Option{ecs.WithID(id)}
	a := &app{host: ecs.NewNode(nil)}
	if cfg.Metrics.Enabled {
		a.collector = metrics.New(cfg.Metrics.Namespace, id.String())
		opts = append(opts, ecs.WithObserver(a.collector))
	}
	w := ecs.NewWorld(log, opts...)
	a.world = w
	printOK(fmt.Sprintf("world %s", w.ID()))

	// Each hard reset builds a new engine; the previous VM is closed then.
	closeEngine := dispose.NewVariable[func()](nil)
	if err := a.host.Attach(closeEngine); err != nil {
		return nil, fmt.Errorf("attach engine closer: %w", err)
	}
	if err := w.Services().Provide(func() (*scripting.Engine, error) {
		if prev := closeEngine.Value(); prev != nil {
			prev()
			closeEngine.Clear()
		}
		eng, err := scripting.NewEngine(cfg.Runtime.ScriptsDir, log.Named("lua"))
		if err != nil {
			return nil, err
		}
		closeEngine.Set(eng.Close)
		return eng, nil
	}); err != nil {
		return nil, fmt.Errorf("provide lua engine: %w", err)
	}

	if err := stage.Register(w); err != nil {
		return nil, fmt.Errorf("register stage: %w", err)
	}
	if err := scripting.Register(w); err != nil {
		return nil, fmt.Errorf("register scripted: %w", err)
	}
	root, err := stage.New(w, cfg.Runtime.Name)
	if err != nil {
		return nil, fmt.Errorf("spawn stage: %w", err)
	}
	a.root = root

	printSection("scene")
	scene, err := data.LoadScene(cfg.Runtime.Scene)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Warn("scene not found, starting empty", zap.String("path", cfg.Runtime.Scene))
	case err != nil:
		return nil, fmt.Errorf("load scene: %w", err)
	default:
		objs, err := scene.Spawn(w, root)
		if err != nil {
			return nil, fmt.Errorf("spawn scene: %w", err)
		}
		printStat("entities spawned", len(objs))
	}
	fmt.Println()

	a.runner = coresys.NewRunner()
	a.runner.Register(coresys.NewDrainSystem(w, func(err error) {
		log.Error("lifecycle violation", zap.Error(err))
	}))
	a.runner.Register(coresys.NewUpdateSystem(w))
	a.runner.Register(coresys.NewStatsSystem(w, log, cfg.Runtime.StatsEvery))
	if a.collector != nil {
		a.runner.ObserveFrames(a.collector.ObserveFrame)
	}

	// Materialize the scene before the first frame.
	a.runner.TickPhase(coresys.PhaseDrain, 0)
	return a, nil
}

// hardReset tears the world down, logging disposal failures instead of
// crashing on the way out.
func hardReset(w *ecs.World, log *zap.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("hard reset", zap.Any("panic", r))
		}
	}()
	w.HardReset()
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
