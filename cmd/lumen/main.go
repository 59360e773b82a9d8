package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/lumen3d/lumen/internal/config"
	"github.com/lumen3d/lumen/internal/engine"
	"github.com/lumen3d/lumen/internal/render"
	"github.com/pkg/profile"
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

func printBanner(scene string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m               lumen  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m       ECS · transforms · shadow maps      \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mscene:\033[0m %s\n\n", scene)
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

// ── Engine loop ───────────────────────────────────────────────────

func run() error {
	profileMode := flag.String("profile", "", "write a cpu or mem profile to the working directory")
	scenePath := flag.String("scene", "", "scene file, overrides engine.scene")
	flag.Parse()

	switch *profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		return fmt.Errorf("unknown profile mode %q", *profileMode)
	}

	// 1. Load config
	cfgPath := "config/lumen.toml"
	if p := os.Getenv("LUMEN_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *scenePath != "" {
		cfg.Engine.Scene = *scenePath
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Engine.Scene)

	// 3. Engine and scene
	printSection("engine")
	rec := render.NewRecorder()
	eng, err := engine.New(cfg, cfgPath, rec, log)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	defer eng.Close()
	if err := eng.LoadScene(cfg.Engine.Scene); err != nil {
		return fmt.Errorf("scene: %w", err)
	}
	printOK("scene loaded")
	printStat("entities", eng.World.Entities.Len())
	printStat("meshes", eng.Meshes.Pool().Len())
	printStat("systems", len(eng.World.Systems.Systems()))
	fmt.Println()

	// 4. Hot reload
	watchDirs := []string{filepath.Dir(cfgPath), filepath.Dir(cfg.Engine.Scene)}
	if cfg.Scripting.Enabled {
		watchDirs = append(watchDirs, cfg.Scripting.Dir)
	}
	watcher, err := config.NewWatcher(dedupe(watchDirs)...)
	if err != nil {
		log.Warn("hot reload disabled", zap.Error(err))
	} else {
		defer watcher.Close()
	}

	// 5. Start engine loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Engine.TickRate)
	defer ticker.Stop()

	printSection("running")
	printReady(fmt.Sprintf("engine loop started (tick: %s)", cfg.Engine.TickRate))
	if cfg.Engine.MaxTicks > 0 {
		printReady(fmt.Sprintf("stopping after %d ticks", cfg.Engine.MaxTicks))
	}
	fmt.Println()

	var events <-chan string
	var watchErrs <-chan error
	if watcher != nil {
		events, watchErrs = watcher.Events, watcher.Errors
	}

	ops := make(map[render.Op]int)
	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			if err := eng.Tick(dt); err != nil {
				return fmt.Errorf("tick %d: %w", eng.World.Tick(), err)
			}
			for _, c := range rec.Commands {
				ops[c.Op]++
			}
			rec.Reset()
			if cfg.Engine.MaxTicks > 0 && eng.World.Tick() >= cfg.Engine.MaxTicks {
				printSummary(eng, ops)
				return nil
			}
		case path, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			eng.FileChanged(path)
		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			log.Warn("file watcher", zap.Error(err))
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			printSummary(eng, ops)
			return nil
		}
	}
}

func printSummary(eng *engine.Engine, ops map[render.Op]int) {
	st := eng.Renderer.Stats()
	fmt.Println()
	printSection("summary")
	printStat("ticks", int(eng.World.Tick()))
	printStat("frames", int(st.Frame))
	printStat("entities destroyed", eng.Destroyed())
	printStat("shadow cameras (last frame)", st.ShadowCameras)
	printStat("draws (last frame)", st.Draws)
	names := make([]string, 0, len(ops))
	for op := range ops {
		names = append(names, string(op))
	}
	sort.Strings(names)
	for _, name := range names {
		printStat(name, ops[render.Op(name)])
	}
}

func dedupe(dirs []string) []string {
	seen := make(map[string]bool, len(dirs))
	out := dirs[:0]
	for _, d := range dirs {
		d = filepath.Clean(d)
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
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
