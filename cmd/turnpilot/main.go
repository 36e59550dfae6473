package main

import (
	"bytes"
	"context"
	_ "embed"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/turnpilot/turnpilot/internal/arena"
	"github.com/turnpilot/turnpilot/internal/core/bt"
	"github.com/turnpilot/turnpilot/internal/core/observability/log"
)

//go:embed config.yaml
var defaultConfig []byte

type options struct {
	configPath string
	levelName  string
	size       int
	seed       int64
	bots       int
	maxTurns   int
	delay      time.Duration
}

func main() {
	opts := options{}
	flag.StringVar(&opts.configPath, "config", "", "behavior config file (.yaml or .json), built-in strategy when empty")
	flag.StringVar(&opts.levelName, "level", "the-gauntlet", "built-in level name, or 'generated'")
	flag.IntVar(&opts.size, "size", 16, "corridor size for generated levels")
	flag.Int64Var(&opts.seed, "seed", time.Now().UnixNano(), "seed for generated levels")
	flag.IntVar(&opts.bots, "bots", 1, "number of warriors, each in its own corridor")
	flag.IntVar(&opts.maxTurns, "turns", 120, "turn budget before a run is called off")
	flag.DurationVar(&opts.delay, "delay", 150*time.Millisecond, "pause between turns")
	logLevel := flag.String("log", "warn", "log level: debug, info, warn, error")
	flag.Parse()

	logger := log.New(log.ParseLevel(*logLevel))
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintln(os.Stderr, "turnpilot:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	reg := bt.NewRegistry()
	bt.RegisterBuiltins(reg)
	arena.Register(reg)

	level, err := pickLevel(opts)
	if err != nil {
		return err
	}

	if opts.bots > 1 {
		return runMany(ctx, cfg, reg, level, opts)
	}
	return runSingle(ctx, cfg, reg, level, opts)
}

func loadConfig(path string) (*bt.Config, error) {
	if path == "" {
		return bt.LoadYAML(bytes.NewReader(defaultConfig))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	if filepath.Ext(path) == ".json" {
		return bt.LoadJSON(f)
	}
	return bt.LoadYAML(f)
}

func pickLevel(opts options) (arena.Level, error) {
	if opts.levelName == "generated" {
		return arena.GenerateLevel(opts.size, opts.seed), nil
	}
	level, ok := arena.LevelByName(opts.levelName)
	if !ok {
		names := make([]string, 0, len(arena.Levels()))
		for _, l := range arena.Levels() {
			names = append(names, l.Name)
		}
		return arena.Level{}, fmt.Errorf("unknown level %q (have %s, or 'generated')",
			opts.levelName, strings.Join(names, ", "))
	}
	return level, nil
}

func runSingle(ctx context.Context, cfg *bt.Config, reg *bt.Registry, level arena.Level, opts options) error {
	world, err := arena.NewWorld(level)
	if err != nil {
		return err
	}
	tree, sensors, err := cfg.Build(reg)
	if err != nil {
		return err
	}
	driver := bt.NewDriver("warrior-1", tree, nil, nil, sensors).
		WithSnapshot(arena.TakeSnapshot)
	wr := world.Warrior()

	fmt.Printf("level %s, strategy %s (%016x)\n", level.Name, tree.Name(), tree.Fingerprint())
	fmt.Println(world.Render())

	for !world.Over() && world.Turn() < opts.maxTurns {
		status, err := driver.PlayTurn(ctx, wr)
		if err != nil {
			return fmt.Errorf("turn %d: %w", world.Turn()+1, err)
		}
		world.Resolve()

		fmt.Printf("turn=%03d %s hp=%2d/%d %v\n",
			world.Turn(), world.Render(), wr.Health(), wr.MaxHealth(), status)
		for _, ev := range world.Events() {
			fmt.Println("         " + ev)
		}

		select {
		case <-ctx.Done():
			fmt.Println("interrupted")
			return nil
		case <-time.After(opts.delay):
		}
	}

	printOutcome(world)
	return nil
}

func runMany(ctx context.Context, cfg *bt.Config, reg *bt.Registry, level arena.Level, opts options) error {
	manager := bt.NewManager()
	worlds := make(map[string]*arena.World, opts.bots)

	for i := 1; i <= opts.bots; i++ {
		world, err := arena.NewWorld(level)
		if err != nil {
			return err
		}
		// Each bot gets its own tree instance so cursor and hook state
		// never leak between corridors.
		tree, sensors, err := cfg.Build(reg)
		if err != nil {
			return err
		}
		id := fmt.Sprintf("warrior-%d", i)
		driver := bt.NewDriver(id, tree, nil, nil, sensors).
			WithSnapshot(arena.TakeSnapshot)
		if err := manager.Add(driver, world.Warrior()); err != nil {
			return err
		}
		worlds[id] = world
	}

	fmt.Printf("level %s, %d warriors\n", level.Name, opts.bots)

	for turn := 1; turn <= opts.maxTurns && manager.Len() > 0; turn++ {
		if _, err := manager.PlayAll(ctx); err != nil {
			return fmt.Errorf("turn %d: %w", turn, err)
		}
		for _, id := range manager.IDs() {
			world := worlds[id]
			world.Resolve()
			if world.Over() {
				manager.Remove(id)
				fmt.Printf("turn=%03d %s %s\n", turn, id, verdict(world))
			}
		}

		select {
		case <-ctx.Done():
			fmt.Println("interrupted")
			return nil
		case <-time.After(opts.delay):
		}
	}

	ids := make([]string, 0, len(worlds))
	for id := range worlds {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	escaped := 0
	for _, id := range ids {
		world := worlds[id]
		fmt.Printf("%s: %s %s\n", id, verdict(world), world.Render())
		if world.Escaped() {
			escaped++
		}
	}
	fmt.Printf("%d/%d warriors escaped\n", escaped, opts.bots)
	return nil
}

func verdict(w *arena.World) string {
	switch {
	case w.Escaped():
		return fmt.Sprintf("escaped on turn %d (%d slain, %d rescued, %d/%d hp)",
			w.Turn(), w.Slain(), w.Rescued(), w.Warrior().Health(), w.Warrior().MaxHealth())
	case w.Dead():
		return fmt.Sprintf("fell on turn %d", w.Turn())
	default:
		return fmt.Sprintf("still in the corridor after %d turns", w.Turn())
	}
}

func printOutcome(w *arena.World) {
	fmt.Println(verdict(w))
	if w.Escaped() {
		fmt.Println("the corridor stands empty.")
	}
}
