package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"sort"
	"strings"

	"github.com/danmuck/savestate/internal/avatar"
	"github.com/danmuck/savestate/internal/codec"
	"github.com/danmuck/savestate/internal/config"
	"github.com/danmuck/savestate/internal/identity"
	"github.com/danmuck/savestate/internal/layout"
	"github.com/danmuck/savestate/internal/logging"
	"github.com/danmuck/savestate/internal/migrate"
	"github.com/danmuck/savestate/internal/page"
	"github.com/danmuck/savestate/internal/session"
	"github.com/danmuck/savestate/internal/store/sqlite"
)

const usage = `usage: savestatectl [-config file.toml] <command> [flags]

commands:
  plan        -vars <vars.toml>                    plan and pack declared variables
  coordinate  -seed <key> [-chain n]               print the key coordinate for a seed
  migrate     -legacy <legacy.toml> -out <layout>  convert a legacy record into carriers
  simulate    -layout <layout> -values <values>    encode, transmit and decode every carrier
  store       -layout <layout> | -list             save carriers to or list the registry
`

var errUsage = errors.New("invalid usage")

func main() {
	logging.ConfigureRuntime()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("savestatectl", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", "", "tool config file (toml)")
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	if err := global.Parse(args); err != nil {
		return 2
	}
	rest := global.Args()
	if len(rest) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "savestatectl: %v\n", err)
		return 1
	}

	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "plan":
		err = runPlan(cfg, cmdArgs, stdout, stderr)
	case "coordinate":
		err = runCoordinate(cmdArgs, stdout, stderr)
	case "migrate":
		err = runMigrate(cmdArgs, stdout, stderr)
	case "simulate":
		err = runSimulate(cfg, cmdArgs, stdout, stderr)
	case "store":
		err = runStore(cfg, cmdArgs, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "savestatectl: unknown command %q\n", cmd)
		fmt.Fprint(stderr, usage)
		return 2
	}
	if errors.Is(err, errUsage) {
		return 2
	}
	if err != nil {
		fmt.Fprintf(stderr, "savestatectl %s: %v\n", cmd, err)
		return 1
	}
	return 0
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return nil
}

func required(fs *flag.FlagSet, stderr io.Writer, values map[string]string) error {
	for name, v := range values {
		if strings.TrimSpace(v) == "" {
			fmt.Fprintf(stderr, "%s: -%s is required\n", fs.Name(), name)
			return errUsage
		}
	}
	return nil
}

func packer(cfg config.Config) page.Packer {
	return page.Packer{CapacityBits: cfg.CapacityBits, MaxFrames: page.MaxPageCount}
}

func printIssues(w io.Writer, issues []error) {
	for _, issue := range issues {
		fmt.Fprintf(w, "warning: %v\n", issue)
	}
}

func runPlan(cfg config.Config, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("plan", stderr)
	varsPath := fs.String("vars", "", "variable declarations (toml)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := required(fs, stderr, map[string]string{"vars": *varsPath}); err != nil {
		return err
	}

	vars, err := avatar.LoadVariables(*varsPath)
	if err != nil {
		return err
	}
	slots, issues := layout.Plan(vars)
	res, err := packer(cfg).Pack(slots)
	if err != nil {
		return err
	}
	printIssues(stderr, append(issues, res.Issues()...))

	fmt.Fprintf(stdout, "slots=%d bits=%d frames=%d\n", len(slots), res.BitCount(), len(res.Frames))
	for _, f := range res.Frames {
		fmt.Fprintf(stdout, "frame %d: bits=%d/%d channels=%d batches=%d\n",
			f.Index, f.BitCount, f.CapacityBits, f.ChannelCount(), codec.BatchCount(f.ChannelCount()))
		offsets := f.Offsets()
		for i, s := range f.Slots {
			fmt.Fprintf(stdout, "  %-24s %-10s bits=%-3d offset=%d\n", s.Name, s.Kind, s.BitWidth, offsets[i])
		}
		words := make([]string, f.WordCount())
		for w := range words {
			words[w] = f.WordName(page.DefaultParameterName, w)
		}
		fmt.Fprintf(stdout, "  words: %s\n", strings.Join(words, " "))
	}
	return nil
}

func runCoordinate(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("coordinate", stderr)
	seed := fs.String("seed", "", "encryption key")
	chain := fs.Int("chain", 1, "number of chained coordinates to print")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := required(fs, stderr, map[string]string{"seed": *seed}); err != nil {
		return err
	}
	if *chain < 1 {
		return fmt.Errorf("chain must be at least 1, got %d", *chain)
	}
	for i, c := range identity.Chain(*seed, *chain) {
		fmt.Fprintf(stdout, "%d: %.7f %.7f %.7f\n", i, c.X(), c.Y(), c.Z())
	}
	return nil
}

func runMigrate(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("migrate", stderr)
	legacyPath := fs.String("legacy", "", "legacy record (toml)")
	outPath := fs.String("out", "", "carrier layout to write (toml)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := required(fs, stderr, map[string]string{"legacy": *legacyPath, "out": *outPath}); err != nil {
		return err
	}

	prefs, state, instructions, err := migrate.LoadFile(*legacyPath)
	if err != nil {
		return err
	}
	res, err := migrate.Migrate(prefs, state, instructions)
	if err != nil {
		return err
	}
	printIssues(stderr, res.Issues)
	if err := avatar.WriteFile(*outPath, res.Definitions); err != nil {
		return err
	}
	for _, d := range res.Definitions {
		fmt.Fprintf(stdout, "%s: bits=%d legacy=%t parameter=%s\n", d.Name, d.BitCount, d.IsLegacy, d.Parameter())
	}
	return nil
}

func runSimulate(cfg config.Config, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("simulate", stderr)
	layoutPath := fs.String("layout", "", "carrier layout (toml)")
	valuesPath := fs.String("values", "", "values to transmit (toml)")
	only := fs.String("carrier", "", "simulate only this carrier")
	seed := fs.Uint64("seed", 1, "jitter random seed")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := required(fs, stderr, map[string]string{"layout": *layoutPath, "values": *valuesPath}); err != nil {
		return err
	}

	defs, issues, err := avatar.LoadFile(*layoutPath)
	if err != nil {
		return err
	}
	printIssues(stderr, issues)
	values, err := avatar.LoadValues(*valuesPath)
	if err != nil {
		return err
	}

	tx := session.Transmitter{
		HoldTicks: cfg.HoldTicks,
		Jitter:    cfg.Jitter,
		Rand:      rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15)),
	}
	ran := 0
	for _, d := range defs {
		if *only != "" && d.Name != *only {
			continue
		}
		ran++
		res, err := packer(cfg).Pack(d.Slots)
		if err != nil {
			return fmt.Errorf("carrier %q: %w", d.Name, err)
		}
		printIssues(stderr, res.Issues())
		out, err := session.Simulate(res.Frames, d.Parameter(), values, tx)
		if err != nil {
			return fmt.Errorf("carrier %q: %w", d.Name, err)
		}
		fmt.Fprintf(stdout, "%s: frames=%d ticks=%d\n", d.Name, len(res.Frames), out.Ticks)
		names := make([]string, 0, len(out.Values))
		for name := range out.Values {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(stdout, "  %s = %v\n", name, out.Values[name])
		}
	}
	if *only != "" && ran == 0 {
		return fmt.Errorf("carrier %q not in layout", *only)
	}
	return nil
}

func runStore(cfg config.Config, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("store", stderr)
	layoutPath := fs.String("layout", "", "carrier layout to save (toml)")
	list := fs.Bool("list", false, "list saved carriers")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if !*list && strings.TrimSpace(*layoutPath) == "" {
		fmt.Fprintln(stderr, "store: -layout or -list is required")
		return errUsage
	}

	st, err := sqlite.Open(cfg.StorePath)
	if err != nil {
		return err
	}
	defer st.Close()
	ctx := context.Background()

	if *layoutPath != "" {
		defs, issues, err := avatar.LoadFile(*layoutPath)
		if err != nil {
			return err
		}
		printIssues(stderr, issues)
		for _, d := range defs {
			if err := st.SaveDefinition(ctx, d); err != nil {
				return fmt.Errorf("carrier %q: %w", d.Name, err)
			}
		}
		fmt.Fprintf(stdout, "saved %d carriers to %s\n", len(defs), cfg.StorePath)
	}
	if *list {
		defs, err := st.ListDefinitions(ctx)
		if err != nil {
			return err
		}
		for _, d := range defs {
			c := d.Coordinate()
			fmt.Fprintf(stdout, "%s: slots=%d bits=%d legacy=%t parameter=%s coordinate=(%.4f, %.4f, %.4f)\n",
				d.Name, len(d.Slots), d.BitCount, d.IsLegacy, d.Parameter(), c.X(), c.Y(), c.Z())
		}
	}
	return nil
}
