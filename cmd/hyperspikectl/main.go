// Command hyperspikectl is the CLI front-end for the hyperspike engine,
// grounded on cmd/protogonosctl/main.go's hand-rolled flag.FlagSet-per-
// subcommand dispatch (the teacher never reaches for a third-party CLI
// framework, despite two other pack repos using spf13/cobra, so neither
// do we).
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ncruces/go-strftime"

	"hyperspike/internal/config"
	"hyperspike/internal/raster"
	"hyperspike/internal/storage"
	"hyperspike/pkg/hyperspike"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "seed":
		return runSeed(ctx, args[1:])
	case "step", "run":
		return runStep(ctx, args[1:])
	case "raster":
		return runRaster(ctx, args[1:])
	case "diagnostics":
		return runDiagnostics(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: hyperspikectl <init|seed|step|run|raster|diagnostics> [flags]", msg)
}

func newClient(fs clientFlags) (*hyperspike.Client, error) {
	env := config.FromEnv()
	opts := hyperspike.Options{
		WheelSize:        fs.wheelSize,
		MaxEdgesPerTick:  env.MaxEdgesPerTick,
		MaxSpikesPerTick: env.MaxSpikesPerTick,
		StoreKind:        fs.storeKind,
		StorePath:        fs.dbPath,
	}
	c, err := hyperspike.New(opts)
	if err != nil {
		return nil, err
	}
	if env.Plasticity == "stdp" {
		c.InstallDefaultSTDP()
	}
	return c, nil
}

// clientFlags collects the flags every subcommand that constructs a
// hyperspike.Client shares, mirroring the teacher's repeated --store/
// --db-path flag pair on each of its subcommands.
type clientFlags struct {
	storeKind string
	dbPath    string
	wheelSize uint64
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "hyperspike.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()
	if err := store.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runSeed(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "hyperspike.db", "sqlite database path")
	wheelSize := fs.Uint64("wheel-size", 0, "time wheel horizon (0 uses the config default)")
	topologyPath := fs.String("topology", "", "path to a topology JSON file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *topologyPath == "" {
		return usageError("seed requires --topology")
	}

	t, err := loadTopology(*topologyPath)
	if err != nil {
		return err
	}
	c, err := newClient(clientFlags{storeKind: *storeKind, dbPath: *dbPath, wheelSize: *wheelSize})
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	if err := applyTopology(c, t); err != nil {
		return err
	}
	if err := c.SaveSnapshot(ctx, formatNow()); err != nil {
		return err
	}

	fmt.Printf("seeded run=%s neurons=%s edges=%s\n",
		c.RunID(), humanize.Comma(int64(c.NeuronCount())), humanize.Comma(int64(c.EdgeCount())))
	return nil
}

func runStep(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("step", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "hyperspike.db", "sqlite database path")
	wheelSize := fs.Uint64("wheel-size", 0, "time wheel horizon (0 uses the config default)")
	topologyPath := fs.String("topology", "", "path to a topology JSON file")
	ticks := fs.Uint64("ticks", 1, "number of ticks to advance")
	until := fs.Uint64("until", 0, "advance until this tick is reached (overrides --ticks when nonzero)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *topologyPath == "" {
		return usageError("step requires --topology")
	}

	t, err := loadTopology(*topologyPath)
	if err != nil {
		return err
	}
	c, err := newClient(clientFlags{storeKind: *storeKind, dbPath: *dbPath, wheelSize: *wheelSize})
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	if err := applyTopology(c, t); err != nil {
		return err
	}

	results := stepEngine(c, *until, *ticks)

	if err := c.SaveSnapshot(ctx, formatNow()); err != nil {
		return err
	}

	fmt.Printf("run=%s tick=%s events=%s\n",
		c.RunID(), humanize.Comma(int64(c.CurrentTime())), humanize.Comma(int64(len(results))))
	for _, ev := range results {
		fmt.Printf("  t=%d neuron=%d\n", ev.Time, ev.NeuronID)
	}
	return nil
}

// stepEngine advances c until targetTick (if nonzero) or by n ticks, and
// returns every popped spike event in order.
func stepEngine(c *hyperspike.Client, targetTick, n uint64) []spikeEvent {
	var out []spikeEvent
	if targetTick > 0 {
		for _, ev := range c.RunUntil(targetTick) {
			out = append(out, spikeEvent{NeuronID: ev.NeuronID, Time: ev.Time})
		}
		return out
	}
	for _, ev := range c.RunTicks(n) {
		out = append(out, spikeEvent{NeuronID: ev.NeuronID, Time: ev.Time})
	}
	return out
}

type spikeEvent struct {
	NeuronID int
	Time     uint64
}

func runRaster(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("raster", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "hyperspike.db", "sqlite database path")
	wheelSize := fs.Uint64("wheel-size", 0, "time wheel horizon (0 uses the config default)")
	topologyPath := fs.String("topology", "", "path to a topology JSON file")
	width := fs.Int("width", 80, "raster column width")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *topologyPath == "" {
		return usageError("raster requires --topology")
	}

	t, err := loadTopology(*topologyPath)
	if err != nil {
		return err
	}
	c, err := newClient(clientFlags{storeKind: *storeKind, dbPath: *dbPath, wheelSize: *wheelSize})
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	if err := applyTopology(c, t); err != nil {
		return err
	}

	buf := raster.New(c.NeuronCount(), *width)
	fmt.Println("controls: s=step, r=run 10 ticks, q=quit (line-oriented; no raw mode in this pack)")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if err := raster.WriteFrame(os.Stdout, buf); err != nil {
			return err
		}
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		switch strings.TrimSpace(scanner.Text()) {
		case "q":
			return finalizeRaster(ctx, c)
		case "r":
			recordTicks(c, buf, 10)
		case "s", "":
			recordTicks(c, buf, 1)
		default:
			fmt.Println("unrecognized command")
		}
	}
	return finalizeRaster(ctx, c)
}

func recordTicks(c *hyperspike.Client, buf *raster.Buffer, n uint64) {
	for i := uint64(0); i < n; i++ {
		fired := c.Step()
		ids := make([]int, len(fired))
		for j, ev := range fired {
			ids[j] = ev.NeuronID
		}
		// Step's events carry the tick it just completed, one before CurrentTime().
		buf.RecordTick(c.CurrentTime()-1, ids)
	}
}

func finalizeRaster(ctx context.Context, c *hyperspike.Client) error {
	return c.SaveSnapshot(ctx, formatNow())
}

func runDiagnostics(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("diagnostics", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "hyperspike.db", "sqlite database path")
	runID := fs.String("run-id", "", "run id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("diagnostics requires --run-id")
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()
	if err := store.Init(ctx); err != nil {
		return err
	}

	counters, ok, err := store.GetDiagnostics(ctx, *runID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("no diagnostics recorded for run " + *runID)
	}

	fmt.Printf("run=%s ticks=%s edges_visited=%s edges_dropped=%s spikes_scheduled=%s spikes_dropped=%s\n",
		*runID,
		humanize.Comma(int64(counters.TicksRun)),
		humanize.Comma(int64(counters.EdgesVisited)),
		humanize.Comma(int64(counters.EdgesDropped)),
		humanize.Comma(int64(counters.SpikesScheduled)),
		humanize.Comma(int64(counters.SpikesDropped)),
	)
	return nil
}

func formatNow() string {
	return strftime.Format("%Y-%m-%dT%H:%M:%SZ", time.Now().UTC())
}
