// snowmetrics computes annual snow phenology metrics for one tile of the
// daily categorical snow-cover product: season boundaries, continuous snow
// season, obscuration analysis, and the repaired datacube.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/cryogrid/snowmetrics/internal/constants"
	"github.com/cryogrid/snowmetrics/internal/cube"
	"github.com/cryogrid/snowmetrics/internal/log"
	"github.com/cryogrid/snowmetrics/internal/pipeline"
	"github.com/cryogrid/snowmetrics/internal/store"
	"github.com/cryogrid/snowmetrics/pkg/codes"
	"github.com/cryogrid/snowmetrics/pkg/config"
	"github.com/cryogrid/snowmetrics/pkg/snowyear"
)

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to YAML run configuration")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	inspectCode := flag.Int("inspect-code", -1, "Print the meaning of a snow-cover code (0-255) and exit")
	inspectBitflag := flag.Int("inspect-bitflag", -1, "Print the QA screens set in a bitflag value (0-255) and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("snowmetrics %s\n", constants.Version)
		os.Exit(0)
	}
	if *inspectCode >= 0 {
		fmt.Printf("code %d: %s\n", *inspectCode, codes.Describe(uint8(*inspectCode)))
		os.Exit(0)
	}
	if *inspectBitflag >= 0 {
		desc := codes.DescribeBitflags(uint8(*inspectBitflag))
		if desc == "" {
			desc = "no QA screens set"
		}
		fmt.Printf("bitflag %d: %s\n", *inspectBitflag, desc)
		os.Exit(0)
	}

	filename, _ := filepath.Abs(*cfgFile)
	cfg, err := config.NewYAMLProvider(filename).LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := log.InitWithFile(*debug, cfg.Paths.LogFile); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Errorf("Run failed: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.ConfigData) error {
	year := snowyear.Year(cfg.SnowYear)
	times := year.Days()

	log.Infow("computing snow metrics",
		"snow_year", cfg.SnowYear,
		"tile", cfg.TileID,
		"days", times,
		"strategy", cfg.Params.Strategy,
	)

	snow, err := cube.ReadCubeFile(cfg.Paths.SnowCube, times, cfg.Grid.Height, cfg.Grid.Width)
	if err != nil {
		return err
	}

	var bitflags *cube.Cube
	if cfg.Paths.BitflagCube != "" {
		bitflags, err = cube.ReadCubeFile(cfg.Paths.BitflagCube, times, cfg.Grid.Height, cfg.Grid.Width)
		if err != nil {
			return err
		}
	}

	opts := pipeline.Options{
		Year:               year,
		Threshold:          uint8(cfg.Params.Threshold),
		CSSMinDays:         cfg.Params.CSSMinDays,
		CSSBridgeDays:      cfg.Params.CSSBridgeDays,
		SmoothingWindow:    cfg.Params.SmoothingWindow,
		SmoothingPolyorder: cfg.Params.SmoothingPolyorder,
		Workers:            cfg.Params.Workers,
	}
	calc, err := pipeline.NewCalculator(opts, log.GetSugaredLogger(), pipeline.ComputerType(cfg.Params.Strategy))
	if err != nil {
		return err
	}

	var ledger *store.Store
	var runID string
	if cfg.Paths.LedgerDB != "" {
		ledger, err = store.Open(cfg.Paths.LedgerDB)
		if err != nil {
			return err
		}
		defer ledger.Close()
		runID, err = ledger.BeginRun(ctx, cfg.SnowYear, cfg.TileID, cfg.Params.Strategy, cfg.Params.Threshold)
		if err != nil {
			return err
		}
		log.Infof("Recording run %s in ledger %s", runID, cfg.Paths.LedgerDB)
	}

	result, err := calc.Compute(ctx, snow, bitflags)
	if err != nil {
		return err
	}

	if err := writeOutputs(cfg, result); err != nil {
		return err
	}

	if ledger != nil {
		if err := ledger.RecordGridStats(ctx, runID, result.Grids()); err != nil {
			return err
		}
		if err := ledger.CompleteRun(ctx, runID); err != nil {
			return err
		}
	}

	log.Info("Snow metric computation complete.")
	return nil
}

func writeOutputs(cfg *config.ConfigData, result *pipeline.Result) error {
	if err := os.MkdirAll(cfg.Paths.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	for name, grid := range result.Grids() {
		path := filepath.Join(cfg.Paths.OutputDir,
			fmt.Sprintf("%s_%s_%d.int16", cfg.TileID, name, cfg.SnowYear))
		if err := cube.WriteGridFile(path, grid); err != nil {
			return err
		}
		log.Debugf("Wrote %s", path)
	}

	if result.Repaired != nil {
		path := filepath.Join(cfg.Paths.OutputDir,
			fmt.Sprintf("%s_repaired_cube_%d.uint8", cfg.TileID, cfg.SnowYear))
		if err := cube.WriteCubeFile(path, result.Repaired); err != nil {
			return err
		}
		log.Infof("Wrote repaired cube %s", path)
	}
	return nil
}
