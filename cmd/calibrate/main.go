// Command calibrate regenerates the tropical cyclone vulnerability curve for
// one (country, hazard) pair and re-runs the damage calculation against the
// file-backed exposure and hazard fixtures. It is meant for repeated
// interactive invocation while tuning curve parameters.
//
// Usage:
//
//	go run ./cmd/calibrate \
//	  -data-dir data/mock \
//	  -results results.json \
//	  -country 0 -hazard 0 \
//	  -growth 0.02 -thresh 20 -half 55 \
//	  -out results_calibrated.json -plot-dir plots
//
// When -results is omitted the path is prompted for on stdin; an empty
// answer cancels the run without touching any files.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/bielim/country-risk-etl/internal/adapter/files"
	"github.com/bielim/country-risk-etl/internal/domain"
	"github.com/bielim/country-risk-etl/internal/observability"
)

func main() {
	dataDir := flag.String("data-dir", "data", "directory containing entity, hazard, and result fixtures")
	resultsRef := flag.String("results", "", "results JSON file, relative to -data-dir (prompted for if omitted)")
	outRef := flag.String("out", "", "output file for the calibrated results (default: overwrite -results)")
	countryIdx := flag.Int("country", 0, "index of the country to calibrate")
	hazardIdx := flag.Int("hazard", 0, "index of the hazard within the country")
	growth := flag.Float64("growth", 0.02, "annual exposure growth rate")
	thresh := flag.Float64("thresh", 20, "intensity below which no damage occurs (m/s)")
	half := flag.Float64("half", 55, "intensity producing half damage (m/s)")
	maxIntensity := flag.Float64("max-intensity", 120, "upper end of the intensity grid (m/s)")
	step := flag.Float64("step", 5, "intensity grid spacing (m/s)")
	plotDir := flag.String("plot-dir", "", "write plot data CSVs into this directory (disabled if empty)")
	aggregate := flag.Bool("aggregate", false, "plot all countries in one file instead of just the calibrated one")
	flag.Parse()

	if code := run(options{
		dataDir:      *dataDir,
		resultsRef:   *resultsRef,
		outRef:       *outRef,
		countryIdx:   *countryIdx,
		hazardIdx:    *hazardIdx,
		growth:       *growth,
		thresh:       *thresh,
		half:         *half,
		maxIntensity: *maxIntensity,
		step:         *step,
		plotDir:      *plotDir,
		aggregate:    *aggregate,
	}); code != 0 {
		os.Exit(code)
	}
}

type options struct {
	dataDir      string
	resultsRef   string
	outRef       string
	countryIdx   int
	hazardIdx    int
	growth       float64
	thresh       float64
	half         float64
	maxIntensity float64
	step         float64
	plotDir      string
	aggregate    bool
}

func run(opts options) int {
	logger := observability.NewTextLogger()

	resultsRef := opts.resultsRef
	if resultsRef == "" {
		var cancelled bool
		resultsRef, cancelled = promptForPath(os.Stdin, os.Stdout)
		if cancelled {
			fmt.Fprintln(os.Stderr, "no results file supplied, nothing to do")
			return 1
		}
	}
	outRef := opts.outRef
	if outRef == "" {
		outRef = resultsRef
	}

	store := files.NewStore(opts.dataDir)
	results, err := store.LoadResults(resultsRef)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load results: %v\n", err)
		return 1
	}

	params := domain.DefaultTCCurveParams()
	params.Thresh = opts.thresh
	params.Half = opts.half
	params.MaxIntensity = opts.maxIntensity
	params.Step = opts.step

	calOpts := domain.CalibrateOptions{
		CountryIndex: opts.countryIdx,
		HazardIndex:  opts.hazardIdx,
		GrowthRate:   opts.growth,
		Params:       params,
		Entities:     store,
		Calculator:   store,
		Aggregate:    opts.aggregate,
		Logger:       logger,
	}
	if opts.plotDir != "" {
		calOpts.Plotter = files.NewDataDumpPlotter(opts.plotDir)
	}

	calibrated, err := domain.Calibrate(context.Background(), results, calOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: calibrate: %v\n", err)
		return 1
	}

	if err := store.SaveResults(outRef, calibrated); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: save results: %v\n", err)
		return 1
	}

	target := calibrated[opts.countryIdx]
	fmt.Printf("calibrated %s hazard %d (%s), %d events, written to %s\n",
		target.Country, opts.hazardIdx, target.Hazards[opts.hazardIdx].Peril,
		len(target.Hazards[opts.hazardIdx].Damages), outRef)
	return 0
}

// promptForPath asks for a results file path on in. An empty line means the
// user cancelled.
func promptForPath(in *os.File, out *os.File) (path string, cancelled bool) {
	fmt.Fprint(out, "results file (relative to data dir, empty to cancel): ")
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return "", true
	}
	answer := strings.TrimSpace(scanner.Text())
	if answer == "" {
		return "", true
	}
	return answer, false
}
