package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/Southclaws/fault/fmsg"

	"github.com/cwbudde/algo-beatgrid/grid"
	"github.com/cwbudde/algo-beatgrid/internal/audiofile"
	"github.com/cwbudde/algo-beatgrid/onset"
	"github.com/cwbudde/algo-beatgrid/preset"
	"github.com/cwbudde/algo-beatgrid/refine"
)

func main() {
	inputPath := flag.String("input", "", "Input WAV path")
	presetPath := flag.String("preset", "", "Optional preset JSON path (snap_scale is used as tolerance)")
	start := flag.Int("start", 0, "Confirmed chunk start in samples at 44.1 kHz")
	length := flag.Int("length", 0, "Confirmed chunk length in samples at 44.1 kHz")
	defaults := refine.DefaultOptions()
	window := flag.Int("window", defaults.Window, "Largest change to start and length in samples")
	iterations := flag.Int("iterations", defaults.Iterations, "Optimizer iterations")
	population := flag.Int("population", defaults.Population, "Optimizer population size")
	randSeed := flag.Int64("seed", defaults.RandSeed, "Random seed")
	jsonOut := flag.Bool("json", false, "Print the result as JSON")
	flag.Parse()

	if *inputPath == "" {
		die("-input is required")
	}

	opts := defaults
	opts.Window = *window
	opts.Iterations = *iterations
	opts.Population = *population
	opts.RandSeed = *randSeed
	if *presetPath != "" {
		s, err := preset.LoadJSON(*presetPath)
		if err != nil {
			die("failed to load preset: %v", err)
		}
		opts.Tolerance = s.Analyzer.SnapScale
	}

	seed := grid.Seed{Start: *start, Length: *length}
	res, onsets, err := refineFile(*inputPath, seed, opts)
	if err != nil {
		if issue := fmsg.GetIssue(err); issue != "" {
			die("%s", issue)
		}
		die("refine failed: %v", err)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			die("json encode failed: %v", err)
		}
		return
	}

	fmt.Printf("Onsets:        %d\n", onsets)
	fmt.Printf("Input seed:    start=%d length=%d  score=%.4f\n", seed.Start, seed.Length, res.InitialScore)
	fmt.Printf("Refined seed:  start=%d length=%d  score=%.4f\n", res.Seed.Start, res.Seed.Length, res.Score)
	fmt.Printf("Shift:         start %+d, length %+d samples\n", res.Seed.Start-seed.Start, res.Seed.Length-seed.Length)
	fmt.Printf("Tempo:         %.2f BPM (one beat per chunk)\n", bpm(res.Seed.Length))
	fmt.Printf("Evaluations:   %d\n", res.Evals)
}

// refineFile loads path at onset.SampleRate, detects its onsets and refines
// seed against them. It also returns the onset count.
func refineFile(path string, seed grid.Seed, opts refine.Options) (refine.Result, int, error) {
	a, err := audiofile.Load(path)
	if err != nil {
		return refine.Result{}, 0, err
	}
	p := onset.Detect(a.Mono())
	ix := onset.NewIndex(p)
	res, err := refine.Seed(seed, ix, p.SignalLength(), opts)
	return res, ix.Len(), err
}

func bpm(length int) float64 {
	if length <= 0 {
		return math.NaN()
	}
	return 60 * float64(onset.SampleRate) / float64(length)
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
