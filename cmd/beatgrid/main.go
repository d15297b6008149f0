package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sync"

	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/cwbudde/algo-beatgrid/beatgrid"
	"github.com/cwbudde/algo-beatgrid/grid"
	"github.com/cwbudde/algo-beatgrid/internal/cliutil"
	"github.com/cwbudde/algo-beatgrid/preset"
)

func main() {
	presetPath := flag.String("preset", "", "Optional preset JSON path")
	start := flag.Float64("start", 0, "Start of the confirmed chunk in seconds")
	length := flag.Float64("length", 0, "Length of the confirmed chunk in seconds")
	startSamples := flag.Int("start-samples", -1, "Start in samples at 44.1 kHz (overrides -start)")
	lengthSamples := flag.Int("length-samples", -1, "Length in samples at 44.1 kHz (overrides -length)")
	snapScale := flag.Float64("snap-scale", 0, "Snap tolerance scale; 0 keeps the preset value")
	strategy := flag.String("strategy", "", "Walk strategy: compounding|projected; empty keeps the preset value")
	chunkAt := flag.Float64("chunk-at", -1, "Report the grid chunk enclosing this time in seconds")
	outDir := flag.String("out-dir", "", "Output directory; defaults to each input's directory")
	clicks := flag.Bool("clicks", false, "Write a click track WAV per input")
	overlay := flag.Bool("overlay", false, "Mix the click track over the input audio")
	workersFlag := flag.String("workers", "auto", "Parallel files: integer >= 1 or 'auto'")
	flag.Parse()

	inputs := flag.Args()
	if len(inputs) == 0 {
		die(2, "usage: beatgrid [flags] input.wav [more.wav ...]")
	}

	settings := preset.NewDefaultSettings()
	if *presetPath != "" {
		var err error
		settings, err = preset.LoadJSON(*presetPath)
		if err != nil {
			die(2, "failed to load preset: %v", err)
		}
	}
	if *snapScale > 0 {
		settings.Analyzer.SnapScale = *snapScale
	}
	if *strategy != "" {
		settings.Analyzer.Strategy = *strategy
	}

	seed := grid.Seed{Start: secondsToSamples(*start), Length: secondsToSamples(*length)}
	if *startSamples >= 0 {
		seed.Start = *startSamples
	}
	if *lengthSamples >= 0 {
		seed.Length = *lengthSamples
	}
	if err := seed.Validate(); err != nil {
		die(2, "invalid seed: %v", err)
	}

	workers, err := cliutil.ParseWorkers(*workersFlag)
	if err != nil {
		die(2, "invalid -workers: %v", err)
	}

	a, err := beatgrid.NewAnalyzer(settings.Analyzer)
	if err != nil {
		die(2, "invalid analyzer options: %v", err)
	}

	cfg := runConfig{
		seed:      seed,
		chunkAt:   -1,
		outDir:    *outDir,
		clicks:    *clicks || *overlay,
		overlay:   *overlay,
		clickOpts: settings.Click,
	}
	if *chunkAt >= 0 {
		cfg.chunkAt = secondsToSamples(*chunkAt)
	}

	records, errs := runBatch(a, inputs, cfg, cliutil.ResolveWorkers(workers, len(inputs)))

	code := 0
	for i, in := range inputs {
		if errs[i] != nil {
			code = max(code, exitCode(errs[i]))
			report(in, errs[i])
			continue
		}
		or := records[i]
		fmt.Printf("%s: %d boundaries, %d onsets, snapped %d/%d, score %.4f (%d ms)\n",
			in, len(or.Boundaries), len(or.Onsets),
			or.Metrics.Snapped, or.Metrics.Boundaries, or.Metrics.Score, or.ElapsedMs)
		if or.Chunk != nil {
			fmt.Printf("  chunk: start=%d length=%d\n", or.Chunk.Start, or.Chunk.Length)
		}
	}
	st := a.CacheStats()
	fmt.Printf("Profiles: %d computed, %d cached\n", st.Misses, st.Hits)
	if code != 0 {
		os.Exit(code)
	}
}

// runBatch processes inputs on a fixed worker pool sharing one analyzer.
func runBatch(a *beatgrid.Analyzer, inputs []string, cfg runConfig, workers int) ([]*OutRecord, []error) {
	records := make([]*OutRecord, len(inputs))
	errs := make([]error, len(inputs))

	var p *mpb.Progress
	var bar *mpb.Bar
	if len(inputs) > 1 {
		p = mpb.New(mpb.WithWidth(64))
		bar = p.AddBar(int64(len(inputs)),
			mpb.PrependDecorators(
				decor.Name("beatgrid"),
				decor.CountersNoUnit(" %d / %d"),
			),
			mpb.AppendDecorators(
				decor.Percentage(),
				decor.Name(" "),
				decor.EwmaETA(decor.ET_STYLE_GO, 60),
			),
		)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				records[i], errs[i] = processFile(a, inputs[i], cfg)
				if bar != nil {
					bar.Increment()
				}
			}
		}()
	}
	for i := range inputs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	if p != nil {
		p.Wait()
	}
	return records, errs
}

func report(in string, err error) {
	if issue := fmsg.GetIssue(err); issue != "" {
		fmt.Fprintf(os.Stderr, "%s: %s\n", in, issue)
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", in, err)
}

func die(code int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(code)
}

// exitCode maps a failure to 2 for bad input and 1 otherwise.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, grid.ErrInvalidSeed) || ftag.Get(err) == ftag.InvalidArgument {
		return 2
	}
	return 1
}
