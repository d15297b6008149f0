package main

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"github.com/cwbudde/algo-beatgrid/analysis"
	"github.com/cwbudde/algo-beatgrid/beatgrid"
	"github.com/cwbudde/algo-beatgrid/click"
	"github.com/cwbudde/algo-beatgrid/grid"
	"github.com/cwbudde/algo-beatgrid/internal/audiofile"
	"github.com/cwbudde/algo-beatgrid/onset"
)

// OutRecord is the JSON written for each input file.
type OutRecord struct {
	FileName    string           `json:"file_name"`
	SampleRate  int              `json:"sample_rate"` // rate of the input file
	NumChannels int              `json:"num_channels"`
	Frames      int              `json:"frames"` // samples per channel at onset.SampleRate
	Seed        grid.Seed        `json:"seed"`
	Strategy    string           `json:"strategy"`
	SnapScale   float64          `json:"snap_scale"`
	Boundaries  []Point          `json:"boundaries"`
	Onsets      []Point          `json:"onsets"`
	Chunk       *grid.Seed       `json:"chunk,omitempty"`
	Metrics     analysis.Metrics `json:"metrics"`
	ElapsedMs   int64            `json:"elapsed_ms"`
}

// Point is one sample position at onset.SampleRate.
type Point struct {
	Offset   int `json:"offset"`
	MsOffset int `json:"ms_offset"`
}

type runConfig struct {
	seed      grid.Seed
	chunkAt   int // -1 disables the chunk lookup
	outDir    string
	clicks    bool
	overlay   bool
	clickOpts click.Params
}

// processFile loads path, infers its grid and writes <name>.grid.json (and
// optionally <name>.clicks.wav) next to it or into cfg.outDir.
func processFile(a *beatgrid.Analyzer, path string, cfg runConfig) (*OutRecord, error) {
	start := time.Now()
	src, err := audiofile.Read(path)
	if err != nil {
		return nil, err
	}
	rs, err := src.Resample(onset.SampleRate)
	if err != nil {
		return nil, err
	}

	id, err := filepath.Abs(path)
	if err != nil {
		id = path
	}
	mono := rs.Mono()
	res, err := a.Analyze(id, mono, cfg.seed)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.WithDesc("infer grid", "The seed interval is invalid."), ftag.With(ftag.InvalidArgument))
	}

	opts := a.Options()
	or := &OutRecord{
		FileName:    path,
		SampleRate:  src.SampleRate,
		NumChannels: len(src.Channels),
		Frames:      rs.Frames(),
		Seed:        res.Seed,
		Strategy:    opts.Strategy,
		SnapScale:   opts.SnapScale,
		Boundaries:  toPoints(res.Grid),
		Metrics:     res.Metrics,
	}
	onsets := make([]int, len(res.Onsets))
	for i, f := range res.Onsets {
		onsets[i] = f * onset.FrameSize
	}
	or.Onsets = toPoints(onsets)
	if cfg.chunkAt >= 0 {
		if c, ok := res.Grid.Chunk(cfg.chunkAt); ok {
			or.Chunk = &c
		}
	}

	if cfg.clicks {
		track := click.Render(res.Grid, len(mono), onset.SampleRate, cfg.clickOpts)
		if cfg.overlay {
			track = click.Overlay(mono, track, 1)
		}
		if err := audiofile.WriteMono(outPath(path, cfg.outDir, "clicks.wav"), track, onset.SampleRate); err != nil {
			return nil, err
		}
	}

	or.ElapsedMs = time.Since(start).Milliseconds()
	if err := writeRecord(outPath(path, cfg.outDir, "grid.json"), or); err != nil {
		return nil, err
	}
	return or, nil
}

func toPoints(pos []int) []Point {
	out := make([]Point, len(pos))
	for i, p := range pos {
		out[i] = Point{Offset: p, MsOffset: toMilliSecOffs(p)}
	}
	return out
}

// toMilliSecOffs returns the millisecond offset of a sample position.
func toMilliSecOffs(offs int) int {
	return offs * 1000 / onset.SampleRate
}

func secondsToSamples(sec float64) int {
	return int(math.Round(sec * onset.SampleRate))
}

// outPath derives <dir>/<base>.<suffix> from an input file name; dir
// defaults to the input's directory.
func outPath(in string, dir string, suffix string) string {
	inDir, fname := filepath.Split(in)
	if dir == "" {
		dir = inDir
	}
	base := strings.TrimSuffix(fname, filepath.Ext(fname))
	return filepath.Join(dir, base+"."+suffix)
}

func writeRecord(path string, or *OutRecord) error {
	buf, err := json.MarshalIndent(or, "", "  ")
	if err != nil {
		return fault.Wrap(err, fmsg.With("encode record"))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fault.Wrap(err, fmsg.With("create output dir"))
	}
	return fault.Wrap(os.WriteFile(path, buf, 0o644), fmsg.With("write record"))
}
