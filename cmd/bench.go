package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/yuvsobel/internal/sobel"
	"github.com/cwbudde/yuvsobel/internal/store"
	"github.com/cwbudde/yuvsobel/internal/yuv"
)

var (
	benchIn       string
	benchW        int
	benchH        int
	benchPreset   string
	benchQuarter  bool
	benchDir      string
	benchDuration time.Duration
	benchBackends string
	benchTrace    string
	benchSeed     int64
	benchPattern  string
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure kernel throughput per backend",
	Long: `Times the gradient pipeline on each backend over a synthetic frame
(or --in), verifies that every backend matches the scalar reference bit for
bit and reports destination megapixels per second.

Synthetic patterns: random (seeded noise), flat (uniform mid grey) and step
(a vertical edge at a third of the width). For --quarter the pattern is drawn
at destination size and upscaled 2x, so both pipelines see the same edges.`,
	RunE: runBench,
}

func init() {
	benchCmd.Flags().StringVar(&benchIn, "in", "", "Frame to benchmark on (default: seeded random frame)")
	benchCmd.Flags().IntVar(&benchW, "width", 640, "Frame width for synthetic or raw input")
	benchCmd.Flags().IntVar(&benchH, "height", 480, "Frame height for synthetic or raw input")
	benchCmd.Flags().StringVar(&benchPreset, "preset", "", "Camera preset giving the frame size")
	benchCmd.Flags().BoolVar(&benchQuarter, "quarter", false, "Benchmark the quarter pipeline")
	benchCmd.Flags().StringVar(&benchDir, "direction", "combined", "Gradient direction")
	benchCmd.Flags().DurationVar(&benchDuration, "duration", time.Second, "Minimum run time per backend")
	benchCmd.Flags().StringVar(&benchBackends, "backends", "", "Comma-separated backends to time (default: every backend this host supports)")
	benchCmd.Flags().StringVar(&benchTrace, "trace", "", "Append measurements to this JSONL file")
	benchCmd.Flags().Int64Var(&benchSeed, "seed", 42, "Seed of the random pattern")
	benchCmd.Flags().StringVar(&benchPattern, "pattern", "random", "Synthetic frame: random, flat or step")
	rootCmd.AddCommand(benchCmd)
}

// benchFrame returns the source frame. Sizes describe the frame itself,
// so the quarter pipeline produces half of them.
func benchFrame() (*yuv.Frame, error) {
	w, h := benchW, benchH
	if benchPreset != "" {
		reg, err := loadPresets()
		if err != nil {
			return nil, err
		}
		p, err := reg.Lookup(benchPreset)
		if err != nil {
			return nil, err
		}
		w, h = p.Width, p.Height
	}
	if benchIn != "" {
		return yuv.Load(benchIn, w, h)
	}
	return syntheticFrame(benchPattern, w, h, benchQuarter, benchSeed)
}

// syntheticFrame draws pattern on a width x height frame. With quarter the
// pattern is drawn at half size and upscaled, so decimation recovers it.
func syntheticFrame(pattern string, width, height int, quarter bool, seed int64) (*yuv.Frame, error) {
	w, h := width, height
	if quarter {
		if width%2 != 0 || height%2 != 0 {
			return nil, fmt.Errorf("quarter source must have even size, got %dx%d", width, height)
		}
		w, h = width/2, height/2
	}

	var f *yuv.Frame
	switch pattern {
	case "random", "":
		f = yuv.Random(w, h, seed)
	case "flat":
		f = yuv.Flat(w, h, 128)
	case "step":
		f = yuv.StepEdge(w, h, w/3, 16, 235)
	default:
		return nil, fmt.Errorf("unknown pattern %q (want random, flat or step)", pattern)
	}

	if quarter {
		f = yuv.Upscale2x(f)
	}
	return f, nil
}

// timeKernel calls run until at least minDur has passed.
func timeKernel(run func(), minDur time.Duration) (int, time.Duration) {
	iters := 0
	start := time.Now()
	for {
		run()
		iters++
		if elapsed := time.Since(start); elapsed >= minDur {
			return iters, elapsed
		}
	}
}

// parseBackendList parses --backends. An empty list selects every backend
// the host supports.
func parseBackendList(s string) ([]sobel.Backend, error) {
	if strings.TrimSpace(s) == "" {
		return sobel.Available(), nil
	}
	var out []sobel.Backend
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		b, err := sobel.ParseBackend(name)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no backends given")
	}
	return out, nil
}

func runBench(cmd *cobra.Command, args []string) error {
	backends, err := parseBackendList(benchBackends)
	if err != nil {
		return err
	}
	dir, err := sobel.ParseDirection(benchDir)
	if err != nil {
		return err
	}
	frame, err := benchFrame()
	if err != nil {
		return err
	}

	job := gradientJob{Frame: frame, Dir: dir, Quarter: benchQuarter}
	job.Region = sobel.FrameRegion(job.destSize())
	// Validate geometry and warm up once before the timed loops.
	if _, _, err := job.execute(); err != nil {
		return err
	}
	w, h := job.destSize()

	for _, b := range backends {
		identical, firstDiff, err := sobel.CompareBackends(b, frame.Data, job.Region, w, h, dir, false, benchQuarter)
		if err != nil {
			return err
		}
		if !identical {
			return fmt.Errorf("%s disagrees with scalar at pixel %d", b, firstDiff)
		}
	}

	var trace *store.TraceWriter
	if benchTrace != "" {
		if trace, err = store.NewTraceWriter(benchTrace, true); err != nil {
			return err
		}
		defer trace.Close()
	}

	pipeline := "full"
	if benchQuarter {
		pipeline = "quarter"
	}

	prev := sobel.ActiveBackend
	defer sobel.UseBackend(prev)

	entries := make([]store.TraceEntry, 0, len(backends))
	for _, b := range backends {
		if err := sobel.UseBackend(b); err != nil {
			return err
		}

		iters, elapsed := timeKernel(func() { job.run() }, benchDuration)
		entry := store.TraceEntry{
			Backend:       b.String(),
			Pipeline:      pipeline,
			Direction:     dir.String(),
			Width:         w,
			Height:        h,
			Iterations:    iters,
			DurationNs:    elapsed.Nanoseconds(),
			MPixelsPerSec: sobel.BenchmarkThroughput(iters, w, h, elapsed.Nanoseconds()),
			Timestamp:     time.Now(),
		}
		entries = append(entries, entry)
		slog.Debug("Benchmark finished", "backend", entry.Backend, "iterations", iters, "mpixels_per_sec", entry.MPixelsPerSec)

		if trace != nil {
			if err := trace.Write(entry); err != nil {
				return err
			}
		}
	}

	printBench(entries)
	if trace != nil {
		fmt.Printf("\nAppended %d measurement(s) to %s\n", len(entries), trace.Path())
	}
	return nil
}

func printBench(entries []store.TraceEntry) {
	// Relative speeds are against scalar when it was timed.
	base := entries[len(entries)-1].MPixelsPerSec
	for _, e := range entries {
		if e.Backend == sobel.BackendScalar.String() {
			base = e.MPixelsPerSec
		}
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BACKEND\tPIPELINE\tSIZE\tITERATIONS\tMS/FRAME\tMPIX/S\tRELATIVE")
	for _, e := range entries {
		msPerFrame := float64(e.DurationNs) / 1e6 / float64(e.Iterations)
		rel := 0.0
		if base > 0 {
			rel = e.MPixelsPerSec / base
		}
		fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%d\t%.3f\t%.1f\t%.2fx\n",
			e.Backend, e.Pipeline, e.Width, e.Height, e.Iterations, msPerFrame, e.MPixelsPerSec, rel)
	}
	tw.Flush()
}
