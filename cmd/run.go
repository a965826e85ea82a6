package main

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cwbudde/yuvsobel/internal/guard"
	"github.com/cwbudde/yuvsobel/internal/render"
	"github.com/cwbudde/yuvsobel/internal/sobel"
	"github.com/cwbudde/yuvsobel/internal/store"
	"github.com/cwbudde/yuvsobel/internal/yuv"
)

var (
	inPath     string
	outPath    string
	frameW     int
	frameH     int
	presetName string
	regionStr  string
	dirName    string
	crop       bool
	quarter    bool
	overlay    bool
	scaleW     int
	threshold  uint8
	saveResult bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compute the gradient image of one frame",
	Long: `Reads a raw YUYV frame (.yuv, .yuyv, .raw, optionally .zst compressed) or a
PNG/JPEG/WebP picture, computes the Sobel edge magnitude and writes it as
PNG, BMP or TIFF. With --quarter the frame is decimated 2x2 -> 1 first, so
the output is half the input width and height.`,
	RunE: runGradient,
}

func init() {
	runCmd.Flags().StringVar(&inPath, "in", "", "Input frame path (required)")
	runCmd.Flags().StringVar(&outPath, "out", "gradient.png", "Output image path (.png, .bmp, .tiff)")
	runCmd.Flags().IntVar(&frameW, "width", 0, "Raw frame width in pixels")
	runCmd.Flags().IntVar(&frameH, "height", 0, "Raw frame height in pixels")
	runCmd.Flags().StringVar(&presetName, "preset", "", "Camera preset giving the raw frame size (upper, lower, ...)")
	runCmd.Flags().StringVar(&regionStr, "region", "", "Region x0,y0,x1,y1 in output coordinates (default: whole frame)")
	runCmd.Flags().StringVar(&dirName, "direction", "combined", "Gradient direction: combined, horizontal, vertical")
	runCmd.Flags().BoolVar(&crop, "crop", false, "Return only the region instead of a full-size frame")
	runCmd.Flags().BoolVar(&quarter, "quarter", false, "Run the quarter-resolution pipeline")
	runCmd.Flags().BoolVar(&overlay, "overlay", false, "Draw the region outline and a label")
	runCmd.Flags().IntVar(&scaleW, "scale", 0, "Resize the output image to this width (0 = native)")
	runCmd.Flags().Uint8Var(&threshold, "threshold", 64, "Edge level counted in the statistics")
	runCmd.Flags().BoolVar(&saveResult, "save", false, "Store the result under --data-dir")

	runCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(runCmd)
}

// gradientJob is one fully resolved gradient computation.
type gradientJob struct {
	Frame     *yuv.Frame
	Region    sobel.Region
	Dir       sobel.Direction
	Crop      bool
	Quarter   bool
	Threshold uint8
}

// destSize returns the output frame size for the job.
func (j gradientJob) destSize() (int, int) {
	if j.Quarter {
		return j.Frame.Width / 2, j.Frame.Height / 2
	}
	return j.Frame.Width, j.Frame.Height
}

// execute validates and runs the job and returns the grid together with
// metadata describing it. The metadata has no ID yet.
func (j gradientJob) execute() (*sobel.Grid, *store.Result, error) {
	if j.Quarter && (j.Frame.Width%2 != 0 || j.Frame.Height%2 != 0) {
		return nil, nil, fmt.Errorf("quarter pipeline needs even frame dimensions, got %dx%d", j.Frame.Width, j.Frame.Height)
	}
	w, h := j.destSize()

	g := guard.Geometry{Width: w, Height: h, Region: j.Region, Dir: j.Dir, Quarter: j.Quarter}
	if err := guard.Validate(g, len(j.Frame.Data)); err != nil {
		return nil, nil, err
	}

	start := time.Now()
	grid := j.run()
	elapsed := time.Since(start)

	res := &store.Result{
		FrameWidth:  w,
		FrameHeight: h,
		Region:      j.Region.String(),
		Direction:   j.Dir.String(),
		Crop:        j.Crop,
		Quarter:     j.Quarter,
		Backend:     sobel.ActiveBackend.String(),
		GridWidth:   grid.Width,
		GridHeight:  grid.Height,
		Stats:       grid.Stats(j.Threshold),
		Duration:    float64(elapsed.Microseconds()) / 1000,
		Timestamp:   time.Now(),
	}
	return grid, res, nil
}

// run executes the job on the active backend without validation.
func (j gradientJob) run() *sobel.Grid {
	w, h := j.destSize()
	if j.Quarter {
		return sobel.Quarter(j.Frame.Data, j.Region, w, h, j.Dir, j.Crop)
	}
	return sobel.Full(j.Frame.Data, j.Region, w, h, j.Dir, j.Crop)
}

// resolveFrameSize applies --preset over --width/--height.
func resolveFrameSize() (int, int, error) {
	if presetName == "" {
		return frameW, frameH, nil
	}
	reg, err := loadPresets()
	if err != nil {
		return 0, 0, err
	}
	p, err := reg.Lookup(presetName)
	if err != nil {
		return 0, 0, err
	}
	return p.Width, p.Height, nil
}

func runGradient(cmd *cobra.Command, args []string) error {
	w, h, err := resolveFrameSize()
	if err != nil {
		return err
	}
	if yuv.IsRaw(inPath) && (w <= 0 || h <= 0) {
		return fmt.Errorf("raw input needs --width and --height or --preset")
	}

	frame, err := yuv.Load(inPath, w, h)
	if err != nil {
		return err
	}
	slog.Info("Loaded frame", "path", inPath, "width", frame.Width, "height", frame.Height)

	dir, err := sobel.ParseDirection(dirName)
	if err != nil {
		return err
	}

	job := gradientJob{Frame: frame, Dir: dir, Crop: crop, Quarter: quarter, Threshold: threshold}
	if regionStr != "" {
		if job.Region, err = sobel.ParseRegion(regionStr); err != nil {
			return err
		}
	} else {
		job.Region = sobel.FrameRegion(job.destSize())
	}

	grid, res, err := job.execute()
	if err != nil {
		return err
	}
	res.Source = inPath

	slog.Info("Gradient computed",
		"backend", res.Backend,
		"region", res.Region,
		"direction", res.Direction,
		"quarter", res.Quarter,
		"duration_ms", res.Duration,
		"max", res.Stats.Max,
		"mean", res.Stats.Mean,
	)

	if err := render.WriteFile(outPath, outputImage(grid, job)); err != nil {
		return err
	}

	if saveResult {
		st, err := store.NewFSStore(dataDir)
		if err != nil {
			return fmt.Errorf("failed to create result store: %w", err)
		}
		res.ID = uuid.New().String()
		if err := st.Save(res, grid); err != nil {
			return fmt.Errorf("failed to save result: %w", err)
		}
		fmt.Printf("Saved result %s\n", res.ID)
	}

	fmt.Printf("Wrote %s (%dx%d, max %d, mean %.2f, %d px > %d, %.3f ms)\n",
		outPath, grid.Width, grid.Height, res.Stats.Max, res.Stats.Mean,
		res.Stats.AboveThreshold, res.Stats.Threshold, res.Duration)
	return nil
}

// outputImage applies --overlay and --scale to a grid.
func outputImage(grid *sobel.Grid, job gradientJob) image.Image {
	var img image.Image = render.Gray(grid)
	if overlay {
		r := job.Region
		if job.Crop {
			r = sobel.FrameRegion(grid.Width, grid.Height)
		}
		img = render.Overlay(grid, r, job.Dir.String()+"/"+sobel.ActiveBackend.String())
	}
	return render.Scale(img, scaleW)
}
