package main

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"strings"
	"testing"
	"time"

	"github.com/cwbudde/yuvsobel/internal/guard"
	"github.com/cwbudde/yuvsobel/internal/sobel"
	"github.com/cwbudde/yuvsobel/internal/store"
	"github.com/cwbudde/yuvsobel/internal/yuv"
)

func TestGradientJob_Execute(t *testing.T) {
	frame := yuv.StepEdge(64, 32, 20, 10, 200)

	tests := []struct {
		name     string
		job      gradientJob
		wantSize image.Point
		wantErr  error
	}{
		{"full frame", gradientJob{Frame: frame, Region: sobel.FrameRegion(64, 32)}, image.Pt(64, 32), nil},
		{"cropped", gradientJob{Frame: frame, Region: sobel.Region{StartX: 4, StartY: 4, EndX: 40, EndY: 20}, Crop: true}, image.Pt(37, 17), nil},
		{"quarter", gradientJob{Frame: frame, Region: sobel.FrameRegion(32, 16), Quarter: true}, image.Pt(32, 16), nil},
		{"out of bounds", gradientJob{Frame: frame, Region: sobel.FrameRegion(65, 32)}, image.Point{}, guard.ErrOutOfBounds},
		{"quarter region too small", gradientJob{Frame: frame, Region: sobel.Region{EndX: 10, EndY: 10}, Quarter: true}, image.Point{}, guard.ErrRegionTooSmall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid, res, err := tt.job.execute()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("execute: %v", err)
			}
			if grid.Width != tt.wantSize.X || grid.Height != tt.wantSize.Y {
				t.Errorf("grid %dx%d, want %v", grid.Width, grid.Height, tt.wantSize)
			}
			if res.GridWidth != grid.Width || res.Backend != sobel.ActiveBackend.String() {
				t.Errorf("metadata = %+v", res)
			}
			if res.Stats != grid.Stats(0) {
				t.Errorf("stats = %+v, want %+v", res.Stats, grid.Stats(0))
			}
		})
	}
}

func TestGradientJob_QuarterOddFrame(t *testing.T) {
	frame := &yuv.Frame{Data: make([]byte, 64*33*2), Width: 64, Height: 33}
	job := gradientJob{Frame: frame, Region: sobel.FrameRegion(32, 16), Quarter: true}
	if _, _, err := job.execute(); err == nil {
		t.Error("quarter on an odd-height frame succeeded")
	}
}

func TestResolveID(t *testing.T) {
	st, err := store.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"aaaa-1111", "aaaa-2222", "bbbb-3333"} {
		grid := sobel.NewGrid(4, 4)
		res := &store.Result{ID: id, FrameWidth: 4, FrameHeight: 4, GridWidth: 4, GridHeight: 4, Timestamp: time.Now()}
		if err := st.Save(res, grid); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		prefix  string
		want    string
		wantErr bool
	}{
		{"bbbb", "bbbb-3333", false},
		{"aaaa-2", "aaaa-2222", false},
		{"aaaa-1111", "aaaa-1111", false},
		{"bbbb-33...", "bbbb-3333", false},
		{"aaaa", "", true},
		{"cccc", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("prefix=%q", tt.prefix), func(t *testing.T) {
			got, err := resolveID(st, tt.prefix)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("resolveID = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := resolveID(st, "cccc"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("unknown prefix: err = %v, want ErrNotFound", err)
	}
}

func TestParseBackendList(t *testing.T) {
	got, err := parseBackendList("lanes, scalar,")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != sobel.BackendLanes || got[1] != sobel.BackendScalar {
		t.Errorf("parseBackendList = %v", got)
	}
	if _, err := parseBackendList(" , "); err == nil {
		t.Error("empty list accepted")
	}
	if _, err := parseBackendList("lanes,gpu"); err == nil {
		t.Error("unknown backend accepted")
	}

	all, err := parseBackendList("")
	if err != nil || len(all) != len(sobel.Available()) {
		t.Errorf("parseBackendList(\"\") = %v, %v; want every available backend", all, err)
	}
}

func TestSyntheticFrame(t *testing.T) {
	tests := []struct {
		pattern string
		quarter bool
		wantErr bool
	}{
		{"random", false, false},
		{"flat", false, false},
		{"step", true, false},
		{"noise", false, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/quarter=%v", tt.pattern, tt.quarter), func(t *testing.T) {
			f, err := syntheticFrame(tt.pattern, 64, 32, tt.quarter, 1)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if f.Width != 64 || f.Height != 32 {
				t.Errorf("size = %dx%d, want 64x32", f.Width, f.Height)
			}
		})
	}

	// The quarter step frame decimates to the half-size pattern.
	f, err := syntheticFrame("step", 64, 32, true, 1)
	if err != nil {
		t.Fatal(err)
	}
	half := yuv.StepEdge(32, 16, 32/3, 16, 235)
	for x := 0; x < 32; x++ {
		if got := f.Y(2*x, 2); got != half.Y(x, 1) {
			t.Fatalf("decimated column %d = %d, want %d", x, got, half.Y(x, 1))
		}
	}

	if _, err := syntheticFrame("flat", 63, 32, true, 1); err == nil {
		t.Error("odd quarter source accepted")
	}
}

func TestApplyBackend(t *testing.T) {
	prev := sobel.ActiveBackend
	defer sobel.UseBackend(prev)

	if err := applyBackend("scalar"); err != nil {
		t.Fatal(err)
	}
	if sobel.ActiveBackend != sobel.BackendScalar {
		t.Errorf("ActiveBackend = %s, want scalar", sobel.ActiveBackend)
	}
	if err := applyBackend(""); err != nil || sobel.ActiveBackend != sobel.BackendScalar {
		t.Error("empty name changed the backend")
	}
	if err := applyBackend("fpga"); err == nil {
		t.Error("unknown backend accepted")
	}
}

func TestTimeKernel(t *testing.T) {
	calls := 0
	iters, elapsed := timeKernel(func() { calls++ }, 0)
	if iters != 1 || calls != 1 || elapsed < 0 {
		t.Errorf("timeKernel(0) = %d iterations, %d calls", iters, calls)
	}

	iters, elapsed = timeKernel(func() { time.Sleep(time.Millisecond) }, 5*time.Millisecond)
	if iters < 1 || elapsed < 5*time.Millisecond {
		t.Errorf("timeKernel = %d iterations in %s", iters, elapsed)
	}
}

func TestOutputImage(t *testing.T) {
	defer func(o bool, s int) { overlay, scaleW = o, s }(overlay, scaleW)

	frame := yuv.Random(48, 20, 1)
	job := gradientJob{Frame: frame, Region: sobel.Region{StartX: 2, StartY: 2, EndX: 40, EndY: 17}}
	grid := job.run()

	overlay, scaleW = false, 0
	if _, ok := outputImage(grid, job).(*image.Gray); !ok {
		t.Error("plain output is not *image.Gray")
	}

	overlay, scaleW = true, 96
	img := outputImage(grid, job)
	if _, ok := img.(*image.RGBA); !ok {
		t.Errorf("overlay output is %T, want *image.RGBA", img)
	}
	if b := img.Bounds(); b.Dx() != 96 || b.Dy() != 40 {
		t.Errorf("scaled size = %v, want 96x40", b)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{614400, "600.0 KB"},
		{5 << 20, "5.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPrintResultTable(t *testing.T) {
	var buf bytes.Buffer
	printResultTable(&buf, nil, nil)
	if !strings.Contains(buf.String(), "No results found.") {
		t.Errorf("empty table = %q", buf.String())
	}

	buf.Reset()
	results := []store.Result{{
		ID:         "0123456789abcdef",
		GridWidth:  640,
		GridHeight: 480,
		Direction:  "combined",
		Quarter:    true,
		Timestamp:  time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
	}}
	printResultTable(&buf, results, map[string]int64{"0123456789abcdef": 2048})
	out := buf.String()
	for _, want := range []string{"0123456789ab...", "640x480", "full-frame, quarter", "2.0 KB", "Total results: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}
