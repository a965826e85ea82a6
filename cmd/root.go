package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/yuvsobel/internal/camera"
	"github.com/cwbudde/yuvsobel/internal/sobel"
)

var (
	logLevel    string
	logger      *slog.Logger
	backendName string
	presetsPath string
	dataDir     string
)

var rootCmd = &cobra.Command{
	Use:   "yuvsobel",
	Short: "Sobel edge magnitude for YUYV camera frames",
	Long: `yuvsobel computes 8-bit Sobel edge-magnitude images from the luma
channel of packed YUYV 4:2:2 frames, at full or quarter resolution, with a
16-lane vector kernel and a scalar reference backend.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Setup logger
		var level slog.Level
		switch logLevel {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}

		opts := &slog.HandlerOptions{Level: level}
		handler := slog.NewJSONHandler(os.Stdout, opts)
		logger = slog.New(handler)
		slog.SetDefault(logger)

		return applyBackend(backendName)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&backendName, "backend", "", "Kernel backend: auto, sse2, avx2, neon, scalar or lanes (default: fastest supported, YUVSOBEL_NO_SIMD forces scalar)")
	rootCmd.PersistentFlags().StringVar(&presetsPath, "presets", "", "JSON file with additional camera presets")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "./data", "Base directory for stored results")
}

// applyBackend switches the kernel when name is set. An empty name keeps
// the backend chosen at startup.
func applyBackend(name string) error {
	if name == "" {
		return nil
	}
	b, err := sobel.ParseBackend(name)
	if err != nil {
		return err
	}
	if err := sobel.UseBackend(b); err != nil {
		return err
	}
	slog.Debug("Backend selected", "backend", b.String())
	return nil
}

func loadPresets() (camera.Registry, error) {
	reg, err := camera.LoadPresets(presetsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load presets: %w", err)
	}
	return reg, nil
}
