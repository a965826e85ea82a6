package main

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cwbudde/yuvsobel/internal/sobel"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show kernel and host information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("yuvsobel %s (%s, %s/%s)\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		fmt.Printf("Active backend: %s\n", sobel.ActiveBackend)
		fmt.Printf("Host SIMD: %s\n", sobel.HostSIMD())
		fmt.Printf("Available backends: %s\n", backendNames(sobel.Available()))
		fmt.Printf("YUVSOBEL_NO_SIMD: %v\n", sobel.NoSimdEnv())
		fmt.Printf("Batch: %d lanes, %d results per batch, %d source columns per quarter batch\n",
			sobel.BatchLanes, sobel.BatchStride, sobel.QuarterSourceStride)
		fmt.Printf("Border values: full %d, quarter %d\n", sobel.FullSentinel, sobel.QuarterSentinel)
	},
}

func backendNames(bs []sobel.Backend) string {
	names := make([]string, len(bs))
	for i, b := range bs {
		names[i] = b.String()
	}
	return strings.Join(names, ", ")
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
