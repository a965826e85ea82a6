package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/yuvsobel/internal/store"
)

var (
	serverURL string
)

var statusCmd = &cobra.Command{
	Use:   "status [result-id]",
	Short: "Query server health or a stored result",
	Long: `Queries a running server. Without arguments it prints the server health
and lists the stored results. With a result ID it shows that result.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

var httpClient = &http.Client{Timeout: 10 * time.Second}

func init() {
	statusCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		var res store.Result
		if err := getJSON(fmt.Sprintf("%s/api/v1/gradients/%s", serverURL, args[0]), &res); err != nil {
			return err
		}
		printResult(os.Stdout, &res)
		return nil
	}

	var health map[string]interface{}
	if err := getJSON(serverURL+"/healthz", &health); err != nil {
		return err
	}
	fmt.Printf("Server: %s\n", serverURL)
	fmt.Printf("  Status: %v\n", health["status"])
	fmt.Printf("  Backend: %v (host %v)\n", health["backend"], health["hostSimd"])
	if up, ok := health["uptime"].(float64); ok {
		fmt.Printf("  Uptime: %s\n", time.Duration(up*float64(time.Second)).Round(time.Second))
	}
	fmt.Printf("  Processed: %v\n\n", health["processed"])

	var results []store.Result
	if err := getJSON(serverURL+"/api/v1/gradients", &results); err != nil {
		return err
	}
	printResultTable(os.Stdout, results, nil)
	return nil
}

func getJSON(url string, v interface{}) error {
	resp, err := httpClient.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("not found: %s", url)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// printResult writes the details of one result.
func printResult(w io.Writer, res *store.Result) {
	fmt.Fprintf(w, "Result: %s\n", res.ID)
	if res.Source != "" {
		fmt.Fprintf(w, "  Source: %s\n", res.Source)
	}
	fmt.Fprintf(w, "  Created: %s\n", res.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "  Frame: %dx%d\n", res.FrameWidth, res.FrameHeight)
	fmt.Fprintf(w, "  Region: %s\n", res.Region)
	fmt.Fprintf(w, "  Direction: %s\n", res.Direction)
	fmt.Fprintf(w, "  Layout: %s\n", layoutName(res))
	fmt.Fprintf(w, "  Backend: %s\n", res.Backend)
	fmt.Fprintf(w, "  Grid: %dx%d\n", res.GridWidth, res.GridHeight)
	fmt.Fprintf(w, "  Max: %d\n", res.Stats.Max)
	fmt.Fprintf(w, "  Mean: %.3f\n", res.Stats.Mean)
	fmt.Fprintf(w, "  Above %d: %d\n", res.Stats.Threshold, res.Stats.AboveThreshold)
	fmt.Fprintf(w, "  Kernel time: %.3f ms\n", res.Duration)
}

func layoutName(res *store.Result) string {
	layout := "full-frame"
	if res.Crop {
		layout = "cropped"
	}
	if res.Quarter {
		layout += ", quarter"
	}
	return layout
}

// printResultTable lists results; sizes maps IDs to on-disk sizes and may
// be nil.
func printResultTable(w io.Writer, results []store.Result, sizes map[string]int64) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIMESTAMP\tGRID\tDIRECTION\tLAYOUT\tMAX\tMEAN\tSIZE")
	fmt.Fprintln(tw, "--\t---------\t----\t---------\t------\t---\t----\t----")
	for i := range results {
		res := &results[i]
		sizeStr := "-"
		if size, ok := sizes[res.ID]; ok {
			sizeStr = formatBytes(size)
		}
		fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%s\t%s\t%d\t%.2f\t%s\n",
			shortID(res.ID),
			res.Timestamp.Format("2006-01-02 15:04:05"),
			res.GridWidth, res.GridHeight,
			res.Direction,
			layoutName(res),
			res.Stats.Max,
			res.Stats.Mean,
			sizeStr,
		)
	}
	tw.Flush()

	fmt.Fprintf(w, "\nTotal results: %d\n", len(results))
}

// shortID truncates an ID for display.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12] + "..."
	}
	return id
}
