package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/yuvsobel/internal/render"
	"github.com/cwbudde/yuvsobel/internal/sobel"
	"github.com/cwbudde/yuvsobel/internal/store"
)

var (
	keepLast      int
	olderThanDays int
	forceClean    bool
	dryRunClean   bool
	exportPath    string
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Manage stored gradient results",
	Long: `Manage results saved by "run --save" or the HTTP server: list, inspect,
export, delete and clean by retention policy. IDs may be given as any
unique prefix.`,
}

var listResultsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored results",
	RunE:  runListResults,
}

var showResultCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one result and optionally export its image",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowResult,
}

var deleteResultCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one result",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeleteResult,
}

var cleanResultsCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean old results",
	Long: `Delete results based on retention policy. Keep the newest N results,
delete results older than N days, or both.`,
	RunE: runCleanResults,
}

func init() {
	rootCmd.AddCommand(resultsCmd)

	resultsCmd.AddCommand(listResultsCmd)
	resultsCmd.AddCommand(showResultCmd)
	resultsCmd.AddCommand(deleteResultCmd)
	resultsCmd.AddCommand(cleanResultsCmd)

	showResultCmd.Flags().StringVar(&exportPath, "export", "", "Write the gradient image to this path (.png, .bmp, .tiff)")

	cleanResultsCmd.Flags().IntVar(&keepLast, "keep-last", 0, "Keep only the newest N results (0 = keep all)")
	cleanResultsCmd.Flags().IntVar(&olderThanDays, "older-than", 0, "Delete results older than N days (0 = no age limit)")
	cleanResultsCmd.Flags().BoolVarP(&forceClean, "force", "f", false, "Skip confirmation prompt")
	cleanResultsCmd.Flags().BoolVar(&dryRunClean, "dry-run", false, "Only show what would be deleted")
}

func openStore() (*store.FSStore, error) {
	st, err := store.NewFSStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create result store: %w", err)
	}
	return st, nil
}

// resolveID expands a unique ID prefix, as printed by "results list".
func resolveID(st store.Store, prefix string) (string, error) {
	prefix = strings.TrimSuffix(prefix, "...")
	if prefix == "" {
		return "", fmt.Errorf("empty result ID")
	}

	results, err := st.List()
	if err != nil {
		return "", err
	}

	var matches []string
	for _, res := range results {
		if res.ID == prefix {
			return prefix, nil
		}
		if strings.HasPrefix(res.ID, prefix) {
			matches = append(matches, res.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", &store.NotFoundError{ID: prefix}
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("result ID prefix %q is ambiguous (%d matches)", prefix, len(matches))
	}
}

func runListResults(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}

	results, err := st.List()
	if err != nil {
		return fmt.Errorf("failed to list results: %w", err)
	}

	sizes := make(map[string]int64, len(results))
	for _, res := range results {
		if size, err := getDirSize(filepath.Join(st.BaseDir(), "results", res.ID)); err == nil {
			sizes[res.ID] = size
		}
	}

	printResultTable(os.Stdout, results, sizes)
	return nil
}

func runShowResult(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	id, err := resolveID(st, args[0])
	if err != nil {
		return err
	}

	res, err := st.Load(id)
	if err != nil {
		return err
	}
	printResult(os.Stdout, res)

	if exportPath == "" {
		return nil
	}
	grid, err := st.LoadGrid(id)
	if err != nil {
		return err
	}
	if err := exportGrid(exportPath, grid); err != nil {
		return err
	}
	fmt.Printf("\nExported %s\n", exportPath)
	return nil
}

func runDeleteResult(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	id, err := resolveID(st, args[0])
	if err != nil {
		return err
	}
	if err := st.Delete(id); err != nil {
		return err
	}
	slog.Info("Deleted result", "id", id)
	fmt.Printf("Deleted %s\n", id)
	return nil
}

func runCleanResults(cmd *cobra.Command, args []string) error {
	if keepLast == 0 && olderThanDays == 0 {
		return fmt.Errorf("must specify either --keep-last or --older-than")
	}

	st, err := openStore()
	if err != nil {
		return err
	}

	policy := store.CleanPolicy{
		MaxAge:   time.Duration(olderThanDays) * 24 * time.Hour,
		KeepLast: keepLast,
	}
	now := time.Now()

	candidates, err := st.Clean(policy, now, true)
	if err != nil {
		return fmt.Errorf("failed to select results: %w", err)
	}
	if len(candidates) == 0 {
		fmt.Println("No results match deletion criteria.")
		return nil
	}

	fmt.Printf("Found %d result(s) to delete:\n", len(candidates))
	for _, id := range candidates {
		fmt.Printf("  - %s\n", id)
	}
	if dryRunClean {
		return nil
	}

	if !forceClean {
		fmt.Print("\nProceed with deletion? [y/N]: ")
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	removed, err := st.Clean(policy, now, false)
	if err != nil {
		slog.Error("Clean stopped early", "deleted", len(removed), "error", err)
		return err
	}
	fmt.Printf("\nDeleted %d result(s).\n", len(removed))
	return nil
}

// getDirSize calculates the total size of a directory
func getDirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

// formatBytes formats bytes as human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// exportGrid writes a grid as a grayscale image chosen by extension.
func exportGrid(path string, grid *sobel.Grid) error {
	return render.WriteFile(path, render.Gray(grid))
}
