package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List camera presets",
	Long: `Lists the built-in camera presets merged with those from --presets.
The file format is {"presets":[{"name":"upper","width":1280,"height":960}]}.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadPresets()
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tFRAME\tQUARTER\tBYTES")
		for _, name := range reg.Names() {
			p := reg[name]
			qw, qh := p.QuarterSize()
			fmt.Fprintf(tw, "%s\t%dx%d\t%dx%d\t%s\n", p.Name, p.Width, p.Height, qw, qh, formatBytes(int64(p.FrameBytes())))
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}
