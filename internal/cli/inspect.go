package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/terrain/pkg/errors"
	terrainio "github.com/matzehuels/terrain/pkg/io"
	"github.com/matzehuels/terrain/pkg/terrain"
)

const (
	defaultBins  = 10
	maxBins      = 100
	histBarWidth = 40
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var bins int

	cmd := &cobra.Command{
		Use:   "inspect [file.json]",
		Short: "Print size, range and a histogram of a JSON heightfield",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if bins < 1 || bins > maxBins {
				return errors.New(errors.ErrCodeInvalidInput, "bins must be between 1 and %d, got %d", maxBins, bins)
			}
			g, err := terrainio.ImportJSON(args[0])
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("loaded heightfield", "file", args[0], "cells", g.Len())
			printInspect(args[0], g, bins)
			return nil
		},
	}

	cmd.Flags().IntVar(&bins, "bins", defaultBins, "number of histogram bins")
	return cmd
}

// gridSummary holds descriptive statistics of a grid's cells.
type gridSummary struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// summarize computes mean, population standard deviation and true extremes.
func summarize(g *terrain.Grid) gridSummary {
	var t terrain.Tracker
	var sum, sumSq float64
	for _, v := range g.Values() {
		t.Observe(v)
		sum += v
		sumSq += v * v
	}
	n := float64(g.Len())
	mean := sum / n
	r := t.Range()
	return gridSummary{
		Mean:   mean,
		StdDev: math.Sqrt(max(sumSq/n-mean*mean, 0)),
		Min:    r.Start,
		Max:    r.End,
	}
}

// histogram counts cells per equal-width bin of the grid's range.
// Values outside the range land in the first or last bin; a degenerate
// range puts every cell in the first bin.
func histogram(g *terrain.Grid, bins int) []int {
	counts := make([]int, bins)
	for _, v := range g.Values() {
		n := g.Normalize(v)
		if math.IsNaN(n) {
			counts[0]++
			continue
		}
		i := int(n * float64(bins))
		counts[min(max(i, 0), bins-1)]++
	}
	return counts
}

func printInspect(path string, g *terrain.Grid, bins int) {
	r := g.Range()
	s := summarize(g)

	printKeyValue("File", path)
	printKeyValue("Size", fmt.Sprintf("%d × %d (%d cells)", g.Width(), g.Height(), g.Len()))
	printKeyValue("Range", fmt.Sprintf("[%.6g, %.6g]", r.Start, r.End))
	if s.Min != r.Start || s.Max != r.End {
		printKeyValue("Values", fmt.Sprintf("[%.6g, %.6g]", s.Min, s.Max))
	}
	printKeyValue("Mean", fmt.Sprintf("%.6g", s.Mean))
	printKeyValue("Std dev", fmt.Sprintf("%.6g", s.StdDev))
	if !r.Valid() {
		printWarning("degenerate range: every cell has the same height")
	}

	fmt.Println()
	counts := histogram(g, bins)
	peak := 0
	for _, n := range counts {
		peak = max(peak, n)
	}
	width := r.Span() / float64(bins)
	for i, n := range counts {
		lo := r.Start + float64(i)*width
		bar := 0
		if peak > 0 {
			bar = int(math.Round(float64(n) / float64(peak) * histBarWidth))
		}
		fmt.Printf("  %s %s %s\n",
			StyleDim.Render(fmt.Sprintf("%10.4g", lo)),
			StyleHighlight.Render(strings.Repeat(iconBar, bar)+strings.Repeat(" ", histBarWidth-bar)),
			StyleNumber.Render(fmt.Sprintf("%d", n)))
	}
}
