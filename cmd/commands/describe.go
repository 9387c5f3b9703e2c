package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Print summary statistics for every variable",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset()
		if err != nil {
			return err
		}

		p := message.NewPrinter(language.English)
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "variable\tcount\tmin\tmax\tmean\tmedian\tstd dev\t")
		for _, s := range ds.Summary() {
			fmt.Fprint(tw, p.Sprintf("%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t\n",
				s.Variable, s.Count, s.Min, s.Max, s.Mean, s.Median, s.StdDev))
		}
		return tw.Flush()
	},
}
