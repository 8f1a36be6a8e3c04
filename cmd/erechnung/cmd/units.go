package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rezonia/erechnung/internal/model"
)

var unitsCmd = &cobra.Command{
	Use:   "units",
	Short: "List the supported units of measure and their UN/ECE codes",
	Long: `List the units of measure accepted on invoice positions together with
the UN/ECE Recommendation 20 code emitted in XRechnung and ZUGFeRD output.

Units outside this table fall back to H87 (piece).`,
	RunE: runUnits,
}

func init() {
	rootCmd.AddCommand(unitsCmd)
}

func runUnits(cmd *cobra.Command, args []string) error {
	codes := model.UnitCodes()

	units := make([]string, 0, len(codes))
	for unit := range codes {
		units = append(units, unit)
	}
	sort.Strings(units)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "EINHEIT\tUN/ECE CODE")
	for _, unit := range units {
		fmt.Fprintf(w, "%s\t%s\n", unit, codes[unit])
	}
	return w.Flush()
}
