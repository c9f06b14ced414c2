// Package banks lists the supported issuers.
package banks

import (
	"fmt"
	"io"
	"text/tabwriter"

	"fjacquet/fatura-extractor/cmd/root"
	"fjacquet/fatura-extractor/internal/container"

	"github.com/spf13/cobra"
)

// Cmd represents the banks command
var Cmd = &cobra.Command{
	Use:   "banks",
	Short: "List the supported banks",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return Run(c, cmd.OutOrStdout())
	},
}

// Run prints one line per bank, with a marker for banks that share the
// generic patterns.
func Run(c *container.Container, out io.Writer) error {
	reg := c.GetRegistry()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPATTERNS")
	for _, b := range c.GetEngine().ListAvailableBanks() {
		kind := "dedicated"
		if !reg.HasDedicated(b.ID) {
			kind = "generic"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", b.ID, b.DisplayName, kind)
	}
	fmt.Fprintf(tw, "\nregistry version %s\n", reg.Version())
	return tw.Flush()
}
