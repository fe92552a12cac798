package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/conet/pkg/pipeline"
)

// showCommand creates the show command.
func (c *CLI) showCommand() *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "show <result.json>",
		Short: "Print the summary of a previous analysis",
		Long: `Show reads a result document written by "conet analyze" and prints its
metrics, warnings and top ranked nodes. Nothing is recomputed.`,
		Example: `  conet show results/contributors_20250131-142501.json --top 20`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := pipeline.LoadDocument(args[0])
			if err != nil {
				return err
			}

			printSuccess("%s", StyleHighlight.Render(doc.Source))
			printDetail("run %s · %s", doc.RunID, doc.GeneratedAt.Local().Format(time.DateTime))
			printDocument(doc, top)
			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", defaultTop, "number of ranked nodes to print (0 for none)")

	return cmd
}
