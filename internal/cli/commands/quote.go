package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/kolmo-labs/buildledger/internal/config"
	"github.com/kolmo-labs/buildledger/internal/deck"
	"github.com/kolmo-labs/buildledger/internal/quote"
)

// NewQuoteCommand creates the quote command.
func NewQuoteCommand() *cobra.Command {
	var in deck.SiteInput
	var railingLf float64
	var decking, railing string

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Design a deck from site measurements and price it",
		Long: `Runs the prescriptive code engine over the given measurements and
prints the structural summary and a line-item quote. Nothing is saved.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromContext(cmd.Context())

			in.DeckingType = deck.DeckingType(decking)
			in.RailingType = deck.RailingType(railing)
			in.RailingLf = railingLf

			structure := deck.GenerateStructure(in)
			if !structure.Compliant {
				for _, e := range structure.Errors {
					fmt.Fprintf(cmd.ErrOrStderr(), "not compliant: %s\n", e)
				}
				return fmt.Errorf("design is not code compliant")
			}

			for _, note := range structure.Notes {
				fmt.Fprintln(cmd.OutOrStdout(), note)
			}
			fmt.Fprintln(cmd.OutOrStdout())

			pb := quote.DefaultPriceBook()
			if cfg.Server.PriceBookPath != "" {
				loaded, err := quote.LoadPriceBook(cfg.Server.PriceBookPath)
				if err != nil {
					return err
				}
				pb = loaded
			}

			q := quote.Calculate(structure, pb)

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Category", "Description", "Materials", "Labor", "Total"})
			t.SetColumnConfigs([]table.ColumnConfig{
				{Name: "Materials", Align: text.AlignRight},
				{Name: "Labor", Align: text.AlignRight},
				{Name: "Total", Align: text.AlignRight},
			})

			for _, li := range q.LineItems {
				t.AppendRow(table.Row{
					li.Category, li.Description,
					fmt.Sprintf("$%.2f", li.MaterialCost),
					fmt.Sprintf("$%.2f", li.LaborCost),
					fmt.Sprintf("$%.2f", li.Total()),
				})
			}
			t.AppendFooter(table.Row{"", "Subtotal", "", "", fmt.Sprintf("$%.2f", q.Subtotal)})
			t.AppendFooter(table.Row{"", "Margin", "", "", fmt.Sprintf("$%.2f", q.MarginAmount)})
			t.AppendFooter(table.Row{"", "Total", "", "", fmt.Sprintf("$%.2f", q.Total)})
			t.SetStyle(table.StyleLight)
			t.Render()

			fmt.Fprintf(cmd.OutOrStdout(), "\n%.0f SF at $%.2f/SF\n", q.DeckSqft, q.PricePerSqft)
			return nil
		},
	}

	cmd.Flags().Float64Var(&in.WidthFt, "width", 0, "deck width in feet (along the house)")
	cmd.Flags().Float64Var(&in.DepthFt, "depth", 0, "deck depth in feet (away from the house)")
	cmd.Flags().Float64Var(&in.HeightFt, "height", 0, "deck height in feet above grade")
	cmd.Flags().StringVar(&decking, "decking", "trex", "decking type (trex|timbertech|cedar|pt_wood)")
	cmd.Flags().StringVar(&railing, "railing", "none", "railing type (none|wood|cable|glass|aluminum)")
	cmd.Flags().Float64Var(&railingLf, "railing-lf", 0, "railing length in linear feet")
	cmd.Flags().IntVar(&in.StairCount, "stairs", 0, "number of stair treads")
	_ = cmd.MarkFlagRequired("width")
	_ = cmd.MarkFlagRequired("depth")
	_ = cmd.MarkFlagRequired("height")

	return cmd
}
