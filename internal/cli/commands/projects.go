package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/kolmo-labs/buildledger/internal/billing"
	"github.com/kolmo-labs/buildledger/internal/config"
)

// NewProjectsCommand creates the projects command group.
func NewProjectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Inspect projects",
	}
	cmd.AddCommand(newProjectsListCommand())
	return cmd
}

func newProjectsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects with their billing allocation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromContext(cmd.Context())

			store, err := openMigratedStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			projects, err := store.ListProjects(cmd.Context())
			if err != nil {
				return err
			}

			validator := billing.NewValidator(store)

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"ID", "Name", "Client", "Status", "Allocated", "Remaining"})

			for _, p := range projects {
				totals, err := validator.ComputeTotals(cmd.Context(), p.ID, nil, nil)
				if err != nil {
					return err
				}
				t.AppendRow(table.Row{
					p.ID, p.Name, p.ClientName, p.Status,
					fmt.Sprintf("%.1f%%", totals.GrandTotal),
					fmt.Sprintf("%.1f%%", totals.RemainingPercentage),
				})
			}

			t.SetStyle(table.StyleLight)
			t.Render()
			return nil
		},
	}
}
