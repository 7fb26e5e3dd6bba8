package commands

import (
	"github.com/spf13/cobra"
)

func (c *cli) newHealthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.application()
			if err != nil {
				return err
			}
			status, err := a.Client().Health(cmd.Context())
			if err != nil {
				return err
			}

			p, err := c.printer()
			if err != nil {
				return err
			}
			if p.Structured() {
				return p.Encode(status)
			}

			rows := [][2]string{
				{"Backend", a.Client().BaseURL()},
				{"Status", status.Status},
			}
			if status.Version != "" {
				rows = append(rows, [2]string{"Version", status.Version})
			}
			return p.KeyValues("Health", rows)
		},
	}
}
