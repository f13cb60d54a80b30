package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var tableHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)

// modelsCommand lists the configured models.
func (c *CLI) modelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List configured models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := c.cfg.ModelNames()
			if len(names) == 0 {
				printInfo("No models configured")
				return nil
			}
			rows := make([][]string, len(names))
			for i, name := range names {
				rows[i] = []string{name, c.cfg.Models[name]}
			}
			fmt.Println(newTable([]string{"Model", "Endpoint"}, rows).Render())
			return nil
		},
	}
}

func newTable(headers []string, rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 { // header
				return tableHeaderStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
}
