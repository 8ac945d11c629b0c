package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/kerbaras/mangareader/pkg/app/components"
	"github.com/kerbaras/mangareader/pkg/catalog"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog titles",
	Long: `List one page of the catalog, optionally filtered by a title query, a genre
and a status. Filters combine; the page is clamped to the available range.

Examples:
  mangareader list --query "one piece"
  mangareader list --genre Action --status OnGoing --page 2`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("query")
		genre, _ := cmd.Flags().GetString("genre")
		status, _ := cmd.Flags().GetString("status")
		page, _ := cmd.Flags().GetInt("page")
		asJSON, _ := cmd.Flags().GetBool("json")

		env, err := setup(false)
		if err != nil {
			return err
		}
		defer env.Close()

		filters := catalog.NewFilters()
		engine := catalog.NewEngine(env.controller.Store, filters)
		if err := engine.Refresh(cmd.Context()); err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}

		filters.Set(catalog.Criteria{Query: query, Genre: genre, Status: status})
		engine.SetPage(page)
		view := engine.Derive()

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(view)
		}

		if view.Filtered == 0 {
			fmt.Fprintln(out, "No titles found.")
			return nil
		}

		fmt.Fprintln(out, catalogTable(view))
		fmt.Fprintf(out, "Showing %d of %d results (%d total) · Page %d / %d\n",
			len(view.Items), view.Filtered, view.Total, view.Page, view.TotalPages)
		return nil
	},
}

func init() {
	listCmd.Flags().StringP("query", "q", "", "match title or alternative title")
	listCmd.Flags().StringP("genre", "g", "", "match a genre")
	listCmd.Flags().StringP("status", "s", "", "OnGoing or Completed")
	listCmd.Flags().IntP("page", "p", 1, "page number")
	listCmd.Flags().Bool("json", false, "print the page as JSON")
}

func catalogTable(view catalog.View) *table.Table {
	var (
		purple = lipgloss.Color("99")

		headerStyle = lipgloss.NewStyle().Foreground(purple).Bold(true).Align(lipgloss.Center)
		cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	)

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(purple)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			default:
				return cellStyle
			}
		}).
		Headers("#", "Title", "Status", "Genres", "Rating", "ID")

	offset := (view.Page - 1) * catalog.PageSize
	for i, m := range view.Items {
		t.Row(
			fmt.Sprintf("%d", offset+i+1),
			components.Truncate(m.Title, 48),
			m.Status,
			components.Truncate(strings.Join(m.GenreList(), ", "), 32),
			m.RatingValue(),
			m.ID,
		)
	}
	return t
}
