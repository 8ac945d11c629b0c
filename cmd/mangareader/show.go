package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kerbaras/mangareader/pkg/app/components"
	"github.com/kerbaras/mangareader/pkg/catalog"
)

var genresCmd = &cobra.Command{
	Use:   "genres",
	Short: "List the genres found in the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(false)
		if err != nil {
			return err
		}
		defer env.Close()

		store := env.controller.Store
		if err := store.Refresh(cmd.Context()); err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}

		for _, g := range catalog.Vocabulary(store.Entries()) {
			fmt.Fprintln(cmd.OutOrStdout(), g)
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show [manga-id]",
	Short: "Show a title and its chapters",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(false)
		if err != nil {
			return err
		}
		defer env.Close()

		details, err := env.controller.Reader.Details(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		manga := details.Manga
		fmt.Fprintf(out, "\n📖 %s\n", manga.Title)
		if manga.Alternative != "" {
			fmt.Fprintf(out, "   %s\n", manga.Alternative)
		}
		fmt.Fprintln(out)
		for _, field := range [][2]string{
			{"Author", manga.Author},
			{"Artist", manga.Artist},
			{"Type", manga.Type},
			{"Released", manga.ReleaseYear},
			{"Status", manga.Status},
			{"Rating", manga.RatingValue()},
			{"Rank", manga.RankValue()},
			{"Genres", strings.Join(manga.GenreList(), ", ")},
		} {
			if field[1] != "" {
				fmt.Fprintf(out, "%-9s %s\n", field[0]+":", field[1])
			}
		}
		if manga.Description != "" {
			fmt.Fprintf(out, "\n%s\n", manga.Description)
		}

		if len(details.Chapters) == 0 {
			fmt.Fprintln(out, "\nNo chapters available.")
			return nil
		}

		columns := []table.Column{
			{Title: "Chapter", Width: 10},
			{Title: "Title", Width: 40},
			{Title: "Published", Width: 14},
		}

		rows := make([]table.Row, 0, len(details.Chapters))
		for _, c := range details.Chapters {
			rows = append(rows, table.Row{
				c.Number.String(),
				components.Truncate(c.Title, 38),
				c.PublishedDate,
			})
		}

		t := table.New(
			table.WithColumns(columns),
			table.WithRows(rows),
			table.WithFocused(false),
			table.WithHeight(len(rows)),
		)

		s := table.DefaultStyles()
		s.Header = s.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(true)
		s.Selected = s.Cell
		t.SetStyles(s)

		fmt.Fprintf(out, "\nChapters (%d)\n\n", len(details.Chapters))
		fmt.Fprintln(out, t.View())
		return nil
	},
}
