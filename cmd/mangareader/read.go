package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kerbaras/mangareader/pkg/data"
)

var readCmd = &cobra.Command{
	Use:   "read [manga-id] [chapter]",
	Short: "Print the page images of a chapter in reading order",
	Long: `Print the page image URLs of one chapter, first page first. The chapter is
matched on its exact number, so 10.1 and 10.10 are different chapters.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		number, err := data.ParseChapterNumber(args[1])
		if err != nil {
			return err
		}

		env, err := setup(false)
		if err != nil {
			return err
		}
		defer env.Close()

		view, err := env.controller.Reader.Chapter(cmd.Context(), args[0], number)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "📄 %s · Chapter %s", view.Manga.Title, view.Chapter.Number)
		if view.Chapter.Title != "" {
			fmt.Fprintf(out, ": %s", view.Chapter.Title)
		}
		fmt.Fprintln(out)

		for i, img := range view.Images {
			fmt.Fprintf(out, "%3d  %s\n", i+1, img.ImageURL)
		}
		if len(view.Images) == 0 {
			fmt.Fprintln(out, "This chapter has no pages.")
		}

		if view.Prev != nil {
			fmt.Fprintf(out, "prev: %s\n", view.Prev.Number)
		}
		if view.Next != nil {
			fmt.Fprintf(out, "next: %s\n", view.Next.Number)
		}
		return nil
	},
}
