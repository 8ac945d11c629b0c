package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kerbaras/mangareader/pkg/data"
	"github.com/kerbaras/mangareader/pkg/services"
)

var exportCmd = &cobra.Command{
	Use:   "export [manga-id] [chapter...]",
	Short: "Export chapters as EPUB files",
	Long: `Download the pages of one or more chapters and write one EPUB per chapter.

Examples:
  mangareader export 2f0c1 1 2 3
  mangareader export 2f0c1 10.5 --dir ~/Books --max-width 1264`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		numbers := make([]data.ChapterNumber, 0, len(args)-1)
		for _, arg := range args[1:] {
			n, err := data.ParseChapterNumber(arg)
			if err != nil {
				return err
			}
			numbers = append(numbers, n)
		}

		env, err := setup(false)
		if err != nil {
			return err
		}
		defer env.Close()

		exporter := env.controller.Exporter
		if dir, _ := cmd.Flags().GetString("dir"); dir != "" || cmd.Flags().Changed("max-width") {
			export := env.cfg.Export
			if dir != "" {
				export.Dir = dir
			}
			if cmd.Flags().Changed("max-width") {
				export.MaxWidth, _ = cmd.Flags().GetInt("max-width")
			}
			exporter = services.NewExporter(env.controller.Reader, export, env.log)
			defer exporter.Close()
		}

		out := cmd.OutOrStdout()
		done := make(chan struct{})
		go func() {
			defer close(done)
			for progress := range exporter.Progress() {
				switch {
				case progress.Status == services.StatusError:
					fmt.Fprintf(out, "  Chapter %s: %v\n", progress.ChapterNumber, progress.Error)
				case progress.Status == services.StatusComplete:
					fmt.Fprintf(out, "  Chapter %s: done\n", progress.ChapterNumber)
				case progress.TotalPages > 0 && progress.CurrentPage > 0:
					fmt.Fprintf(out, "  Chapter %s: %d/%d pages\n", progress.ChapterNumber, progress.CurrentPage, progress.TotalPages)
				default:
					fmt.Fprintf(out, "  Chapter %s: %s\n", progress.ChapterNumber, progress.Status)
				}
			}
		}()

		fmt.Fprintf(out, "📥 Exporting %d chapter(s)\n", len(numbers))
		paths, exportErr := exporter.ExportChapters(cmd.Context(), args[0], numbers)

		exporter.Close()
		<-done

		for _, p := range paths {
			fmt.Fprintf(out, "📖 %s\n", p)
		}
		return exportErr
	},
}

func init() {
	exportCmd.Flags().String("dir", "", "output directory (overrides export.dir)")
	exportCmd.Flags().Int("max-width", 0, "downscale wider pages to this width (overrides export.max_width)")
}
