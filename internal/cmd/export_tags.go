package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/pcsplit/internal/report"
)

var exportTagsCmd = &cobra.Command{
	Use:   "export-tags",
	Short: "Write the committee split as tag updates",
	Long: `Turn the Friday and Saturday group listings into a tag update CSV
(email,add_tags,remove_tags) for the conference system.

Flexible members receive the tag of each day they were placed on, and their
flexible tag is renamed with an _orig suffix.`,
	RunE: runExportTags,
}

var (
	exportTagsFriday   string
	exportTagsSaturday string
)

func init() {
	exportTagsCmd.Flags().StringVar(&exportTagsFriday, "friday", "", "Friday group listing (default <out>/"+fileFridayGroup+")")
	exportTagsCmd.Flags().StringVar(&exportTagsSaturday, "saturday", "", "Saturday group listing (default <out>/"+fileSaturdayGroup+")")
	rootCmd.AddCommand(exportTagsCmd)
}

func runExportTags(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	roster, err := a.roster()
	if err != nil {
		return err
	}

	fridayPath := exportTagsFriday
	if fridayPath == "" {
		fridayPath = a.out.Path(fileFridayGroup)
	}
	saturdayPath := exportTagsSaturday
	if saturdayPath == "" {
		saturdayPath = a.out.Path(fileSaturdayGroup)
	}
	friday, err := readGroup(fridayPath, roster)
	if err != nil {
		return err
	}
	saturday, err := readGroup(saturdayPath, roster)
	if err != nil {
		return err
	}

	updates := report.TagUpdates(friday, saturday, a.tags())
	if err := a.write(fileTagUpdates, func(w io.Writer) error {
		return report.WriteTagUpdates(w, updates)
	}); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Wrote %d tag updates to %s\n", len(updates), a.out.Path(fileTagUpdates))
	return nil
}
