package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/pcsplit/internal/report"
	"github.com/Iron-Ham/pcsplit/internal/score"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Write a spreadsheet of committee members by topic",
	RunE:  runTopics,
}

func init() {
	rootCmd.AddCommand(topicsCmd)
}

func runTopics(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	roster, err := a.roster()
	if err != nil {
		return err
	}
	members := roster.Primary()
	topics := score.TopicHistogram(members).Topics()

	if err := a.write(fileTopicSheet, func(w io.Writer) error {
		return report.WriteTopicSheet(w, members, topics)
	}); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Wrote %d members and %d topics to %s\n", len(members), len(topics), a.out.Path(fileTopicSheet))
	return nil
}
