package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/RamanKey/pkg/writer/sqlite"
	"github.com/ChrisMcGann/RamanKey/pkg/writer/text"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file]",
	Short: "Summarize runs stored in a results database",
	Long:  `Print every run stored in a results database with its parameters, batch outcomes and classification counts.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runs, err := sqlite.ListRuns(args[0])
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Printf("No runs stored in %s\n", args[0])
			return nil
		}
		fmt.Println(text.RenderRuns(runs))
		return nil
	},
}
