package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/RamanKey/pkg/reader/reference"
)

var referenceCmd = &cobra.Command{
	Use:   "reference [file]",
	Short: "Validate a reference peak table",
	Long: `Load a reference peak table and print the valid peak count of every polymer
type. Declared counts in the label row that disagree with the counted peaks
are reported.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := stderrLogger()
		if err != nil {
			return err
		}

		ref, err := reference.Load(args[0], logger)
		if err != nil {
			return fmt.Errorf("failed to load reference table: %w", err)
		}

		fmt.Printf("Reference: %s\n", args[0])
		fmt.Printf("Polymer types: %d\n", ref.NumTypes())
		for i, name := range ref.Types {
			line := fmt.Sprintf("  %-20s %d peaks", name, ref.ValidPeakCount[i])
			if declared, ok := ref.DeclaredCount(i); ok && declared != ref.ValidPeakCount[i] {
				line += fmt.Sprintf(" (label row declares %d)", declared)
			}
			fmt.Println(line)
		}
		return nil
	},
}
