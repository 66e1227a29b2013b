package cmd

import (
	"github.com/spf13/cobra"

	"github.com/chanot/cadastre/internal/batch"
)

var extractCmd = &cobra.Command{
	Use:   "extract [folder]",
	Short: "Extract marker tables from OCR markup into staged records",
	Long: `Parse the OCR markup of every cropped table image under the folder
and stage the extracted marker coordinates as <base>_OCR.toml records
for review.

Use -i to restrict the run to a 1-based slice of the document list as
printed by "cadastre list".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringP("items", "i", "", "1-based inclusive document range, e.g. 1,20")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	folder := folderArg(args)

	cfg, err := loadConfig(cmd, folder)
	if err != nil {
		return err
	}
	items, _ := cmd.Flags().GetString("items")

	sum, err := batch.NewRunner(cfg).RunExtract(folder, items)
	if err != nil {
		return err
	}
	printSummary(cmd, "extracted", sum)
	return nil
}
