package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/chanot/cadastre/internal/batch"
)

var transformCmd = &cobra.Command{
	Use:   "transform [folder]",
	Short: "Transform verified records to WGS84 UTM and write parcel files",
	Long: `Read every verified record (<base>_OCRedit.toml) under the folder,
transform its markers to the WGS84 UTM zone of its source system, and
write:

- a final <base>_W84UTM.toml record per deed
- <prefix>_I75UTM.geojson with all parcels in source coordinates
- <prefix>_W84UTM.geojson with all parcels in WGS84 UTM

Raw records without a verified copy are carried forward unchanged
first, so an untouched review pass still transforms.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTransform,
}

func init() {
	transformCmd.Flags().String("prefix", "cadastre", "basename for the parcel container files")
	rootCmd.AddCommand(transformCmd)
}

func runTransform(cmd *cobra.Command, args []string) error {
	folder := folderArg(args)

	cfg, err := loadConfig(cmd, folder)
	if err != nil {
		return err
	}
	prefix, _ := cmd.Flags().GetString("prefix")

	sum, err := batch.NewRunner(cfg).RunTransform(folder, prefix)
	if err != nil {
		return err
	}
	printSummary(cmd, "transformed", sum)
	return nil
}

func printSummary(cmd *cobra.Command, verb string, sum *batch.Summary) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d document(s) in %s\n",
		verb, sum.Processed, sum.Duration.Round(time.Millisecond))
	for _, skipped := range sum.Skipped {
		fmt.Fprintf(cmd.OutOrStdout(), "skipped: %s\n", skipped)
	}
}
