package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/chanot/cadastre/internal/batch"
	"github.com/chanot/cadastre/internal/record"
)

var listCmd = &cobra.Command{
	Use:   "list [folder]",
	Short: "List the working folder's documents and their staging state",
	Long: `List every cropped table image under the folder with its index (the
number used by extract's -i range selection) and which record stages
exist for it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	folder := folderArg(args)

	docs, err := batch.DiscoverDocuments(folder)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no table images found")
		return nil
	}

	w := cmd.OutOrStdout()
	for i, doc := range docs {
		fmt.Fprintf(w, "%3d  %s  markups=%d  stages=%s\n",
			i+1, relPath(folder, doc.TableImage), len(doc.Markups), stageFlags(doc.Base()))
	}
	return nil
}

// stageFlags summarizes which staged records exist for a base:
// R(aw), V(erified), F(inal).
func stageFlags(base string) string {
	stages := []struct {
		stage  record.Stage
		letter string
	}{
		{record.StageRaw, "R"},
		{record.StageVerified, "V"},
		{record.StageFinal, "F"},
	}
	flags := ""
	for _, s := range stages {
		if _, err := os.Stat(s.stage.Path(base)); err == nil {
			flags += s.letter
		} else {
			flags += "-"
		}
	}
	return flags
}

func relPath(folder, path string) string {
	if rel, err := filepath.Rel(folder, path); err == nil {
		return rel
	}
	return path
}
