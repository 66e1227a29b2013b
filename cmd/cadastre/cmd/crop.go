package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chanot/cadastre/internal/roi"
)

var cropCmd = &cobra.Command{
	Use:   "crop [folder|image]",
	Short: "Crop the reviewed table region out of each deed scan",
	Long: `Apply the saved crop rectangles (<base>_rect.json) to their scans,
writing the <base>_table.jpg images the extract step reads.

Given a folder, every rectangle under it is applied; given a single
scan image, only that one.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCrop,
}

func init() {
	rootCmd.AddCommand(cropCmd)
}

// scanExtensions are tried in order when pairing a rectangle file with
// its scan.
var scanExtensions = []string{".jpg", ".jpeg", ".png", ".tif", ".tiff"}

func runCrop(cmd *cobra.Command, args []string) error {
	folder := folderArg(args)

	if info, err := os.Stat(folder); err == nil && !info.IsDir() {
		out, err := roi.Crop(folder)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", folder, out)
		return nil
	}

	var cropped int
	err := filepath.Walk(folder, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, "_rect.json") {
			return nil
		}

		img, err := scanFor(path)
		if err != nil {
			return err
		}
		out, err := roi.Crop(img)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", relPath(folder, img), relPath(folder, out))
		cropped++
		return nil
	})
	if err != nil {
		return err
	}
	if cropped == 0 {
		return errors.New("no crop rectangles found")
	}
	return nil
}

// scanFor finds the scan image a rectangle file belongs to.
func scanFor(rectPath string) (string, error) {
	base := strings.TrimSuffix(rectPath, "_rect.json")
	for _, ext := range scanExtensions {
		if _, err := os.Stat(base + ext); err == nil {
			return base + ext, nil
		}
	}
	return "", fmt.Errorf("no scan image next to %s", rectPath)
}
