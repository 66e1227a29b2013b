package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chanot/cadastre/internal/config"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "cadastre",
	Short: "Digitize Thai land-deed survey tables into geospatial parcels",
	Long: `cadastre turns scanned land-deed marker tables into staged survey
records and georeferenced parcel files.

The pipeline over a working folder:
- crop the reviewed table region out of each deed scan
- extract marker coordinates from the OCR markup into staged records
- transform verified records to WGS84 UTM and write parcel containers

The working folder carries a config.toml with the land office, survey
type, column layout and datum shift for its deeds.

Examples:
  cadastre list scans/
  cadastre extract scans/ -i 1,20
  cadastre transform scans/ --prefix maesot`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false,
		"verbose output (equivalent to --log-level=debug)")
	rootCmd.PersistentFlags().String("log-level", "info",
		"log level (debug, info, warn, error)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		levelName, _ := cmd.Flags().GetString("log-level")

		var level slog.Level
		if verbose {
			level = slog.LevelDebug
		} else {
			switch levelName {
			case "debug":
				level = slog.LevelDebug
			case "warn":
				level = slog.LevelWarn
			case "error":
				level = slog.LevelError
			default:
				level = slog.LevelInfo
			}
		}

		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		}))
		slog.SetDefault(logger)
	}
}

// folderArg resolves the optional working-folder argument; the current
// directory is the default.
func folderArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

// loadConfig reads the working folder's config.toml and applies the
// logging flags on top of it.
func loadConfig(cmd *cobra.Command, folder string) (*config.Config, error) {
	cfg, err := config.NewLoader().Load(folder)
	if err != nil {
		return nil, err
	}
	cfg.Verbose, _ = cmd.Flags().GetBool("verbose")
	cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	return cfg, nil
}
