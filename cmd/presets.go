package cmd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var presetsDefaultsPath string

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the road presets available to run --preset",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadDefaultsConfig(presetsDefaultsPath)
		if err != nil {
			logrus.Fatalf("Failed to load presets: %v", err)
		}
		if err := writePresets(cmd.OutOrStdout(), cfg); err != nil {
			logrus.Fatalf("Invalid preset: %v", err)
		}
	},
}

func writePresets(w io.Writer, cfg Config) error {
	for _, name := range presetNames(cfg) {
		p := cfg.Presets[name]
		r, err := p.RoadConfig()
		if err != nil {
			return fmt.Errorf("preset %q: %w", name, err)
		}
		fmt.Fprintf(w, "%-8s L=%d nb_cars=%d vmax=%d tmax=%g dt=%g proba_slow=%g  %s\n",
			name, r.Length, r.NumCars, r.VMax, r.TMax, r.DT, r.ProbaSlow, p.Description)
	}
	return nil
}

func init() {
	presetsCmd.Flags().StringVar(&presetsDefaultsPath, "defaults", "defaults.yaml", "Path to the preset catalogue")

	rootCmd.AddCommand(presetsCmd)
}
