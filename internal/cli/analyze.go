package cli

import (
	"github.com/spf13/cobra"

	"soilwater/internal/soil"
)

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		s       soil.Sample
		density float64
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze one soil sample",
		Long: `Analyze one soil sample given as flags.

Sand, clay and organic matter are required. Gravel and salinity corrections
run only when --gravel or --ec is greater than zero.`,
		Example: "  soilctl analyze --sand 33 --clay 33 --om 2.5\n" +
			"  soilctl analyze --sand 60 --clay 10 --om 1 --gravel 20 --format json",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("density") {
				s.BulkDensityFactor = &density
			}
			r, err := soil.Analyze(s)
			if err != nil {
				return engineError(err)
			}
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), r)
			}
			writeReport(cmd.OutOrStdout(), s, r)
			return nil
		},
	}

	f := cmd.Flags()
	f.Float64Var(&s.Sand, "sand", 0, "sand content, percent by weight")
	f.Float64Var(&s.Clay, "clay", 0, "clay content, percent by weight")
	f.Float64Var(&s.OrganicMatter, "om", 0, "organic matter, percent by weight")
	f.Float64Var(&density, "density", soil.DefaultBulkDensityFactor, "bulk density factor relative to normal")
	f.Float64Var(&s.GravelContent, "gravel", 0, "rock fragments, percent by volume")
	f.Float64Var(&s.ElectricalConductivity, "ec", 0, "saturation extract electrical conductivity, dS/m")
	_ = cmd.MarkFlagRequired("sand")
	_ = cmd.MarkFlagRequired("clay")
	_ = cmd.MarkFlagRequired("om")

	return cmd
}
