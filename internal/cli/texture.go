package cli

import (
	"github.com/spf13/cobra"

	"soilwater/internal/soil"
)

// TextureResult is the output of the texture command.
type TextureResult struct {
	TextureClass soil.Texture      `json:"texture_class"`
	Group        soil.TextureGroup `json:"group"`
	Sand         float64           `json:"sand"`
	Clay         float64           `json:"clay"`
	Silt         float64           `json:"silt"`
}

// NewTextureCommand creates the texture command.
func NewTextureCommand(rootOpts *RootOptions) *cobra.Command {
	var sand, clay float64

	cmd := &cobra.Command{
		Use:     "texture",
		Short:   "Classify a sand/clay pair on the USDA texture triangle",
		Example: "  soilctl texture --sand 40 --clay 20",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := soil.Validate(soil.Sample{Sand: sand, Clay: clay})
			if err != nil {
				return engineError(err)
			}

			tex := soil.Classify(sand, clay)
			group, _ := soil.GroupOf(tex)
			res := TextureResult{TextureClass: tex, Group: group, Sand: sand, Clay: clay, Silt: v.Silt()}

			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			w := cmd.OutOrStdout()
			line(w, "Texture", "%s", res.TextureClass)
			line(w, "Group", "%s", res.Group)
			line(w, "Sand / silt / clay", "%.1f / %.1f / %.1f %%", res.Sand, res.Silt, res.Clay)
			return nil
		},
	}

	cmd.Flags().Float64Var(&sand, "sand", 0, "sand content, percent by weight")
	cmd.Flags().Float64Var(&clay, "clay", 0, "clay content, percent by weight")
	_ = cmd.MarkFlagRequired("sand")
	_ = cmd.MarkFlagRequired("clay")

	return cmd
}
