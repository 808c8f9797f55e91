package soil

// Texture is a USDA texture class name.
type Texture string

const (
	TextureSand          Texture = "Sand"
	TextureLoamySand     Texture = "Loamy Sand"
	TextureSandyLoam     Texture = "Sandy Loam"
	TextureLoam          Texture = "Loam"
	TextureSilt          Texture = "Silt"
	TextureSiltyLoam     Texture = "Silty Loam"
	TextureSandyClayLoam Texture = "Sandy Clay Loam"
	TextureClayLoam      Texture = "Clay Loam"
	TextureSiltyClayLoam Texture = "Silty Clay Loam"
	TextureSandyClay     Texture = "Sandy Clay"
	TextureSiltyClay     Texture = "Silty Clay"
	TextureClay          Texture = "Clay"
)

// Textures lists all twelve classes Classify can return.
var Textures = []Texture{
	TextureSand, TextureLoamySand, TextureSandyLoam, TextureLoam,
	TextureSilt, TextureSiltyLoam, TextureSandyClayLoam, TextureClayLoam,
	TextureSiltyClayLoam, TextureSandyClay, TextureSiltyClay, TextureClay,
}

// IsValid reports whether t is one of the twelve classes.
func (t Texture) IsValid() bool {
	_, ok := GroupOf(t)
	return ok
}

// Classify places a sand/clay pair on the texture triangle using axis-aligned
// thresholds. Branches are tried in order and the first match wins, so values
// sitting on a boundary go to the earlier branch.
func Classify(sand, clay float64) Texture {
	silt := 100 - sand - clay

	switch {
	case clay >= 40:
		switch {
		case sand > 45:
			return TextureSandyClay
		case silt > 40:
			return TextureSiltyClay
		default:
			return TextureClay
		}
	case clay >= 27:
		switch {
		case sand > 45:
			return TextureSandyClayLoam
		case silt > 40:
			return TextureSiltyClayLoam
		default:
			return TextureClayLoam
		}
	case clay < 12 && silt < 50:
		if sand >= 85 {
			return TextureSand
		}
		return TextureLoamySand
	case clay < 27 && sand > 52:
		return TextureSandyLoam
	case clay < 12 && silt >= 80:
		return TextureSilt
	case silt >= 50:
		return TextureSiltyLoam
	default:
		return TextureLoam
	}
}

// TextureGroup is the coarse family used by the calibration tables.
type TextureGroup string

const (
	GroupSandy  TextureGroup = "sandy"
	GroupSilty  TextureGroup = "silty"
	GroupClayey TextureGroup = "clayey"
)

// GroupOf maps a texture class onto its calibration group. The second return
// is false for a value that is not one of the twelve classes.
func GroupOf(t Texture) (TextureGroup, bool) {
	switch t {
	case TextureSand, TextureLoamySand, TextureSandyLoam:
		return GroupSandy, true
	case TextureSilt, TextureSiltyLoam, TextureLoam:
		return GroupSilty, true
	case TextureSandyClayLoam, TextureClayLoam, TextureSiltyClayLoam,
		TextureSandyClay, TextureSiltyClay, TextureClay:
		return GroupClayey, true
	default:
		return "", false
	}
}
