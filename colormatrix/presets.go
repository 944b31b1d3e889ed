package colormatrix

// Preset identifies a named filter chain offered to photobooth users.
type Preset uint8

const (
	PresetNormal Preset = iota
	PresetMono
	PresetWarm
	PresetCool
	PresetVintageFilm
	PresetKorean
	PresetZootopia
	PresetBeautyPure
	PresetBeautyGlow
	PresetBeautyClear
	numPresets
)

// PresetCustom marks a filter chain that did not come from the preset table.
// It is not Valid and is not listed by [Presets].
const PresetCustom Preset = 255

// PresetInfo is a row of the preset table.
type PresetInfo struct {
	Preset Preset
	// ID is the stable identifier used in configuration and on the command line.
	ID   string
	Name string
	// Description is the filter chain applied by the preset.
	// Some presets carry blur or opacity which are not baked into exported images.
	Description string
}

var presetTable = [numPresets]PresetInfo{
	{PresetNormal, "normal", "Original", "none"},
	{PresetMono, "bw", "Mono", "grayscale(100%) contrast(110%)"},
	{PresetWarm, "warm", "Warm", "sepia(40%) contrast(105%) brightness(105%)"},
	{PresetCool, "cool", "Cool", "hue-rotate(-10deg) sepia(20%) brightness(105%) opacity(0.9)"},
	{PresetVintageFilm, "vintage-film", "Vintage Film", "sepia(40%) hue-rotate(30deg) contrast(85%) brightness(120%) saturate(80%)"},
	{PresetKorean, "korean", "Film 1", "brightness(110%) contrast(90%) saturate(90%) sepia(20%) hue-rotate(-10deg) blur(0.5px)"},
	{PresetZootopia, "zootopia", "Film 2", "saturate(120%) contrast(100%) brightness(105%) blur(0.3px)"},
	{PresetBeautyPure, "beauty-pure", "Pure", "brightness(110%) contrast(95%) blur(0.3px)"},
	{PresetBeautyGlow, "beauty-glow", "Glow", "brightness(112%) saturate(110%) sepia(10%) contrast(100%)"},
	{PresetBeautyClear, "beauty-clear", "Clear", "contrast(115%) brightness(105%) hue-rotate(5deg) saturate(100%)"},
}

// Presets returns all presets in display order.
func Presets() []PresetInfo {
	list := make([]PresetInfo, len(presetTable))
	copy(list, presetTable[:])
	return list
}

// LookupPreset returns the preset with the given ID.
func LookupPreset(id string) (Preset, bool) {
	for _, info := range presetTable {
		if info.ID == id {
			return info.Preset, true
		}
	}
	return 0, false
}

// Valid reports whether p is a known preset.
func (p Preset) Valid() bool { return p < numPresets }

// Info returns the table row of p. Invalid presets return the zero PresetInfo.
func (p Preset) Info() PresetInfo {
	if !p.Valid() {
		return PresetInfo{}
	}
	return presetTable[p]
}

func (p Preset) String() string {
	if p == PresetCustom {
		return "Custom"
	} else if !p.Valid() {
		return "Preset(invalid)"
	}
	return presetTable[p].Name
}

// Description returns the filter chain description of p.
// PresetCustom and invalid presets describe no filtering.
func (p Preset) Description() string {
	if !p.Valid() {
		return "none"
	}
	return presetTable[p].Description
}

// Chain parses the description of p.
func (p Preset) Chain() Chain { return Parse(p.Description()) }
