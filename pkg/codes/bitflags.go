package codes

import "strings"

// QA bitflag positions from the upstream product's algorithm bit flags. Bit
// positions are indexed from the least significant bit.
const (
	BitInlandWaterScreen   = 0
	BitLowVisibleFailed    = 1
	BitLowNDSIFailed       = 2
	BitTempHeightScreen    = 3
	BitHighSWIRReflectance = 5
	BitLowIllumination     = 7
)

var qaScreens = map[int]string{
	BitInlandWaterScreen:   "Inland water screen",
	BitLowVisibleFailed:    "Low visible screen failed, snow detection reversed to no snow",
	BitLowNDSIFailed:       "Low NDSI screen failed, snow detection reversed to no snow",
	BitTempHeightScreen:    "Combined temperature/height screen failed",
	BitHighSWIRReflectance: "High Shortwave IR (SWIR) reflectance screen",
	BitLowIllumination:     "Uncertain snow detection due to low illumination (solar zenith flag)",
}

// LowIllumination reports whether the QA bitflag marks the observation as
// affected by low solar illumination. The flag can carry multiple conditions
// at once (e.g. 129 = low illumination + inland water screen), so only the
// single bit is tested.
func LowIllumination(bitflag uint8) bool {
	return bitflag&(1<<BitLowIllumination) != 0
}

// DescribeBitflags returns a comma-separated list of the QA screens set in a
// bitflag value, or an empty string when no screen is set.
func DescribeBitflags(bitflag uint8) string {
	var set []string
	for bit := 0; bit < 8; bit++ {
		if bitflag&(1<<bit) == 0 {
			continue
		}
		if desc, ok := qaScreens[bit]; ok {
			set = append(set, desc)
		}
	}
	return strings.Join(set, ", ")
}
