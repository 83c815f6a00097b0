// Package codes defines the fixed code table for the daily categorical
// snow-cover product and the snow-on threshold classification.
//
// Values 0-100 are valid snow cover percentages. Everything above 100 is a
// sentinel code carrying non-measurement information (night, cloud, water,
// sensor fill). The table is fixed by the upstream product and never mutated.
package codes

// MaxValidCover is the maximum valid snow cover percentage.
const MaxValidCover = 100

// Sentinel codes sharing the value domain with snow cover percentages.
const (
	NoDecision      uint8 = 201
	Night           uint8 = 211
	LakeInlandWater uint8 = 237
	Ocean           uint8 = 239
	Cloud           uint8 = 250
	MissingL1B      uint8 = 251
	CalibrationFail uint8 = 252
	BowtieTrim      uint8 = 253
	L1BFill         uint8 = 254
	L2Fill          uint8 = 255
)

var sentinelDescriptions = map[uint8]string{
	NoDecision:      "No decision",
	Night:           "Night",
	LakeInlandWater: "Lake / Inland water",
	Ocean:           "Ocean",
	CalibrationFail: "L1B data failed calibration",
	Cloud:           "Cloud",
	MissingL1B:      "Missing L1B data",
	BowtieTrim:      "Onboard bowtie trim",
	L1BFill:         "L1B fill",
	L2Fill:          "L2 fill",
}

// Describe returns the human-readable meaning of a coded value.
func Describe(v uint8) string {
	if v <= MaxValidCover {
		return "NDSI snow cover valid"
	}
	if desc, ok := sentinelDescriptions[v]; ok {
		return desc
	}
	return "Unknown code"
}

// IsValidCover reports whether v is a valid snow cover percentage.
func IsValidCover(v uint8) bool {
	return v <= MaxValidCover
}

// SnowOn classifies a coded value as snow-on. A value is snow-on iff it is a
// valid percentage strictly greater than the threshold. Sentinel codes are
// never snow-on.
func SnowOn(v uint8, threshold uint8) bool {
	return v > threshold && v <= MaxValidCover
}

// Condition names an obscuration source: a period where the true snow state
// cannot be observed and the product substitutes a sentinel code.
type Condition int

const (
	ConditionNight Condition = iota
	ConditionCloud
)

// Code returns the sentinel code for the condition.
func (c Condition) Code() uint8 {
	switch c {
	case ConditionNight:
		return Night
	case ConditionCloud:
		return Cloud
	}
	return L2Fill
}

func (c Condition) String() string {
	switch c {
	case ConditionNight:
		return "night"
	case ConditionCloud:
		return "cloud"
	}
	return "unknown"
}
