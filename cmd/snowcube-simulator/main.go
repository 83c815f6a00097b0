// snowcube-simulator generates a synthetic snow-year datacube and companion
// QA bitflag cube in the flat exchange layout, for development and
// verification runs without real satellite data.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/cryogrid/snowmetrics/internal/cube"
	"github.com/cryogrid/snowmetrics/pkg/codes"
	"github.com/cryogrid/snowmetrics/pkg/snowyear"
)

func main() {
	var (
		year   = flag.Int("year", 2022, "Snow year (August of this year through July of the next)")
		height = flag.Int("height", 64, "Grid height in pixels")
		width  = flag.Int("width", 64, "Grid width in pixels")
		outDir = flag.String("out-dir", ".", "Output directory")
		seed   = flag.Int64("seed", 1, "Random seed")
	)
	flag.Parse()

	sy := snowyear.Year(*year)
	times := sy.Days()
	rng := rand.New(rand.NewSource(*seed))

	snow, err := cube.New(times, *height, *width)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	flags, _ := cube.New(times, *height, *width)

	for y := 0; y < *height; y++ {
		for x := 0; x < *width; x++ {
			simulatePixel(rng, snow, flags, times, y, x)
		}
	}

	snowPath := filepath.Join(*outDir, fmt.Sprintf("sim_snow_cube_%d.uint8", *year))
	flagPath := filepath.Join(*outDir, fmt.Sprintf("sim_bitflag_cube_%d.uint8", *year))
	if err := cube.WriteCubeFile(snowPath, snow); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cube.WriteCubeFile(flagPath, flags); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %s and %s (%d x %d x %d)\n", snowPath, flagPath, times, *height, *width)
}

// simulatePixel writes one pixel's synthetic year: a snow season from autumn
// to spring, a midwinter polar-night period whose length grows with grid row,
// scattered cloud runs, and low-illumination QA flags shouldering the night
// period.
func simulatePixel(rng *rand.Rand, snow, flags *cube.Cube, times, y, x int) {
	onset := 60 + rng.Intn(40)  // early October to mid November
	melt := 270 + rng.Intn(45)  // late April to mid June
	nightLen := 20 + y          // higher rows sit "further north"
	nightStart := 150 - nightLen/2

	for t := 0; t < times; t++ {
		var v uint8
		switch {
		case t >= onset && t <= melt:
			v = uint8(60 + rng.Intn(41)) // snow-on
		default:
			v = uint8(rng.Intn(30)) // snow-free ground
		}
		if t >= nightStart && t < nightStart+nightLen {
			v = codes.Night
		}
		snow.Set(t, y, x, v)

		// the weeks around polar night have marginal solar zenith angles
		nearNight := (t >= nightStart-15 && t < nightStart) ||
			(t >= nightStart+nightLen && t < nightStart+nightLen+15)
		if nearNight && codes.IsValidCover(v) {
			flags.Set(t, y, x, 1<<codes.BitLowIllumination)
		}
	}

	// scattered cloud events outside the night period
	for i := 0; i < 4+rng.Intn(4); i++ {
		start := rng.Intn(times - 12)
		length := 1 + rng.Intn(10)
		for t := start; t < start+length && t < times; t++ {
			if snow.At(t, y, x) != codes.Night {
				snow.Set(t, y, x, codes.Cloud)
			}
		}
	}
}
