// Package cube holds the in-memory grid types the engine runs over: a 3-D
// categorical datacube (time x height x width) of coded daily observations,
// 2-D int16 metric grids, and the gather primitive that reads one value per
// pixel along the time axis.
package cube

import "fmt"

// Cube is one snow year of daily coded grids, stored time-major so each daily
// layer is contiguous, matching the stacked daily rasters produced upstream.
type Cube struct {
	Times  int
	Height int
	Width  int
	data   []uint8
}

// New allocates a zeroed cube with the given dimensions.
func New(times, height, width int) (*Cube, error) {
	if times <= 0 || height <= 0 || width <= 0 {
		return nil, fmt.Errorf("cube: invalid dimensions %dx%dx%d", times, height, width)
	}
	return &Cube{
		Times:  times,
		Height: height,
		Width:  width,
		data:   make([]uint8, times*height*width),
	}, nil
}

// At returns the value at time t for pixel (y, x).
func (c *Cube) At(t, y, x int) uint8 {
	return c.data[t*c.Height*c.Width+y*c.Width+x]
}

// Set writes the value at time t for pixel (y, x).
func (c *Cube) Set(t, y, x int, v uint8) {
	c.data[t*c.Height*c.Width+y*c.Width+x] = v
}

// ExtractSeries copies pixel (y, x)'s full time series into dst, which must
// have length Times. Workers reuse one dst buffer per pixel so processing
// never materializes more than a single series of state.
func (c *Cube) ExtractSeries(y, x int, dst []uint8) []uint8 {
	layer := c.Height * c.Width
	off := y*c.Width + x
	for t := 0; t < c.Times; t++ {
		dst[t] = c.data[t*layer+off]
	}
	return dst
}

// SetSeries writes src back as pixel (y, x)'s full time series.
func (c *Cube) SetSeries(y, x int, src []uint8) {
	layer := c.Height * c.Width
	off := y*c.Width + x
	for t := 0; t < c.Times; t++ {
		c.data[t*layer+off] = src[t]
	}
}

// GatherTime reads, for every pixel, the value at that pixel's own time
// index. The index varies per pixel, so this is a gather keyed by the index
// grid rather than a slice of a single layer: each pixel's flat offset is
// computed from its index and the value read from the flattened cube.
// Indices are clamped to the valid time range.
func (c *Cube) GatherTime(idx *Grid) *Grid {
	out := NewGrid(c.Height, c.Width)
	layer := c.Height * c.Width
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			t := int(idx.At(y, x))
			if t < 0 {
				t = 0
			}
			if t > c.Times-1 {
				t = c.Times - 1
			}
			out.Set(y, x, int16(c.data[t*layer+y*c.Width+x]))
		}
	}
	return out
}

// Grid is a 2-D int16 layer, one value per pixel. All metric outputs use
// int16: day-of-snow-year tops out at 578 and 0 is the nodata value.
type Grid struct {
	Height int
	Width  int
	data   []int16
}

// NewGrid allocates a zeroed grid.
func NewGrid(height, width int) *Grid {
	return &Grid{
		Height: height,
		Width:  width,
		data:   make([]int16, height*width),
	}
}

// At returns the value at pixel (y, x).
func (g *Grid) At(y, x int) int16 {
	return g.data[y*g.Width+x]
}

// Set writes the value at pixel (y, x).
func (g *Grid) Set(y, x int, v int16) {
	g.data[y*g.Width+x] = v
}

// Data returns the grid's backing slice in row-major order.
func (g *Grid) Data() []int16 {
	return g.data
}
