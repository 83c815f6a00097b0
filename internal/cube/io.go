package cube

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Flat binary exchange format shared with the upstream preprocessing and
// downstream raster tooling: cubes are raw uint8 in time-major order, grids
// raw little-endian int16 in row-major order. Dimensions travel in the run
// configuration, not the files; raster formats and georeferencing are the
// collaborators' concern.

// ReadCubeFile reads a raw cube of the given dimensions from path.
func ReadCubeFile(path string, times, height, width int) (*Cube, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening cube %s: %w", path, err)
	}
	defer f.Close()

	c, err := New(times, height, width)
	if err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(bufio.NewReaderSize(f, 1<<20), c.data); err != nil {
		return nil, fmt.Errorf("reading cube %s (%dx%dx%d): %w", path, times, height, width, err)
	}
	return c, nil
}

// WriteCubeFile writes the cube to path in the raw exchange layout.
func WriteCubeFile(path string, c *Cube) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating cube %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, 1<<20)
	if _, err := w.Write(c.data); err != nil {
		return fmt.Errorf("writing cube %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing cube %s: %w", path, err)
	}
	return f.Close()
}

// WriteGridFile writes the grid to path as little-endian int16.
func WriteGridFile(path string, g *Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating grid %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, 1<<20)
	if err := binary.Write(w, binary.LittleEndian, g.data); err != nil {
		return fmt.Errorf("writing grid %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing grid %s: %w", path, err)
	}
	return f.Close()
}

// ReadGridFile reads a raw little-endian int16 grid of the given dimensions.
func ReadGridFile(path string, height, width int) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening grid %s: %w", path, err)
	}
	defer f.Close()

	g := NewGrid(height, width)
	if err := binary.Read(bufio.NewReaderSize(f, 1<<20), binary.LittleEndian, g.data); err != nil {
		return nil, fmt.Errorf("reading grid %s (%dx%d): %w", path, height, width, err)
	}
	return g, nil
}
