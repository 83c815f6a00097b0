// Package config loads and validates the run configuration for a snow-year
// processing job. Configuration travels as an explicit object passed into the
// components that need it; there is no package-level or process-wide state.
package config

import "fmt"

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// LoadConfig loads the complete, validated configuration
	LoadConfig() (*ConfigData, error)
}

// ConfigData represents the complete configuration for one tile run
type ConfigData struct {
	SnowYear int        `json:"snow_year"`
	TileID   string     `json:"tile_id"`
	Grid     GridData   `json:"grid"`
	Paths    PathsData  `json:"paths"`
	Params   ParamsData `json:"params"`
}

// GridData holds the tile's spatial dimensions. The time dimension follows
// from the snow year's length.
type GridData struct {
	Height int `json:"height"`
	Width  int `json:"width"`
}

// PathsData holds the file locations the run reads and writes
type PathsData struct {
	SnowCube    string `json:"snow_cube"`
	BitflagCube string `json:"bitflag_cube,omitempty"`
	OutputDir   string `json:"output_dir"`
	LedgerDB    string `json:"ledger_db,omitempty"`
	LogFile     string `json:"log_file,omitempty"`
}

// ParamsData holds the algorithm parameters
type ParamsData struct {
	Threshold          int    `json:"snow_cover_threshold"`
	CSSMinDays         int    `json:"css_min_days"`
	CSSBridgeDays      int    `json:"css_bridge_days"`
	SmoothingWindow    int    `json:"smoothing_window"`
	SmoothingPolyorder int    `json:"smoothing_polyorder"`
	Workers            int    `json:"workers,omitempty"`
	Strategy           string `json:"strategy,omitempty"`
}

// applyDefaults fills unset algorithm parameters with the production values.
func (c *ConfigData) applyDefaults() {
	if c.Params.Threshold == 0 {
		c.Params.Threshold = 50
	}
	if c.Params.CSSMinDays == 0 {
		c.Params.CSSMinDays = 14
	}
	if c.Params.CSSBridgeDays == 0 {
		c.Params.CSSBridgeDays = 2
	}
	if c.Params.SmoothingWindow == 0 {
		c.Params.SmoothingWindow = 5
	}
	if c.Params.SmoothingPolyorder == 0 {
		c.Params.SmoothingPolyorder = 1
	}
	if c.Params.Strategy == "" {
		c.Params.Strategy = "repaired"
	}
}

// Validate checks the configuration at the boundary so parameter errors fail
// fast instead of surfacing deep inside pixel iteration.
func (c *ConfigData) Validate() error {
	if c.SnowYear < 1900 || c.SnowYear > 2200 {
		return fmt.Errorf("config: implausible snow year %d", c.SnowYear)
	}
	if c.Grid.Height <= 0 || c.Grid.Width <= 0 {
		return fmt.Errorf("config: grid dimensions must be positive, got %dx%d", c.Grid.Height, c.Grid.Width)
	}
	if c.Paths.SnowCube == "" {
		return fmt.Errorf("config: snow_cube path is required")
	}
	if c.Paths.OutputDir == "" {
		return fmt.Errorf("config: output_dir path is required")
	}
	if c.Params.Threshold < 1 || c.Params.Threshold > 100 {
		return fmt.Errorf("config: snow_cover_threshold must be in [1, 100], got %d", c.Params.Threshold)
	}
	if c.Params.CSSMinDays < 1 {
		return fmt.Errorf("config: css_min_days must be positive, got %d", c.Params.CSSMinDays)
	}
	if c.Params.CSSBridgeDays < 0 {
		return fmt.Errorf("config: css_bridge_days must be non-negative, got %d", c.Params.CSSBridgeDays)
	}
	if c.Params.SmoothingWindow < 1 || c.Params.SmoothingWindow%2 == 0 {
		return fmt.Errorf("config: smoothing_window must be a positive odd integer, got %d", c.Params.SmoothingWindow)
	}
	if c.Params.SmoothingPolyorder < 0 || c.Params.SmoothingPolyorder >= c.Params.SmoothingWindow {
		return fmt.Errorf("config: smoothing_polyorder must be less than smoothing_window, got %d", c.Params.SmoothingPolyorder)
	}
	if c.Params.Workers < 0 {
		return fmt.Errorf("config: workers must be non-negative, got %d", c.Params.Workers)
	}
	switch c.Params.Strategy {
	case "raw", "repaired":
	default:
		return fmt.Errorf("config: strategy must be 'raw' or 'repaired', got %q", c.Params.Strategy)
	}
	if c.Params.Strategy == "repaired" && c.Paths.BitflagCube == "" {
		return fmt.Errorf("config: bitflag_cube path is required for the repaired strategy")
	}
	return nil
}
