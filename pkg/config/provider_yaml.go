package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from the YAML file, applies
// parameter defaults and validates it.
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	// Load into a temporary struct with YAML tags
	var yamlConfig struct {
		SnowYear int    `yaml:"snow_year"`
		TileID   string `yaml:"tile_id"`
		Grid     struct {
			Height int `yaml:"height"`
			Width  int `yaml:"width"`
		} `yaml:"grid"`
		Paths struct {
			SnowCube    string `yaml:"snow_cube"`
			BitflagCube string `yaml:"bitflag_cube"`
			OutputDir   string `yaml:"output_dir"`
			LedgerDB    string `yaml:"ledger_db"`
			LogFile     string `yaml:"log_file"`
		} `yaml:"paths"`
		Params struct {
			Threshold          int    `yaml:"snow_cover_threshold"`
			CSSMinDays         int    `yaml:"css_min_days"`
			CSSBridgeDays      int    `yaml:"css_bridge_days"`
			SmoothingWindow    int    `yaml:"smoothing_window"`
			SmoothingPolyorder int    `yaml:"smoothing_polyorder"`
			Workers            int    `yaml:"workers"`
			Strategy           string `yaml:"strategy"`
		} `yaml:"params"`
	}

	if err := yaml.Unmarshal(cfgFile, &yamlConfig); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", y.filename, err)
	}

	// Convert to the internal format
	config := &ConfigData{
		SnowYear: yamlConfig.SnowYear,
		TileID:   yamlConfig.TileID,
		Grid: GridData{
			Height: yamlConfig.Grid.Height,
			Width:  yamlConfig.Grid.Width,
		},
		Paths: PathsData{
			SnowCube:    yamlConfig.Paths.SnowCube,
			BitflagCube: yamlConfig.Paths.BitflagCube,
			OutputDir:   yamlConfig.Paths.OutputDir,
			LedgerDB:    yamlConfig.Paths.LedgerDB,
			LogFile:     yamlConfig.Paths.LogFile,
		},
		Params: ParamsData{
			Threshold:          yamlConfig.Params.Threshold,
			CSSMinDays:         yamlConfig.Params.CSSMinDays,
			CSSBridgeDays:      yamlConfig.Params.CSSBridgeDays,
			SmoothingWindow:    yamlConfig.Params.SmoothingWindow,
			SmoothingPolyorder: yamlConfig.Params.SmoothingPolyorder,
			Workers:            yamlConfig.Params.Workers,
			Strategy:           yamlConfig.Params.Strategy,
		},
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
