// Package project persists projects, workshop configuration, templates and backups.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/piwi3910/marcenapp/internal/model"
)

// EnvPrefix scopes environment overrides, e.g. MARCENAPP_KERF=2.5.
const EnvPrefix = "MARCENAPP"

// DefaultConfigDir returns ~/.marcenapp, or ./.marcenapp when there is no home directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".marcenapp")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// SaveAppConfig persists an AppConfig to the given path as JSON.
// It creates any missing parent directories automatically.
func SaveAppConfig(path string, config model.AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadAppConfig reads an AppConfig from a JSON, YAML or TOML file and applies
// MARCENAPP_* environment overrides. Keys missing from the file keep their
// defaults; a missing file yields DefaultAppConfig plus overrides.
func LoadAppConfig(path string) (model.AppConfig, error) {
	v := newConfigViper()

	if path != "" {
		v.SetConfigFile(path)
		if filepath.Ext(path) == "" {
			v.SetConfigType("json")
		}
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return model.AppConfig{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var config model.AppConfig
	if err := v.Unmarshal(&config); err != nil {
		return model.AppConfig{}, fmt.Errorf("decoding config: %w", err)
	}
	if config.RecentProjects == nil {
		config.RecentProjects = []string{}
	}
	if config.MaterialPrices == nil {
		config.MaterialPrices = map[string]float64{}
	}
	return config, nil
}

func newConfigViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := model.DefaultAppConfig()
	defaults := map[string]any{
		"stock_label":          d.StockLabel,
		"stock_width":          d.StockWidth,
		"stock_height":         d.StockHeight,
		"sheet_price":          d.SheetPrice,
		"kerf":                 d.Kerf,
		"margin":               d.Margin,
		"material_order":       d.MaterialOrder,
		"material_prices":      d.MaterialPrices,
		"waste_percent":        d.WastePercent,
		"gcode_profile":        d.GCodeProfile,
		"tool_diameter":        d.ToolDiameter,
		"cut_depth":            d.CutDepth,
		"pass_depth":           d.PassDepth,
		"feed_rate":            d.FeedRate,
		"plunge_rate":          d.PlungeRate,
		"spindle_speed":        d.SpindleSpeed,
		"safe_z":               d.SafeZ,
		"server_port":          d.ServerPort,
		"cache_dir":            d.CacheDir,
		"log_level":            d.LogLevel,
		"max_sessions":         d.MaxSessions,
		"session_idle_minutes": d.SessionIdleMinutes,
		"recent_projects":      d.RecentProjects,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	return v
}
