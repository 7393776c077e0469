package model

// AppConfig holds workshop-wide defaults and service settings. It is loaded
// from a config file plus MARCENAPP_* environment overrides.
type AppConfig struct {
	// Stock and nesting defaults applied to new projects
	StockLabel     string             `json:"stock_label" mapstructure:"stock_label"`
	StockWidth     float64            `json:"stock_width" mapstructure:"stock_width"`
	StockHeight    float64            `json:"stock_height" mapstructure:"stock_height"`
	SheetPrice     float64            `json:"sheet_price" mapstructure:"sheet_price"`
	Kerf           float64            `json:"kerf" mapstructure:"kerf"`
	Margin         float64            `json:"margin" mapstructure:"margin"`
	MaterialOrder  []string           `json:"material_order" mapstructure:"material_order"`
	MaterialPrices map[string]float64 `json:"material_prices" mapstructure:"material_prices"`
	WastePercent   float64            `json:"waste_percent" mapstructure:"waste_percent"` // Purchase estimate allowance

	// Machine defaults
	GCodeProfile string  `json:"gcode_profile" mapstructure:"gcode_profile"`
	ToolDiameter float64 `json:"tool_diameter" mapstructure:"tool_diameter"`
	CutDepth     float64 `json:"cut_depth" mapstructure:"cut_depth"`
	PassDepth    float64 `json:"pass_depth" mapstructure:"pass_depth"`
	FeedRate     float64 `json:"feed_rate" mapstructure:"feed_rate"`
	PlungeRate   float64 `json:"plunge_rate" mapstructure:"plunge_rate"`
	SpindleSpeed int     `json:"spindle_speed" mapstructure:"spindle_speed"`
	SafeZ        float64 `json:"safe_z" mapstructure:"safe_z"`

	// Service
	ServerPort         int    `json:"server_port" mapstructure:"server_port"`
	CacheDir           string `json:"cache_dir" mapstructure:"cache_dir"` // Empty keeps the cache in memory
	LogLevel           string `json:"log_level" mapstructure:"log_level"`
	MaxSessions        int    `json:"max_sessions" mapstructure:"max_sessions"`                 // 0 means unlimited
	SessionIdleMinutes int    `json:"session_idle_minutes" mapstructure:"session_idle_minutes"` // 0 keeps idle sessions forever

	RecentProjects []string `json:"recent_projects" mapstructure:"recent_projects"`
}

func DefaultAppConfig() AppConfig {
	settings := DefaultNestingSettings()
	return AppConfig{
		StockLabel:         settings.Stock.Label,
		StockWidth:         settings.Stock.Width,
		StockHeight:        settings.Stock.Height,
		SheetPrice:         settings.Stock.PricePerSheet,
		Kerf:               settings.Kerf,
		Margin:             settings.Margin,
		MaterialOrder:      settings.MaterialOrder,
		MaterialPrices:     map[string]float64{},
		WastePercent:       15.0,
		GCodeProfile:       "Grbl",
		ToolDiameter:       6.0,
		CutDepth:           18.0,
		PassDepth:          6.0,
		FeedRate:           1500.0,
		PlungeRate:         500.0,
		SpindleSpeed:       18000,
		SafeZ:              5.0,
		ServerPort:         8080,
		LogLevel:           "info",
		MaxSessions:        1000,
		SessionIdleMinutes: 120,
		RecentProjects:     []string{},
	}
}

// NestingSettings builds engine settings from the configured defaults.
func (c AppConfig) NestingSettings() NestingSettings {
	s := DefaultNestingSettings()
	c.ApplyToSettings(&s)
	return s
}

// ApplyToSettings copies the stock and nesting defaults into s, so a new
// project inherits the workshop's saved values.
func (c AppConfig) ApplyToSettings(s *NestingSettings) {
	s.Stock = StockSheet{
		Label:         c.StockLabel,
		Width:         c.StockWidth,
		Height:        c.StockHeight,
		PricePerSheet: c.SheetPrice,
	}
	s.Kerf = c.Kerf
	s.Margin = c.Margin
	if len(c.MaterialOrder) > 0 {
		s.MaterialOrder = append([]string(nil), c.MaterialOrder...)
	}
	if len(c.MaterialPrices) > 0 {
		s.MaterialPrices = make(map[string]float64, len(c.MaterialPrices))
		for k, v := range c.MaterialPrices {
			s.MaterialPrices[k] = v
		}
	}
}

// AddRecentProject moves path to the front of the recent list, keeping at most limit entries.
func (c *AppConfig) AddRecentProject(path string, limit int) {
	recent := []string{path}
	for _, p := range c.RecentProjects {
		if p != path {
			recent = append(recent, p)
		}
	}
	if limit > 0 && len(recent) > limit {
		recent = recent[:limit]
	}
	c.RecentProjects = recent
}
