package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/marcenapp/internal/model"
)

func TestSaveAndLoadAppConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := model.DefaultAppConfig()
	cfg.Kerf = 4.0
	cfg.MaterialOrder = []string{"wood", "white"}
	cfg.MaterialPrices = map[string]float64{"wood": 420}
	cfg.GCodeProfile = "Mach3"
	cfg.RecentProjects = []string{"/tmp/a.marcen", "/tmp/b.marcen"}

	if err := SaveAppConfig(path, cfg); err != nil {
		t.Fatalf("SaveAppConfig failed: %v", err)
	}
	loaded, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}

	if loaded.Kerf != 4.0 {
		t.Errorf("expected Kerf=4.0, got %f", loaded.Kerf)
	}
	if loaded.GCodeProfile != "Mach3" {
		t.Errorf("expected GCodeProfile=Mach3, got %s", loaded.GCodeProfile)
	}
	assert.Equal(t, []string{"wood", "white"}, loaded.MaterialOrder)
	assert.Equal(t, 420.0, loaded.MaterialPrices["wood"])
	assert.Len(t, loaded.RecentProjects, 2)
}

func TestLoadAppConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "config.json")

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	assert.Equal(t, model.DefaultAppConfig(), cfg)
}

func TestLoadAppConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("kerf: 2.5\nstock_width: 2750\n"), 0644))

	cfg, err := LoadAppConfig(path)
	require.NoError(t, err)

	defaults := model.DefaultAppConfig()
	assert.Equal(t, 2.5, cfg.Kerf)
	assert.Equal(t, 2750.0, cfg.StockWidth)
	assert.Equal(t, defaults.StockHeight, cfg.StockHeight)
	assert.Equal(t, defaults.Margin, cfg.Margin)
	assert.Equal(t, defaults.MaterialOrder, cfg.MaterialOrder)
}

func TestLoadAppConfigEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"kerf": 4, "margin": 12}`), 0644))

	t.Setenv("MARCENAPP_MARGIN", "5")
	t.Setenv("MARCENAPP_SERVER_PORT", "9090")

	cfg, err := LoadAppConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 4.0, cfg.Kerf, "file value without override")
	assert.Equal(t, 5.0, cfg.Margin, "environment wins over the file")
	assert.Equal(t, 9090, cfg.ServerPort)
}

func TestLoadAppConfigEnvWithoutFile(t *testing.T) {
	t.Setenv("MARCENAPP_LOG_LEVEL", "debug")

	cfg, err := LoadAppConfig("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadAppConfigInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("not valid json{{{"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadAppConfig(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func TestSaveAppConfigCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "dir", "config.json")

	if err := SaveAppConfig(path, model.DefaultAppConfig()); err != nil {
		t.Fatalf("SaveAppConfig should create parent dirs: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}
}

func TestLoadAppConfigNilRecentProjects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := []byte(`{"kerf":3.2,"recent_projects":null}`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if cfg.RecentProjects == nil {
		t.Error("RecentProjects should not be nil after loading")
	}
}
