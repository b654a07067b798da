package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/nervalabs/routecore/internal/config"
)

func TestDefault_IsValid(t *testing.T) {
	if err := config.Validate(config.Default()); err != nil {
		t.Fatalf("Default() should validate cleanly: %v", err)
	}
}

func TestValidate_RejectsNonPositiveDepthCost(t *testing.T) {
	cfg := config.Default()
	cfg.DepthCost = 0
	if err := config.Validate(cfg); err == nil {
		t.Fatal("expected an error for zero DepthCost")
	}
}

func TestLoad_ReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "strictcategories: true\ndepthcost: 2.5\n"
	if err := os.WriteFile(filepath.Join(dir, "routec.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	v.AddConfigPath(dir)

	cfg, err := config.Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.StrictCategories {
		t.Error("expected StrictCategories to be true from file")
	}
	if cfg.DepthCost != 2.5 {
		t.Errorf("DepthCost = %v, want 2.5", cfg.DepthCost)
	}
	// Unset fields keep their defaults.
	if cfg.LossyCostMultiplier != config.Default().LossyCostMultiplier {
		t.Errorf("expected LossyCostMultiplier to keep its default")
	}
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	v := viper.New()
	v.AddConfigPath(dir)

	cfg, err := config.Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DepthCost != config.Default().DepthCost {
		t.Errorf("expected default DepthCost when no config file is present")
	}
}
