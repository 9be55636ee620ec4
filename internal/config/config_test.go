package config

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configFile, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return configFile
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config is invalid: %v", err)
	}
	if cfg.Gaps.MinGap != 120 || cfg.Gaps.EdgeGap != 310 || cfg.Merge.MinOverlap != 20 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.Addr() != "127.0.0.1:8080" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}

	pc := cfg.ToPipelineConfig()
	if pc.Outline.MaxDepth != 4 || !pc.Outline.ApplyCorrections {
		t.Errorf("unexpected pipeline config %+v", pc.Outline)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative gap", func(c *Config) { c.Gaps.MinGap = -1 }},
		{"overlap above one", func(c *Config) { c.Gaps.OverlapThreshold = 1.5 }},
		{"zero min overlap", func(c *Config) { c.Merge.MinOverlap = 0 }},
		{"window below min overlap", func(c *Config) { c.Merge.Window = 5 }},
		{"zero depth", func(c *Config) { c.Outline.MaxDepth = 0 }},
		{"negative workers", func(c *Config) { c.Render.Workers = -2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestNewManager(t *testing.T) {
	t.Run("loads from config file", func(t *testing.T) {
		configFile := writeConfig(t, `
gaps:
  min_gap: 150
captions:
  figure: ["abbildung"]
outline:
  apply_corrections: false
ocr:
  delay: 2s
`)
		mgr, err := NewManager(configFile)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}

		cfg := mgr.Get()
		if cfg.Gaps.MinGap != 150 {
			t.Errorf("expected min_gap 150, got %v", cfg.Gaps.MinGap)
		}
		if cfg.Gaps.EdgeGap != 310 {
			t.Errorf("unset keys should keep defaults, edge_gap = %v", cfg.Gaps.EdgeGap)
		}
		if len(cfg.Captions.Figure) != 1 || cfg.Captions.Figure[0] != "abbildung" {
			t.Errorf("figure keywords = %v", cfg.Captions.Figure)
		}
		if cfg.Outline.ApplyCorrections {
			t.Error("apply_corrections should be false")
		}
		if cfg.OCR.Delay != 2*time.Second {
			t.Errorf("ocr delay = %v", cfg.OCR.Delay)
		}
		if mgr.File() != configFile {
			t.Errorf("File() = %q", mgr.File())
		}
		if v := mgr.Value("gaps.min_gap"); v != 150 {
			t.Errorf("Value(gaps.min_gap) = %v", v)
		}
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("PAPERTREE_MERGE_MIN_OVERLAP", "12")
		mgr, err := NewManager(writeConfig(t, "merge:\n  min_overlap: 30\n"))
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		if got := mgr.Get().Merge.MinOverlap; got != 12 {
			t.Errorf("min_overlap = %d, want 12", got)
		}
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		_, err := NewManager(writeConfig(t, "outline:\n  max_depth: 0\n"))
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		if _, err := NewManager(writeConfig(t, "gaps: [unclosed")); err == nil {
			t.Error("expected error for malformed YAML")
		}
	})
}

func TestManager_OnChange_Multiple(t *testing.T) {
	mgr, err := NewManager(writeConfig(t, "gaps:\n  min_gap: 100\n"))
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	mgr.OnChange(func(cfg *Config) {})
	mgr.OnChange(func(cfg *Config) {})
	mgr.OnChange(func(cfg *Config) {})

	mgr.mu.RLock()
	if len(mgr.callbacks) != 3 {
		t.Errorf("expected 3 callbacks, got %d", len(mgr.callbacks))
	}
	mgr.mu.RUnlock()
}

func TestManager_ReloadKeepsConfigOnError(t *testing.T) {
	configFile := writeConfig(t, "gaps:\n  min_gap: 100\n")
	mgr, err := NewManager(configFile)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	var changed, failed int
	mgr.OnChange(func(*Config) { changed++ })
	mgr.OnError(func(error) { failed++ })

	if err := os.WriteFile(configFile, []byte("merge:\n  min_overlap: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := mgr.v.ReadInConfig(); err != nil {
		t.Fatal(err)
	}
	mgr.reload()

	if changed != 0 || failed != 1 {
		t.Errorf("changed=%d failed=%d, want 0 and 1", changed, failed)
	}
	if mgr.Get().Gaps.MinGap != 100 {
		t.Error("previous config should stay in effect")
	}
}

func TestManager_Get_ThreadSafe(t *testing.T) {
	mgr, err := NewManager(writeConfig(t, "gaps:\n  min_gap: 100\n"))
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				_ = mgr.Get().Gaps.MinGap
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestManager_WatchConfig(t *testing.T) {
	configFile := writeConfig(t, "gaps:\n  min_gap: 100\n")
	mgr, err := NewManager(configFile)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	var callbackCount atomic.Int32
	var lastValue atomic.Value

	mgr.OnChange(func(cfg *Config) {
		callbackCount.Add(1)
		lastValue.Store(cfg.Gaps.MinGap)
	})

	mgr.WatchConfig()

	// Give fsnotify time to set up the watcher
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(configFile, []byte("gaps:\n  min_gap: 200\n"), 0o644); err != nil {
		t.Fatalf("failed to write updated config file: %v", err)
	}

	// Wait for the watcher to detect the change (fsnotify is async)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if callbackCount.Load() > 0 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	if callbackCount.Load() == 0 {
		t.Fatal("callback was not invoked after config file change")
	}
	if got := mgr.Get().Gaps.MinGap; got != 200 {
		t.Errorf("config not updated: expected 200, got %v", got)
	}
	if v := lastValue.Load(); v != float64(200) {
		t.Errorf("callback received wrong value: %v", v)
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	mgr, err := NewManager(path)
	if err != nil {
		t.Fatalf("written default does not load: %v", err)
	}
	cfg := mgr.Get()
	def := DefaultConfig()
	if cfg.Gaps != def.Gaps || cfg.Merge != def.Merge || cfg.OCR != def.OCR {
		t.Errorf("round trip changed settings: %+v", cfg)
	}
}
