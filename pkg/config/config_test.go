package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Inference.SampleSize != 40 {
		t.Errorf("SampleSize = %d, want 40", cfg.Inference.SampleSize)
	}
	if cfg.Inference.NumberRatio != 0.85 || cfg.Inference.DateRatio != 0.85 {
		t.Errorf("ratios = %v/%v, want 0.85/0.85", cfg.Inference.NumberRatio, cfg.Inference.DateRatio)
	}
	if cfg.Score.Completeness != 0.4 || cfg.Score.Uniqueness != 0.3 || cfg.Score.Validity != 0.2 {
		t.Error("score weights drifted from 0.4/0.3/0.2")
	}
	if cfg.Query.TopN != 5 {
		t.Errorf("TopN = %d, want 5", cfg.Query.TopN)
	}
	if cfg.Export.Format != "csv" || !cfg.Export.CommentFooter {
		t.Errorf("export defaults = %q/%v, want csv/true", cfg.Export.Format, cfg.Export.CommentFooter)
	}
}

func TestLoadFileMergesPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "inference:\n  sample_size: 100\nexport:\n  format: json\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewManager()
	if err := m.loadFile(path); err != nil {
		t.Fatalf("loadFile: %v", err)
	}

	cfg := m.Get()
	if cfg.Inference.SampleSize != 100 {
		t.Errorf("SampleSize = %d, want 100", cfg.Inference.SampleSize)
	}
	if cfg.Export.Format != "json" {
		t.Errorf("Format = %q, want json", cfg.Export.Format)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Query.TopN != 5 {
		t.Errorf("TopN = %d, want untouched default 5", cfg.Query.TopN)
	}
}

func TestMergeIgnoresZeroValues(t *testing.T) {
	m := NewManager()
	m.merge(&Config{})

	if m.Get().Inference.SampleSize != 40 {
		t.Error("merging an empty config must not zero out defaults")
	}
}

func TestLoadFileMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("inference: ["), 0644); err != nil {
		t.Fatal(err)
	}

	if err := NewManager().loadFile(path); err == nil {
		t.Error("malformed yaml must error, not merge silently")
	}
}

func TestLoadFileMissing(t *testing.T) {
	err := NewManager().loadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if !os.IsNotExist(err) {
		t.Errorf("err = %v, want not-exist", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AUTOINSIGHT_SAMPLE_SIZE", "10")
	t.Setenv("AUTOINSIGHT_EXPORT_FORMAT", "xlsx")
	t.Setenv("AUTOINSIGHT_Z_THRESHOLD", "3.5")

	m := NewManager()
	m.loadEnv()

	cfg := m.Get()
	if cfg.Inference.SampleSize != 10 {
		t.Errorf("SampleSize = %d, want 10", cfg.Inference.SampleSize)
	}
	if cfg.Export.Format != "xlsx" {
		t.Errorf("Format = %q, want xlsx", cfg.Export.Format)
	}
	if cfg.Outliers.ZThreshold != 3.5 {
		t.Errorf("ZThreshold = %v, want 3.5", cfg.Outliers.ZThreshold)
	}
}

func TestEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("AUTOINSIGHT_SAMPLE_SIZE", "lots")
	t.Setenv("AUTOINSIGHT_Z_THRESHOLD", "-1")

	m := NewManager()
	m.loadEnv()

	cfg := m.Get()
	if cfg.Inference.SampleSize != 40 {
		t.Errorf("SampleSize = %d, want default after bad env", cfg.Inference.SampleSize)
	}
	if cfg.Outliers.ZThreshold != 2.5 {
		t.Errorf("ZThreshold = %v, want default after non-positive env", cfg.Outliers.ZThreshold)
	}
}
