// Package config provides hierarchical configuration management.
// Priority: defaults < system < user < project < env
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config holds all AutoInsight configuration.
type Config struct {
	Version int `yaml:"version"`

	Inference InferenceConfig `yaml:"inference"`
	Score     ScoreWeights    `yaml:"score"`
	Outliers  OutlierConfig   `yaml:"outliers"`
	Query     QueryConfig     `yaml:"query"`
	Export    ExportConfig    `yaml:"export"`
}

// InferenceConfig controls schema inference.
type InferenceConfig struct {
	SampleSize     int     `yaml:"sample_size"`      // non-empty values sampled per column
	NumberRatio    float64 `yaml:"number_ratio"`     // min fraction parsing as number
	DateRatio      float64 `yaml:"date_ratio"`       // min fraction parsing as date
	DateGuardRatio float64 `yaml:"date_guard_ratio"` // max numeric fraction still allowing date
}

// ScoreWeights holds the quality-score weighting. These are heuristics
// carried from the original scoring model, not derived laws; they are
// configuration precisely so callers can disagree with them.
type ScoreWeights struct {
	Completeness    float64 `yaml:"completeness"`
	Uniqueness      float64 `yaml:"uniqueness"`
	Validity        float64 `yaml:"validity"`
	Baseline        float64 `yaml:"baseline"`          // flat consistency/accuracy/timeliness credit
	MixedTypeCredit float64 `yaml:"mixed_type_credit"` // validity credit for mixed-type columns
}

// OutlierConfig controls outlier detection.
type OutlierConfig struct {
	IQRMultiplier float64 `yaml:"iqr_multiplier"`
	ZThreshold    float64 `yaml:"z_threshold"`
}

// QueryConfig controls the natural-language query engine.
type QueryConfig struct {
	TopN int `yaml:"top_n"` // entries shown for top-value answers
}

// ExportConfig controls export defaults.
type ExportConfig struct {
	Format        string `yaml:"format"` // csv | json | html | xlsx
	CommentFooter bool   `yaml:"comment_footer"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		Inference: InferenceConfig{
			SampleSize:     40,
			NumberRatio:    0.85,
			DateRatio:      0.85,
			DateGuardRatio: 0.5,
		},
		Score: ScoreWeights{
			Completeness:    0.4,
			Uniqueness:      0.3,
			Validity:        0.2,
			Baseline:        10,
			MixedTypeCredit: 0.7,
		},
		Outliers: OutlierConfig{
			IQRMultiplier: 1.5,
			ZThreshold:    2.5,
		},
		Query: QueryConfig{
			TopN: 5,
		},
		Export: ExportConfig{
			Format:        "csv",
			CommentFooter: true,
		},
	}
}

// Manager handles configuration loading and merging. Construct one per
// process and pass it down; there is no package-level instance.
type Manager struct {
	mu     sync.RWMutex
	config *Config
	paths  []string
}

// NewManager creates a configuration manager seeded with defaults.
func NewManager() *Manager {
	return &Manager{config: Default()}
}

// Load loads configuration from all sources in priority order.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.config = Default()

	for _, path := range m.configPaths() {
		if err := m.loadFile(path); err != nil {
			if !os.IsNotExist(err) {
				return err
			}
		} else {
			m.paths = append(m.paths, path)
		}
	}

	m.loadEnv()
	return nil
}

// configPaths returns config file paths in priority order.
func (m *Manager) configPaths() []string {
	var paths []string

	if runtime.GOOS != "windows" {
		paths = append(paths, "/etc/autoinsight/config.yaml")
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".autoinsight", "config.yaml"))
	}

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".autoinsight.yaml"))
	}

	return paths
}

// loadFile loads a single config file and merges it.
func (m *Manager) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var partial Config
	if err := yaml.Unmarshal(data, &partial); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}

	m.merge(&partial)
	return nil
}

// merge merges non-zero values from src into the config.
func (m *Manager) merge(src *Config) {
	if src.Inference.SampleSize != 0 {
		m.config.Inference.SampleSize = src.Inference.SampleSize
	}
	if src.Inference.NumberRatio != 0 {
		m.config.Inference.NumberRatio = src.Inference.NumberRatio
	}
	if src.Inference.DateRatio != 0 {
		m.config.Inference.DateRatio = src.Inference.DateRatio
	}
	if src.Inference.DateGuardRatio != 0 {
		m.config.Inference.DateGuardRatio = src.Inference.DateGuardRatio
	}

	if src.Score.Completeness != 0 {
		m.config.Score.Completeness = src.Score.Completeness
	}
	if src.Score.Uniqueness != 0 {
		m.config.Score.Uniqueness = src.Score.Uniqueness
	}
	if src.Score.Validity != 0 {
		m.config.Score.Validity = src.Score.Validity
	}
	if src.Score.Baseline != 0 {
		m.config.Score.Baseline = src.Score.Baseline
	}
	if src.Score.MixedTypeCredit != 0 {
		m.config.Score.MixedTypeCredit = src.Score.MixedTypeCredit
	}

	if src.Outliers.IQRMultiplier != 0 {
		m.config.Outliers.IQRMultiplier = src.Outliers.IQRMultiplier
	}
	if src.Outliers.ZThreshold != 0 {
		m.config.Outliers.ZThreshold = src.Outliers.ZThreshold
	}

	if src.Query.TopN != 0 {
		m.config.Query.TopN = src.Query.TopN
	}

	if src.Export.Format != "" {
		m.config.Export.Format = src.Export.Format
	}
}

// loadEnv loads configuration from environment variables.
func (m *Manager) loadEnv() {
	if v := os.Getenv("AUTOINSIGHT_SAMPLE_SIZE"); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil && n > 0 {
			m.config.Inference.SampleSize = n
		}
	}

	if v := os.Getenv("AUTOINSIGHT_EXPORT_FORMAT"); v != "" {
		m.config.Export.Format = v
	}

	if v := os.Getenv("AUTOINSIGHT_Z_THRESHOLD"); v != "" {
		var z float64
		if _, err := fmt.Sscanf(v, "%g", &z); err == nil && z > 0 {
			m.config.Outliers.ZThreshold = z
		}
	}
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// GetPaths returns the paths that were loaded.
func (m *Manager) GetPaths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paths
}

// Save writes the current config to the user config file.
func (m *Manager) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configDir := filepath.Join(home, ".autoinsight")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(m.config)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(configDir, "config.yaml"), data, 0644)
}
