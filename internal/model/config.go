package model

import "time"

// Config is the root configuration for all pipeline stages
type Config struct {
	HTTP        HTTPConfig        `yaml:"http" json:"http"`
	Cache       CacheConfig       `yaml:"cache" json:"cache"`
	Data        DataConfig        `yaml:"data" json:"data"`
	LLM         LLMConfig         `yaml:"llm" json:"llm"`
	Chunk       ChunkConfig       `yaml:"chunk" json:"chunk"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
	Validation  ValidationConfig  `yaml:"validation" json:"validation"`
	Output      OutputConfig      `yaml:"output" json:"output"`
}

// HTTPConfig controls the document fetchers
type HTTPConfig struct {
	Timeout           time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent         string        `yaml:"user_agent" json:"user_agent"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes" json:"max_body_bytes"`
	RequestsPerSecond float64       `yaml:"requests_per_second" json:"requests_per_second"`
}

// CacheConfig controls the fetch cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled"`
	Dir     string        `yaml:"dir" json:"dir"`
	TTL     time.Duration `yaml:"ttl" json:"ttl"`
}

// DataConfig locates the stage artifact store
type DataConfig struct {
	Dir string `yaml:"dir" json:"dir"`
}

// LLMConfig configures the generation collaborator
type LLMConfig struct {
	Provider    string  `yaml:"provider" json:"provider"`
	Model       string  `yaml:"model" json:"model"`
	APIKey      string  `yaml:"-" json:"-"`
	BaseURL     string  `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	Timeout     int     `yaml:"timeout" json:"timeout"` // seconds
	MaxRetries  int     `yaml:"max_retries" json:"max_retries"`
	MaxTokens   int     `yaml:"max_tokens" json:"max_tokens"`
	Temperature float32 `yaml:"temperature" json:"temperature"`
}

// ChunkConfig controls document chunking
type ChunkConfig struct {
	TokenBudget int     `yaml:"token_budget" json:"token_budget"`
	Overlap     float64 `yaml:"overlap" json:"overlap"` // fraction of budget
}

// ConcurrencyConfig bounds the worker pools
type ConcurrencyConfig struct {
	ExtractionWorkers int `yaml:"extraction_workers" json:"extraction_workers"`
	JudgeWorkers      int `yaml:"judge_workers" json:"judge_workers"`
}

// ValidationConfig parameterizes the three validation experiments
type ValidationConfig struct {
	SampleSize                 int     `yaml:"sample_size" json:"sample_size"`
	SelfConsistencyRuns        int     `yaml:"self_consistency_runs" json:"self_consistency_runs"`
	SelfConsistencyTemperature float32 `yaml:"self_consistency_temperature" json:"self_consistency_temperature"`
}

// OutputConfig controls CLI output
type OutputConfig struct {
	Verbose bool `yaml:"verbose" json:"verbose"`
}

// DefaultConfig returns sensible defaults for every stage
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:           30 * time.Second,
			UserAgent:         "Concordia/0.1 (+https://github.com/athorburn/concordia)",
			MaxBodyBytes:      5_000_000,
			RequestsPerSecond: 1,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".concordia-cache",
			TTL:     7 * 24 * time.Hour,
		},
		Data: DataConfig{
			Dir: "data",
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Timeout:     60,
			MaxRetries:  3,
			MaxTokens:   2000,
			Temperature: 0.3,
		},
		Chunk: ChunkConfig{
			TokenBudget: 3000,
			Overlap:     0,
		},
		Concurrency: ConcurrencyConfig{
			ExtractionWorkers: 3,
			JudgeWorkers:      3,
		},
		Validation: ValidationConfig{
			SampleSize:                 10,
			SelfConsistencyRuns:        5,
			SelfConsistencyTemperature: 0.7,
		},
		Output: OutputConfig{},
	}
}
