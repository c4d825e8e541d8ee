package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/pitchsearch/internal/domain"
)

// Vector store drivers.
const (
	DriverQdrant = "qdrant"
	DriverRedis  = "redis"
)

// Embedding providers.
const (
	ProviderLocal  = "local"
	ProviderOpenAI = "openai"
)

// Config holds the pitchsearch service configuration.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Cache       CacheConfig       `yaml:"cache"`
	Search      SearchConfig      `yaml:"search"`
	Auth        AuthConfig        `yaml:"auth"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings. No keys disables auth.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	CORSOrigins     []string `yaml:"cors_origins"`
	RateLimitRPS    float64  `yaml:"rate_limit_rps"` // 0 disables rate limiting
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
}

// VectorStoreConfig holds vector store connection settings.
type VectorStoreConfig struct {
	Driver           string   `yaml:"driver"` // qdrant, redis (default: qdrant)
	URL              string   `yaml:"url"`    // qdrant
	APIKey           string   `yaml:"api_key"`
	Addrs            []string `yaml:"addrs"` // redis
	Password         string   `yaml:"password"`
	Collection       string   `yaml:"collection"`
	Distance         string   `yaml:"distance"` // cosine, euclid, dot
	TimeoutSec       int      `yaml:"timeout_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	HNSWM            int      `yaml:"hnsw_m"`
	HNSWEFConstruct  int      `yaml:"hnsw_ef_construction"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider         string `yaml:"provider"` // local, openai (default: local)
	Model            string `yaml:"model"`
	Dimensions       int    `yaml:"dimensions"`
	QueryInstruction string `yaml:"query_instruction"`

	// local
	ModelDir        string `yaml:"model_dir"`
	OnnxLibraryPath string `yaml:"onnx_library_path"`

	// openai
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	User    string `yaml:"user"`
}

// CacheConfig holds embedding cache settings.
type CacheConfig struct {
	Enabled    bool     `yaml:"enabled"`     // opt-in; off means every query is embedded fresh
	Size       int      `yaml:"size"`        // L1 entries
	RedisAddrs []string `yaml:"redis_addrs"` // L2; empty disables L2 unless the vector store is redis
	Password   string   `yaml:"password"`
	TTLSec     int      `yaml:"ttl_sec"`
}

// SearchConfig holds search behaviour settings.
type SearchConfig struct {
	TopK         int    `yaml:"top_k"`
	ReviewOrigin string `yaml:"review_origin"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML config bytes, expanding env variables, applying defaults and validating.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	vec := domain.DefaultVectorConfig()

	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.RateLimitRPS > 0 && c.HTTP.RateLimitBurst <= 0 {
		c.HTTP.RateLimitBurst = int(c.HTTP.RateLimitRPS) + 1
	}

	if c.VectorStore.Driver == "" {
		c.VectorStore.Driver = DriverQdrant
	}
	if c.VectorStore.Collection == "" {
		c.VectorStore.Collection = domain.DefaultCollection
	}
	if c.VectorStore.Distance == "" {
		c.VectorStore.Distance = vec.DistanceMetric
	}
	if c.VectorStore.TimeoutSec <= 0 {
		c.VectorStore.TimeoutSec = 10
	}
	if c.VectorStore.ReadinessTimeout <= 0 {
		c.VectorStore.ReadinessTimeout = 10
	}
	if c.VectorStore.HNSWM <= 0 {
		c.VectorStore.HNSWM = 16
	}
	if c.VectorStore.HNSWEFConstruct <= 0 {
		c.VectorStore.HNSWEFConstruct = 200
	}

	if c.Embedding.Provider == "" {
		c.Embedding.Provider = ProviderLocal
	}
	if c.Embedding.Provider == ProviderLocal {
		if c.Embedding.Model == "" {
			c.Embedding.Model = vec.Model
		}
		if c.Embedding.Dimensions <= 0 {
			c.Embedding.Dimensions = vec.Dimensions
		}
		if c.Embedding.ModelDir == "" {
			c.Embedding.ModelDir = "models"
		}
	}

	if c.Cache.Size <= 0 {
		c.Cache.Size = 1024
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 7 * 24 * 3600
	}

	if c.Search.TopK <= 0 {
		c.Search.TopK = vec.TopK
	}
	if c.Search.ReviewOrigin == "" {
		c.Search.ReviewOrigin = domain.DefaultReviewOrigin
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.HTTP.RateLimitRPS < 0 {
		return fmt.Errorf("http.rate_limit_rps must not be negative")
	}

	switch c.VectorStore.Driver {
	case DriverQdrant:
		if c.VectorStore.URL == "" {
			return fmt.Errorf("vector_store.url is required for the qdrant driver")
		}
	case DriverRedis:
		if len(c.VectorStore.Addrs) == 0 {
			return fmt.Errorf("vector_store.addrs is required for the redis driver")
		}
	default:
		return fmt.Errorf("vector_store.driver must be %q or %q, got %q",
			DriverQdrant, DriverRedis, c.VectorStore.Driver)
	}
	switch strings.ToLower(c.VectorStore.Distance) {
	case "cosine", "euclid", "l2", "dot", "ip":
	default:
		return fmt.Errorf("vector_store.distance must be cosine, euclid or dot, got %q", c.VectorStore.Distance)
	}

	switch c.Embedding.Provider {
	case ProviderLocal:
	case ProviderOpenAI:
		if c.Embedding.BaseURL == "" {
			return fmt.Errorf("embedding.base_url is required for the openai provider")
		}
	default:
		return fmt.Errorf("embedding.provider must be %q or %q, got %q",
			ProviderLocal, ProviderOpenAI, c.Embedding.Provider)
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required")
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive")
	}

	if c.Search.TopK > domain.DefaultVectorConfig().TopK {
		return fmt.Errorf("search.top_k must be between 1 and 10, got %d", c.Search.TopK)
	}
	u, err := url.Parse(c.Search.ReviewOrigin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("search.review_origin must be an absolute URL, got %q", c.Search.ReviewOrigin)
	}

	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
