package application

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-heat/internal/ports"
)

// ConfigLoader parses, validates and caches engine configuration.
// Identical configurations are parsed once; the cache is keyed by the
// SHA256 hash of the normalized YAML.
type ConfigLoader struct {
	validator *validator.Validate
	// cache stores validated configurations by content hash.
	// WARNING: Cached configurations MUST NOT be mutated.
	cache   map[string]*EngineConfig
	cacheMu sync.RWMutex
	// sf prevents duplicate validation when multiple goroutines load the
	// same configuration simultaneously.
	sf singleflight.Group
}

// NewConfigLoader creates a loader with the custom validators registered.
func NewConfigLoader() (*ConfigLoader, error) {
	v := validator.New()
	if err := v.RegisterValidation("semver", validateSemver); err != nil {
		return nil, fmt.Errorf("failed to register semver validator: %w", err)
	}

	return &ConfigLoader{
		validator: v,
		cache:     make(map[string]*EngineConfig),
	}, nil
}

// LoadFromFile loads an engine configuration from a YAML file.
// WARNING: The returned configuration is shared with the cache and MUST
// NOT be mutated.
func (cl *ConfigLoader) LoadFromFile(path string) (*EngineConfig, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ports.NewConfigError(path, ports.ErrConfigNotFound)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return cl.load(data)
}

// LoadFromReader loads an engine configuration from r.
// WARNING: The returned configuration is shared with the cache and MUST
// NOT be mutated.
func (cl *ConfigLoader) LoadFromReader(r io.Reader) (*EngineConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	return cl.load(data)
}

func (cl *ConfigLoader) load(data []byte) (*EngineConfig, error) {
	config, err := cl.parseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	hash, err := cl.calculateConfigHash(config)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate hash: %w", err)
	}

	v, err, _ := cl.sf.Do(hash, func() (any, error) {
		if cached, ok := cl.getCached(hash); ok {
			return cached, nil
		}
		if err := cl.validateConfig(config); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}
		cl.cacheConfig(hash, config)
		return config, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*EngineConfig), nil
}

// parseYAML decodes data on top of DefaultEngineConfig in strict mode,
// so unknown fields are rejected and omitted fields keep their defaults.
func (cl *ConfigLoader) parseYAML(data []byte) (*EngineConfig, error) {
	config := DefaultEngineConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("YAML decode failed: %w", err)
	}
	return &config, nil
}

// validateConfig runs struct tag validation followed by checks that span
// several fields. Struct tag failures are reported as a ConfigError
// naming the first offending field.
func (cl *ConfigLoader) validateConfig(config *EngineConfig) error {
	if err := cl.validator.Struct(config); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return ports.NewConfigError(fieldErrs[0].Namespace(), err)
		}
		return fmt.Errorf("struct validation failed: %w", err)
	}
	return cl.validateSemantics(config)
}

// validateSemantics rejects duplicate strategy entries and checks every
// strategy's parameters by applying them to a scratch registry.
func (cl *ConfigLoader) validateSemantics(config *EngineConfig) error {
	seen := make(map[string]int, len(config.Strategies))
	for i, sc := range config.Strategies {
		key := normalize(sc.HeatType)
		if prev, ok := seen[key]; ok {
			return ports.NewConfigError(
				fmt.Sprintf("strategies[%d].heat_type", i),
				fmt.Errorf("duplicate heat type %q: already configured by strategies[%d]", sc.HeatType, prev),
			)
		}
		seen[key] = i
	}

	if err := NewStrategyRegistry().Apply(config.Strategies); err != nil {
		return ports.NewConfigError("strategies", err)
	}
	return nil
}

// calculateConfigHash hashes the re-encoded configuration so whitespace
// and key order do not affect caching.
func (cl *ConfigLoader) calculateConfigHash(config *EngineConfig) (string, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(config); err != nil {
		return "", fmt.Errorf("failed to encode config for hashing: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("failed to encode config for hashing: %w", err)
	}

	hash := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(hash[:]), nil
}

func (cl *ConfigLoader) getCached(hash string) (*EngineConfig, bool) {
	cl.cacheMu.RLock()
	defer cl.cacheMu.RUnlock()

	config, ok := cl.cache[hash]
	return config, ok
}

func (cl *ConfigLoader) cacheConfig(hash string, config *EngineConfig) {
	cl.cacheMu.Lock()
	defer cl.cacheMu.Unlock()

	cl.cache[hash] = config
}

// ClearCache drops all cached configurations.
func (cl *ConfigLoader) ClearCache() {
	cl.cacheMu.Lock()
	defer cl.cacheMu.Unlock()

	cl.cache = make(map[string]*EngineConfig)
}

// validateSemver validates that a string follows semantic versioning
// format (X.Y.Z where X, Y, Z are non-negative integers).
func validateSemver(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	var major, minor, patch int
	n, err := fmt.Sscanf(s, "%d.%d.%d", &major, &minor, &patch)
	if err != nil || n != 3 || major < 0 || minor < 0 || patch < 0 {
		return false
	}
	// Sscanf stops at the last verb, so reject trailing or non-canonical input.
	return fmt.Sprintf("%d.%d.%d", major, minor, patch) == s
}
