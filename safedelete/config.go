package safedelete

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFieldName       = "deleted_at"
	DefaultVisibilityField = "id"
)

// Config carries the values that shape every Query built from it.
// It is passed explicitly to query construction, there is no package level default state.
type Config struct {
	// FieldName is the deleted-marker column, optionally table-qualified ("books.deleted_at").
	FieldName string `yaml:"field_name" json:"field_name"`

	// VisibilityField is the filter key that turns DeletedVisibleByField into DeletedVisible.
	VisibilityField string `yaml:"visibility_field" json:"visibility_field"`

	// DefaultVisibility is the mode used by queries that don't ask for a specific one.
	DefaultVisibility Visibility `yaml:"default_visibility" json:"default_visibility"`

	// DeletePolicy decides what delete requests do.
	DeletePolicy DeletePolicy `yaml:"delete_policy" json:"delete_policy"`
}

// DefaultConfig returns the configuration used when nothing else is supplied.
func DefaultConfig() Config {
	return Config{
		FieldName:         DefaultFieldName,
		VisibilityField:   DefaultVisibilityField,
		DefaultVisibility: DeletedInvisible,
		DeletePolicy:      SoftDelete,
	}
}

// Validate checks that all values are usable.
func (c Config) Validate() error {
	if c.FieldName == "" {
		return ErrEmptyFieldName
	}

	if c.VisibilityField == "" {
		return ErrEmptyVisibilityField
	}

	if !c.DefaultVisibility.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidVisibility, int(c.DefaultVisibility))
	}

	if !c.DeletePolicy.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidDeletePolicy, int(c.DeletePolicy))
	}

	return nil
}

// LoadConfig reads a YAML (.yaml, .yml) or JSON (.json) file on top of DefaultConfig and validates the result.
// Keys missing from the file keep their default values.
func LoadConfig(path string) (Config, error) {
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return Config{}, errors.Join(ErrReadingConfigFailed, readErr)
	}

	return ParseConfig(filepath.Ext(path), data)
}

// ParseConfig decodes data in the format named by ext (".yaml", ".yml" or ".json") on top of DefaultConfig.
func ParseConfig(ext string, data []byte) (Config, error) {
	cfg := DefaultConfig()

	var decodeErr error

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		decodeErr = yaml.Unmarshal(data, &cfg)

	case ".json":
		decodeErr = jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &cfg)

	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnsupportedConfigFormat, ext)
	}

	if decodeErr != nil {
		return Config{}, errors.Join(ErrDecodingConfigFailed, decodeErr)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
