package safedelete_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/softdelete-go/safedelete"
)

func Test_DefaultConfig_Is_Valid(t *testing.T) {
	cfg := safedelete.DefaultConfig()

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "deleted_at", cfg.FieldName)
	assert.Equal(t, "id", cfg.VisibilityField)
	assert.Equal(t, safedelete.DeletedInvisible, cfg.DefaultVisibility)
	assert.Equal(t, safedelete.SoftDelete, cfg.DeletePolicy)
}

func Test_Config_Validate_Rejects_Invalid_Values(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *safedelete.Config)
		wantErr error
	}{
		{
			name:    "empty_field_name",
			mutate:  func(cfg *safedelete.Config) { cfg.FieldName = "" },
			wantErr: safedelete.ErrEmptyFieldName,
		},
		{
			name:    "empty_visibility_field",
			mutate:  func(cfg *safedelete.Config) { cfg.VisibilityField = "" },
			wantErr: safedelete.ErrEmptyVisibilityField,
		},
		{
			name:    "unknown_visibility",
			mutate:  func(cfg *safedelete.Config) { cfg.DefaultVisibility = safedelete.Visibility(42) },
			wantErr: safedelete.ErrInvalidVisibility,
		},
		{
			name:    "unknown_delete_policy",
			mutate:  func(cfg *safedelete.Config) { cfg.DeletePolicy = 0 },
			wantErr: safedelete.ErrInvalidDeletePolicy,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := safedelete.DefaultConfig()
			tc.mutate(&cfg)

			assert.ErrorIs(t, cfg.Validate(), tc.wantErr)
		})
	}
}

func Test_ParseConfig_From_YAML(t *testing.T) {
	data := []byte(`
field_name: removed_at
visibility_field: include_deleted
default_visibility: visible_by_field
delete_policy: hard_delete
`)

	cfg, err := safedelete.ParseConfig(".yaml", data)

	require.NoError(t, err)
	assert.Equal(t, "removed_at", cfg.FieldName)
	assert.Equal(t, "include_deleted", cfg.VisibilityField)
	assert.Equal(t, safedelete.DeletedVisibleByField, cfg.DefaultVisibility)
	assert.Equal(t, safedelete.HardDelete, cfg.DeletePolicy)
}

func Test_ParseConfig_From_JSON_Keeps_Defaults_For_Missing_Keys(t *testing.T) {
	data := []byte(`{"default_visibility": "only_visible"}`)

	cfg, err := safedelete.ParseConfig(".json", data)

	require.NoError(t, err)
	assert.Equal(t, safedelete.DefaultFieldName, cfg.FieldName)
	assert.Equal(t, safedelete.DefaultVisibilityField, cfg.VisibilityField)
	assert.Equal(t, safedelete.DeletedOnlyVisible, cfg.DefaultVisibility)
	assert.Equal(t, safedelete.SoftDelete, cfg.DeletePolicy)
}

func Test_ParseConfig_Rejects_Unknown_Visibility(t *testing.T) {
	_, yamlErr := safedelete.ParseConfig(".yml", []byte("default_visibility: sometimes\n"))
	_, jsonErr := safedelete.ParseConfig(".json", []byte(`{"default_visibility": "sometimes"}`))

	assert.ErrorIs(t, yamlErr, safedelete.ErrDecodingConfigFailed)
	assert.ErrorIs(t, jsonErr, safedelete.ErrDecodingConfigFailed)
}

func Test_ParseConfig_Rejects_Unknown_Format(t *testing.T) {
	_, err := safedelete.ParseConfig(".toml", []byte(`field_name = "x"`))

	assert.ErrorIs(t, err, safedelete.ErrUnsupportedConfigFormat)
}

func Test_ParseConfig_Validates_The_Result(t *testing.T) {
	_, err := safedelete.ParseConfig(".json", []byte(`{"field_name": ""}`))

	assert.ErrorIs(t, err, safedelete.ErrEmptyFieldName)
}

func Test_LoadConfig_Reads_The_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "safedelete.yaml")
	require.NoError(t, os.WriteFile(path, []byte("field_name: archived_at\n"), 0o600))

	cfg, err := safedelete.LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, "archived_at", cfg.FieldName)
}

func Test_LoadConfig_When_File_Is_Missing(t *testing.T) {
	_, err := safedelete.LoadConfig(filepath.Join(t.TempDir(), "missing.json"))

	assert.ErrorIs(t, err, safedelete.ErrReadingConfigFailed)
}
