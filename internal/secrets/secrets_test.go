// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/femcite/pkg/types"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T) string
		want   map[string]string
		errMsg string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "openai-api-key", "  sk-abc123  \n")
				writeFile(t, dir, "anthropic-api-key", "ak_xyz789")
				writeFile(t, dir, "femcite-api-key", "fc_token\n")
				return dir
			},
			want: map[string]string{
				"openai-api-key":    "sk-abc123",
				"anthropic-api-key": "ak_xyz789",
				"femcite-api-key":   "fc_token",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "anthropic-api-key", "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: map[string]string{
				"anthropic-api-key": "valid-key",
			},
		},
		{
			name: "skips dotfiles",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, "openai-api-key", "sk-real")
				return dir
			},
			want: map[string]string{
				"openai-api-key": "sk-real",
			},
		},
		{
			name: "skips subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "anthropic-api-key", "ak_123")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{
				"anthropic-api-key": "ak_123",
			},
		},
		{
			name: "returns empty map for empty directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			got, err := Load(dir)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")

	// Create a file then remove read permission.
	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	got, err := Load(dir)
	require.NoError(t, err)
	// The good file should still be returned; the bad file is skipped with a warning.
	assert.Equal(t, "value123", got["good-key"])
	_, hasBad := got["bad-key"]
	assert.False(t, hasBad, "unreadable file should not appear in result")
}

func TestFill(t *testing.T) {
	tests := []struct {
		name       string
		cfg        types.Config
		env        map[string]string
		files      map[string]string
		wantSearch string
		wantGen    string
	}{
		{
			name:       "key files fill empty keys",
			files:      map[string]string{"openai-api-key": "sk-file", "femcite-api-key": "fc-file"},
			wantSearch: "fc-file",
			wantGen:    "sk-file",
		},
		{
			name:    "environment wins over files",
			env:     map[string]string{"OPENAI_API_KEY": "sk-env"},
			files:   map[string]string{"openai-api-key": "sk-file"},
			wantGen: "sk-env",
		},
		{
			name:    "config wins over environment",
			cfg:     types.Config{Generation: types.GenerationConfig{APIKey: "sk-config"}},
			env:     map[string]string{"OPENAI_API_KEY": "sk-env"},
			wantGen: "sk-config",
		},
		{
			name:    "anthropic provider reads anthropic key",
			cfg:     types.Config{Generation: types.GenerationConfig{Provider: types.ProviderAnthropic}},
			files:   map[string]string{"openai-api-key": "sk-file", "anthropic-api-key": "ak-file"},
			wantGen: "ak-file",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{OpenAIKeyEnv, AnthropicKeyEnv, SearchKeyEnv} {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			dir := t.TempDir()
			for name, content := range tt.files {
				writeFile(t, dir, name, content)
			}

			cfg := tt.cfg
			require.NoError(t, Fill(&cfg, dir))
			assert.Equal(t, tt.wantSearch, cfg.Search.APIKey)
			assert.Equal(t, tt.wantGen, cfg.Generation.APIKey)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	t.Setenv(SearchKeyEnv, "")
	os.Unsetenv(SearchKeyEnv)

	dir := t.TempDir()
	writeFile(t, dir, ".env", "FEMCITE_API_KEY=fc-dotenv\n")

	require.NoError(t, LoadDotEnv(filepath.Join(dir, ".env")))
	assert.Equal(t, "fc-dotenv", os.Getenv(SearchKeyEnv))

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
