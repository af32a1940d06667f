package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukemcguire/reflink/resolver"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(LoadOptions{Dir: t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, "https://github.com", cfg.Host)
	assert.Equal(t, resolver.ProfileFull, cfg.RetryProfile)
	assert.Equal(t, resolver.DefaultRetryPolicy(), cfg.Policy)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 10.0, cfg.RateLimit)
	assert.Equal(t, 1, cfg.Concurrency)
	assert.True(t, cfg.ProtectMarkdown)
	assert.Equal(t, "strict", cfg.IssueBoundary)
	assert.False(t, cfg.CommitHeuristic)
	assert.Equal(t, []string{"issue", "commit", "handle"}, cfg.FamilyNames())
	assert.Equal(t, resolver.DefaultUserAgent, cfg.UserAgent)
	assert.Empty(t, cfg.Source)
}

func TestLoad_Precedence(t *testing.T) {
	tests := map[string]struct {
		file      string
		env       map[string]string
		overrides map[string]any
		wantRepo  string
		wantConc  int
	}{
		"file over default": {
			file:     "repo: file/repo\nconcurrency: 2\n",
			wantRepo: "file/repo",
			wantConc: 2,
		},
		"env over file": {
			file:     "repo: file/repo\nconcurrency: 2\n",
			env:      map[string]string{"REFLINK_REPO": "env/repo"},
			wantRepo: "env/repo",
			wantConc: 2,
		},
		"flag over env": {
			file:      "repo: file/repo\n",
			env:       map[string]string{"REFLINK_REPO": "env/repo", "REFLINK_CONCURRENCY": "3"},
			overrides: map[string]any{"repo": "flag/repo"},
			wantRepo:  "flag/repo",
			wantConc:  3,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.file)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load(LoadOptions{Dir: dir, Overrides: tt.overrides})
			require.NoError(t, err)
			assert.Equal(t, tt.wantRepo, cfg.Repo)
			assert.Equal(t, tt.wantConc, cfg.Concurrency)
			assert.Equal(t, filepath.Join(dir, DefaultFile), cfg.Source)
		})
	}
}

func TestLoad_RetryPolicy(t *testing.T) {
	tests := map[string]struct {
		file      string
		overrides map[string]any
		want      resolver.RetryPolicy
	}{
		"fast profile": {
			file: "retry_profile: fast\n",
			want: resolver.FastRetryPolicy(),
		},
		"profile with attempt override": {
			file: "retry_profile: fast\nmax_attempts: 5\n",
			want: resolver.RetryPolicy{MaxAttempts: 5, Step: 250 * time.Millisecond},
		},
		"delays from file": {
			file: "base_delay: 1s\nretry_step: 500ms\nmax_delay: 4s\n",
			want: resolver.RetryPolicy{MaxAttempts: 15, BaseDelay: time.Second, Step: 500 * time.Millisecond, MaxDelay: 4 * time.Second},
		},
		"flag override": {
			overrides: map[string]any{"retry_profile": "fast", "base_delay": 2 * time.Second},
			want:      resolver.RetryPolicy{MaxAttempts: 2, BaseDelay: 2 * time.Second, Step: 250 * time.Millisecond},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.file != "" {
				writeConfig(t, dir, tt.file)
			}
			cfg, err := Load(LoadOptions{Dir: dir, Overrides: tt.overrides})
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Policy)
		})
	}
}

func TestLoad_EnvTypes(t *testing.T) {
	t.Setenv("REFLINK_RATE_LIMIT", "2.5")
	t.Setenv("REFLINK_REQUEST_TIMEOUT", "3s")
	t.Setenv("REFLINK_PROTECT_MARKDOWN", "false")
	t.Setenv("REFLINK_COMMIT_HEURISTIC", "true")

	cfg, err := Load(LoadOptions{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, 2.5, cfg.RateLimit)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.ProtectMarkdown)
	assert.True(t, cfg.CommitHeuristic)
}

func TestLoad_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("repo: acme/widget\n"), 0o644))

	cfg, err := Load(LoadOptions{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, "acme/widget", cfg.Repo)
	assert.Equal(t, path, cfg.Source)
}

func TestLoad_Errors(t *testing.T) {
	tests := map[string]struct {
		file      string
		path      string
		overrides map[string]any
		wantField string
	}{
		"missing explicit file": {
			path: "does-not-exist.yaml",
		},
		"malformed yaml": {
			file: "repo: [unterminated\n",
		},
		"unknown profile": {
			overrides: map[string]any{"retry_profile": "slow"},
			wantField: "retry_profile",
		},
		"zero attempts": {
			overrides: map[string]any{"max_attempts": 0},
			wantField: "max_attempts",
		},
		"bad concurrency": {
			overrides: map[string]any{"concurrency": 0},
			wantField: "concurrency",
		},
		"bad boundary": {
			overrides: map[string]any{"issue_boundary": "fuzzy"},
			wantField: "issue_boundary",
		},
		"bad family": {
			overrides: map[string]any{"families": "issue,tag"},
			wantField: "families",
		},
		"dry run with output": {
			overrides: map[string]any{"dry_run": true, "output": "out.md"},
			wantField: "output",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.file != "" {
				writeConfig(t, dir, tt.file)
			}
			path := tt.path
			if path != "" {
				path = filepath.Join(dir, path)
			}

			_, err := Load(LoadOptions{Dir: dir, ConfigPath: path, Overrides: tt.overrides})
			require.Error(t, err)

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr), "error %v is not a ValidationError", err)
			if tt.wantField != "" {
				assert.Equal(t, tt.wantField, vErr.Field)
			}
		})
	}
}

func TestTemplate_Loads(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, Template())

	cfg, err := Load(LoadOptions{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, resolver.DefaultRetryPolicy(), cfg.Policy)
	assert.Equal(t, "https://github.com", cfg.Host)
}
