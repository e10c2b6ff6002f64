// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T) (dir, envFile string)
		want   Secrets
		errMsg string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) (string, string) {
				dir := t.TempDir()
				writeFile(t, dir, "XBRL_EMAIL", "  analyst@example.com  \n")
				writeFile(t, dir, "XBRL_CLIENT_ID", "cid-123")
				return dir, ""
			},
			want: Secrets{
				"XBRL_EMAIL":     "analyst@example.com",
				"XBRL_CLIENT_ID": "cid-123",
			},
		},
		{
			name: "reads dotenv file",
			setup: func(t *testing.T) (string, string) {
				root := t.TempDir()
				writeFile(t, root, ".env", "XBRL_EMAIL=env@example.com\nDB_USER=reader\nEMPTY=\n")
				return filepath.Join(root, "missing-secrets"), filepath.Join(root, ".env")
			},
			want: Secrets{
				"XBRL_EMAIL": "env@example.com",
				"DB_USER":    "reader",
			},
		},
		{
			name: "secrets directory overrides dotenv",
			setup: func(t *testing.T) (string, string) {
				root := t.TempDir()
				writeFile(t, root, ".env", "XBRL_PASSWORD=from-env\nDB_USER=reader\n")
				dir := filepath.Join(root, "secrets")
				require.NoError(t, os.Mkdir(dir, 0o755))
				writeFile(t, dir, "XBRL_PASSWORD", "from-file")
				return dir, filepath.Join(root, ".env")
			},
			want: Secrets{
				"XBRL_PASSWORD": "from-file",
				"DB_USER":       "reader",
			},
		},
		{
			name: "missing directory and env file",
			setup: func(t *testing.T) (string, string) {
				root := t.TempDir()
				return filepath.Join(root, "nope"), filepath.Join(root, "nope.env")
			},
			want: Secrets{},
		},
		{
			name: "skips empty files, dotfiles and subdirectories",
			setup: func(t *testing.T) (string, string) {
				dir := t.TempDir()
				writeFile(t, dir, "XBRL_SECRET", "s3cret")
				writeFile(t, dir, "EMPTY", "  \n\t ")
				writeFile(t, dir, ".hidden", "x")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
				return dir, ""
			},
			want: Secrets{"XBRL_SECRET": "s3cret"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, envFile := tt.setup(t)
			got, err := Load(dir, envFile)
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

func TestGetPrefersEnvironment(t *testing.T) {
	s := Secrets{"XBRL_EMAIL": "file@example.com", "DB_USER": "file-user"}
	t.Setenv("XBRL_EMAIL", "env@example.com")

	assert.Equal(t, "env@example.com", s.Get("XBRL_EMAIL"))
	assert.Equal(t, "file-user", s.Get("DB_USER"))
	assert.Empty(t, s.Get("XBRL_SECRET"))
}

func TestLoadUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read files without permission bits")
	}
	dir := t.TempDir()
	writeFile(t, dir, "GOOD", "value123")

	badPath := filepath.Join(dir, "BAD")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	got, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "value123", got["GOOD"])
	_, hasBad := got["BAD"]
	assert.False(t, hasBad, "unreadable file should not appear in result")
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
