// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API credentials from a dotenv file and from a
// directory of plain-text files. In the directory the filename is the key
// name and the file contents (trimmed) are the value.
//
// Keys used by the pipeline: XBRL_EMAIL, XBRL_PASSWORD, XBRL_CLIENT_ID,
// XBRL_SECRET, DB_USER, DB_PASSWORD.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Secrets maps key names to values.
type Secrets map[string]string

// Load reads envFile (dotenv syntax) and then every file in dir; a file in
// dir overrides the same key from envFile. Missing inputs are not errors.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir, envFile string) (Secrets, error) {
	s := Secrets{}

	if envFile != "" {
		env, err := godotenv.Read(envFile)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading env file %s: %w", envFile, err)
		default:
			for k, v := range env {
				if v = strings.TrimSpace(v); v != "" {
					s[k] = v
				}
			}
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			s[name] = value
		}
	}

	return s, nil
}

// Get returns the value for key. A non-empty process environment variable
// of the same name wins over the loaded value.
func (s Secrets) Get(key string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return s[key]
}

// Keys returns the loaded key names, for logging without values.
func (s Secrets) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	return keys
}
