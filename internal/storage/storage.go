package storage

import (
	"errors"
	"net/url"
	"path/filepath"
	"strings"
)

var (
	// ErrNotInitialized is returned by Load when Init has never run for the location.
	ErrNotInitialized = errors.New("storage not initialized, run 'tweeklike init' first")
	// ErrNotLoaded is returned when tasks are read or written before Init or Load.
	ErrNotLoaded = errors.New("storage not loaded")
)

// Kind names a provider implementation.
type Kind string

const (
	KindJSON     Kind = "json"
	KindSQLite   Kind = "sqlite"
	KindPostgres Kind = "postgres"
)

// DetectKind picks the provider for a config location: a postgres:// URL,
// a *.json file, or otherwise a SQLite database path.
func DetectKind(config string) Kind {
	switch {
	case IsPostgres(config):
		return KindPostgres
	case strings.EqualFold(filepath.Ext(config), ".json"):
		return KindJSON
	default:
		return KindSQLite
	}
}

// IsPostgres reports whether config is a PostgreSQL connection URL.
func IsPostgres(config string) bool {
	return strings.HasPrefix(config, "postgres://") || strings.HasPrefix(config, "postgresql://")
}

// HasEmbeddedCredentials reports whether a PostgreSQL URL or DSN carries a password.
func HasEmbeddedCredentials(connStr string) bool {
	if IsPostgres(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			return false
		}
		_, isSet := u.User.Password()
		return isSet
	}
	for _, pair := range strings.Fields(connStr) {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) == 2 && strings.EqualFold(strings.TrimSpace(parts[0]), "password") {
			return true
		}
	}
	return false
}
