package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/fieldscript/fieldscript/internal/keycrypto"
	"github.com/fieldscript/fieldscript/internal/store"
)

// dataDir holds the --data-dir persistent flag value (set on root command).
var dataDir string

// resolveDataDir returns the data directory from --data-dir flag,
// FIELDSCRIPT_DATA_DIR env var, or ~/.fieldscript as fallback.
func resolveDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	if envDir := os.Getenv("FIELDSCRIPT_DATA_DIR"); envDir != "" {
		return envDir
	}
	home, _ := os.UserHomeDir()
	return home + "/.fieldscript"
}

// resolvePepper returns the key-hash pepper from config or environment. If
// none is set and stdin is a terminal, the user is prompted with echo off;
// otherwise an error directs them to FIELDSCRIPT_AUTH_PEPPER.
func resolvePepper() (string, error) {
	if p := viper.GetString("auth.pepper"); p != "" {
		return p, nil
	}
	if p := os.Getenv("FIELDSCRIPT_AUTH_PEPPER"); p != "" {
		return p, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no key pepper configured: set auth.pepper in fieldscript.yaml or FIELDSCRIPT_AUTH_PEPPER")
	}

	fmt.Fprint(os.Stderr, "Key pepper: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read pepper: %w", err)
	}
	pepper := strings.TrimSpace(string(raw))
	if pepper == "" {
		return "", fmt.Errorf("pepper cannot be empty")
	}
	return pepper, nil
}

// openKeyStore opens the configured API key store. SQLite is the default and
// lives in the data dir; postgres and mysql use store.dsn from config.
func openKeyStore(hasher *keycrypto.Hasher) (*store.SQLStore, error) {
	driver := viper.GetString("store.driver")
	if driver == "" || driver == "sqlite" {
		return store.OpenSQLite(resolveDataDir(), hasher)
	}
	dsn := viper.GetString("store.dsn")
	if dsn == "" {
		return nil, fmt.Errorf("store.dsn is required for driver %q", driver)
	}
	return store.NewSQLStore(driver, dsn, hasher)
}

// versionString returns a display version string.
func versionString() string {
	if appVersion == "" || appVersion == "dev" {
		return "dev"
	}
	if strings.HasPrefix(appVersion, "v") {
		return appVersion
	}
	return "v" + appVersion
}
