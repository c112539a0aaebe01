// Package profile holds the runtime configuration of greenroom.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration used to start greenroom.
type Profile struct {
	// Mode can be "prod", "dev" or "demo".
	Mode string
	// Data is the data directory.
	Data string
	// DSN points to where greenroom stores its own data.
	DSN string
	// Driver is the database driver (only "sqlite" is supported today).
	Driver string
	// Timezone is the default IANA timezone for events created without one.
	Timezone string
	// Version is the current version of the binary.
	Version string
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// FromEnv loads configuration from GREENROOM_* environment variables.
// Values already set on the profile take precedence.
func (p *Profile) FromEnv() {
	setIfEmpty := func(dst *string, key string) {
		if *dst == "" {
			*dst = os.Getenv(key)
		}
	}
	setIfEmpty(&p.Mode, "GREENROOM_MODE")
	setIfEmpty(&p.Data, "GREENROOM_DATA")
	setIfEmpty(&p.DSN, "GREENROOM_DSN")
	setIfEmpty(&p.Driver, "GREENROOM_DRIVER")
	setIfEmpty(&p.Timezone, "GREENROOM_TIMEZONE")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies.
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

// Validate normalizes and checks the profile, filling in defaults.
func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}
	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver != "sqlite" {
		return errors.Errorf("unsupported database driver %q", p.Driver)
	}
	if p.Timezone == "" {
		p.Timezone = "UTC"
	}
	if p.Data == "" {
		p.Data = "."
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		return err
	}
	p.Data = dataDir

	if p.DSN == "" {
		dbFile := fmt.Sprintf("greenroom_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return nil
}
