// Package diagnostics persists a small breadcrumb file across restarts so
// operators (and support requests) can tell how long a given instance has
// been running and which build it started life on.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/adrg/xdg"
	"github.com/google/uuid"

	"github.com/beyonddemise/couchdb-idp-updater/pkg/logger"
	"github.com/beyonddemise/couchdb-idp-updater/pkg/version"
)

const breadcrumbPathSuffix = "couchdb-idp-updater/instance.json"

// Breadcrumb is the on-disk record of an installation's identity.
type Breadcrumb struct {
	InstanceID     string    `json:"instance_id"`
	FirstSeen      time.Time `json:"first_seen"`
	LastStartup    time.Time `json:"last_startup"`
	StartupVersion string    `json:"startup_version"`
}

// RecordStartup loads (or creates) the breadcrumb file, stamps it with the
// current startup time and running version, and writes it back. Failures
// are logged and swallowed: the breadcrumb is diagnostic only and must
// never block startup.
func RecordStartup() Breadcrumb {
	path, err := xdg.DataFile(breadcrumbPathSuffix)
	if err != nil {
		logger.Warnf("diagnostics: could not resolve breadcrumb path: %v", err)
		return Breadcrumb{}
	}

	bc, err := load(path)
	if err != nil {
		logger.Warnf("diagnostics: could not read breadcrumb file, starting fresh: %v", err)
	}

	now := time.Now().UTC()
	if bc.InstanceID == "" {
		bc.InstanceID = uuid.NewString()
		bc.FirstSeen = now
	}
	bc.LastStartup = now
	bc.StartupVersion = version.GetInfo().Version

	if err := save(path, bc); err != nil {
		logger.Warnf("diagnostics: could not persist breadcrumb file: %v", err)
	}

	return bc
}

func load(path string) (Breadcrumb, error) {
	// #nosec G304 -- path is derived from xdg.DataFile, not user input.
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Breadcrumb{}, nil
		}
		return Breadcrumb{}, fmt.Errorf("read breadcrumb file: %w", err)
	}

	var bc Breadcrumb
	if err := json.Unmarshal(raw, &bc); err != nil {
		return Breadcrumb{}, fmt.Errorf("decode breadcrumb file: %w", err)
	}
	return bc, nil
}

func save(path string, bc Breadcrumb) error {
	raw, err := json.Marshal(bc)
	if err != nil {
		return fmt.Errorf("encode breadcrumb file: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("write breadcrumb file: %w", err)
	}
	return nil
}
