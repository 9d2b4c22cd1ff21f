package web

import (
	"sync"

	"github.com/dbehnke/rsc-bcjr/pkg/bcjr"
	"github.com/dbehnke/rsc-bcjr/pkg/database"
	"github.com/dbehnke/rsc-bcjr/pkg/maxop"
)

// BuildInfo describes the running binary and the decoders it can rebuild
// from a stored set
type BuildInfo struct {
	Version   string   `json:"version"`
	Commit    string   `json:"commit"`
	BuildTime string   `json:"build_time"`
	Schema    int      `json:"schema"`
	Operators []string `json:"operators"`
	Variants  []string `json:"variants"`
}

var (
	verMu     sync.RWMutex
	ver       = "dev"
	verCommit = "unknown"
	verBuild  = "unknown"
)

// SetVersionInfo sets the version information to be exposed by the web API
func SetVersionInfo(versionStr, commit, buildTime string) {
	verMu.Lock()
	defer verMu.Unlock()
	ver = versionStr
	verCommit = commit
	verBuild = buildTime
}

// GetBuildInfo returns the version info together with the store schema and
// the operator and variant names a set may record
func GetBuildInfo() BuildInfo {
	verMu.RLock()
	defer verMu.RUnlock()
	return BuildInfo{
		Version:   ver,
		Commit:    verCommit,
		BuildTime: verBuild,
		Schema:    database.SchemaVersion,
		Operators: append([]string(nil), maxop.Names...),
		Variants:  append([]string(nil), bcjr.Variants...),
	}
}
