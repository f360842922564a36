// Package version reports what this clutz binary is and which oracle dumps
// it can read.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/teranos/clutz/oracle"
)

// Overridden at link time with -X github.com/teranos/clutz/version.<name>=...
// When unset, the module version and VCS stamp embedded by the toolchain
// are used.
var (
	Release string
	Commit  string
	BuiltAt string
)

const (
	devlabel  = "dev"
	shortHash = 7
)

// Info describes the running binary.
type Info struct {
	Release   string `json:"release"`
	Commit    string `json:"commit"`
	BuiltAt   string `json:"built_at"`
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	// Oracle is the dump schema range accepted by Load.
	Oracle string `json:"oracle_schema"`
}

// Get assembles Info from link-time values, falling back to build info.
func Get() Info {
	info := Info{
		Release:   Release,
		Commit:    Commit,
		BuiltAt:   BuiltAt,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		Oracle:    oracle.DefaultVersionConstraint,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.fill(bi)
	}
	if info.Release == "" {
		info.Release = devlabel
	}
	return info
}

func (i *Info) fill(bi *debug.BuildInfo) {
	if i.Release == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		i.Release = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if i.Commit == "" {
				i.Commit = s.Value
			}
		case "vcs.time":
			if i.BuiltAt == "" {
				i.BuiltAt = s.Value
			}
		case "vcs.modified":
			i.Modified = s.Value == "true"
		}
	}
}

// Reads reports whether a dump stamped with schema version v is accepted.
func (i Info) Reads(v string) error {
	return oracle.CheckVersion(&oracle.Dump{Version: v}, i.Oracle)
}

// Short is the abbreviated commit, or the release when no commit is known.
func (i Info) Short() string {
	if i.Commit == "" {
		return i.Release
	}
	if len(i.Commit) > shortHash {
		return i.Commit[:shortHash]
	}
	return i.Commit
}

func (i Info) String() string {
	s := "clutz " + i.Release
	if i.Commit != "" {
		s += " (" + i.Short()
		if i.Modified {
			s += "+dirty"
		}
		if i.BuiltAt != "" {
			s += ", " + i.BuiltAt
		}
		s += ")"
	}
	return fmt.Sprintf("%s, oracle dumps %s", s, i.Oracle)
}
