// SPDX-License-Identifier: MIT
//
// Package build exposes metadata embedded into the tuner binary at link time:
//
//	go build -ldflags "-X tuner/pkg/build.buildName=tuner \
//	    -X tuner/pkg/build.buildVersion=0.3.0 ..."
//
// Development builds run without the flags and report "dev" values.
package build

import (
	"errors"
	"fmt"
)

// ErrMissingFlag is wrapped by Initialize for each absent ldflag.
var ErrMissingFlag = errors.New("build flag missing")

const description = "Real-time monophonic instrument tuner"

type ldFlags struct {
	Name        string
	Description string
	Time        string
	Commit      string
	Version     string
}

// String formats the flags for the --version template.
func (f *ldFlags) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", f.Name, f.Version, f.Commit, f.Time)
}

// Package-level variables populated by -ldflags.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = &ldFlags{
		Name:        "tuner",
		Description: description,
		Time:        "dev",
		Commit:      "dev",
		Version:     "dev",
	}
)

// Initialize copies the ldflags into the build information. It fails on the
// first missing flag and leaves the development defaults in place.
func Initialize() error {
	required := []struct {
		name  string
		value string
	}{
		{"BuildName", buildName},
		{"BuildTime", buildTime},
		{"BuildCommit", buildCommit},
		{"BuildVersion", buildVersion},
	}
	for _, f := range required {
		if f.value == "" {
			return fmt.Errorf("%w: %s is required", ErrMissingFlag, f.name)
		}
	}

	buildFlags.Name = buildName
	buildFlags.Time = buildTime
	buildFlags.Commit = buildCommit
	buildFlags.Version = buildVersion

	return nil
}

// GetBuildFlags returns the current build information.
func GetBuildFlags() *ldFlags {
	return buildFlags
}
