// Package datadir resolves the per-application data directory.
package datadir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"

	"github.com/starford/ansuz/internal/apperr"
)

// Resolver computes the data directory from an application identifier,
// or from an explicit override.
type Resolver struct {
	identifier string
	override   string
	base       func() string
}

// New creates a Resolver. A non-empty override wins over the
// identifier-derived location.
func New(identifier, override string) *Resolver {
	return &Resolver{
		identifier: identifier,
		override:   override,
		base:       func() string { return dataHome(runtime.GOOS, os.UserConfigDir) },
	}
}

// dataHome picks the base the desktop runtime uses for app data: the XDG
// data home on Linux and macOS, the roaming AppData folder on Windows
// (xdg.DataHome there is the local one).
func dataHome(goos string, roaming func() (string, error)) string {
	if goos == "windows" {
		if dir, err := roaming(); err == nil && dir != "" {
			return dir
		}
	}
	return xdg.DataHome
}

// Resolve returns the absolute data directory. It does not create it.
func (r *Resolver) Resolve() (string, error) {
	if r.override != "" {
		abs, err := filepath.Abs(r.override)
		if err != nil {
			return "", apperr.New(apperr.KindUnavailable, "get_data_dir", r.override, err)
		}
		return abs, nil
	}
	if r.identifier == "" {
		return "", apperr.New(apperr.KindUnavailable, "get_data_dir", "",
			errors.New("unknown path: application identifier is empty"))
	}
	base := r.base()
	if base == "" {
		return "", apperr.New(apperr.KindUnavailable, "get_data_dir", "",
			fmt.Errorf("unknown path: no data home for %s", r.identifier))
	}
	return filepath.Join(base, r.identifier), nil
}
