// Package security keeps files written by a run inside the results directory.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrPathEscape indicates the resolved path would escape the results directory.
	ErrPathEscape = errors.New("path escapes base directory")

	// ErrInvalidRunID is returned for run identifiers that are not UUIDs.
	ErrInvalidRunID = errors.New("invalid run ID")
)

// ResolveWithin joins elems under base and rejects any result outside base.
// The returned path is absolute.
func ResolveWithin(base string, elems ...string) (string, error) {
	if base == "" {
		return "", errors.New("base directory is required")
	}

	root, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("resolve base path: %w", err)
	}

	target := filepath.Join(append([]string{root}, elems...)...)

	rel, err := filepath.Rel(root, target)
	if err != nil {
		return "", fmt.Errorf("relativize path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, target)
	}

	return target, nil
}

// RunDir returns <resultsDir>/<runID> for a UUID run identifier.
func RunDir(resultsDir, runID string) (string, error) {
	id, err := uuid.Parse(runID)
	if err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrInvalidRunID, runID, err)
	}
	return ResolveWithin(resultsDir, id.String())
}
