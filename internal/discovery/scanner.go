package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SuiteSuffix is the file name suffix of suite files
const SuiteSuffix = ".vmx.yaml"

// Scanner scans for suite files in a directory
type Scanner struct {
	skipDirs map[string]bool
}

// NewScanner creates a new Scanner with the given directories to skip
func NewScanner(skipDirs []string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{skipDirs: skipMap}
}

// Scan finds all suite files in the given root directory, in lexical order.
// A root that is itself a suite file is returned as is.
func (s *Scanner) Scan(root string) ([]string, error) {
	var suites []string

	// Clean and validate the root path
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("suite path does not exist: %s", root)
	}
	if !info.IsDir() {
		if strings.HasSuffix(info.Name(), SuiteSuffix) {
			return []string{root}, nil
		}
		return nil, fmt.Errorf("suite path is neither a directory nor a suite file: %s", root)
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			// Skip hidden directories (starting with .)
			if strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}

			if s.skipDirs[name] {
				return filepath.SkipDir
			}

			return nil
		}

		if strings.HasSuffix(d.Name(), SuiteSuffix) {
			suites = append(suites, path)
		}

		return nil
	})

	sort.Strings(suites)
	return suites, err
}
