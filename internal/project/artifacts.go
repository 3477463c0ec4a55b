package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Project layout names.
const (
	ContractsDir = "contracts"
	ArtifactsDir = "artifacts"
	SourceExt    = ".sol"
	artifactExt  = ".json"
	debugInfoExt = ".dbg.json"
)

// Contract describes one source file under contracts/ and whether the
// toolchain has produced an artifact for it.
type Contract struct {
	Name       string `json:"name"`
	SourcePath string `json:"source_path"`
	IsCompiled bool   `json:"is_compiled"`
	SizeBytes  *int64 `json:"size_bytes,omitempty"`
}

// ListContracts enumerates contracts/ (non-recursively) in filename order.
// A project without a contracts/ directory has no contracts; that is not an error.
func ListContracts(dir string) ([]Contract, error) {
	entries, err := os.ReadDir(filepath.Join(dir, ContractsDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Contract{}, nil
		}
		return nil, fmt.Errorf("read contracts directory: %w", err)
	}

	contracts := make([]Contract, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != SourceExt {
			continue
		}

		file := entry.Name()
		stem := strings.TrimSuffix(file, SourceExt)
		c := Contract{
			Name:       stem,
			SourcePath: filepath.Join(dir, ContractsDir, file),
			IsCompiled: IsCompiled(dir, file),
		}
		if info, err := entry.Info(); err == nil {
			size := info.Size()
			c.SizeBytes = &size
		}
		contracts = append(contracts, c)
	}
	return contracts, nil
}

// ArtifactPaths returns the artifact and debug-info paths the toolchain writes
// for a given source filename.
func ArtifactPaths(dir, sourceFile string) (artifact, debugInfo string) {
	stem := strings.TrimSuffix(sourceFile, filepath.Ext(sourceFile))
	base := filepath.Join(dir, ArtifactsDir, ContractsDir, sourceFile)
	return filepath.Join(base, stem+artifactExt), filepath.Join(base, stem+debugInfoExt)
}

// IsCompiled reports whether either artifact file exists for sourceFile.
func IsCompiled(dir, sourceFile string) bool {
	artifact, debugInfo := ArtifactPaths(dir, sourceFile)
	for _, p := range []string{artifact, debugInfo} {
		if _, err := os.Stat(p); err == nil {
			return true
		}
	}
	return false
}
