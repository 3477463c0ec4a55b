package project

import (
	"os"
	"path/filepath"
)

// ConfigFiles are the marker files that make a directory a Hardhat project.
var ConfigFiles = []string{"hardhat.config.js", "hardhat.config.ts"}

// Detect reports whether dir directly contains one of ConfigFiles. It does not
// search parent or child directories.
func Detect(dir string) bool {
	for _, name := range ConfigFiles {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}
