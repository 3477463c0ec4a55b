package tasks

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	hderrors "github.com/alexisbeaulieu97/hardhatdesk/pkg/errors"
)

// ModulesDir holds the project's Ignition deployment modules.
var ModulesDir = filepath.Join("ignition", "modules")

// ModuleExts are the recognised deployment module extensions.
var ModuleExts = []string{".js", ".ts"}

// FindDeployModule returns the project-relative path of the first deployment
// module in ModulesDir, in filename order.
func FindDeployModule(dir string) (string, error) {
	entries, err := os.ReadDir(filepath.Join(dir, ModulesDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", hderrors.NewPreconditionError("deployment modules", fmt.Sprintf("no %s directory in %s", ModulesDir, dir))
		}
		return "", hderrors.NewPreconditionError("deployment modules", fmt.Sprintf("cannot read %s: %v", ModulesDir, err))
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if isModule(entry.Name()) {
			return filepath.Join(ModulesDir, entry.Name()), nil
		}
	}
	return "", hderrors.NewPreconditionError("deployment modules",
		fmt.Sprintf("no deployment module (%s) in %s", strings.Join(ModuleExts, ", "), ModulesDir))
}

func isModule(name string) bool {
	ext := filepath.Ext(name)
	for _, want := range ModuleExts {
		if ext == want {
			return true
		}
	}
	return false
}
