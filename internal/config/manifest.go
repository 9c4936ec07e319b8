package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// manifestExcludes from language-specific project manifests (Cargo.toml,
// pyproject.toml) so the File Discoverer can skip their declared build
// output directories without the caller having to list them explicitly.
// Adapted from the teacher's build-artifact detector, trimmed to the two
// manifest formats that carry a structured `[build]`-ish table via TOML.
func manifestExcludes(projectRoot string) []string {
	var patterns []string

	if dirs := cargoTargetDirs(projectRoot); len(dirs) > 0 {
		patterns = append(patterns, dirs...)
	}
	if dirs := pyprojectBuildDirs(projectRoot); len(dirs) > 0 {
		patterns = append(patterns, dirs...)
	}
	return patterns
}

func cargoTargetDirs(projectRoot string) []string {
	data, err := os.ReadFile(filepath.Join(projectRoot, "Cargo.toml"))
	if err != nil {
		return nil
	}
	var manifest struct {
		Build struct {
			TargetDir string `toml:"target-dir"`
		} `toml:"build"`
	}
	if toml.Unmarshal(data, &manifest) != nil {
		return []string{"**/target/**"}
	}
	if manifest.Build.TargetDir != "" {
		return []string{"**/" + manifest.Build.TargetDir + "/**"}
	}
	return []string{"**/target/**"}
}

func pyprojectBuildDirs(projectRoot string) []string {
	data, err := os.ReadFile(filepath.Join(projectRoot, "pyproject.toml"))
	if err != nil {
		return nil
	}
	var manifest struct {
		Tool struct {
			Setuptools struct {
				BuildDir string `toml:"build-dir"`
			} `toml:"setuptools"`
		} `toml:"tool"`
	}
	if toml.Unmarshal(data, &manifest) != nil {
		return []string{"**/build/**", "**/dist/**"}
	}
	patterns := []string{"**/build/**", "**/dist/**"}
	if manifest.Tool.Setuptools.BuildDir != "" {
		patterns = append(patterns, "**/"+manifest.Tool.Setuptools.BuildDir+"/**")
	}
	return patterns
}

// DetectManifestExcludes is the exported entry point used by the File
// Discoverer to add manifest-derived ignore patterns to its exclude globs,
// alongside Config.Exclude; Config itself is not modified.
func DetectManifestExcludes(projectRoot string) []string {
	return manifestExcludes(projectRoot)
}
