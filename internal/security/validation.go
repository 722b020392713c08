package security

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// ValidAppIDRegex follows the flatpak application id rules: at least three
	// dot separated elements, none starting with a digit
	ValidAppIDRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*(\.[A-Za-z_][A-Za-z0-9_-]*){2,}$`)

	// ValidArchRegex matches architecture names such as x86_64 or aarch64
	ValidArchRegex = regexp.MustCompile(`^[a-z0-9_]+$`)

	// ValidBranchRegex matches branch names such as stable, beta or 23.08
	ValidBranchRegex = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9._-]*$`)
)

// MaxAppIDLength is the longest application id flatpak accepts
const MaxAppIDLength = 255

// ValidateAppID validates an application id before it is used in commands
// or filesystem paths
func ValidateAppID(id string) error {
	if id == "" {
		return fmt.Errorf("application id cannot be empty")
	}

	if len(id) > MaxAppIDLength {
		return fmt.Errorf("application id too long (max %d characters)", MaxAppIDLength)
	}

	if !ValidAppIDRegex.MatchString(id) {
		return fmt.Errorf("invalid application id %q: expected reverse-DNS form like org.example.App", id)
	}

	return nil
}

// ValidateArch validates an architecture name. Empty means "any".
func ValidateArch(arch string) error {
	if arch == "" {
		return nil
	}
	if !ValidArchRegex.MatchString(arch) {
		return fmt.Errorf("invalid architecture %q", arch)
	}
	return nil
}

// ValidateBranch validates a branch name. Empty means "any".
func ValidateBranch(branch string) error {
	if branch == "" {
		return nil
	}
	if len(branch) > MaxAppIDLength {
		return fmt.Errorf("branch too long (max %d characters)", MaxAppIDLength)
	}
	if !ValidBranchRegex.MatchString(branch) || strings.Contains(branch, "..") {
		return fmt.Errorf("invalid branch %q", branch)
	}
	return nil
}

// ValidateRef validates every part of an installed ref
func ValidateRef(id, arch, branch string) error {
	if err := ValidateAppID(id); err != nil {
		return err
	}
	if err := ValidateArch(arch); err != nil {
		return err
	}
	return ValidateBranch(branch)
}

// IsPathWithinDirectory checks if a target path is within a given base directory
// Parameters:
//   - targetPath: the file/directory path to check (e.g., "/home/user/.local/share/flatpak/app/org.example.App")
//   - basePath: the base directory to check against (e.g., "/home/user/.local/share/flatpak")
//
// Returns:
//   - bool: true if targetPath is within basePath
//   - error: non-nil if paths cannot be resolved or if relative paths are used
func IsPathWithinDirectory(targetPath, basePath string) (bool, error) {
	if !filepath.IsAbs(targetPath) {
		return false, fmt.Errorf("target path must be absolute, got relative path: %s", targetPath)
	}
	if !filepath.IsAbs(basePath) {
		return false, fmt.Errorf("base path must be absolute, got relative path: %s", basePath)
	}

	cleanBase := filepath.Clean(basePath)
	cleanTarget := filepath.Clean(targetPath)

	rel, err := filepath.Rel(cleanBase, cleanTarget)
	if err != nil {
		return false, fmt.Errorf("failed to compute relative path: %w", err)
	}

	// Se rel começa com "..", o target está fora do base
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false, nil
	}

	return true, nil
}
