// Package merge layers a priority-ordered list of unpacked mod directories
// into a single merged tree, ready to be repacked as a PAK archive. Files
// from mods later in the list win over earlier ones on a path collision,
// matching the avatar merge tool's own reversed-copy-order behavior.
package merge

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ModDir is one mod directory to fold into a merge.
type ModDir struct {
	Path    string
	Enabled bool
}

// Result reports what Plan/Merge did.
type Result struct {
	MergedDir   string
	Warnings    []string
	FilesCopied int
}

// Plan copies every enabled mod directory's contents into destDir (created
// if needed), applying priority from lowest to highest: mods later in mods
// overwrite files that mods earlier in mods already placed at the same
// relative path. Disabled mods are left out; mods whose source directory
// does not exist are skipped with a warning rather than aborting the merge.
func Plan(mods []ModDir, destDir string) (*Result, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("merge: create destination: %w", err)
	}

	result := &Result{MergedDir: destDir}

	enabled := make([]ModDir, 0, len(mods))
	for _, m := range mods {
		if !m.Enabled {
			continue
		}
		enabled = append(enabled, m)
	}

	// Lowest priority first, so later copies in the loop win on collision.
	for _, mod := range enabled {
		info, err := os.Stat(mod.Path)
		if err != nil || !info.IsDir() {
			result.Warnings = append(result.Warnings, fmt.Sprintf("skipping missing mod directory %q", mod.Path))
			continue
		}

		n, err := copyTree(mod.Path, destDir)
		if err != nil {
			return nil, fmt.Errorf("merge: copy %q: %w", mod.Path, err)
		}
		result.FilesCopied += n
	}

	return result, nil
}

// copyTree copies every regular file under src into dst, preserving
// relative paths and overwriting any file already present at the
// destination.
func copyTree(src, dst string) (int, error) {
	count := 0
	err := filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		destPath := filepath.Join(dst, rel)
		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return err
		}
		if err := copyFile(path, destPath); err != nil {
			return err
		}
		count++
		return nil
	})
	return count, err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
