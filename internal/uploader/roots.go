package uploader

import (
	"fmt"
	"os"
	"path/filepath"
)

// candidateRoots lists the download directories to try, in order. The
// configured directory always comes first; the rest cover the places the
// collector may have been launched from.
func candidateRoots(configured string) []string {
	var candidates []string
	if configured != "" {
		candidates = append(candidates, configured)
	}

	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, "download"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, "charbot", "download"))
	}
	candidates = append(candidates, "/root/charbot/download")

	if matches, err := filepath.Glob("/home/*/charbot/download"); err == nil {
		candidates = append(candidates, matches...)
	}
	return candidates
}

// ResolveDownloadRoot picks the first existing candidate directory, or
// creates the first candidate when none exist yet.
func ResolveDownloadRoot(configured string) (string, error) {
	candidates := candidateRoots(configured)

	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, nil
		}
	}

	if len(candidates) == 0 {
		return "", fmt.Errorf("no download directory candidates")
	}
	first := candidates[0]
	if err := os.MkdirAll(first, 0o755); err != nil {
		return "", fmt.Errorf("creating download directory %s: %w", first, err)
	}
	return first, nil
}
