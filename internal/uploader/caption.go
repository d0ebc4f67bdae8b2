package uploader

import (
	"path/filepath"
	"regexp"
	"strings"
)

var hashtagClean = regexp.MustCompile(`[^A-Za-z0-9_]`)

// noFolderTag is the hashtag used for files sitting directly in the
// download root.
const noFolderTag = "#SemPasta"

// SanitizeHashtag turns an arbitrary folder name into a Telegram-safe
// hashtag. Spaces become underscores, everything else outside
// [A-Za-z0-9_] is dropped; an empty result falls back to the no-folder
// tag.
func SanitizeHashtag(name string) string {
	cleaned := strings.ReplaceAll(name, " ", "_")
	cleaned = hashtagClean.ReplaceAllString(cleaned, "")
	if cleaned == "" {
		return noFolderTag
	}
	return "#" + cleaned
}

// Caption renders the caption template for a file under root. {folder_tag}
// is the file's parent directory as a hashtag, {filename} the name without
// extension.
func Caption(template, root, path string) string {
	folderTag := noFolderTag
	if parent := filepath.Dir(path); parent != filepath.Clean(root) {
		folderTag = SanitizeHashtag(filepath.Base(parent))
	}

	name := filepath.Base(path)
	stem := strings.TrimSuffix(name, filepath.Ext(name))

	caption := strings.ReplaceAll(template, "{folder_tag}", folderTag)
	caption = strings.ReplaceAll(caption, "{filename}", stem)
	return strings.TrimSpace(caption)
}
