// Package systemprompt carries the gateway's reasoning prompt compiled
// into the binary. Multiple .txt files may be embedded; they are joined
// in lexical order so extensions can be dropped in alongside the base
// prompt without code changes.
package systemprompt

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.txt
var promptFiles embed.FS

// Load returns the full system prompt, concatenated from every embedded
// .txt file in lexical order.
func Load() (string, error) {
	var names []string
	err := fs.WalkDir(promptFiles, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".txt") {
			names = append(names, path)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to read embedded system prompt files: %w", err)
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no system prompt files found in embedded set")
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		data, err := promptFiles.ReadFile(name)
		if err != nil {
			return "", fmt.Errorf("failed to read system prompt file %q: %w", name, err)
		}
		parts = append(parts, strings.TrimRight(string(data), "\n"))
	}
	return strings.Join(parts, "\n\n") + "\n", nil
}
