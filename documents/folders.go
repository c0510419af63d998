package documents

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"contractimport/importer"
)

// FolderIndex maps base contract numbers to document folders. It is built
// once per run from the immediate subdirectories of the document root.
type FolderIndex struct {
	root     string
	byNumber map[string]string
}

// ScanFolders lists the document root. A folder matches the contract whose
// number is the folder name's leading numeric prefix ("390 sugar" -> 390).
// An empty or missing root yields an empty index.
func ScanFolders(root string) (*FolderIndex, error) {
	ix := &FolderIndex{root: root, byNumber: make(map[string]string)}
	if root == "" {
		return ix, nil
	}
	logger := slog.Default().With("component", "document_folders")

	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("Document root does not exist", "root", root)
			return ix, nil
		}
		return nil, fmt.Errorf("failed to list document root %s: %w", root, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		number := folderNumber(name)
		if number == "" {
			continue
		}
		if existing, dup := ix.byNumber[number]; dup {
			logger.Warn("Several folders share a contract number, keeping the first",
				"number", number, "kept", filepath.Base(existing), "ignored", name)
			continue
		}
		ix.byNumber[number] = filepath.Join(root, name)
	}

	logger.Info("Scanned document folders", "root", root, "folders", len(names), "indexed", len(ix.byNumber))
	return ix, nil
}

// Match implements importer.FolderMatcher.
func (ix *FolderIndex) Match(baseNumber string) (string, bool) {
	if ix == nil {
		return "", false
	}
	path, ok := ix.byNumber[baseNumber]
	return path, ok
}

// Len returns the number of indexed folders.
func (ix *FolderIndex) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.byNumber)
}

// folderNumber returns the leading digits of a folder name, "" if none.
func folderNumber(name string) string {
	s := importer.NormalizeDigits(name)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}
