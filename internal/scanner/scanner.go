// Package scanner walks a project tree and classifies the recipe-related
// files the directive resolver needs to know about.
package scanner

import (
	"io/fs"
	"log"
	"path/filepath"
	"strings"

	"github.com/ScorpionBytes/vscode-bitbake/internal/store"
)

// Scan walks the subtree under root and returns every class, include,
// configuration and recipe file found. Dot-directories are skipped
// entirely.
func Scan(root string) []store.File {
	var files []store.File

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Println("scanner: walk error:", err)
			return nil
		}
		if d.IsDir() {
			if name := d.Name(); len(name) > 1 && strings.HasPrefix(name, ".") {
				return fs.SkipDir
			}
			return nil
		}

		kind, ok := Classify(path)
		if !ok {
			return nil
		}
		files = append(files, store.File{
			Name: DirectiveName(root, path, kind),
			Kind: kind,
			Path: path,
		})
		return nil
	})
	if err != nil {
		log.Println("scanner: WalkDir finished with error:", err)
	}
	return files
}

// Classify maps a file path onto its index kind by extension.
func Classify(path string) (store.FileKind, bool) {
	switch filepath.Ext(path) {
	case ".bbclass":
		return store.FileClass, true
	case ".inc":
		return store.FileInclude, true
	case ".conf":
		return store.FileConf, true
	case ".bb", ".bbappend":
		return store.FileRecipe, true
	default:
		return "", false
	}
}

// DirectiveName computes the name a directive uses to address the file:
// the bare base name for classes, the root-relative path otherwise.
func DirectiveName(root, path string, kind store.FileKind) string {
	if kind == store.FileClass {
		return strings.TrimSuffix(filepath.Base(path), ".bbclass")
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}
