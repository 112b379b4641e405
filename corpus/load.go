// Package corpus loads treebanks from files and directories, routes files
// with selectors, and writes treebanks back out with a round-trip size check.
package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/go-adapt/tree"
)

// Genre is a treebank scoped to one sub-corpus of a genre-structured root.
type Genre struct {
	Name string
	Bank *tree.Treebank
}

// Load reads every tree under path. A file is read whole; a directory is
// walked recursively in lexical order and only files accepted by the selector
// are read. Hidden entries are skipped. Trees keep source order.
func Load(path string, opts ...Option) (*tree.Treebank, error) {
	cfg := newLoadConfig(opts)
	return load(path, cfg)
}

func load(path string, cfg loadConfig) (*tree.Treebank, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrCorpusNotFound, path)
		}
		return nil, fmt.Errorf("checking corpus path: %w", err)
	}

	var files []string
	if info.IsDir() {
		files, err = listFiles(path, cfg.selector)
		if err != nil {
			return nil, err
		}
	} else {
		files = []string{path}
	}

	bank := tree.NewTreebank()
	for i, file := range files {
		trees, err := readFile(file)
		if err != nil {
			return nil, err
		}
		bank.Add(trees...)
		cfg.logger.Debug("read corpus file", "path", file, "trees", len(trees))
		if cfg.progress != nil {
			cfg.progress(i+1, len(files), file)
		}
	}

	cfg.logger.Info("loaded corpus", "path", path, "files", len(files), "size", bank.Len())
	return bank, nil
}

// LoadGenres loads each immediate child of root as one genre, in lexical
// order. Child directories are loaded recursively; child files accepted by
// the selector form single-file genres. A root that is itself a file is
// loaded as the only genre, named after the file.
func LoadGenres(root string, opts ...Option) ([]Genre, error) {
	cfg := newLoadConfig(opts)

	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrCorpusNotFound, root)
		}
		return nil, fmt.Errorf("checking genre root: %w", err)
	}
	if !info.IsDir() {
		bank, err := load(root, cfg)
		if err != nil {
			return nil, err
		}
		return []Genre{{Name: filepath.Base(root), Bank: bank}}, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading genre root: %w", err)
	}

	var genres []Genre
	for _, entry := range entries {
		if hidden(entry.Name()) {
			continue
		}
		path := filepath.Join(root, entry.Name())

		if !entry.IsDir() {
			ok, err := cfg.selector.Accept(path)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}

		bank, err := load(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("loading genre %s: %w", entry.Name(), err)
		}
		genres = append(genres, Genre{Name: entry.Name(), Bank: bank})
	}

	return genres, nil
}

// listFiles walks dir in lexical order and returns the selected regular files.
func listFiles(dir string, sel Selector) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != dir && hidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		ok, err := sel.Accept(path)
		if err != nil {
			return err
		}
		if ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func readFile(path string) ([]*tree.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	trees, err := tree.NewReader(f).ReadAll()
	if err != nil {
		if errors.Is(err, tree.ErrSyntax) {
			return nil, fmt.Errorf("%w: %s: %w", ErrCorpusFormat, path, err)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return trees, nil
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
