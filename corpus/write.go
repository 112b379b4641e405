package corpus

import (
	"os"
	"path/filepath"

	"github.com/jamesainslie/go-adapt/tree"
)

// Write serializes bank to path, one canonical bracketed tree per line.
// The data goes to a temporary file beside path that is renamed into place
// only after every tree was written and flushed, so a failed write never
// leaves a partial file at path.
func Write(bank *tree.Treebank, path string) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	if err = tree.Write(f, bank); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err = f.Chmod(0o644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err = f.Sync(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err = f.Close(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err = os.Rename(tmp, path); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// ConfirmSize reloads path and checks it holds exactly expected trees.
func ConfirmSize(path string, expected int, opts ...Option) error {
	bank, err := Load(path, opts...)
	if err != nil {
		return err
	}
	if bank.Len() != expected {
		return &SizeMismatchError{Path: path, Expected: expected, Actual: bank.Len()}
	}
	return nil
}

// WriteConfirmed writes bank to path and confirms the reloaded size.
func WriteConfirmed(bank *tree.Treebank, path string, opts ...Option) error {
	if err := Write(bank, path); err != nil {
		return err
	}
	return ConfirmSize(path, bank.Len(), opts...)
}
