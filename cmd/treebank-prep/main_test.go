package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/go-adapt/corpus"
	"github.com/jamesainslie/go-adapt/internal/cmdutil"
)

// writeGenre writes n one-word trees to root/genre/genre01.mrg.
func writeGenre(t *testing.T, root, genre string, n int) {
	t.Helper()
	dir := filepath.Join(root, genre)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	var b strings.Builder
	for i := range n {
		fmt.Fprintf(&b, "(ROOT (S (NP (NN %s%d)) (VP (VBD ran))))\n", genre, i)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, genre+"01.mrg"), []byte(b.String()), 0o644))
}

func run(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errOut bytes.Buffer
	ui := cmdutil.UI{Out: &out, Err: &errOut}
	code = cmdutil.Main(newApp(ui), append([]string{"treebank-prep", "--log-level", "error"}, args...), &errOut)
	return out.String(), errOut.String(), code
}

func TestSplit(t *testing.T) {
	root := t.TempDir()
	writeGenre(t, root, "ca", 10)
	writeGenre(t, root, "cb", 10)
	prefix := filepath.Join(t.TempDir(), "brown")

	stdout, stderr, code := run(t, "split",
		"--corpus", root,
		"--out-prefix", prefix,
		"--sizes", "5,10,20",
		"--progress=false",
	)
	require.Equal(t, 0, code, stderr)

	for path, size := range map[string]int{
		prefix + "_seed_5.txt":  5,
		prefix + "_seed_10.txt": 10,
		prefix + "_seed_20.txt": 18,
		prefix + "_test.txt":    2,
		prefix + "_train.txt":   18,
	} {
		require.NoError(t, corpus.ConfirmSize(path, size), path)
		if !strings.Contains(stdout, fmt.Sprintf("wrote %s (%d trees)", path, size)) {
			t.Errorf("stdout does not report %s: %q", path, stdout)
		}
	}
	if !strings.Contains(stdout, "genres: ca cb") {
		t.Errorf("stdout does not list genres: %q", stdout)
	}
}

func TestSplit_ExactReportsEveryFailedSize(t *testing.T) {
	root := t.TempDir()
	writeGenre(t, root, "ca", 10)
	prefix := filepath.Join(t.TempDir(), "brown")

	stdout, stderr, code := run(t, "split",
		"--corpus", root,
		"--out-prefix", prefix,
		"--sizes", "5,10,20",
		"--exact",
		"--progress=false",
	)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	for _, size := range []int{10, 20} {
		if !strings.Contains(stdout, fmt.Sprintf("failed seed %d", size)) {
			t.Errorf("stdout does not report size %d: %q", size, stdout)
		}
	}
	if !strings.Contains(stderr, "treebank-prep: 2 of 3 seed sets failed") {
		t.Errorf("stderr = %q", stderr)
	}

	// Test and train sets are still written.
	require.NoError(t, corpus.ConfirmSize(prefix+"_test.txt", 1))
	require.NoError(t, corpus.ConfirmSize(prefix+"_train.txt", 9))
}

func TestSplit_FromConfig(t *testing.T) {
	root := t.TempDir()
	writeGenre(t, root, "ca", 10)
	out := t.TempDir()
	t.Setenv("PREP_TEST_ROOT", root)

	cfg := filepath.Join(t.TempDir(), "experiment.hcl")
	require.NoError(t, os.WriteFile(cfg, []byte(fmt.Sprintf(`
corpus "brown" {
  path           = "${env.PREP_TEST_ROOT}"
  train_fraction = 0.5
}
seeds {
  sizes  = [2, 4]
  prefix = %q
}
`, filepath.Join(out, "cfg"))), 0o644))

	_, stderr, code := run(t, "--config", cfg, "split", "--progress=false")
	require.Equal(t, 0, code, stderr)

	require.NoError(t, corpus.ConfirmSize(filepath.Join(out, "cfg_seed_4.txt"), 4))
	require.NoError(t, corpus.ConfirmSize(filepath.Join(out, "cfg_test.txt"), 5))
}

func TestSplit_MissingPrefix(t *testing.T) {
	root := t.TempDir()
	writeGenre(t, root, "ca", 3)

	_, stderr, code := run(t, "split", "--corpus", root, "--progress=false")
	if code != 1 || !strings.Contains(stderr, "--out-prefix") {
		t.Errorf("code = %d, stderr = %q", code, stderr)
	}
}

func TestPrefix(t *testing.T) {
	root := t.TempDir()
	writeGenre(t, root, "02", 6)
	out := filepath.Join(t.TempDir(), "wsj_4.txt")

	stdout, stderr, code := run(t, "prefix", "--corpus", root, "--size", "4", "--out", out, "--progress=false")
	require.Equal(t, 0, code, stderr)
	require.NoError(t, corpus.ConfirmSize(out, 4))
	if !strings.Contains(stdout, "(4 trees)") {
		t.Errorf("stdout = %q", stdout)
	}

	_, _, code = run(t, "prefix", "--corpus", root, "--size", "10", "--out", out, "--exact", "--progress=false")
	if code != 1 {
		t.Errorf("exact prefix larger than corpus: exit code = %d, want 1", code)
	}
}

func TestConfirm(t *testing.T) {
	root := t.TempDir()
	writeGenre(t, root, "ca", 3)
	file := filepath.Join(root, "ca", "ca01.mrg")

	stdout, stderr, code := run(t, "confirm", "--file", file, "--size", "3")
	require.Equal(t, 0, code, stderr)
	if !strings.HasPrefix(stdout, "ok ") {
		t.Errorf("stdout = %q", stdout)
	}

	_, stderr, code = run(t, "confirm", "--file", file, "--size", "4")
	if code != 1 || !strings.Contains(stderr, "treebank-prep:") {
		t.Errorf("code = %d, stderr = %q", code, stderr)
	}
}

func TestStats(t *testing.T) {
	root := t.TempDir()
	writeGenre(t, root, "ca", 3)
	writeGenre(t, root, "cb", 1)

	stdout, stderr, code := run(t, "stats", "--corpus", root)
	require.Equal(t, 0, code, stderr)

	for _, want := range []string{"ca", "cb", "total", "0-10"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stats output missing %q:\n%s", want, stdout)
		}
	}
	if !strings.Contains(stdout, fmt.Sprintf("%-20s %10d %10d %8.2f %6d", "total", 4, 8, 2.0, 2)) {
		t.Errorf("unexpected total row:\n%s", stdout)
	}
}

func TestStats_NotFound(t *testing.T) {
	_, stderr, code := run(t, "stats", "--corpus", filepath.Join(t.TempDir(), "missing"))
	if code != 1 || !strings.Contains(stderr, "not found") {
		t.Errorf("code = %d, stderr = %q", code, stderr)
	}
}
