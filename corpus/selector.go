package corpus

import (
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

type selectorKind int

const (
	kindAll selectorKind = iota
	kindExtension
	kindSections
	kindGenres
	kindNot
)

// Selector decides which files of a directory belong to a load. It is one of a
// fixed set of variants built by All, Extension, Sections, Genres and Not.
// The zero value accepts every file.
type Selector struct {
	kind   selectorKind
	exts   []string
	lo, hi int
	genres []string
	inner  *Selector
}

var (
	// wsj_0201.mrg: section 02, file 01.
	wsjName = regexp.MustCompile(`^wsj_(\d{2})\d{2}(\.[A-Za-z0-9]+)?$`)

	// cf03.mrg: Brown genre f, file 03.
	brownName = regexp.MustCompile(`^c([a-z])\d{2}(\.[A-Za-z0-9]+)?$`)
)

// All accepts every file.
func All() Selector {
	return Selector{kind: kindAll}
}

// Extension accepts files whose name ends with one of exts.
func Extension(exts ...string) Selector {
	return Selector{kind: kindExtension, exts: slices.Clone(exts)}
}

// Sections accepts WSJ files (wsj_SSNN.mrg) whose section SS lies in [lo, hi].
// Names that do not follow the WSJ pattern are a format error.
func Sections(lo, hi int) Selector {
	return Selector{kind: kindSections, lo: lo, hi: hi}
}

// Genres accepts Brown files (c<g>NN.mrg) whose genre letter is one of codes.
// Names that do not follow the Brown pattern are a format error.
func Genres(codes ...string) Selector {
	g := make([]string, len(codes))
	for i, c := range codes {
		g[i] = strings.ToLower(c)
	}
	slices.Sort(g)
	return Selector{kind: kindGenres, genres: g}
}

// Not accepts exactly the files s rejects. Errors from s pass through.
func Not(s Selector) Selector {
	return Selector{kind: kindNot, inner: &s}
}

// Accept reports whether the file at path belongs to the selection. Only the
// base name is inspected.
func (s Selector) Accept(path string) (bool, error) {
	name := filepath.Base(path)

	switch s.kind {
	case kindAll:
		return true, nil

	case kindExtension:
		for _, ext := range s.exts {
			if strings.HasSuffix(name, ext) {
				return true, nil
			}
		}
		return false, nil

	case kindSections:
		m := wsjName.FindStringSubmatch(name)
		if m == nil {
			return false, fmt.Errorf("%w: %s is not a wsj_SSNN file name", ErrCorpusFormat, path)
		}
		section, _ := strconv.Atoi(m[1])
		return section >= s.lo && section <= s.hi, nil

	case kindGenres:
		m := brownName.FindStringSubmatch(name)
		if m == nil {
			return false, fmt.Errorf("%w: %s is not a c<genre>NN file name", ErrCorpusFormat, path)
		}
		_, found := slices.BinarySearch(s.genres, m[1])
		return found, nil

	case kindNot:
		ok, err := s.inner.Accept(path)
		if err != nil {
			return false, err
		}
		return !ok, nil
	}

	return false, fmt.Errorf("corpus: unknown selector kind %d", s.kind)
}

// String returns the text form understood by ParseSelector.
func (s Selector) String() string {
	switch s.kind {
	case kindExtension:
		return "ext:" + strings.Join(s.exts, ",")
	case kindSections:
		return fmt.Sprintf("sections:%02d-%02d", s.lo, s.hi)
	case kindGenres:
		return "genres:" + strings.Join(s.genres, ",")
	case kindNot:
		return "!" + s.inner.String()
	default:
		return "all"
	}
}

// ParseSelector parses the text form of a selector:
//
//	all
//	ext:.mrg,.txt
//	sections:02-21
//	genres:a,b,f
//	!sections:23-24
func ParseSelector(text string) (Selector, error) {
	text = strings.TrimSpace(text)
	if inner, ok := strings.CutPrefix(text, "!"); ok {
		s, err := ParseSelector(inner)
		if err != nil {
			return Selector{}, err
		}
		return Not(s), nil
	}
	if text == "" || text == "all" {
		return All(), nil
	}

	kind, arg, ok := strings.Cut(text, ":")
	if !ok || arg == "" {
		return Selector{}, fmt.Errorf("corpus: invalid selector %q", text)
	}

	switch kind {
	case "ext":
		return Extension(strings.Split(arg, ",")...), nil
	case "sections":
		loStr, hiStr, ok := strings.Cut(arg, "-")
		if !ok {
			hiStr = loStr
		}
		lo, err := strconv.Atoi(loStr)
		if err != nil {
			return Selector{}, fmt.Errorf("corpus: invalid section range %q: %w", arg, err)
		}
		hi, err := strconv.Atoi(hiStr)
		if err != nil {
			return Selector{}, fmt.Errorf("corpus: invalid section range %q: %w", arg, err)
		}
		if lo > hi {
			return Selector{}, fmt.Errorf("corpus: invalid section range %q: %d > %d", arg, lo, hi)
		}
		return Sections(lo, hi), nil
	case "genres":
		return Genres(strings.Split(arg, ",")...), nil
	}

	return Selector{}, fmt.Errorf("corpus: unknown selector kind %q", kind)
}
