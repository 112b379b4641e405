package tree

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

var (
	// ErrSyntax indicates malformed bracketed tree text.
	ErrSyntax = errors.New("tree: malformed bracketed tree")

	// ErrUnwritable indicates a tree whose bracketed form would not read back
	// as the same tree.
	ErrUnwritable = errors.New("tree: tree cannot be written")
)

// SyntaxError reports where in the input a tree failed to parse.
type SyntaxError struct {
	Tree   int   // zero-based ordinal of the tree being read
	Offset int64 // byte offset in the input
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("tree %d at byte %d: %s", e.Tree, e.Offset, e.Msg)
}

// Is matches ErrSyntax.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// Reader reads a sequence of bracketed trees. Trees may span several lines and
// several trees may share a line.
type Reader struct {
	r      *bufio.Reader
	offset int64
	count  int
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Read returns the next tree, or io.EOF when the input holds no more trees.
func (r *Reader) Read() (*Tree, error) {
	if err := r.skipSpace(); err != nil {
		return nil, err
	}
	ch, err := r.next()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}
	if ch != '(' {
		return nil, r.syntax(fmt.Sprintf("expected '(' but found %q", ch))
	}
	t, err := r.node()
	if err != nil {
		return nil, err
	}
	r.count++
	return t, nil
}

// ReadAll reads trees until EOF.
func (r *Reader) ReadAll() ([]*Tree, error) {
	var trees []*Tree
	for {
		t, err := r.Read()
		if err == io.EOF {
			return trees, nil
		}
		if err != nil {
			return trees, err
		}
		trees = append(trees, t)
	}
}

// node parses the remainder of a node whose opening parenthesis was consumed.
// A label must follow the parenthesis directly; "( (S ...))" has an empty label.
func (r *Reader) node() (*Tree, error) {
	var label string
	ch, err := r.peek()
	if err != nil {
		return nil, r.unexpected(err)
	}
	if !isDelim(ch) {
		label, err = r.atom()
		if err != nil {
			return nil, err
		}
	}

	n := &Tree{label: label}
	for {
		if err := r.skipSpace(); err != nil {
			return nil, r.unexpected(err)
		}
		ch, err := r.peek()
		if err != nil {
			return nil, r.unexpected(err)
		}
		switch ch {
		case ')':
			_, _ = r.next()
			return n, nil
		case '(':
			_, _ = r.next()
			child, err := r.node()
			if err != nil {
				return nil, err
			}
			n.children = append(n.children, child)
		default:
			word, err := r.atom()
			if err != nil {
				return nil, err
			}
			n.children = append(n.children, Leaf(word))
		}
	}
}

func (r *Reader) atom() (string, error) {
	var b strings.Builder
	for {
		ch, err := r.peek()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if isDelim(ch) {
			break
		}
		_, _ = r.next()
		b.WriteRune(ch)
	}
	if b.Len() == 0 {
		return "", r.syntax("empty token")
	}
	return b.String(), nil
}

func (r *Reader) skipSpace() error {
	for {
		ch, err := r.peek()
		if err != nil {
			return err
		}
		if !unicode.IsSpace(ch) {
			return nil
		}
		_, _ = r.next()
	}
}

func (r *Reader) next() (rune, error) {
	ch, size, err := r.r.ReadRune()
	if err != nil {
		return 0, err
	}
	if ch == unicode.ReplacementChar && size == 1 {
		return 0, r.syntax("invalid UTF-8")
	}
	r.offset += int64(size)
	return ch, nil
}

func (r *Reader) peek() (rune, error) {
	ch, _, err := r.r.ReadRune()
	if err != nil {
		return 0, err
	}
	if err := r.r.UnreadRune(); err != nil {
		return 0, err
	}
	return ch, nil
}

func (r *Reader) unexpected(err error) error {
	if err == io.EOF {
		return r.syntax("unexpected end of input")
	}
	return err
}

func (r *Reader) syntax(msg string) error {
	return &SyntaxError{Tree: r.count, Offset: r.offset, Msg: msg}
}

func isDelim(ch rune) bool {
	return ch == '(' || ch == ')' || unicode.IsSpace(ch)
}

// Parse parses exactly one tree from s.
func Parse(s string) (*Tree, error) {
	r := NewReader(strings.NewReader(s))
	t, err := r.Read()
	if err == io.EOF {
		return nil, &SyntaxError{Msg: "no tree in input"}
	}
	if err != nil {
		return nil, err
	}
	if _, err := r.Read(); err != io.EOF {
		if err == nil {
			return nil, &SyntaxError{Tree: 1, Offset: r.offset, Msg: "trailing tree"}
		}
		return nil, err
	}
	return t, nil
}

// Write serializes every tree of b to w, one canonical bracketed tree per line.
// Every tree is checked before anything is written: roots must be nodes, words
// must be non-empty and no label may contain whitespace or parentheses.
func Write(w io.Writer, b *Treebank) error {
	for i, t := range b.All() {
		if err := t.check(); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	bw := bufio.NewWriter(w)
	for i, t := range b.All() {
		if _, err := bw.WriteString(t.String()); err != nil {
			return fmt.Errorf("writing tree %d: %w", i, err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing tree %d: %w", i, err)
		}
	}
	return bw.Flush()
}
