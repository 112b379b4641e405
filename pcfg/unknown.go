package pcfg

import (
	"strings"
	"unicode"
)

// suffixes are checked in order; the first match is part of the signature.
var suffixes = []string{"ing", "ion", "ity", "est", "ed", "er", "ly", "al", "s", "y"}

// signature maps a word to an unknown-word class from its shape: case,
// digits, dashes and a common suffix. position is the word's index in the
// sentence, so sentence-initial capitals are told apart from names.
func signature(word string, position int) string {
	var (
		upper, lower, digit, dash bool
		firstUpper                bool
		letters                   int
	)
	for i, r := range word {
		switch {
		case unicode.IsUpper(r):
			upper = true
			if i == 0 {
				firstUpper = true
			}
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case r == '-':
			dash = true
		}
		if unicode.IsLetter(r) {
			letters++
		}
	}

	var b strings.Builder
	b.WriteString("UNK")
	switch {
	case upper && !lower:
		b.WriteString("-AC")
	case firstUpper && position == 0:
		b.WriteString("-INITC")
	case firstUpper:
		b.WriteString("-CAPS")
	case lower:
		b.WriteString("-LC")
	}
	if digit {
		b.WriteString("-NUM")
	}
	if dash {
		b.WriteString("-DASH")
	}
	if letters >= 3 && lower {
		w := strings.ToLower(word)
		for _, s := range suffixes {
			if strings.HasSuffix(w, s) {
				b.WriteString("-")
				b.WriteString(s)
				break
			}
		}
	}
	return b.String()
}
