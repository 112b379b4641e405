package pcfg

import (
	"errors"
	"fmt"
	"math"
	"os"

	"google.golang.org/protobuf/encoding/protowire"

	adapt "github.com/jamesainslie/go-adapt"
)

// Field numbers of the serialized grammar.
const (
	fieldConfig     protowire.Number = 1
	fieldSymbols    protowire.Number = 2
	fieldBinary     protowire.Number = 3
	fieldUnary      protowire.Number = 4
	fieldLexicon    protowire.Number = 5
	fieldSignatures protowire.Number = 6
	fieldRoot       protowire.Number = 7
)

// Field numbers of the nested config message.
const (
	configParentAnnotation protowire.Number = 1
	configHorizontalMarkov protowire.Number = 2
	configUnknownThreshold protowire.Number = 3
	configMaxLength        protowire.Number = 4
	configSmoothing        protowire.Number = 5
)

// MarshalBinary encodes the grammar counts in protobuf wire format.
func (g *Grammar) MarshalBinary() ([]byte, error) {
	var b []byte

	b = protowire.AppendTag(b, fieldConfig, protowire.BytesType)
	b = protowire.AppendBytes(b, marshalConfig(g.config))

	for _, s := range g.symbols {
		b = protowire.AppendTag(b, fieldSymbols, protowire.BytesType)
		b = protowire.AppendString(b, s)
	}
	for _, r := range g.binary {
		b = protowire.AppendTag(b, fieldBinary, protowire.BytesType)
		b = protowire.AppendBytes(b, appendVarints(nil, r.parent, r.left, r.right, r.count))
	}
	for _, r := range g.unary {
		b = protowire.AppendTag(b, fieldUnary, protowire.BytesType)
		b = protowire.AppendBytes(b, appendVarints(nil, r.parent, r.child, r.count))
	}
	for _, e := range g.lexicon {
		b = protowire.AppendTag(b, fieldLexicon, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalEmission(e))
	}
	for _, e := range g.signatures {
		b = protowire.AppendTag(b, fieldSignatures, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalEmission(e))
	}

	b = protowire.AppendTag(b, fieldRoot, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(g.root))
	return b, nil
}

func marshalConfig(c adapt.TrainingConfig) []byte {
	var b []byte
	b = protowire.AppendTag(b, configParentAnnotation, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeBool(c.ParentAnnotation))
	b = protowire.AppendTag(b, configHorizontalMarkov, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(c.HorizontalMarkov)))
	b = protowire.AppendTag(b, configUnknownThreshold, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(c.UnknownThreshold))
	b = protowire.AppendTag(b, configMaxLength, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(c.MaxSentenceLength))
	b = protowire.AppendTag(b, configSmoothing, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(c.Smoothing))
	return b
}

// appendVarints writes values as fields 1, 2, 3, ...
func appendVarints(b []byte, values ...int) []byte {
	for i, v := range values {
		b = protowire.AppendTag(b, protowire.Number(i+1), protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(v))
	}
	return b
}

func marshalEmission(e emission) []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(e.tag))
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendString(b, e.word)
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(e.count))
	return b
}

// UnmarshalGrammar decodes a grammar written by MarshalBinary.
func UnmarshalGrammar(data []byte) (*Grammar, error) {
	g := &Grammar{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, v []byte, x uint64) error {
		switch {
		case num == fieldConfig && typ == protowire.BytesType:
			c, err := unmarshalConfig(v)
			if err != nil {
				return err
			}
			g.config = c
		case num == fieldSymbols && typ == protowire.BytesType:
			g.symbols = append(g.symbols, string(v))
		case num == fieldBinary && typ == protowire.BytesType:
			f, err := readVarints(v, 4)
			if err != nil {
				return err
			}
			g.binary = append(g.binary, binaryCount{parent: f[0], left: f[1], right: f[2], count: f[3]})
		case num == fieldUnary && typ == protowire.BytesType:
			f, err := readVarints(v, 3)
			if err != nil {
				return err
			}
			g.unary = append(g.unary, unaryCount{parent: f[0], child: f[1], count: f[2]})
		case num == fieldLexicon && typ == protowire.BytesType:
			e, err := unmarshalEmission(v)
			if err != nil {
				return err
			}
			g.lexicon = append(g.lexicon, e)
		case num == fieldSignatures && typ == protowire.BytesType:
			e, err := unmarshalEmission(v)
			if err != nil {
				return err
			}
			g.signatures = append(g.signatures, e)
		case num == fieldRoot && typ == protowire.VarintType:
			g.root = int(x)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}
	if len(g.symbols) == 0 {
		return nil, fmt.Errorf("%w: no symbols", ErrInvalidModel)
	}
	if err := g.checkCounts(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}
	if err := g.compile(); err != nil {
		return nil, err
	}
	return g, nil
}

// walkFields calls fn for every field of a message. Bytes fields are passed
// in v, varint and fixed64 fields in x.
func walkFields(b []byte, fn func(num protowire.Number, typ protowire.Type, v []byte, x uint64) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		var (
			v []byte
			x uint64
		)
		switch typ {
		case protowire.BytesType:
			v, n = protowire.ConsumeBytes(b)
		case protowire.VarintType:
			x, n = protowire.ConsumeVarint(b)
		case protowire.Fixed64Type:
			x, n = protowire.ConsumeFixed64(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		if err := fn(num, typ, v, x); err != nil {
			return err
		}
	}
	return nil
}

func unmarshalConfig(b []byte) (adapt.TrainingConfig, error) {
	var c adapt.TrainingConfig
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, _ []byte, x uint64) error {
		switch {
		case num == configParentAnnotation && typ == protowire.VarintType:
			c.ParentAnnotation = protowire.DecodeBool(x)
		case num == configHorizontalMarkov && typ == protowire.VarintType:
			c.HorizontalMarkov = int(protowire.DecodeZigZag(x))
		case num == configUnknownThreshold && typ == protowire.VarintType:
			c.UnknownThreshold = int(x)
		case num == configMaxLength && typ == protowire.VarintType:
			c.MaxSentenceLength = int(x)
		case num == configSmoothing && typ == protowire.Fixed64Type:
			c.Smoothing = math.Float64frombits(x)
		}
		return nil
	})
	return c, err
}

// readVarints reads fields 1..n of a message of varints.
func readVarints(b []byte, n int) ([]int, error) {
	out := make([]int, n)
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, _ []byte, x uint64) error {
		if typ == protowire.VarintType && num >= 1 && int(num) <= n {
			out[num-1] = int(x)
		}
		return nil
	})
	return out, err
}

func unmarshalEmission(b []byte) (emission, error) {
	var e emission
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, v []byte, x uint64) error {
		switch {
		case num == 1 && typ == protowire.VarintType:
			e.tag = int(x)
		case num == 2 && typ == protowire.BytesType:
			e.word = string(v)
		case num == 3 && typ == protowire.VarintType:
			e.count = int(x)
		}
		return nil
	})
	return e, err
}

// checkCounts rejects symbol ids outside the table and non-positive counts.
func (g *Grammar) checkCounts() error {
	n := len(g.symbols)
	in := func(ids ...int) bool {
		for _, id := range ids {
			if id < 0 || id >= n {
				return false
			}
		}
		return true
	}
	if !in(g.root) {
		return fmt.Errorf("root symbol %d out of range", g.root)
	}
	for _, r := range g.binary {
		if !in(r.parent, r.left, r.right) || r.count <= 0 {
			return fmt.Errorf("bad binary rule %+v", r)
		}
	}
	for _, r := range g.unary {
		if !in(r.parent, r.child) || r.count <= 0 {
			return fmt.Errorf("bad unary rule %+v", r)
		}
	}
	for _, e := range append(append([]emission(nil), g.lexicon...), g.signatures...) {
		if !in(e.tag) || e.count <= 0 {
			return fmt.Errorf("bad emission %+v", e)
		}
	}
	return nil
}

// Save writes the grammar to path.
func (g *Grammar) Save(path string) error {
	data, err := g.MarshalBinary()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing model: %w", err)
	}
	return nil
}

// LoadGrammar reads a grammar written by Save.
func LoadGrammar(path string) (*Grammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, path)
		}
		return nil, fmt.Errorf("reading model: %w", err)
	}
	return UnmarshalGrammar(data)
}
