// Package ngram implements the ordinal n-gram encoding of protein sequences
package ngram

import "strings"

import "github.com/pkg/errors"

import "github.com/neurlang/enzyme/datasets"

// AminoAcids is the default alphabet of the twenty standard amino acids.
const AminoAcids = "ACDEFGHIKLMNPQRSTVWY"

// Encoding carries the values derived while encoding a dataset. They are
// returned to the caller instead of being written back into configuration.
type Encoding struct {
	Alphabet string `json:"alphabet"`
	N        int    `json:"ngram"`
	MaxLen   int    `json:"max_len"`  // longest kept sequence, the padded length
	Features int    `json:"features"` // number of distinct codes including padding 0
}

// Encoder maps n-grams over an alphabet to codes 1..len(alphabet)^n.
type Encoder struct {
	alphabet string
	n        int
	letter   [256]int16
}

// NewEncoder creates an encoder for n-grams of the alphabet.
func NewEncoder(alphabet string, n int) (*Encoder, error) {
	if n <= 0 {
		return nil, errors.Errorf("ngram must be positive, got %d", n)
	}
	if alphabet == "" {
		alphabet = AminoAcids
	}
	alphabet = strings.ToUpper(alphabet)
	e := &Encoder{alphabet: alphabet, n: n}
	for i := range e.letter {
		e.letter[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		if e.letter[alphabet[i]] >= 0 {
			return nil, errors.Errorf("letter %q repeats in alphabet", alphabet[i])
		}
		e.letter[alphabet[i]] = int16(i)
	}
	features := 1
	for i := 0; i < n; i++ {
		features *= len(alphabet)
		if features > 1<<31 {
			return nil, errors.Errorf("%d-grams over %d letters overflow the code space", n, len(alphabet))
		}
	}
	return e, nil
}

// Features returns the number of codes including the padding code 0.
func (e *Encoder) Features() int {
	features := 1
	for i := 0; i < e.n; i++ {
		features *= len(e.alphabet)
	}
	return features + 1
}

// N returns the n-gram size.
func (e *Encoder) N() int {
	return e.n
}

// Alphabet returns the encoder alphabet.
func (e *Encoder) Alphabet() string {
	return e.alphabet
}

// Encode returns one code per n-gram window. Windows holding a letter outside the alphabet encode as 0.
func (e *Encoder) Encode(seq string) []uint32 {
	if len(seq) < e.n {
		return nil
	}
	out := make([]uint32, 0, len(seq)-e.n+1)
	for i := 0; i+e.n <= len(seq); i++ {
		var code uint32
		var known = true
		for j := 0; j < e.n; j++ {
			c := seq[i+j]
			if 'a' <= c && c <= 'z' {
				c -= 'a' - 'A'
			}
			l := e.letter[c]
			if l < 0 {
				known = false
				break
			}
			code = code*uint32(len(e.alphabet)) + uint32(l)
		}
		if known {
			out = append(out, code+1)
		} else {
			out = append(out, 0)
		}
	}
	return out
}

// Pad fits codes to exactly maxlen entries. Longer inputs keep their last
// maxlen codes. Shorter inputs are padded with zeros in front, or at the end when post is set.
func Pad(codes []uint32, maxlen int, post bool) datasets.Input {
	out := make(datasets.Input, maxlen)
	if len(codes) > maxlen {
		codes = codes[len(codes)-maxlen:]
	}
	if post {
		copy(out, codes)
	} else {
		copy(out[maxlen-len(codes):], codes)
	}
	return out
}
