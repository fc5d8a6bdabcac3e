package analysis

import (
	"fmt"
	"unicode"
)

// Category is a set of token classes that a <category> atom can require.
type Category uint8

const (
	CategoryNumber Category = 1 << iota
	CategoryWord
	CategoryPunct

	CategoryAny = CategoryNumber | CategoryWord | CategoryPunct
)

var categoryNames = map[string]Category{
	"number": CategoryNumber,
	"word":   CategoryWord,
	"punct":  CategoryPunct,
	"any":    CategoryAny,
}

// ParseCategory resolves the name inside a <category> atom.
func ParseCategory(name string) (Category, error) {
	c, ok := categoryNames[name]
	if !ok {
		return 0, fmt.Errorf("unknown token category %q", name)
	}
	return c, nil
}

func (c Category) String() string {
	for name, v := range categoryNames {
		if v == c {
			return name
		}
	}
	return fmt.Sprintf("category(%d)", uint8(c))
}

// Describe classifies each token. Every token gets exactly one class.
func Describe(tokens []string) []Category {
	out := make([]Category, len(tokens))
	for i, t := range tokens {
		out[i] = describe(t)
	}
	return out
}

func describe(tok string) Category {
	digits, letters, other := 0, 0, 0
	for _, r := range tok {
		switch {
		case unicode.IsDigit(r):
			digits++
		case unicode.IsLetter(r) || unicode.IsMark(r) || isApostrophe(r):
			letters++
		default:
			other++
		}
	}
	switch {
	case other > 0 || len(tok) == 0:
		return CategoryPunct
	case letters == 0:
		return CategoryNumber
	default:
		return CategoryWord
	}
}

// Accepts reports whether a token described by desc satisfies c.
func (c Category) Accepts(desc Category) bool {
	return c&desc != 0
}
