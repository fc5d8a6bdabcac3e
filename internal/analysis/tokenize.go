package analysis

import (
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Span is a half-open range [Begin, End) of clean text code points.
type Span struct {
	Begin int `json:"begin"`
	End   int `json:"end"`
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

func isApostrophe(r rune) bool { return r == '\'' || r == '’' }

// tokenize splits clean text into word runs and single punctuation runes.
// An apostrophe between two word runes stays inside the word ("don't").
func tokenize(clean []rune) []Span {
	var spans []Span
	for i := 0; i < len(clean); {
		r := clean[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case isWordRune(r):
			j := i + 1
			for j < len(clean) {
				if isWordRune(clean[j]) {
					j++
					continue
				}
				if isApostrophe(clean[j]) && j+1 < len(clean) && isWordRune(clean[j+1]) {
					j += 2
					continue
				}
				break
			}
			spans = append(spans, Span{Begin: i, End: j})
			i = j
		default:
			spans = append(spans, Span{Begin: i, End: i + 1})
			i++
		}
	}
	return spans
}

// Normalizer rewrites raw token text into the form phrase configs are
// written against: lowercased, then PTB-escaped.
type Normalizer struct {
	lower cases.Caser
}

// NewNormalizer returns a Normalizer. It is not safe for concurrent use.
func NewNormalizer() *Normalizer {
	return &Normalizer{lower: cases.Lower(language.Und)}
}

func (n *Normalizer) Token(raw string) string {
	return PTBEscape(n.lower.String(raw))
}

func (n *Normalizer) Tokens(clean []rune, spans []Span) []string {
	out := make([]string, len(spans))
	for i, sp := range spans {
		out[i] = n.Token(string(clean[sp.Begin:sp.End]))
	}
	return out
}

// Tokenize splits and normalizes a fragment the way Prepare does for input
// text, without entity replacement or destuttering.
func Tokenize(text string) []string {
	clean := []rune(norm.NFKC.String(text))
	return NewNormalizer().Tokens(clean, tokenize(clean))
}
