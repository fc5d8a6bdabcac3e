package analysis

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// PhraseMatch lists every place one configured phrase was found.
// Each index list holds the begin token index of every piece followed by
// the exclusive end index of the last piece.
type PhraseMatch struct {
	PhraseName       string   `json:"phrase_name"`
	SubsequenceNames []string `json:"subsequence_names"`
	IndexLists       [][]int  `json:"index_lists"`
}

// Result is everything learned about one input text.
type Result struct {
	OriginalText string `json:"original_text"`

	CleanText      string         `json:"clean_text"`
	Clean2Original []int          `json:"clean2original"`
	Chr2Drop       map[string]int `json:"chr2drop"`

	Tokens      []string `json:"tokens"`
	Token2Clean []Span   `json:"token2clean"`

	PhraseMatches []PhraseMatch `json:"phrase_matches"`

	descs []Category
}

// Prepare runs preprocessing and tokenization, leaving PhraseMatches empty.
func Prepare(text string, opts Options) (*Result, error) {
	if n := utf8.RuneCountInString(text); n > TextMaxLen {
		return nil, fmt.Errorf("%w: %d code points, max %d", ErrTextTooLong, n, TextMaxLen)
	}
	original := []rune(text)
	clean, c2o, dropped := preprocess(original, opts)
	spans := tokenize(clean)
	tokens := NewNormalizer().Tokens(clean, spans)

	drops := make(map[string]int, len(dropped))
	for r, n := range dropped {
		drops[string(r)] = n
	}
	return &Result{
		OriginalText:   text,
		CleanText:      string(clean),
		Clean2Original: c2o,
		Chr2Drop:       drops,
		Tokens:         tokens,
		Token2Clean:    spans,
		PhraseMatches:  []PhraseMatch{},
		descs:          Describe(tokens),
	}, nil
}

// Descriptions returns the category of every token.
func (r *Result) Descriptions() []Category { return r.descs }

// HasMatches reports whether any phrase matched.
func (r *Result) HasMatches() bool { return len(r.PhraseMatches) > 0 }

// OriginalSpan maps a token to its code point range in the original text.
func (r *Result) OriginalSpan(token int) Span {
	sp := r.Token2Clean[token]
	begin := r.Clean2Original[sp.Begin]
	end := r.Clean2Original[sp.End-1] + 1
	return Span{Begin: begin, End: end}
}

func (r *Result) JSON() ([]byte, error) {
	return json.Marshal(r)
}
