// Package phrase parses phrase configs and detects configured phrases in
// token streams.
//
// A config holds one phrase. The header names the phrase and its pieces,
// and each piece gets one block of alternatives, separated by dash lines:
//
//	threat_statement = subject aux verb object
//	----------
//	i
//	we
//	----------
//	will
//	am going to
//	----------
//	kill
//	----------
//	you
//	<number>
//
// Alternatives are tokenized like analysis input. An atom written as
// <category> matches any token of that category instead of a literal.
package phrase

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/escherba/phraser/internal/analysis"
)

var identRe = regexp.MustCompile(`^[a-z0-9_]+$`)

// ParseError points at the config line that could not be parsed.
type ParseError struct {
	Source string
	Line   int
	Msg    string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Source, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Msg)
}

// Atom matches one token: a literal when Category is zero, otherwise any
// token the category accepts.
type Atom struct {
	Literal  string
	Category analysis.Category
}

func (a Atom) String() string {
	if a.Category != 0 {
		return "<" + a.Category.String() + ">"
	}
	return a.Literal
}

func (a Atom) matches(tok string, desc analysis.Category) bool {
	if a.Category != 0 {
		return a.Category.Accepts(desc)
	}
	return a.Literal == tok
}

// Alternative is one way of spelling a piece.
type Alternative []Atom

func (alt Alternative) String() string {
	parts := make([]string, len(alt))
	for i, a := range alt {
		parts[i] = a.String()
	}
	return strings.Join(parts, " ")
}

func (alt Alternative) matchesAt(tokens []string, descs []analysis.Category, pos int) bool {
	if pos+len(alt) > len(tokens) {
		return false
	}
	for i, a := range alt {
		if !a.matches(tokens[pos+i], descs[pos+i]) {
			return false
		}
	}
	return true
}

// Phrase is a parsed config: a named sequence of pieces.
type Phrase struct {
	Name       string
	PieceNames []string
	Blocks     [][]Alternative
	Source     string
}

// Info is the dump form of a phrase.
type Info struct {
	Name       string     `json:"phrase_name"`
	PieceNames []string   `json:"subsequence_names"`
	Blocks     [][]string `json:"blocks"`
	Source     string     `json:"source"`
}

func (p *Phrase) Describe() Info {
	blocks := make([][]string, len(p.Blocks))
	for i, b := range p.Blocks {
		blocks[i] = make([]string, len(b))
		for j, alt := range b {
			blocks[i][j] = alt.String()
		}
	}
	return Info{Name: p.Name, PieceNames: p.PieceNames, Blocks: blocks, Source: p.Source}
}

func isSeparator(line string) bool {
	return len(line) >= 3 && strings.Trim(line, "-") == ""
}

// Parse reads one phrase config. source names the config in errors.
func Parse(source, text string) (*Phrase, error) {
	var (
		ph      *Phrase
		block   []Alternative
		inBlock bool
	)
	fail := func(line int, format string, args ...any) error {
		return &ParseError{Source: source, Line: line, Msg: fmt.Sprintf(format, args...)}
	}

	for i, raw := range strings.Split(text, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if ph == nil {
			name, pieces, ok := strings.Cut(line, "=")
			if !ok {
				return nil, fail(lineNo, "expected header \"name = piece ...\", got %q", line)
			}
			name = strings.TrimSpace(name)
			if !identRe.MatchString(name) {
				return nil, fail(lineNo, "invalid phrase name %q", name)
			}
			names := strings.Fields(pieces)
			if len(names) == 0 {
				return nil, fail(lineNo, "phrase %q has no pieces", name)
			}
			for _, n := range names {
				if !identRe.MatchString(n) {
					return nil, fail(lineNo, "invalid piece name %q", n)
				}
			}
			ph = &Phrase{Name: name, PieceNames: names, Source: source}
			continue
		}

		if isSeparator(line) {
			if inBlock {
				if len(block) == 0 {
					return nil, fail(lineNo, "empty block for piece %d", len(ph.Blocks)+1)
				}
				ph.Blocks = append(ph.Blocks, block)
			}
			block, inBlock = nil, true
			continue
		}
		if !inBlock {
			return nil, fail(lineNo, "expected separator after header, got %q", line)
		}

		alt, err := parseAlternative(line)
		if err != nil {
			return nil, fail(lineNo, "%v", err)
		}
		block = append(block, alt)
	}

	if ph == nil {
		return nil, fail(0, "missing header")
	}
	// a trailing separator leaves an empty final block behind
	if len(block) > 0 {
		ph.Blocks = append(ph.Blocks, block)
	}
	if len(ph.Blocks) != len(ph.PieceNames) {
		return nil, fail(0, "phrase %q has %d pieces but %d blocks", ph.Name, len(ph.PieceNames), len(ph.Blocks))
	}
	return ph, nil
}

func parseAlternative(line string) (Alternative, error) {
	var alt Alternative
	for _, field := range strings.Fields(line) {
		if len(field) > 2 && strings.HasPrefix(field, "<") && strings.HasSuffix(field, ">") {
			c, err := analysis.ParseCategory(field[1 : len(field)-1])
			if err != nil {
				return nil, err
			}
			alt = append(alt, Atom{Category: c})
			continue
		}
		for _, tok := range analysis.Tokenize(field) {
			alt = append(alt, Atom{Literal: tok})
		}
	}
	if len(alt) == 0 {
		return nil, fmt.Errorf("alternative %q has no tokens", line)
	}
	return alt, nil
}
