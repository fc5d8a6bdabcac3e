package phrase

import (
	"fmt"
	"slices"

	"github.com/escherba/phraser/internal/analysis"
)

// Detector finds every configured phrase in a token stream. It is
// immutable after construction and safe for concurrent use.
type Detector struct {
	phrases []*Phrase

	// phrase indexes keyed by the literal first atoms of their first block
	byFirst map[string][]int
	// phrases whose first block can start with a category atom
	agnostic []int
}

// NewDetector indexes phrases for candidate narrowing. Phrase names must be unique.
func NewDetector(phrases []*Phrase) (*Detector, error) {
	d := &Detector{
		phrases: phrases,
		byFirst: map[string][]int{},
	}
	seen := map[string]string{}
	for i, ph := range phrases {
		if prev, ok := seen[ph.Name]; ok {
			return nil, fmt.Errorf("duplicate phrase %q in %s (first defined in %s)", ph.Name, ph.Source, prev)
		}
		seen[ph.Name] = ph.Source

		firsts := map[string]struct{}{}
		hasCategory := false
		for _, alt := range ph.Blocks[0] {
			if alt[0].Category != 0 {
				hasCategory = true
				continue
			}
			firsts[alt[0].Literal] = struct{}{}
		}
		if hasCategory {
			d.agnostic = append(d.agnostic, i)
			continue
		}
		for lit := range firsts {
			d.byFirst[lit] = append(d.byFirst[lit], i)
		}
	}
	return d, nil
}

// Phrases returns the phrases in configuration order.
func (d *Detector) Phrases() []*Phrase { return d.phrases }

// Detect returns one PhraseMatch per phrase found, in configuration order.
// Index lists within a match are ordered by start position.
func (d *Detector) Detect(tokens []string, descs []analysis.Category) []analysis.PhraseMatch {
	found := make([][][]int, len(d.phrases))
	for pos := range tokens {
		cand := candidates(d.byFirst[tokens[pos]], d.agnostic)
		for _, i := range cand {
			ph := d.phrases[i]
			begins := make([]int, 0, len(ph.Blocks))
			// only lists starting at pos can collide
			fromPos := len(found[i])
			ph.matchFrom(tokens, descs, 0, pos, begins, func(list []int) {
				for _, have := range found[i][fromPos:] {
					if slices.Equal(have, list) {
						return
					}
				}
				found[i] = append(found[i], list)
			})
		}
	}

	out := []analysis.PhraseMatch{}
	for i, lists := range found {
		if len(lists) == 0 {
			continue
		}
		ph := d.phrases[i]
		out = append(out, analysis.PhraseMatch{
			PhraseName:       ph.Name,
			SubsequenceNames: ph.PieceNames,
			IndexLists:       lists,
		})
	}
	return out
}

// matchFrom tries every alternative of block at pos and recurses into the
// next block, emitting piece begins plus the exclusive end on completion.
func (p *Phrase) matchFrom(tokens []string, descs []analysis.Category, block, pos int, begins []int, emit func([]int)) {
	if block == len(p.Blocks) {
		list := make([]int, 0, len(begins)+1)
		list = append(list, begins...)
		emit(append(list, pos))
		return
	}
	for _, alt := range p.Blocks[block] {
		if alt.matchesAt(tokens, descs, pos) {
			p.matchFrom(tokens, descs, block+1, pos+len(alt), append(begins[:block], pos), emit)
		}
	}
}

func candidates(lists ...[]int) []int {
	s := map[int]struct{}{}
	for _, l := range lists {
		for _, v := range l {
			s[v] = struct{}{}
		}
	}
	out := make([]int, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
