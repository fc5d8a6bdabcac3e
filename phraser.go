// Package phraser detects configured multi-piece phrases in text.
//
//	p, err := phraser.New([]string{"testdata/threat_statement.txt"})
//	if err != nil {
//		return err
//	}
//	defer p.Close()
//	res, err := p.Analyze("i will kill you.")
//	// res.PhraseMatches is empty when nothing matched.
package phraser

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/escherba/phraser/internal/analysis"
	"github.com/escherba/phraser/internal/engine"
	"github.com/escherba/phraser/internal/storage"
)

type (
	Result      = analysis.Result
	PhraseMatch = analysis.PhraseMatch
	Options     = analysis.Options
	Dump        = engine.Dump
)

var (
	ErrClosed        = errors.New("phraser: runtime closed")
	ErrNoConfigs     = errors.New("phraser: no phrase configs given")
	ErrTextTooLong   = analysis.ErrTextTooLong
	ErrInvalidOption = analysis.ErrInvalidOption
)

// Phraser is a matcher runtime built from phrase config files.
// It is safe for concurrent use until Close.
type Phraser struct {
	eng    *engine.Engine
	opts   Options
	closed atomic.Bool
}

// Option customizes a Phraser.
type Option func(*Phraser)

// WithOptions sets the analysis options Analyze uses.
func WithOptions(o Options) Option {
	return func(p *Phraser) { p.opts = o }
}

// New reads and compiles the phrase configs at configPaths.
func New(configPaths []string, opts ...Option) (*Phraser, error) {
	return NewContext(context.Background(), configPaths, opts...)
}

func NewContext(ctx context.Context, configPaths []string, opts ...Option) (*Phraser, error) {
	if len(configPaths) == 0 {
		return nil, ErrNoConfigs
	}
	p := &Phraser{eng: engine.NewEngine(), opts: analysis.DefaultOptions()}
	for _, o := range opts {
		o(p)
	}
	if err := p.eng.BuildSnapshot(ctx, storage.NewFileStore(configPaths)); err != nil {
		return nil, fmt.Errorf("phraser: %w", err)
	}
	return p, nil
}

// Analyze runs the analysis with the runtime's options.
func (p *Phraser) Analyze(text string) (*Result, error) {
	return p.AnalyzeContext(context.Background(), text, p.opts)
}

func (p *Phraser) AnalyzeContext(ctx context.Context, text string, opts Options) (*Result, error) {
	if p.closed.Load() {
		return nil, ErrClosed
	}
	res, err := p.eng.Analyze(ctx, text, opts)
	// Close may have run after the check above
	if errors.Is(err, engine.ErrNotInitialized) && p.closed.Load() {
		return nil, ErrClosed
	}
	return res, err
}

// Describe dumps the loaded phrases.
func (p *Phraser) Describe() Dump {
	return p.eng.Describe()
}

// Close releases the compiled phrases. Results already returned stay valid.
// Closing twice is a no-op.
func (p *Phraser) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	p.eng.Reset()
	return nil
}
