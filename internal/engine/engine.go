package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/escherba/phraser/internal/analysis"
	"github.com/escherba/phraser/internal/cache"
	"github.com/escherba/phraser/internal/observability"
	"github.com/escherba/phraser/internal/phrase"
	"github.com/escherba/phraser/internal/storage"
)

var ErrNotInitialized = errors.New("phrase engine not initialized")

type snapshot struct {
	det     *phrase.Detector
	sources []string
	builtAt time.Time
}

// Engine exposes read-only, lock-free phrase detection over the latest snapshot.
type Engine struct{ snap cache.Snapshot[snapshot] }

func NewEngine() *Engine { return &Engine{} }

// BuildSnapshot loads phrase configs and swaps in a freshly compiled detector.
// On failure the previous snapshot stays active.
func (e *Engine) BuildSnapshot(ctx context.Context, loader storage.Loader) error {
	rows, err := loader.LoadPhraseConfigs(ctx)
	if err != nil {
		observability.ObserveSnapshot(0, err)
		return fmt.Errorf("load phrase configs: %w", err)
	}
	return e.Build(rows)
}

// Build compiles the given configs into a new snapshot.
func (e *Engine) Build(rows []storage.ConfigRow) error {
	phrases := make([]*phrase.Phrase, 0, len(rows))
	sources := make([]string, 0, len(rows))
	for _, r := range rows {
		ph, err := phrase.Parse(r.Name, r.Body)
		if err != nil {
			observability.ObserveSnapshot(0, err)
			return err
		}
		phrases = append(phrases, ph)
		sources = append(sources, r.Name)
	}
	det, err := phrase.NewDetector(phrases)
	if err != nil {
		observability.ObserveSnapshot(0, err)
		return err
	}

	e.snap.Store(snapshot{det: det, sources: sources, builtAt: time.Now()})
	observability.ObserveSnapshot(len(phrases), nil)
	log.Info().Int("phrases", len(phrases)).Strs("sources", sources).Msg("phrase snapshot built")
	return nil
}

// Analyze preprocesses and tokenizes text, then detects phrases in it.
func (e *Engine) Analyze(ctx context.Context, text string, opts analysis.Options) (res *analysis.Result, err error) {
	start := time.Now()
	defer func() {
		var names []string
		if res != nil {
			for _, m := range res.PhraseMatches {
				names = append(names, m.PhraseName)
			}
		}
		observability.ObserveAnalysis(start, names, err)
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, ok := e.snap.Load()
	if !ok {
		return nil, ErrNotInitialized
	}

	res, err = analysis.Prepare(text, opts)
	if err != nil {
		return nil, err
	}
	res.PhraseMatches = s.det.Detect(res.Tokens, res.Descriptions())
	log.Debug().Int("tokens", len(res.Tokens)).Int("phrases", len(res.PhraseMatches)).Msg("analyzed")
	return res, nil
}

func (e *Engine) Status() Status {
	s, ok := e.snap.Load()
	if !ok {
		return Status{}
	}
	return Status{
		Initialized: true,
		Phrases:     len(s.det.Phrases()),
		Sources:     s.sources,
		BuiltAt:     s.builtAt,
	}
}

// Describe dumps the active snapshot.
func (e *Engine) Describe() Dump {
	d := Dump{Status: e.Status(), PhraseList: []phrase.Info{}}
	s, ok := e.snap.Load()
	if !ok {
		return d
	}
	for _, ph := range s.det.Phrases() {
		d.PhraseList = append(d.PhraseList, ph.Describe())
	}
	return d
}

// Reset drops the active snapshot; Analyze reports ErrNotInitialized afterwards.
func (e *Engine) Reset() {
	e.snap.Clear()
}
