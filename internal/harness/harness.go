// Package harness is a memory check for the phraser runtime: it builds a
// runtime from a fixed config, analyzes two fixed texts, asserts on whether
// phrases matched, and releases everything, sampling the heap after every
// step.
package harness

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/escherba/phraser"
)

// ConfigSrc is resolved against this package's source directory.
const ConfigSrc = "../../testdata/threat_statement.txt"

const (
	ThreatText = "i will kill you."
	BenignText = "blah blah some string"
)

var ErrAssertion = errors.New("assertion failed")

// ConfigPaths resolves ConfigSrc next to this source file.
func ConfigPaths() ([]string, error) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return nil, errors.New("harness: cannot locate own source file")
	}
	path, err := filepath.Abs(filepath.Join(filepath.Dir(file), ConfigSrc))
	if err != nil {
		return nil, fmt.Errorf("harness: resolve %s: %w", ConfigSrc, err)
	}
	return []string{path}, nil
}

// Run executes the memory check once.
func Run(p *Profiler) error {
	config, err := ConfigPaths()
	if err != nil {
		return err
	}
	return RunWithConfig(p, config)
}

// RunWithConfig executes the check against an explicit configuration
// reference. Each object is released as soon as it has served its step.
func RunWithConfig(p *Profiler, config []string) error {
	p.Mark("resolve config")

	rt, err := phraser.New(config)
	if err != nil {
		return fmt.Errorf("construct runtime: %w", err)
	}
	p.Mark("construct runtime")

	if err := expectMatches(p, rt, ThreatText, true); err != nil {
		return err
	}
	if err := expectMatches(p, rt, BenignText, false); err != nil {
		return err
	}

	if err := rt.Close(); err != nil {
		return fmt.Errorf("release runtime: %w", err)
	}
	p.Mark("release runtime")
	return nil
}

// expectMatches keeps the result alive only for the duration of its assertion.
func expectMatches(p *Profiler, rt *phraser.Phraser, text string, want bool) error {
	res, err := rt.Analyze(text)
	if err != nil {
		return fmt.Errorf("analyze %q: %w", text, err)
	}
	p.Mark(fmt.Sprintf("analyze %q", text))

	got := len(res.PhraseMatches) > 0
	if got != want {
		if want {
			return fmt.Errorf("%w: %q: expected phrase matches, got none", ErrAssertion, text)
		}
		return fmt.Errorf("%w: %q: expected no phrase matches, got %d", ErrAssertion, text, len(res.PhraseMatches))
	}
	p.Mark(fmt.Sprintf("release result %q", text))
	return nil
}
