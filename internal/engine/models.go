package engine

import (
	"time"

	"github.com/escherba/phraser/internal/phrase"
)

// Status describes the active snapshot.
type Status struct {
	Initialized bool      `json:"initialized"`
	Phrases     int       `json:"phrases"`
	Sources     []string  `json:"sources"`
	BuiltAt     time.Time `json:"built_at"`
}

// Dump is the full engine state: status plus every loaded phrase.
type Dump struct {
	Status
	PhraseList []phrase.Info `json:"phrase_list"`
}
