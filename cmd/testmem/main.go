// Command testmem runs the phraser memory check once and prints the heap
// usage observed after each step. It exits non-zero if the runtime cannot
// be built or an expected match outcome does not hold.
package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/escherba/phraser/internal/config"
	"github.com/escherba/phraser/internal/harness"
)

func main() {
	config.SetupLogging("info")

	prof := harness.NewProfiler()
	err := harness.Run(prof)
	if werr := prof.WriteReport(os.Stdout); werr != nil {
		log.Error().Err(werr).Msg("write memory report")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("memory check failed")
	}
	log.Info().Msg("memory check passed")
}
