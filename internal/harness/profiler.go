package harness

import (
	"fmt"
	"io"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog/log"
)

// Sample is the heap state right after one harness step.
type Sample struct {
	Step      string
	HeapAlloc uint64
	HeapInuse uint64
	// Delta is the HeapAlloc change since the previous sample.
	Delta   int64
	Elapsed time.Duration
}

// Profiler records heap usage after each step. A GC runs before every
// reading so released objects show up in the delta. A nil Profiler
// records nothing.
type Profiler struct {
	read    func(*runtime.MemStats)
	start   time.Time
	samples []Sample
}

func NewProfiler() *Profiler {
	p := &Profiler{
		read: func(m *runtime.MemStats) {
			runtime.GC()
			runtime.ReadMemStats(m)
		},
		start: time.Now(),
	}
	p.Mark("start")
	return p
}

func (p *Profiler) Mark(step string) {
	if p == nil {
		return
	}
	var m runtime.MemStats
	p.read(&m)

	s := Sample{
		Step:      step,
		HeapAlloc: m.HeapAlloc,
		HeapInuse: m.HeapInuse,
		Elapsed:   time.Since(p.start),
	}
	if n := len(p.samples); n > 0 {
		s.Delta = int64(m.HeapAlloc) - int64(p.samples[n-1].HeapAlloc)
	}
	p.samples = append(p.samples, s)

	log.Debug().
		Str("step", step).
		Uint64("heap_alloc", s.HeapAlloc).
		Int64("delta", s.Delta).
		Dur("elapsed", s.Elapsed).
		Msg("memory sample")
}

func (p *Profiler) Samples() []Sample {
	if p == nil {
		return nil
	}
	return append([]Sample(nil), p.samples...)
}

// WriteReport prints one line per step, in the spirit of a line profiler.
func (p *Profiler) WriteReport(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "step\theap (KiB)\tdelta (KiB)\telapsed\t")
	for _, s := range p.Samples() {
		fmt.Fprintf(tw, "%s\t%.1f\t%+.1f\t%s\t\n", s.Step, float64(s.HeapAlloc)/1024, float64(s.Delta)/1024, s.Elapsed.Round(time.Microsecond))
	}
	return tw.Flush()
}
