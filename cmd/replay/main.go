package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"streetbuilder/internal/adapter/ticklog"
	"streetbuilder/internal/app/ports"
	"streetbuilder/internal/domain/mission"
)

func main() {
	var dir, runID string
	flag.StringVar(&dir, "dir", "data/journal", "tick journal directory")
	flag.StringVar(&runID, "run", "", "restrict to one run id")
	flag.Parse()

	files, err := ticklog.ListFiles(dir, runID)
	if err != nil {
		log.Fatalf("list journal: %v", err)
	}
	if len(files) == 0 {
		log.Fatalf("no journal files in %s", dir)
	}

	sums := map[string]*summary{}
	for _, path := range files {
		err := ticklog.ReadFile(path, func(e ports.TickEntry) error {
			s, ok := sums[e.RunID]
			if !ok {
				s = newSummary(e.RunID)
				sums[e.RunID] = s
			}
			s.add(e)
			return nil
		})
		if err != nil {
			log.Fatalf("read %s: %v", path, err)
		}
	}

	ids := make([]string, 0, len(sums))
	for id := range sums {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		sums[id].print(os.Stdout)
	}
}

type summary struct {
	runID       string
	ticks       int
	byPhase     map[mission.Phase]int
	transitions int
	firstMs     int64
	lastMs      int64
	last        mission.Snapshot
}

func newSummary(runID string) *summary {
	return &summary{runID: runID, byPhase: map[mission.Phase]int{}}
}

func (s *summary) add(e ports.TickEntry) {
	s.ticks++
	s.byPhase[e.From]++
	if e.From != e.To {
		s.transitions++
	}
	if s.firstMs == 0 || e.UnixMs < s.firstMs {
		s.firstMs = e.UnixMs
	}
	if e.UnixMs >= s.lastMs {
		s.lastMs = e.UnixMs
		s.last = e.Snapshot
	}
}

func (s *summary) print(out io.Writer) {
	fmt.Fprintf(out, "run %s: %d ticks, %d transitions, %dms\n", s.runID, s.ticks, s.transitions, s.lastMs-s.firstMs)
	for _, p := range mission.Phases() {
		if n := s.byPhase[p]; n > 0 {
			fmt.Fprintf(out, "  %-10s %d\n", p, n)
		}
	}
	pr := s.last.Progress
	fmt.Fprintf(out, "  final phase=%s position=%s progress=%d/%d completed=%d terminated=%v\n",
		s.last.Phase, s.last.Position, pr.Collected, pr.Required, pr.Completed, s.last.Terminated)
}
