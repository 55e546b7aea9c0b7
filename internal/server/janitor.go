package server

import (
	"context"
	"time"

	"github.com/nightconcept/cratesmith/internal/core/assembler"
)

const minSweepInterval = time.Second

// sweepInterval checks several times per sweepAfter window.
func (s *Server) sweepInterval() time.Duration {
	d := s.sweepAfter / 4
	if d < minSweepInterval {
		return minSweepInterval
	}
	return d
}

// Sweep removes workspace entries older than sweepAfter once.
func (s *Server) Sweep() {
	removed, err := assembler.Sweep(s.gen.Workspace(), s.sweepAfter, s.now())
	if err != nil {
		s.logger.Warn("workspace sweep failed", "err", err)
	}
	if len(removed) > 0 {
		s.logger.Info("swept workspace", "removed", len(removed))
	}
}

func (s *Server) runJanitor(ctx context.Context) {
	ticker := time.NewTicker(s.sweepInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
