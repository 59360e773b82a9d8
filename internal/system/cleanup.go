package system

import (
	"time"

	"github.com/lumen3d/lumen/internal/core/ecs"
	"github.com/lumen3d/lumen/internal/core/event"
	coresys "github.com/lumen3d/lumen/internal/core/system"
	"go.uber.org/zap"
)

// CleanupSystem runs last and reports how many entities were marked for
// destruction since its previous run. The sweep itself happens in
// ECS.Update after every system has finished.
type CleanupSystem struct {
	coresys.Base
	w         *ecs.ECS
	log       *zap.Logger
	destroyed int
	total     int
}

func NewCleanupSystem(w *ecs.ECS, log *zap.Logger) *CleanupSystem {
	if log == nil {
		log = zap.NewNop()
	}
	s := &CleanupSystem{
		Base: coresys.NewBase("cleanup", PriorityCleanup),
		w:    w,
		log:  log,
	}
	event.Subscribe(w.Events, func(ev ecs.EntityDestroyed) {
		s.destroyed++
	})
	return s
}

func (s *CleanupSystem) Update(_ time.Duration) error { return nil }

func (s *CleanupSystem) PostUpdate(_ time.Duration) {
	if s.destroyed == 0 {
		return
	}
	s.total += s.destroyed
	s.log.Debug("entities queued for release",
		zap.Int("count", s.destroyed),
		zap.Int("total", s.total),
		zap.Int("live", s.w.Entities.Len()))
	s.destroyed = 0
}

// Destroyed returns the number of entities destroyed so far.
func (s *CleanupSystem) Destroyed() int { return s.total + s.destroyed }
