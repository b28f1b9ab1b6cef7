package job

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobSnapshot is the persisted progress of one job. Only player
// progress is saved; the static definition always comes from content.
type JobSnapshot struct {
	WorkerIDs   []uuid.UUID `json:"worker_ids,omitempty"`
	StartedAt   time.Time   `json:"started_at,omitempty"`
	Progress    float64     `json:"progress"`
	Completions int         `json:"completions"`
	Successes   int         `json:"successes"`
}

// Snapshot is the persisted form of the engine.
type Snapshot struct {
	Jobs map[string]JobSnapshot `json:"jobs,omitempty"`
	// ExtraSlots records permanent capacity expansions per job.
	ExtraSlots map[string]int `json:"extra_slots,omitempty"`
}

// Snapshot captures all job progress for persistence.
func (e *Engine) Snapshot() Snapshot {
	snap := Snapshot{Jobs: make(map[string]JobSnapshot, len(e.states))}
	for _, jobID := range e.jobIDs {
		s := e.states[jobID]
		js := JobSnapshot{
			StartedAt:   s.startedAt,
			Progress:    s.progress,
			Completions: s.completions,
			Successes:   s.successes,
		}
		for _, c := range s.workers {
			js.WorkerIDs = append(js.WorkerIDs, c.InstanceID)
		}
		snap.Jobs[jobID] = js
	}
	if len(e.extra) > 0 {
		snap.ExtraSlots = make(map[string]int, len(e.extra))
		for jobID, n := range e.extra {
			snap.ExtraSlots[jobID] = n
		}
	}
	return snap
}

// Restore merges saved progress onto the current definitions. Saved
// jobs without a definition and workers missing from the roster are
// dropped with a log line rather than failing the load.
//
// Precondition: the roster has already been restored.
func (e *Engine) Restore(snap Snapshot) {
	for jobID, n := range snap.ExtraSlots {
		if _, ok := e.defs[jobID]; !ok {
			e.log.Warn("dropping slot expansions for unknown job", zap.String("job", jobID))
			continue
		}
		if n > 0 {
			e.extra[jobID] = n
		}
	}

	for jobID, js := range snap.Jobs {
		s, ok := e.states[jobID]
		if !ok {
			e.log.Warn("dropping saved progress for unknown job", zap.String("job", jobID))
			continue
		}
		s.startedAt = js.StartedAt
		s.progress = js.Progress
		s.completions = js.Completions
		s.successes = js.Successes
		s.workers = s.workers[:0]
		for _, id := range js.WorkerIDs {
			c, ok := e.roster.Find(id)
			if !ok {
				e.log.Warn("dropping missing job worker on restore",
					zap.String("job", jobID),
					zap.String("creature", id.String()))
				continue
			}
			c.Working = true
			c.JobID = jobID
			s.workers = append(s.workers, c)
		}
		if len(s.workers) == 0 {
			s.startedAt = time.Time{}
			s.progress = 0
		}
	}
}
