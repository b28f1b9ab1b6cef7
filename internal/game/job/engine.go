package job

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pokengu/idlemon/internal/game/combat"
	"github.com/pokengu/idlemon/internal/game/creature"
	"github.com/pokengu/idlemon/internal/game/notify"
	"github.com/pokengu/idlemon/internal/game/rng"
)

var (
	// ErrUnknownJob is returned for a job ID with no definition.
	ErrUnknownJob = errors.New("unknown job")
	// ErrNoFreeSlot is returned when a job's worker capacity is reached.
	ErrNoFreeSlot = errors.New("job has no free slot")
	// ErrTypeMismatch is returned when a worker lacks the required type.
	ErrTypeMismatch = errors.New("creature does not match the job's type")
	// ErrNotAssigned is returned when removing a creature that is not a
	// worker of the job.
	ErrNotAssigned = errors.New("creature is not assigned to the job")
)

// Depositor receives item rewards. The engine does not own the storage
// format of the inventory behind it.
type Depositor interface {
	Deposit(itemID string, qty int) error
}

// BuffSink receives the buff side of job completions: emblem rewards and
// stun resistance accrual.
type BuffSink interface {
	GrantEmblem(buffID string) (string, error)
	IncreaseStunResistance()
}

// state is the runtime progress of one job.
type state struct {
	workers     []*creature.Creature
	startedAt   time.Time
	progress    float64
	completions int
	successes   int
}

// Engine runs all idle jobs against a shared roster. It is not safe for
// concurrent use; the simulation drives it from the tick loop only.
type Engine struct {
	defs     map[string]Definition
	tuning   Tuning
	jobIDs   []string
	states   map[string]*state
	extra    map[string]int
	roster   *creature.Roster
	items    Depositor
	buffs    BuffSink
	notifier notify.Notifier
	src      rng.Source
	log      *zap.Logger
}

// NewEngine builds an Engine over the given definitions and roster.
func NewEngine(defs map[string]Definition, tn Tuning, roster *creature.Roster, items Depositor, buffs BuffSink, notifier notify.Notifier, src rng.Source, log *zap.Logger) *Engine {
	jobIDs := make([]string, 0, len(defs))
	states := make(map[string]*state, len(defs))
	for id := range defs {
		jobIDs = append(jobIDs, id)
		states[id] = &state{}
	}
	sort.Strings(jobIDs)

	if notifier == nil {
		notifier = notify.Nop()
	}
	return &Engine{
		defs:     defs,
		tuning:   tn,
		jobIDs:   jobIDs,
		states:   states,
		extra:    make(map[string]int),
		roster:   roster,
		items:    items,
		buffs:    buffs,
		notifier: notifier,
		src:      src,
		log:      log,
	}
}

// SlotCap returns the job's worker capacity including expansions.
func (e *Engine) SlotCap(jobID string) int {
	def, ok := e.defs[jobID]
	if !ok {
		return 0
	}
	return def.MaxSlots + e.extra[jobID]
}

// ExpandSlots permanently raises the job's capacity by one. Expansions
// live outside the definition so definition updates keep them.
func (e *Engine) ExpandSlots(jobID string) error {
	if _, ok := e.defs[jobID]; !ok {
		return fmt.Errorf("expanding %q: %w", jobID, ErrUnknownJob)
	}
	e.extra[jobID]++
	return nil
}

// Assign puts a roster creature to work on the job.
//
// Precondition: the creature is idle, matches the job's type filter, a
// slot is free, and the party keeps a healthy fighter without it.
// Postcondition: on success the creature is flagged as working and the
// job's start time is stamped if it is the first worker.
func (e *Engine) Assign(jobID string, id uuid.UUID, now time.Time) error {
	def, ok := e.defs[jobID]
	if !ok {
		return fmt.Errorf("assigning to %q: %w", jobID, ErrUnknownJob)
	}
	s := e.states[jobID]
	if len(s.workers) >= e.SlotCap(jobID) {
		return fmt.Errorf("assigning to %q: %w", jobID, ErrNoFreeSlot)
	}

	c, ok := e.roster.Find(id)
	if !ok {
		return fmt.Errorf("assigning %s to %q: %w", id, jobID, creature.ErrNotInRoster)
	}
	if c.Working {
		return fmt.Errorf("assigning %s to %q: %w", c.Name, jobID, creature.ErrWorking)
	}
	if def.Type != "" && !hasType(c, def.Type) {
		return fmt.Errorf("assigning %s to %q: %w", c.Name, jobID, ErrTypeMismatch)
	}
	if e.lastFighter(c) {
		return fmt.Errorf("assigning %s to %q: %w", c.Name, jobID, creature.ErrLastHealthy)
	}

	c.Working = true
	c.JobID = jobID
	s.workers = append(s.workers, c)
	if len(s.workers) == 1 {
		s.startedAt = now
		s.progress = 0
	}
	return nil
}

// Remove takes a worker off the job and returns it to idle duty.
func (e *Engine) Remove(jobID string, id uuid.UUID) error {
	if _, ok := e.defs[jobID]; !ok {
		return fmt.Errorf("removing from %q: %w", jobID, ErrUnknownJob)
	}
	s := e.states[jobID]
	for i, c := range s.workers {
		if c.InstanceID != id {
			continue
		}
		s.workers = append(s.workers[:i], s.workers[i+1:]...)
		c.Working = false
		c.JobID = ""
		if len(s.workers) == 0 {
			s.startedAt = time.Time{}
			s.progress = 0
		}
		return nil
	}
	return fmt.Errorf("removing %s from %q: %w", id, jobID, ErrNotAssigned)
}

// Workers returns a copy of the job's worker list.
func (e *Engine) Workers(jobID string) []*creature.Creature {
	s, ok := e.states[jobID]
	if !ok {
		return nil
	}
	out := make([]*creature.Creature, len(s.workers))
	copy(out, s.workers)
	return out
}

// Progress returns the job's cycle progress in percent, clamped to 100.
func (e *Engine) Progress(jobID string) float64 {
	s, ok := e.states[jobID]
	if !ok || len(s.workers) == 0 {
		return 0
	}
	if s.progress > 100 {
		return 100
	}
	return s.progress
}

// Completions returns the raw and successful completion counters.
func (e *Engine) Completions(jobID string) (total, successful int) {
	s, ok := e.states[jobID]
	if !ok {
		return 0, 0
	}
	return s.completions, s.successes
}

// Tick advances every worker-holding job by elapsed and resolves cycles
// that reach completion.
func (e *Engine) Tick(now time.Time, elapsed time.Duration) {
	for _, jobID := range e.jobIDs {
		s := e.states[jobID]
		if len(s.workers) == 0 {
			s.progress = 0
			continue
		}
		def := e.defs[jobID]
		dur := def.EffectiveDuration(e.tuning, workerLevels(s.workers))
		s.progress += float64(elapsed) / float64(dur) * 100
		if s.progress >= 100 {
			e.complete(def, s, now, true)
		}
	}
}

// CatchUp replays the completions that would have happened during an
// offline gap and leaves the remainder as partial progress. Each job
// gets at most one batched notification.
func (e *Engine) CatchUp(now time.Time, elapsed time.Duration) {
	if elapsed <= 0 {
		return
	}
	for _, jobID := range e.jobIDs {
		s := e.states[jobID]
		if len(s.workers) == 0 {
			continue
		}
		def := e.defs[jobID]
		dur := def.EffectiveDuration(e.tuning, workerLevels(s.workers))
		n := int(elapsed / dur)
		for i := 0; i < n; i++ {
			e.complete(def, s, now, false)
		}
		remainder := elapsed % dur
		s.progress = float64(remainder) / float64(dur) * 100
		s.startedAt = now.Add(-remainder)
		if n > 0 {
			e.notifier.Notify(
				fmt.Sprintf("While you were away: %s completed %d times!", def.Name, n),
				notify.SeverityInfo,
				"away-job:"+def.ID,
			)
		}
	}
}

// PruneMissing drops workers that no longer exist in the roster, for
// example after a duplicate merge. Jobs emptied this way reset.
func (e *Engine) PruneMissing() {
	for _, jobID := range e.jobIDs {
		s := e.states[jobID]
		kept := s.workers[:0]
		for _, c := range s.workers {
			if current, ok := e.roster.Find(c.InstanceID); ok && current == c {
				kept = append(kept, c)
				continue
			}
			e.log.Debug("dropping missing job worker",
				zap.String("job", jobID),
				zap.String("creature", c.Name))
		}
		s.workers = kept
		if len(s.workers) == 0 {
			s.startedAt = time.Time{}
			s.progress = 0
		}
	}
}

func (e *Engine) complete(def Definition, s *state, now time.Time, announce bool) {
	s.completions++
	if def.GrantsStunResist && e.buffs != nil {
		e.buffs.IncreaseStunResistance()
	}

	chance := def.SuccessChance(e.tuning, workerLevels(s.workers))
	if e.src.Float64() < chance {
		reward := def.DrawReward(e.src)
		if reward.BuffID != "" {
			name, err := e.buffs.GrantEmblem(reward.BuffID)
			if err != nil {
				e.log.Warn("granting job emblem failed",
					zap.String("job", def.ID),
					zap.String("buff", reward.BuffID),
					zap.Error(err))
			} else {
				s.successes++
				if announce {
					e.notifier.Notify(
						fmt.Sprintf("%s complete! %s acquired!", def.Name, name),
						notify.SeveritySuccess, "job-success:"+def.ID)
				}
			}
		} else if err := e.items.Deposit(reward.ItemID, 1); err != nil {
			e.log.Warn("depositing job reward failed",
				zap.String("job", def.ID),
				zap.String("item", reward.ItemID),
				zap.Error(err))
		} else {
			s.successes++
			if announce {
				e.notifier.Notify(def.Name+" complete!", notify.SeveritySuccess, "job-success:"+def.ID)
			}
		}
	} else if announce {
		e.notifier.Notify(def.Name+" complete, but no reward found.", notify.SeverityError, "job-failure:"+def.ID)
	}

	s.progress = 0
	s.startedAt = now
}

// lastFighter reports whether c is the party's only healthy member fit
// to fight.
func (e *Engine) lastFighter(c *creature.Creature) bool {
	inParty := false
	othersFit := false
	for _, member := range e.roster.Party() {
		if member.InstanceID == c.InstanceID {
			inParty = true
			continue
		}
		if member.Healthy() && !member.Working {
			othersFit = true
		}
	}
	return inParty && c.Healthy() && !othersFit
}

func hasType(c *creature.Creature, t combat.Type) bool {
	for _, ct := range c.Types {
		if ct == t {
			return true
		}
	}
	return false
}

func workerLevels(workers []*creature.Creature) []int {
	levels := make([]int, len(workers))
	for i, c := range workers {
		levels[i] = c.Level
	}
	return levels
}
