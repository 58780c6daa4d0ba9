package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/taskminder/taskminder/internal/models"
)

// DefaultScanInterval is how often the scanner re-evaluates reminders.
const DefaultScanInterval = 10 * time.Second

// AlertFunc receives each task whose reminder fires.
type AlertFunc func(task models.Task)

// Scanner re-evaluates an in-memory task list on a fixed interval and
// raises exactly one alert per task per session for every task whose
// reminder is at or before "now" and that is not completed.
//
// All state is guarded by a mutex so the tick loop and caller-driven
// update hooks can run from different goroutines.
type Scanner struct {
	mu       sync.Mutex
	tasks    []models.Task
	alerted  map[uint64]struct{}
	state    StateStore
	alert    AlertFunc
	interval time.Duration
	now      func() time.Time
	log      *logrus.Logger
}

// NewScanner creates a Scanner. Previously alerted IDs are restored from
// the state store, so reloading within a session does not re-alert.
func NewScanner(state StateStore, alert AlertFunc, interval time.Duration, log *logrus.Logger) *Scanner {
	if interval <= 0 {
		interval = DefaultScanInterval
	}

	s := &Scanner{
		alerted:  make(map[uint64]struct{}),
		state:    state,
		alert:    alert,
		interval: interval,
		now:      time.Now,
		log:      log,
	}

	ids, err := state.Load()
	if err != nil {
		log.Warnf("Failed to load reminder state: %v", err)
	}
	for _, id := range ids {
		s.alerted[id] = struct{}{}
	}

	return s
}

// SetTasks replaces the task list the scanner evaluates.
func (s *Scanner) SetTasks(tasks []models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = make([]models.Task, len(tasks))
	copy(s.tasks, tasks)
}

// Scan performs one tick and returns how many alerts fired.
func (s *Scanner) Scan() int {
	s.mu.Lock()

	var due []models.Task
	now := s.now()
	for _, task := range s.tasks {
		if !task.ReminderDue(now) {
			continue
		}
		if _, seen := s.alerted[task.ID]; seen {
			continue
		}
		s.alerted[task.ID] = struct{}{}
		due = append(due, task)
	}

	if len(due) > 0 {
		s.persistLocked()
	}
	alert := s.alert
	s.mu.Unlock()

	// Alerts run outside the lock; the callback may call back into the
	// scanner or block on user interaction.
	if alert != nil {
		for _, task := range due {
			alert(task)
		}
	}

	return len(due)
}

// Run ticks the scanner until the context is cancelled.
func (s *Scanner) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Scan()
		}
	}
}

// TaskUpdated resets the alert bookkeeping after a task was edited: the
// id is cleared so a changed reminder can fire again, except that a
// reminder still in the past is re-marked without firing, suppressing a
// duplicate alert right after saving.
func (s *Scanner) TaskUpdated(task models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.alerted, task.ID)
	if task.ReminderDue(s.now()) {
		s.alerted[task.ID] = struct{}{}
	}
	s.persistLocked()
}

// TaskCompleted drops a completed task's id from the alerted set.
func (s *Scanner) TaskCompleted(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.alerted, id)
	s.persistLocked()
}

// TaskDeleted purges a deleted task's id from the alerted set.
func (s *Scanner) TaskDeleted(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.alerted, id)
	s.persistLocked()
}

// AlertedIDs returns a snapshot of the alerted set.
func (s *Scanner) AlertedIDs() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]uint64, 0, len(s.alerted))
	for id := range s.alerted {
		ids = append(ids, id)
	}
	return ids
}

func (s *Scanner) persistLocked() {
	ids := make([]uint64, 0, len(s.alerted))
	for id := range s.alerted {
		ids = append(ids, id)
	}
	if err := s.state.Save(ids); err != nil {
		s.log.Warnf("Failed to persist reminder state: %v", err)
	}
}
