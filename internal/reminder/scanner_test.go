package reminder

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskminder/taskminder/internal/models"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestScanner(t *testing.T, state StateStore, collected *[]string) *Scanner {
	t.Helper()
	s := NewScanner(state, func(task models.Task) {
		*collected = append(*collected, task.Title)
	}, DefaultScanInterval, quietLogger())
	return s
}

func taskWithReminder(id uint64, title string, reminder time.Time, completed bool) models.Task {
	return models.Task{
		ID:        id,
		Title:     title,
		Reminder:  &reminder,
		Completed: completed,
	}
}

func TestScan_FiresOncePerTask(t *testing.T) {
	var alerts []string
	s := newTestScanner(t, NewMemoryStore(), &alerts)

	now := time.Now()
	s.now = func() time.Time { return now }
	s.SetTasks([]models.Task{
		taskWithReminder(1, "Pay rent", now.Add(-time.Minute), false),
	})

	assert.Equal(t, 1, s.Scan())
	assert.Equal(t, []string{"Pay rent"}, alerts)

	// Subsequent ticks stay silent for the same task
	assert.Zero(t, s.Scan())
	assert.Zero(t, s.Scan())
	assert.Equal(t, []string{"Pay rent"}, alerts)
}

func TestScan_SkipsFutureAndCompleted(t *testing.T) {
	var alerts []string
	s := newTestScanner(t, NewMemoryStore(), &alerts)

	now := time.Now()
	s.now = func() time.Time { return now }
	s.SetTasks([]models.Task{
		taskWithReminder(1, "Later", now.Add(time.Hour), false),
		taskWithReminder(2, "Done already", now.Add(-time.Hour), true),
		{ID: 3, Title: "No reminder"},
	})

	assert.Zero(t, s.Scan())
	assert.Empty(t, alerts)
}

func TestScan_FiresWhenReminderComesDue(t *testing.T) {
	var alerts []string
	s := newTestScanner(t, NewMemoryStore(), &alerts)

	now := time.Now()
	s.now = func() time.Time { return now }
	s.SetTasks([]models.Task{
		taskWithReminder(1, "Soon", now.Add(30*time.Second), false),
	})

	assert.Zero(t, s.Scan())

	// Advance past the reminder time
	now = now.Add(time.Minute)
	assert.Equal(t, 1, s.Scan())
	assert.Equal(t, []string{"Soon"}, alerts)
}

func TestTaskUpdated_FutureReminderFiresAgain(t *testing.T) {
	var alerts []string
	s := newTestScanner(t, NewMemoryStore(), &alerts)

	now := time.Now()
	s.now = func() time.Time { return now }

	task := taskWithReminder(1, "Call mom", now.Add(-time.Minute), false)
	s.SetTasks([]models.Task{task})
	require.Equal(t, 1, s.Scan())

	// Reschedule to the future: the old alert record is discarded
	future := now.Add(time.Hour)
	task.Reminder = &future
	s.TaskUpdated(task)
	s.SetTasks([]models.Task{task})

	assert.Zero(t, s.Scan())

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, s.Scan())
	assert.Equal(t, []string{"Call mom", "Call mom"}, alerts)
}

func TestTaskUpdated_PastReminderDoesNotRefire(t *testing.T) {
	var alerts []string
	s := newTestScanner(t, NewMemoryStore(), &alerts)

	now := time.Now()
	s.now = func() time.Time { return now }

	task := taskWithReminder(1, "Water plants", now.Add(-time.Hour), false)
	s.SetTasks([]models.Task{task})
	require.Equal(t, 1, s.Scan())

	// Editing without moving the reminder out of the past must not
	// produce a duplicate alert on the next tick
	task.Description = "also the balcony"
	s.TaskUpdated(task)
	s.SetTasks([]models.Task{task})

	assert.Zero(t, s.Scan())
	assert.Equal(t, []string{"Water plants"}, alerts)
}

func TestTaskCompleted_StopsAlerting(t *testing.T) {
	var alerts []string
	s := newTestScanner(t, NewMemoryStore(), &alerts)

	now := time.Now()
	s.now = func() time.Time { return now }

	task := taskWithReminder(1, "Ship package", now.Add(-time.Minute), false)
	s.SetTasks([]models.Task{task})
	require.Equal(t, 1, s.Scan())

	s.TaskCompleted(task.ID)
	task.Completed = true
	s.SetTasks([]models.Task{task})

	assert.Zero(t, s.Scan())
	assert.Empty(t, s.AlertedIDs())
}

func TestTaskDeleted_PurgesState(t *testing.T) {
	var alerts []string
	s := newTestScanner(t, NewMemoryStore(), &alerts)

	now := time.Now()
	s.now = func() time.Time { return now }

	s.SetTasks([]models.Task{
		taskWithReminder(1, "Old task", now.Add(-time.Minute), false),
	})
	require.Equal(t, 1, s.Scan())
	require.Equal(t, []uint64{1}, s.AlertedIDs())

	s.TaskDeleted(1)
	s.SetTasks(nil)

	assert.Empty(t, s.AlertedIDs())
}

func TestNewScanner_RestoresPersistedState(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save([]uint64{7}))

	var alerts []string
	s := newTestScanner(t, store, &alerts)

	now := time.Now()
	s.now = func() time.Time { return now }
	s.SetTasks([]models.Task{
		taskWithReminder(7, "Already seen", now.Add(-time.Minute), false),
	})

	// The restored set suppresses a repeat alert after a reload
	assert.Zero(t, s.Scan())
	assert.Empty(t, alerts)
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerted.json")
	store := NewFileStore(path)

	ids, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, store.Save([]uint64{1, 2, 3}))

	ids, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 3}, ids)
}

func TestFileStore_CorruptFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerted.json")
	store := NewFileStore(path)
	require.NoError(t, store.Save([]uint64{1}))

	// Clobber the file with junk
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	ids, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, ids)
}
