package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/taskminder/taskminder/internal/notifier"
	"github.com/taskminder/taskminder/internal/repository"
)

// Mailer periodically sweeps tasks whose reminder has come due and emails
// the owner. A task is marked as mailed only after a send that reported
// no error, so a failed delivery is attempted again on the next sweep.
// Delivery stays best-effort: errors never reach any user-facing flow.
type Mailer struct {
	taskRepo repository.TaskRepository
	sender   notifier.Sender
	interval time.Duration
	now      func() time.Time
	log      *logrus.Logger
}

// NewMailer creates a reminder Mailer.
func NewMailer(taskRepo repository.TaskRepository, sender notifier.Sender, interval time.Duration, log *logrus.Logger) *Mailer {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Mailer{
		taskRepo: taskRepo,
		sender:   sender,
		interval: interval,
		now:      time.Now,
		log:      log,
	}
}

// Run sweeps on a fixed interval until the context is cancelled.
func (m *Mailer) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Sweep performs one pass over due reminders and returns the number of
// tasks marked as mailed.
func (m *Mailer) Sweep() int {
	tasks, err := m.taskRepo.ListDueReminders(m.now())
	if err != nil {
		m.log.Errorf("Reminder sweep failed: %v", err)
		return 0
	}

	sent := 0
	for _, task := range tasks {
		if task.Owner.Email == "" {
			m.log.WithField("task_id", task.ID).Warn("Reminder skipped: owner has no email")
			continue
		}

		subject := fmt.Sprintf("Reminder: %s", task.Title)
		body := fmt.Sprintf("Your task %q is due!", task.Title)
		if task.DueDate != nil {
			body = fmt.Sprintf("%s\nDue: %s", body, task.DueDate.Format("Jan 2, 2006 at 15:04"))
		}

		if err := m.sender.Send(task.Owner.Email, subject, body); err != nil {
			// Already logged by the sender; retried on the next sweep.
			continue
		}

		if err := m.taskRepo.MarkReminderSent(task.ID); err != nil {
			m.log.WithField("task_id", task.ID).Errorf("Failed to mark reminder sent: %v", err)
			continue
		}
		sent++
	}

	return sent
}
