// Package notify delivers habit reminders on a cron schedule. Delivery is
// fire and forget: a reminder that cannot be delivered is logged and dropped.
package notify

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/dvergara/daykeeper/internal/habit"
)

// Notifier receives a reminder that is due. Implementations must not block.
type Notifier func(id, title, body string)

// Scheduler registers one recurring reminder per habit and fires it through
// a Notifier. It satisfies the ledger's reminder collaborator.
type Scheduler struct {
	cron   *cron.Cron
	notify Notifier
	logger *log.Logger

	mu      sync.Mutex
	entries map[string]cron.EntryID

	stopOnce sync.Once
}

// New creates a reminder scheduler. A nil notifier degrades delivery to a
// log line; a nil logger discards.
func New(notify Notifier, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Scheduler{
		cron:    cron.New(),
		logger:  logger,
		entries: make(map[string]cron.EntryID),
	}
	if notify == nil {
		notify = func(id, title, body string) {
			logger.Printf("notify: reminder %s: %s", title, body)
		}
	}
	s.notify = notify
	return s
}

// Start begins firing registered reminders.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for any in-flight reminder to finish.
// Safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		<-s.cron.Stop().Done()
	})
}

// Schedule registers a daily reminder for the given habit, replacing any
// earlier registration under the same id. A non-repeating reminder removes
// itself after it first fires.
func (s *Scheduler) Schedule(id, title, body string, at habit.TimeOfDay, repeats bool) error {
	if at.Hour < 0 || at.Hour > 23 || at.Minute < 0 || at.Minute > 59 {
		return fmt.Errorf("notify: reminder time %02d:%02d out of range", at.Hour, at.Minute)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[id]; ok {
		s.cron.Remove(old)
		delete(s.entries, id)
	}

	spec := fmt.Sprintf("%d %d * * *", at.Minute, at.Hour)
	entryID, err := s.cron.AddFunc(spec, func() {
		s.fire(id, title, body, repeats)
	})
	if err != nil {
		return fmt.Errorf("notify: schedule reminder for %q: %w", title, err)
	}
	s.entries[id] = entryID
	s.logger.Printf("notify: registered reminder %q at %02d:%02d", title, at.Hour, at.Minute)
	return nil
}

// Cancel removes the reminder registered under id, if any.
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entryID, ok := s.entries[id]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, id)
	}
}

// Count returns the number of registered reminders.
func (s *Scheduler) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Scheduler) fire(id, title, body string, repeats bool) {
	s.notify(id, title, body)
	if !repeats {
		s.Cancel(id)
	}
}
