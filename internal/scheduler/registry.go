// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var (
	// ErrJobNotFound is returned for operations on an unregistered job name.
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidSchedule is returned when a cron expression does not parse.
	ErrInvalidSchedule = errors.New("invalid cron expression")
)

type registeredJob struct {
	job             Job
	defaultSchedule string
	entryID         cron.EntryID
	run             func() error
}

// JobInfo is the public view of a registered job.
type JobInfo struct {
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	DefaultSchedule string    `json:"default_schedule"`
	Schedule        string    `json:"schedule"`
	IsOverridden    bool      `json:"is_overridden"`
	LastRun         time.Time `json:"last_run"`
	NextRun         time.Time `json:"next_run"`
}

// Registry tracks scheduled jobs and lets operators trigger or reschedule them.
type Registry struct {
	cron   *cron.Cron
	logger *slog.Logger
	mu     sync.RWMutex
	jobs   map[string]*registeredJob
}

func newRegistry(c *cron.Cron, logger *slog.Logger) *Registry {
	return &Registry{
		cron:   c,
		logger: logger,
		jobs:   make(map[string]*registeredJob),
	}
}

func (r *Registry) register(job Job, run func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[job.Name]; exists {
		return fmt.Errorf("job already registered: %s", job.Name)
	}

	entryID, err := r.cron.AddFunc(job.Schedule, func() { _ = run() })
	if err != nil {
		return fmt.Errorf("invalid cron expression %q for %s: %w", job.Schedule, job.Name, err)
	}

	r.jobs[job.Name] = &registeredJob{
		job:             job,
		defaultSchedule: job.Schedule,
		entryID:         entryID,
		run:             run,
	}
	r.logger.Debug("registered scheduled job", "name", job.Name, "schedule", job.Schedule)
	return nil
}

// List returns all registered jobs sorted by name.
func (r *Registry) List() []JobInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]JobInfo, 0, len(r.jobs))
	for _, rj := range r.jobs {
		result = append(result, r.info(rj))
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Get returns one registered job.
func (r *Registry) Get(name string) (JobInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rj, ok := r.jobs[name]
	if !ok {
		return JobInfo{}, fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return r.info(rj), nil
}

// info must be called with r.mu held.
func (r *Registry) info(rj *registeredJob) JobInfo {
	entry := r.cron.Entry(rj.entryID)
	return JobInfo{
		Name:            rj.job.Name,
		Description:     rj.job.Description,
		DefaultSchedule: rj.defaultSchedule,
		Schedule:        rj.job.Schedule,
		IsOverridden:    rj.job.Schedule != rj.defaultSchedule,
		LastRun:         entry.Prev,
		NextRun:         entry.Next,
	}
}

// TriggerNow runs a job immediately on the caller's goroutine.
func (r *Registry) TriggerNow(name string) error {
	r.mu.RLock()
	rj, ok := r.jobs[name]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	r.logger.Info("manually triggering job", "name", name)
	return rj.run()
}

// UpdateSchedule swaps a job's cron entry for one on newSchedule.
func (r *Registry) UpdateSchedule(name, newSchedule string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rj, ok := r.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return r.reschedule(rj, newSchedule)
}

// ResetSchedule restores a job's default schedule.
func (r *Registry) ResetSchedule(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rj, ok := r.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	if rj.job.Schedule == rj.defaultSchedule {
		return nil
	}
	return r.reschedule(rj, rj.defaultSchedule)
}

// reschedule must be called with r.mu held.
func (r *Registry) reschedule(rj *registeredJob, spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidSchedule, spec, err)
	}

	r.cron.Remove(rj.entryID)
	entryID, err := r.cron.AddFunc(spec, func() { _ = rj.run() })
	if err != nil {
		fallbackID, fallbackErr := r.cron.AddFunc(rj.job.Schedule, func() { _ = rj.run() })
		if fallbackErr != nil {
			return fmt.Errorf("critical: failed to restore schedule after update failure: %w (original: %w)", fallbackErr, err)
		}
		rj.entryID = fallbackID
		return fmt.Errorf("failed to apply new schedule: %w", err)
	}

	rj.entryID = entryID
	rj.job.Schedule = spec
	r.logger.Info("updated job schedule", "name", rj.job.Name, "schedule", spec)
	return nil
}
