// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package reveal

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Scheduler runs fn once after d. Implementations must run every fn on the
// single goroutine that owns the destination surface.
type Scheduler interface {
	Schedule(d time.Duration, fn func())
}

type scheduled struct {
	due time.Duration
	seq uint64
	fn  func()
}

// timeline is a list of pending callbacks ordered by due time, then by
// scheduling order.
type timeline struct {
	items []scheduled
	seq   uint64
}

func (tl *timeline) add(due time.Duration, fn func()) {
	tl.seq++
	item := scheduled{due: due, seq: tl.seq, fn: fn}
	i := sort.Search(len(tl.items), func(i int) bool {
		it := tl.items[i]
		return it.due > due || (it.due == due && it.seq > item.seq)
	})
	tl.items = append(tl.items, scheduled{})
	copy(tl.items[i+1:], tl.items[i:])
	tl.items[i] = item
}

func (tl *timeline) pop() scheduled {
	item := tl.items[0]
	tl.items = tl.items[1:]
	return item
}

// =============================================================================
// MANUAL SCHEDULER
// =============================================================================

// ManualScheduler runs callbacks only when told to, on a virtual clock.
// It is meant for tests.
type ManualScheduler struct {
	now time.Duration
	tl  timeline
}

// NewManualScheduler creates a scheduler at virtual time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Schedule implements Scheduler.
func (s *ManualScheduler) Schedule(d time.Duration, fn func()) {
	s.tl.add(s.now+d, fn)
}

// Step runs the earliest pending callback, moving the clock to its due
// time. It returns false when nothing is pending.
func (s *ManualScheduler) Step() bool {
	if len(s.tl.items) == 0 {
		return false
	}
	item := s.tl.pop()
	if item.due > s.now {
		s.now = item.due
	}
	item.fn()
	return true
}

// Advance moves the clock forward by d, running everything due meanwhile.
func (s *ManualScheduler) Advance(d time.Duration) {
	until := s.now + d
	for len(s.tl.items) > 0 && s.tl.items[0].due <= until {
		s.Step()
	}
	s.now = until
}

// RunAll steps until nothing is pending and returns the number of steps.
func (s *ManualScheduler) RunAll() int {
	n := 0
	for s.Step() {
		n++
	}
	return n
}

// Pending returns the number of callbacks waiting to run.
func (s *ManualScheduler) Pending() int {
	return len(s.tl.items)
}

// Now returns the virtual time.
func (s *ManualScheduler) Now() time.Duration {
	return s.now
}

// =============================================================================
// LOOP SCHEDULER
// =============================================================================

// LoopScheduler runs callbacks in real time on the goroutine that calls Run.
type LoopScheduler struct {
	mu    sync.Mutex
	start time.Time
	tl    timeline
}

// NewLoopScheduler creates a real-time scheduler.
func NewLoopScheduler() *LoopScheduler {
	return &LoopScheduler{start: time.Now()}
}

// Schedule implements Scheduler.
func (s *LoopScheduler) Schedule(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tl.add(time.Since(s.start)+d, fn)
}

// Run executes callbacks as they fall due until none are pending or ctx is
// done. Callbacks may schedule more work; Run keeps going until the
// timeline drains.
func (s *LoopScheduler) Run(ctx context.Context) error {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		s.mu.Lock()
		if len(s.tl.items) == 0 {
			s.mu.Unlock()
			return nil
		}
		wait := s.tl.items[0].due - time.Since(s.start)
		if wait <= 0 {
			item := s.tl.pop()
			s.mu.Unlock()
			item.fn()
			continue
		}
		s.mu.Unlock()

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.tl.items = nil
			s.mu.Unlock()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
