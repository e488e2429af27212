// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// revealTickMsg fires a scheduled reveal callback.
type revealTickMsg struct {
	id uint64
}

// teaScheduler is a reveal.Scheduler whose callbacks run as Bubble Tea
// messages. Schedule only records a tea.Tick command; Update must hand
// the commands from drain to the runtime.
type teaScheduler struct {
	next uint64
	fns  map[uint64]func()
	cmds []tea.Cmd
}

func newTeaScheduler() *teaScheduler {
	return &teaScheduler{fns: make(map[uint64]func())}
}

// Schedule implements reveal.Scheduler.
func (s *teaScheduler) Schedule(d time.Duration, fn func()) {
	s.next++
	id := s.next
	s.fns[id] = fn
	s.cmds = append(s.cmds, tea.Tick(d, func(time.Time) tea.Msg {
		return revealTickMsg{id: id}
	}))
}

// fire runs the callback for id once. Unknown ids are ignored.
func (s *teaScheduler) fire(id uint64) bool {
	fn, ok := s.fns[id]
	if !ok {
		return false
	}
	delete(s.fns, id)
	fn()
	return true
}

// drain returns and forgets the commands scheduled since the last call.
func (s *teaScheduler) drain() []tea.Cmd {
	cmds := s.cmds
	s.cmds = nil
	return cmds
}

// pending returns the number of callbacks not yet fired.
func (s *teaScheduler) pending() int {
	return len(s.fns)
}
