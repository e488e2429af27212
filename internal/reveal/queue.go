// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package reveal

import (
	"github.com/jeranaias/agentdesk/internal/logging"
)

type job struct {
	html       string
	container  Node
	onComplete func()
}

// Queue runs animated reveals into one surface strictly one at a time, in
// the order they were enqueued. It is not safe for concurrent use; like the
// surface, it belongs to the goroutine that runs scheduled ticks.
type Queue struct {
	engine  *Engine
	surface Surface

	pending []job
	running *Task
	busy    bool

	// gen changes on Reset; completions from an older generation are
	// ignored. cur identifies the job that currently owns the queue.
	gen uint64
	cur uint64
	ids uint64
}

// NewQueue creates a queue revealing into surface with engine.
func NewQueue(engine *Engine, surface Surface) *Queue {
	return &Queue{engine: engine, surface: surface}
}

// Enqueue schedules safeHTML to be revealed into container once every
// earlier reveal has finished. onComplete may be nil.
func (q *Queue) Enqueue(safeHTML string, container Node, onComplete func()) {
	q.pending = append(q.pending, job{html: safeHTML, container: container, onComplete: onComplete})
	q.startNext()
}

// Busy reports whether a reveal is running or waiting.
func (q *Queue) Busy() bool {
	return q.busy || len(q.pending) > 0
}

// Len returns the number of reveals not yet finished, the running one
// included.
func (q *Queue) Len() int {
	n := len(q.pending)
	if q.busy {
		n++
	}
	return n
}

// Reset cancels the running reveal and drops every pending one. Their
// onComplete callbacks never run.
func (q *Queue) Reset() {
	q.gen++
	if q.running != nil {
		q.running.Cancel()
	}
	q.running = nil
	q.pending = nil
	q.busy = false
	q.cur = 0
}

func (q *Queue) startNext() {
	for !q.busy && len(q.pending) > 0 {
		j := q.pending[0]
		q.pending = q.pending[1:]

		q.ids++
		id, gen := q.ids, q.gen
		q.busy = true
		q.cur = id

		finish := func() {
			if q.gen != gen || q.cur != id {
				return
			}
			q.busy = false
			q.running = nil
			q.cur = 0
			if j.onComplete != nil {
				j.onComplete()
			}
			q.startNext()
		}

		task, err := q.engine.Reveal(j.html, q.surface, j.container, finish)
		if err != nil {
			logging.For("reveal").WithError(err).Warn("reveal failed, skipping")
			finish()
			continue
		}
		// A reveal with nothing to show completes inside Reveal, and its
		// completion may already have started the next job.
		if q.cur == id {
			q.running = task
		}
	}
}
