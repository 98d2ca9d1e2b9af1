// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gateway

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

type formGuard struct {
	sem  *semaphore.Weighted
	refs int
}

// formGuards hands out a one slot semaphore per form id. Entries are
// removed once nobody holds or waits on them.
type formGuards struct {
	mu     sync.Mutex
	guards map[string]*formGuard
}

func (fg *formGuards) ref(formID string) *formGuard {
	fg.mu.Lock()
	defer fg.mu.Unlock()

	if fg.guards == nil {
		fg.guards = make(map[string]*formGuard)
	}
	g, ok := fg.guards[formID]
	if !ok {
		g = &formGuard{sem: semaphore.NewWeighted(1)}
		fg.guards[formID] = g
	}
	g.refs++
	return g
}

func (fg *formGuards) unref(formID string) {
	fg.mu.Lock()
	defer fg.mu.Unlock()

	g, ok := fg.guards[formID]
	if !ok {
		return
	}
	g.refs--
	if g.refs == 0 {
		delete(fg.guards, formID)
	}
}

// acquire blocks until formID is free or ctx is done. waited reports
// whether another submission held the guard when acquire was called.
func (fg *formGuards) acquire(ctx context.Context, formID string) (release func(), waited bool, err error) {
	g := fg.ref(formID)

	if g.sem.TryAcquire(1) {
		return fg.releaser(formID, g), false, nil
	}

	err = g.sem.Acquire(ctx, 1)
	if err != nil {
		fg.unref(formID)
		return nil, true, err
	}
	return fg.releaser(formID, g), true, nil
}

func (fg *formGuards) releaser(formID string, g *formGuard) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			g.sem.Release(1)
			fg.unref(formID)
		})
	}
}

func (fg *formGuards) len() int {
	fg.mu.Lock()
	defer fg.mu.Unlock()
	return len(fg.guards)
}
