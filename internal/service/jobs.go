package service

import (
	"context"
	"sync"
)

type job string

const (
	jobAutosave  job = "autosave"
	jobExportPNG job = "export-png"
)

// jobs runs background work at most once per kind. A cron tick that fires
// while the previous save is still writing is dropped, not queued.
type jobs struct {
	mu      sync.Mutex
	running map[job]bool
	wg      sync.WaitGroup
}

// run calls fn unless a job of the same kind is in flight, and reports
// whether it ran.
func (j *jobs) run(kind job, fn func()) bool {
	j.mu.Lock()
	if j.running[kind] {
		j.mu.Unlock()
		return false
	}
	if j.running == nil {
		j.running = make(map[job]bool)
	}
	j.running[kind] = true
	j.wg.Add(1)
	j.mu.Unlock()

	defer func() {
		j.mu.Lock()
		delete(j.running, kind)
		j.mu.Unlock()
		j.wg.Done()
	}()
	fn()
	return true
}

func (j *jobs) busy(kind job) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running[kind]
}

// wait blocks until in-flight jobs return or ctx ends.
func (j *jobs) wait(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
