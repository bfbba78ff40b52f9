package service

import (
	"context"
	"testing"
	"time"
)

func TestJobs_DropsOverlappingRun(t *testing.T) {
	var j jobs
	release := make(chan struct{})
	started := make(chan struct{})

	go j.run(jobAutosave, func() {
		close(started)
		<-release
	})
	<-started

	if !j.busy(jobAutosave) {
		t.Fatal("autosave should be busy")
	}
	if j.run(jobAutosave, func() { t.Error("overlapping autosave ran") }) {
		t.Error("run = true for a job already in flight")
	}
	ran := false
	if !j.run(jobExportPNG, func() { ran = true }) || !ran {
		t.Error("a different job kind should run")
	}

	close(release)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	j.wait(ctx)
	if ctx.Err() != nil {
		t.Fatal("wait timed out")
	}
	if j.busy(jobAutosave) {
		t.Error("autosave still busy after it returned")
	}
}

func TestJobs_WaitHonoursContext(t *testing.T) {
	var j jobs
	release := make(chan struct{})
	defer close(release)
	started := make(chan struct{})
	go j.run(jobAutosave, func() {
		close(started)
		<-release
	})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	done := make(chan struct{})
	go func() {
		j.wait(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("wait ignored its context")
	}
}
