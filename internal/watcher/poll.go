package watcher

import (
	"context"
	"errors"
	"sync"
	"time"

	"canvasnotes/internal/domain"
	"canvasnotes/internal/logger"
)

// DefaultPollInterval is how often the store is checked.
const DefaultPollInterval = 2 * time.Second

// PollStore is what StorePoller reads.
type PollStore interface {
	StatNotebook(ctx context.Context, id string) (domain.NotebookInfo, error)
	PendingApprovals(ctx context.Context) ([]domain.Approval, error)
}

// Handlers receive what the poller notices. Either may be nil.
type Handlers struct {
	// NotebookChanged fires when the tracked notebook's revision moves.
	// The receiver decides whether the save was its own.
	NotebookChanged func(info domain.NotebookInfo)
	// ApprovalRequired fires once per pending approval.
	ApprovalRequired func(a domain.Approval)
	// ApprovalDismissed fires when an announced approval is no longer pending.
	ApprovalDismissed func(id string)
}

// StorePoller polls the store for changes written by another process, such
// as the standalone MCP server, and for approvals it queued.
type StorePoller struct {
	store    PollStore
	handlers Handlers
	interval time.Duration

	mu         sync.Mutex
	notebookID string
	lastRev    int64
	announced  map[string]bool

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewStorePoller(store PollStore, interval time.Duration, h Handlers) *StorePoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &StorePoller{
		store:     store,
		handlers:  h,
		interval:  interval,
		announced: map[string]bool{},
	}
}

// Track switches the watched notebook. rev is the revision the caller
// already has.
func (p *StorePoller) Track(notebookID string, rev int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notebookID = notebookID
	p.lastRev = rev
}

// Start begins polling until ctx is done or Stop is called.
func (p *StorePoller) Start(ctx context.Context) {
	p.stopCh = make(chan struct{})
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.Check(ctx)
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (p *StorePoller) Stop() {
	if p.stopCh != nil {
		close(p.stopCh)
		p.wg.Wait()
		p.stopCh = nil
	}
}

// Check runs one poll.
func (p *StorePoller) Check(ctx context.Context) {
	p.checkNotebook(ctx)
	p.checkApprovals(ctx)
}

func (p *StorePoller) checkNotebook(ctx context.Context) {
	p.mu.Lock()
	id, last := p.notebookID, p.lastRev
	p.mu.Unlock()
	if id == "" {
		return
	}

	info, err := p.store.StatNotebook(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Error("poll notebook", err, map[string]any{"notebook": id})
		}
		return
	}
	if info.Revision == last {
		return
	}

	p.mu.Lock()
	changed := p.notebookID == id && p.lastRev == last
	if changed {
		p.lastRev = info.Revision
	}
	p.mu.Unlock()
	if changed && p.handlers.NotebookChanged != nil {
		p.handlers.NotebookChanged(info)
	}
}

func (p *StorePoller) checkApprovals(ctx context.Context) {
	pending, err := p.store.PendingApprovals(ctx)
	if err != nil {
		logger.Error("poll approvals", err)
		return
	}

	still := make(map[string]bool, len(pending))
	var fresh []domain.Approval
	p.mu.Lock()
	for _, a := range pending {
		still[a.ID] = true
		if !p.announced[a.ID] {
			p.announced[a.ID] = true
			fresh = append(fresh, a)
		}
	}
	var gone []string
	for id := range p.announced {
		if !still[id] {
			delete(p.announced, id)
			gone = append(gone, id)
		}
	}
	p.mu.Unlock()

	for _, a := range fresh {
		if p.handlers.ApprovalRequired != nil {
			p.handlers.ApprovalRequired(a)
		}
	}
	for _, id := range gone {
		if p.handlers.ApprovalDismissed != nil {
			p.handlers.ApprovalDismissed(id)
		}
	}
}
