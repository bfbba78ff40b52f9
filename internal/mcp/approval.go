package mcpserver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"canvasnotes/internal/domain"
	"canvasnotes/internal/logger"
	"canvasnotes/internal/service"
)

const (
	EventApprovalRequired  = "mcp:approval-required"
	EventApprovalDismissed = "mcp:approval-dismissed"
)

// actionResult is sent through the channel when user approves/rejects.
type actionResult struct {
	approved bool
}

// ApprovalQueue manages human-in-the-loop approval for destructive MCP tool calls.
// It supports two modes:
//   - In-process (Wails app running MCP): uses channels + Wails events
//   - Store-based (standalone MCP): writes to the approvals table, polls for result
type ApprovalQueue struct {
	mu       sync.Mutex
	pending  map[string]chan actionResult
	ctx      context.Context
	emitter  service.EventEmitter
	timeout  time.Duration
	interval time.Duration
	// store mode for standalone MCP (cross-process IPC)
	store domain.ApprovalStore
}

func NewApprovalQueue(ctx context.Context, emitter service.EventEmitter) *ApprovalQueue {
	return &ApprovalQueue{
		pending:  make(map[string]chan actionResult),
		ctx:      ctx,
		emitter:  emitter,
		timeout:  120 * time.Second,
		interval: 500 * time.Millisecond,
	}
}

// SetStore enables store-based approval mode for standalone MCP.
// The standalone process writes pending actions to the store and polls for results.
func (q *ApprovalQueue) SetStore(store domain.ApprovalStore) {
	q.store = store
}

// Request sends an approval request and blocks until approved/rejected.
// metadata is optional JSON with extra context (e.g. element IDs for highlighting).
func (q *ApprovalQueue) Request(tool, description string, metadata ...string) (bool, error) {
	a := domain.Approval{
		ID:          domain.NewID(),
		Tool:        tool,
		Description: description,
		Metadata:    "{}",
		Status:      domain.ApprovalPending,
		CreatedAt:   time.Now().UTC(),
	}
	if len(metadata) > 0 && metadata[0] != "" {
		a.Metadata = metadata[0]
	}

	if q.store != nil {
		return q.requestViaStore(a)
	}
	return q.requestViaChannel(a)
}

// requestViaStore writes a pending approval and polls until resolved.
func (q *ApprovalQueue) requestViaStore(a domain.Approval) (bool, error) {
	if err := q.store.CreateApproval(q.ctx, a); err != nil {
		return false, fmt.Errorf("create approval: %w", err)
	}
	// the row is only needed while this call waits on it
	defer func() {
		if err := q.store.DeleteApproval(context.Background(), a.ID); err != nil {
			logger.Warn("delete approval", map[string]any{"id": a.ID, "error": err.Error()})
		}
	}()

	deadline := time.NewTimer(q.timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			status, err := q.store.ApprovalStatus(q.ctx, a.ID)
			if err != nil {
				continue
			}
			switch status {
			case domain.ApprovalApproved:
				return true, nil
			case domain.ApprovalRejected:
				return false, fmt.Errorf("action rejected by user: %s", a.Tool)
			}
		case <-deadline.C:
			return false, fmt.Errorf("action timed out after %s: %s", q.timeout, a.Tool)
		case <-q.ctx.Done():
			return false, fmt.Errorf("approval %s: %w", a.Tool, q.ctx.Err())
		}
	}
}

// requestViaChannel is the in-process mode using Wails events.
func (q *ApprovalQueue) requestViaChannel(a domain.Approval) (bool, error) {
	ch := make(chan actionResult, 1)

	q.mu.Lock()
	q.pending[a.ID] = ch
	q.mu.Unlock()
	defer q.cleanup(a.ID)

	q.emitter.Emit(q.ctx, EventApprovalRequired, a)

	timeout := time.NewTimer(q.timeout)
	defer timeout.Stop()

	select {
	case result := <-ch:
		if !result.approved {
			return false, fmt.Errorf("action rejected by user: %s", a.Tool)
		}
		return true, nil
	case <-timeout.C:
		q.emitter.Emit(q.ctx, EventApprovalDismissed, map[string]string{"id": a.ID})
		return false, fmt.Errorf("action timed out after %s: %s", q.timeout, a.Tool)
	case <-q.ctx.Done():
		q.emitter.Emit(q.ctx, EventApprovalDismissed, map[string]string{"id": a.ID})
		return false, fmt.Errorf("approval %s: %w", a.Tool, q.ctx.Err())
	}
}

// Approve marks a pending action as approved (in-process mode).
func (q *ApprovalQueue) Approve(actionID string) bool {
	return q.resolve(actionID, true)
}

// Reject marks a pending action as rejected (in-process mode).
func (q *ApprovalQueue) Reject(actionID string) bool {
	return q.resolve(actionID, false)
}

func (q *ApprovalQueue) resolve(actionID string, approved bool) bool {
	q.mu.Lock()
	ch, ok := q.pending[actionID]
	q.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case ch <- actionResult{approved: approved}:
	default:
	}
	return true
}

func (q *ApprovalQueue) cleanup(id string) {
	q.mu.Lock()
	delete(q.pending, id)
	q.mu.Unlock()
}
