package sync

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"campus-sync/internal/logger"
	"campus-sync/internal/model"
	"campus-sync/internal/remote"
	"campus-sync/internal/store"
)

// Connectivity is what the coordinator needs from the network monitor:
// the point-in-time state plus the offline-to-online edge signal.
type Connectivity interface {
	IsOnline() bool
	Events() <-chan struct{}
}

// Refresher refreshes one role's read caches after a drain and returns
// the number of domains that failed.
type Refresher interface {
	Name() string
	Refresh(ctx context.Context) int
}

// errBadPayload marks an outbox entry whose stored payload cannot be
// decoded into its typed request. Such an entry can never succeed.
var errBadPayload = errors.New("undecodable outbox payload")

// Coordinator drains the outbox and refreshes read caches. At most one
// pass runs at a time; a trigger that arrives mid-pass is dropped, not
// queued, so overlapping triggers can never double-dispatch an entry.
type Coordinator struct {
	store      store.Store
	gateway    remote.Gateway
	conn       Connectivity
	policy     RetryPolicy
	refreshers []Refresher

	mu       sync.Mutex
	running  bool
	lastPass *PassSummary

	triggers chan Trigger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	started  bool
}

func NewCoordinator(st store.Store, gw remote.Gateway, conn Connectivity, policy RetryPolicy, refreshers ...Refresher) *Coordinator {
	return &Coordinator{
		store:      st,
		gateway:    gw,
		conn:       conn,
		policy:     policy,
		refreshers: refreshers,
		triggers:   make(chan Trigger, 1),
	}
}

// Start launches the trigger loop. Safe to call once; subsequent calls
// are no-ops.
func (c *Coordinator) Start() {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	c.wg.Add(1)
	go c.run(ctx)

	logger.Log.Info("Started sync coordinator")
}

func (c *Coordinator) Stop() {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.started = false
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
	logger.Log.Info("Stopped sync coordinator")
}

func (c *Coordinator) run(ctx context.Context) {
	defer c.wg.Done()

	for {
		select {
		case <-c.conn.Events():
			c.RunPass(ctx, TriggerConnectivity)
		case t := <-c.triggers:
			c.RunPass(ctx, t)
		case <-ctx.Done():
			return
		}
	}
}

// TriggerSync requests an asynchronous pass. Returns false if the request
// was dropped because a trigger is already pending.
func (c *Coordinator) TriggerSync(t Trigger) bool {
	select {
	case c.triggers <- t:
		return true
	default:
		return false
	}
}

// Status reports the coordinator state and current outbox depth.
func (c *Coordinator) Status(ctx context.Context) (Status, error) {
	depth, err := c.store.OutboxDepth(ctx)
	if err != nil {
		return Status{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		Running:     c.running,
		OutboxDepth: depth,
		LastPass:    c.lastPass,
	}, nil
}

// tryBegin claims the single pass slot. Overlapping callers get false.
func (c *Coordinator) tryBegin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return false
	}
	c.running = true
	return true
}

func (c *Coordinator) end(summary *PassSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	if summary != nil {
		c.lastPass = summary
	}
}

// RunPass executes one synchronous drain-and-refresh pass. It returns the
// pass summary, or nil when the pass was skipped (offline, or another pass
// already in flight).
func (c *Coordinator) RunPass(ctx context.Context, trigger Trigger) *PassSummary {
	if !c.tryBegin() {
		logger.Log.Debug("Sync pass already in flight, trigger dropped", zap.String("trigger", string(trigger)))
		return nil
	}

	if !c.conn.IsOnline() {
		logger.Log.Debug("Offline at trigger time, sync pass skipped", zap.String("trigger", string(trigger)))
		c.end(nil)
		return nil
	}

	summary := &PassSummary{
		ID:          uuid.New().String(),
		TriggeredBy: string(trigger),
		StartedAt:   time.Now().UTC(),
	}
	defer c.end(summary)

	history := &store.SyncHistory{
		ID:          summary.ID,
		StartedAt:   summary.StartedAt,
		TriggeredBy: summary.TriggeredBy,
		Status:      "running",
	}
	if err := c.store.CreateSyncHistory(ctx, history); err != nil {
		logger.Log.Error("Failed to record sync pass start", zap.Error(err))
	}

	logger.Log.Info("Sync pass started",
		zap.String("pass_id", summary.ID),
		zap.String("trigger", string(trigger)),
	)

	c.drain(ctx, summary)
	c.refreshCaches(ctx, summary)

	summary.CompletedAt = time.Now().UTC()

	history.Delivered = summary.Delivered
	history.Failed = summary.Failed
	history.Abandoned = summary.Abandoned
	history.RefreshErrors = summary.RefreshErrors
	history.Status = "completed"
	history.CompletedAt = sql.NullTime{Time: summary.CompletedAt, Valid: true}
	if err := c.store.CompleteSyncHistory(ctx, history); err != nil {
		logger.Log.Error("Failed to record sync pass completion", zap.Error(err))
	}

	logger.Log.Info("Sync pass completed",
		zap.String("pass_id", summary.ID),
		zap.Int("delivered", summary.Delivered),
		zap.Int("failed", summary.Failed),
		zap.Int("abandoned", summary.Abandoned),
		zap.Int("refresh_errors", summary.RefreshErrors),
	)

	return summary
}

// drain processes the outbox snapshot strictly in created_at order. One
// entry's failure never blocks entries for other entities; an auth failure
// aborts the rest of the drain since every call would fail the same way.
//
// Entries for the same entity stay strictly ordered: once an entry is held
// back (backoff window, or a failure in this pass), every later pending
// entry for that entity waits with it. Delivering a newer edit ahead of an
// older one would let the older edit replay later and overwrite the newer
// value at the server.
func (c *Coordinator) drain(ctx context.Context, summary *PassSummary) {
	entries, err := c.store.ListOutbox(ctx)
	if err != nil {
		logger.Log.Error("Failed to snapshot outbox", zap.Error(err))
		return
	}

	now := time.Now().UTC()
	held := map[string]bool{}

	for _, e := range entries {
		entity := e.EntityType + "/" + e.EntityID
		if held[entity] {
			continue
		}

		if !c.policy.Eligible(e, now) {
			held[entity] = true
			continue
		}

		err := c.dispatch(ctx, e)
		if err == nil {
			if err := c.store.ConfirmEntry(ctx, e.ID); err != nil {
				logger.Log.Error("Failed to confirm delivered entry",
					zap.Int64("entry_id", e.ID), zap.Error(err))
			}
			summary.Delivered++
			continue
		}

		if errors.Is(err, errBadPayload) {
			logger.Log.Warn("Abandoning undecodable outbox entry",
				zap.Int64("entry_id", e.ID),
				zap.String("operation", e.OperationType),
				zap.Error(err),
			)
			if err := c.store.MarkAbandoned(ctx, e.ID, err.Error()); err != nil {
				logger.Log.Error("Failed to abandon entry", zap.Int64("entry_id", e.ID), zap.Error(err))
			}
			summary.Abandoned++
			continue
		}

		if remote.IsAuth(err) {
			logger.Log.Warn("Authentication failed, aborting drain",
				zap.Int64("entry_id", e.ID), zap.Error(err))
			summary.Failed++
			return
		}

		summary.Failed++
		held[entity] = true
		attempts := e.RetryCount + 1
		if c.policy.Exhausted(attempts) {
			logger.Log.Warn("Retry budget exhausted, abandoning entry",
				zap.Int64("entry_id", e.ID),
				zap.String("operation", e.OperationType),
				zap.Int("attempts", attempts),
				zap.Error(err),
			)
			if err := c.store.MarkAbandoned(ctx, e.ID, err.Error()); err != nil {
				logger.Log.Error("Failed to abandon entry", zap.Int64("entry_id", e.ID), zap.Error(err))
			}
			summary.Abandoned++
			continue
		}

		logger.Log.Info("Outbox entry delivery failed, will retry",
			zap.Int64("entry_id", e.ID),
			zap.String("operation", e.OperationType),
			zap.Int("attempts", attempts),
			zap.String("failure", remote.KindOf(err).String()),
		)
		if err := c.store.IncrementRetry(ctx, e.ID, err.Error()); err != nil {
			logger.Log.Error("Failed to record retry", zap.Int64("entry_id", e.ID), zap.Error(err))
		}
	}
}

// dispatch decodes the entry's payload into its typed request and invokes
// the matching gateway call.
func (c *Coordinator) dispatch(ctx context.Context, e store.OutboxEntry) error {
	switch e.OperationType {
	case store.OpMarkAttendance:
		var req model.SubmitAttendanceRequest
		if err := json.Unmarshal(e.Payload, &req); err != nil {
			return fmt.Errorf("%w: %v", errBadPayload, err)
		}
		return c.gateway.SubmitAttendance(ctx, req)

	case store.OpSaveMarks:
		var req model.SubmitMarksRequest
		if err := json.Unmarshal(e.Payload, &req); err != nil {
			return fmt.Errorf("%w: %v", errBadPayload, err)
		}
		return c.gateway.SubmitMarks(ctx, req)

	case store.OpPostAnnouncement:
		var req model.PostAnnouncementRequest
		if err := json.Unmarshal(e.Payload, &req); err != nil {
			return fmt.Errorf("%w: %v", errBadPayload, err)
		}
		return c.gateway.PostAnnouncement(ctx, req)
	}

	return fmt.Errorf("%w: unknown operation type %q", errBadPayload, e.OperationType)
}

// refreshCaches runs every refresher concurrently. Refreshers are
// independent; one failing wholesale does not touch the others.
func (c *Coordinator) refreshCaches(ctx context.Context, summary *PassSummary) {
	results := make(chan int, len(c.refreshers))

	for _, r := range c.refreshers {
		go func(r Refresher) {
			failed := r.Refresh(ctx)
			if failed > 0 {
				logger.Log.Warn("Cache refresh had failures",
					zap.String("refresher", r.Name()),
					zap.Int("failed_domains", failed),
				)
			}
			results <- failed
		}(r)
	}

	for range c.refreshers {
		summary.RefreshErrors += <-results
	}
}
