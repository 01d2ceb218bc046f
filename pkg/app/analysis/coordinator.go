package analysis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rutaviva/contentgate/pkg/domain/moderation"
	"github.com/rutaviva/contentgate/pkg/infra/classifier"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultLoadGrace is how long one analysis waits for an in-flight
	// classifier load before proceeding regardless.
	DefaultLoadGrace = 3 * time.Second

	defaultLoadPoll = 50 * time.Millisecond

	unavailableRiskScore = 0.5
	errorRiskScore       = 0.3
)

// Coordinator orchestrates analysis over one batch of pending uploads. It
// exclusively owns the per-file state list for the lifetime of one upload
// dialog session; collaborators only read counts and verdicts.
type Coordinator struct {
	mu       sync.Mutex
	analyzer Analyzer
	handle   *classifier.Handle
	audit    moderation.AuditRepository
	logger   *logrus.Logger

	batchID    uuid.UUID
	engineName string
	loadGrace  time.Duration
	loadPoll   time.Duration

	order   []string
	entries map[string]*FileState
	files   map[string]File
}

type CoordinatorOption func(*Coordinator)

// WithHandle lets the coordinator read classifier load state to drive its
// degrade decisions. The handle is borrowed, never owned.
func WithHandle(handle *classifier.Handle) CoordinatorOption {
	return func(c *Coordinator) {
		c.handle = handle
	}
}

// WithAudit persists every verdict; persistence failures are logged and
// never block a verdict.
func WithAudit(repo moderation.AuditRepository, engineName string) CoordinatorOption {
	return func(c *Coordinator) {
		c.audit = repo
		c.engineName = engineName
	}
}

// WithLoadGrace overrides the load-wait grace period and poll interval.
func WithLoadGrace(grace, poll time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if grace > 0 {
			c.loadGrace = grace
		}
		if poll > 0 {
			c.loadPoll = poll
		}
	}
}

func NewCoordinator(logger *logrus.Logger, analyzer Analyzer, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		analyzer:   analyzer,
		logger:     logger,
		batchID:    uuid.New(),
		engineName: "unknown",
		loadGrace:  DefaultLoadGrace,
		loadPoll:   defaultLoadPoll,
		entries:    make(map[string]*FileState),
		files:      make(map[string]File),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Coordinator) BatchID() uuid.UUID {
	return c.batchID
}

// RegisterBatch creates a pending entry for every file not already tracked
// by name. Re-registering an overlapping batch never resets existing state.
func (c *Coordinator) RegisterBatch(files []File) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, f := range files {
		if _, tracked := c.entries[f.Name]; tracked {
			continue
		}
		c.entries[f.Name] = &FileState{Name: f.Name, Status: StatusPending}
		c.files[f.Name] = f
		c.order = append(c.order, f.Name)
	}
}

// AnalyzeOne runs a single file through the active engine. It is legal from
// pending and from rejected (re-analysis); once analyzing, the file runs to
// completion and ends approved or rejected, never pending.
func (c *Coordinator) AnalyzeOne(ctx context.Context, name string) error {
	c.mu.Lock()
	entry, ok := c.entries[name]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownFile, name)
	}
	if entry.Status != StatusPending && entry.Status != StatusRejected {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s is %s", ErrIllegalTransition, name, entry.Status)
	}
	entry.Status = StatusAnalyzing
	file := c.files[name]
	c.mu.Unlock()

	verdict := c.analyze(ctx, file)

	c.mu.Lock()
	entry.Verdict = &verdict
	if verdict.IsApproved {
		entry.Status = StatusApproved
	} else {
		entry.Status = StatusRejected
	}
	c.mu.Unlock()

	c.recordAudit(ctx, name, verdict)
	return nil
}

func (c *Coordinator) analyze(ctx context.Context, file File) moderation.Verdict {
	if c.handle != nil {
		state := c.handle.State()
		if state.Loading {
			c.waitForLoad(ctx)
			state = c.handle.State()
		}
		if !state.Loaded && !state.Loading {
			// fail-open: infrastructure being down must not block uploads
			c.logger.WithField("file", file.Name).Warn("classifier unavailable, default-approving")
			return moderation.Verdict{
				IsApproved:      true,
				RiskScore:       unavailableRiskScore,
				RejectionReason: "classifier unavailable, default-approved",
			}
		}
	}

	verdict, err := c.analyzer.AnalyzeImage(ctx, file)
	if err != nil {
		c.logger.WithError(err).WithField("file", file.Name).Warn("image analysis errored, default-approving")
		return moderation.Verdict{
			IsApproved:      true,
			RiskScore:       errorRiskScore,
			RejectionReason: "analysis error, default-approved",
		}
	}
	return verdict
}

// waitForLoad blocks up to the grace period while a classifier load is in
// flight, then lets analysis proceed regardless of the outcome.
func (c *Coordinator) waitForLoad(ctx context.Context) {
	deadline := time.Now().Add(c.loadGrace)
	for time.Now().Before(deadline) {
		if state := c.handle.State(); !state.Loading {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.loadPoll):
		}
	}
}

// AnalyzeAll processes every pending entry sequentially in submission
// order. Sequential on purpose: load-grace waits and remote timeouts must
// not pile up into parallel contention, and progress counters stay
// monotonic. Batches are small, user-picked file sets.
func (c *Coordinator) AnalyzeAll(ctx context.Context) error {
	for _, name := range c.pendingNames() {
		if err := c.AnalyzeOne(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func (c *Coordinator) pendingNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.order))
	for _, name := range c.order {
		if c.entries[name].Status == StatusPending {
			names = append(names, name)
		}
	}
	return names
}

// Reanalyze re-runs analysis for a previously rejected file on demand.
func (c *Coordinator) Reanalyze(ctx context.Context, name string) error {
	c.mu.Lock()
	entry, ok := c.entries[name]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownFile, name)
	}
	if entry.Status != StatusRejected {
		c.mu.Unlock()
		return fmt.Errorf("%w: can only reanalyze rejected files, %s is %s", ErrIllegalTransition, name, entry.Status)
	}
	c.mu.Unlock()

	return c.AnalyzeOne(ctx, name)
}

// Counts recomputes the batch projection on every call; it is never cached.
func (c *Coordinator) Counts() Counts {
	c.mu.Lock()
	defer c.mu.Unlock()

	counts := Counts{Total: len(c.entries)}
	for _, entry := range c.entries {
		switch entry.Status {
		case StatusPending:
			counts.Pending++
		case StatusAnalyzing:
			counts.Analyzing++
		case StatusApproved:
			counts.Approved++
		case StatusRejected:
			counts.Rejected++
		}
	}
	return counts
}

// Files returns the tracked states in submission order.
func (c *Coordinator) Files() []FileState {
	c.mu.Lock()
	defer c.mu.Unlock()

	states := make([]FileState, 0, len(c.order))
	for _, name := range c.order {
		states = append(states, *c.entries[name])
	}
	return states
}

// ApprovedFiles is the upload gate: only approved entries may be handed to
// the upload transport. An empty approved subset blocks the action with
// ErrNothingEligible.
func (c *Coordinator) ApprovedFiles() ([]File, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var approved []File
	for _, name := range c.order {
		if c.entries[name].Status == StatusApproved {
			approved = append(approved, c.files[name])
		}
	}
	if len(approved) == 0 {
		return nil, ErrNothingEligible
	}
	return approved, nil
}

// Remove drops one file from the batch.
func (c *Coordinator) Remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[name]; !ok {
		return
	}
	delete(c.entries, name)
	delete(c.files, name)
	for i, n := range c.order {
		if n == name {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Clear resets the batch, e.g. when the upload dialog closes.
func (c *Coordinator) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order = nil
	c.entries = make(map[string]*FileState)
	c.files = make(map[string]File)
}

func (c *Coordinator) recordAudit(ctx context.Context, name string, verdict moderation.Verdict) {
	if c.audit == nil {
		return
	}
	record := moderation.NewAuditRecord(c.batchID, name, c.engineName, verdict)
	if err := c.audit.Save(ctx, record); err != nil {
		c.logger.WithError(err).WithField("file", name).Error("failed to persist audit record")
	}
}
