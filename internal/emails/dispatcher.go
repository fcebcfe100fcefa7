package emails

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/consult/internal/config"
	"github.com/JaimeStill/consult/internal/consultations"
	"github.com/JaimeStill/consult/pkg/mailer"
	"github.com/JaimeStill/consult/pkg/storage"
)

const defaultTimeout = 30 * time.Second

type dispatcher struct {
	source      Source
	sender      mailer.Sender
	store       storage.System
	logger      *slog.Logger
	timeout     time.Duration
	concurrency int
	maxBatch    int
	now         func() time.Time

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

// New creates the email dispatch system.
func New(
	cfg *config.EmailConfig,
	source Source,
	sender mailer.Sender,
	store storage.System,
	logger *slog.Logger,
) System {
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	timeout := cfg.TimeoutDuration()
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &dispatcher{
		source:      source,
		sender:      sender,
		store:       store,
		logger:      logger.With("system", "emails"),
		timeout:     timeout,
		concurrency: concurrency,
		maxBatch:    cfg.MaxBatch,
		now:         time.Now,
		inFlight:    make(map[uuid.UUID]struct{}),
	}
}

func (d *dispatcher) Handler(clock func() time.Time) *Handler {
	return NewHandler(d, d.logger, clock)
}

func (d *dispatcher) InFlight(id uuid.UUID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.inFlight[id]
	return ok
}

func (d *dispatcher) acquire(id uuid.UUID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.inFlight[id]; ok {
		return false
	}
	d.inFlight[id] = struct{}{}
	return true
}

func (d *dispatcher) release(id uuid.UUID) {
	d.mu.Lock()
	delete(d.inFlight, id)
	d.mu.Unlock()
}

func (d *dispatcher) Dispatch(ctx context.Context, req Request) Response {
	if !d.acquire(req.ID) {
		return Response{Error: ErrInFlight.Error()}
	}
	defer d.release(req.ID)

	return d.deliver(ctx, req)
}

func (d *dispatcher) Send(ctx context.Context, id uuid.UUID, conditions []string) (*Result, error) {
	if !d.acquire(id) {
		return nil, ErrInFlight
	}
	defer d.release(id)

	c, err := d.source.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.EmailSent {
		return nil, consultations.ErrAlreadySent
	}
	if !c.Resolved() {
		return nil, ErrNotResolved
	}

	resp := d.deliver(ctx, RequestFor(c, conditions))
	if !resp.Success {
		return &Result{Response: resp, Consultation: c}, nil
	}

	updated, err := d.source.MarkEmailSent(ctx, id, consultations.EmailSentCommand{
		EmailID: resp.EmailID,
		SentAt:  d.now(),
	})
	if err != nil {
		d.logger.Error(
			"email dispatched but not recorded",
			"consultation_id", id,
			"email_id", resp.EmailID,
			"error", err,
		)
		return nil, fmt.Errorf("record email sent: %w", err)
	}

	return &Result{Response: resp, Consultation: updated}, nil
}

func (d *dispatcher) SendBatch(ctx context.Context, ids []uuid.UUID) ([]BatchItem, error) {
	ids = unique(ids)
	if len(ids) == 0 {
		return nil, ErrEmptyBatch
	}
	if d.maxBatch > 0 && len(ids) > d.maxBatch {
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchSize, len(ids), d.maxBatch)
	}

	items := make([]BatchItem, len(ids))

	var g errgroup.Group
	g.SetLimit(d.concurrency)

	for i, id := range ids {
		g.Go(func() error {
			items[i] = BatchItem{ID: id}
			if err := ctx.Err(); err != nil {
				items[i].Error = err.Error()
				return nil
			}

			result, err := d.Send(ctx, id, nil)
			if err != nil {
				items[i].Error = err.Error()
				return nil
			}
			items[i].Response = result.Response
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	d.logger.Info("batch dispatch complete", "count", len(items))
	return items, nil
}

func (d *dispatcher) Drafts(ctx context.Context, id uuid.UUID) ([]storage.Blob, error) {
	blobs, err := d.store.List(ctx, DraftPrefix(id))
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	return blobs, nil
}

func (d *dispatcher) deliver(ctx context.Context, req Request) Response {
	if !req.Decision.Resolved() {
		return Response{Error: ErrNotResolved.Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var resp Response
	if req.Decision == consultations.DecisionConditional {
		resp = d.draft(ctx, req)
	} else {
		resp = d.send(ctx, req)
	}

	if resp.Success {
		d.logger.Info(
			"decision email dispatched",
			"consultation_id", req.ID,
			"decision", req.Decision,
			"email_id", resp.EmailID,
			"draft", resp.Draft,
		)
	} else {
		d.logger.Warn(
			"decision email failed",
			"consultation_id", req.ID,
			"decision", req.Decision,
			"error", resp.Error,
		)
	}
	return resp
}

func (d *dispatcher) draft(ctx context.Context, req Request) Response {
	html, err := Render(req)
	if err != nil {
		return d.failure(err)
	}

	key := DraftKey(req.ID, d.now())
	if err := d.store.Upload(ctx, key, strings.NewReader(html), draftContentType); err != nil {
		return d.failure(fmt.Errorf("failed to store draft: %w", err))
	}

	return Response{
		Success:  true,
		EmailID:  key,
		Draft:    true,
		DraftKey: key,
	}
}

func (d *dispatcher) send(ctx context.Context, req Request) Response {
	html, err := Render(req)
	if err != nil {
		return d.failure(err)
	}

	emailID, err := d.sender.Send(ctx, message(req, html))
	if err != nil {
		return d.failure(err)
	}

	return Response{Success: true, EmailID: emailID}
}

func (d *dispatcher) failure(err error) Response {
	if errors.Is(err, context.DeadlineExceeded) {
		return Response{Error: fmt.Sprintf("email dispatch timed out after %s", d.timeout)}
	}
	return Response{Error: err.Error()}
}

func unique(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
