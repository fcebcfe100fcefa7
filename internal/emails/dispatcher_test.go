package emails_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/consult/internal/config"
	"github.com/JaimeStill/consult/internal/consultations"
	"github.com/JaimeStill/consult/internal/emails"
	"github.com/JaimeStill/consult/pkg/lifecycle"
	"github.com/JaimeStill/consult/pkg/mailer"
	"github.com/JaimeStill/consult/pkg/storage"
)

type mockSource struct {
	findFn func(ctx context.Context, id uuid.UUID) (*consultations.Consultation, error)
	markFn func(ctx context.Context, id uuid.UUID, cmd consultations.EmailSentCommand) (*consultations.Consultation, error)

	marked atomic.Int32
}

func (m *mockSource) Find(ctx context.Context, id uuid.UUID) (*consultations.Consultation, error) {
	return m.findFn(ctx, id)
}

func (m *mockSource) MarkEmailSent(ctx context.Context, id uuid.UUID, cmd consultations.EmailSentCommand) (*consultations.Consultation, error) {
	m.marked.Add(1)
	if m.markFn != nil {
		return m.markFn(ctx, id, cmd)
	}
	c, err := m.findFn(ctx, id)
	if err != nil {
		return nil, err
	}
	sent := *c
	sent.EmailSent = true
	sent.EmailSentAt = &cmd.SentAt
	sent.EmailID = &cmd.EmailID
	return &sent, nil
}

type mockSender struct {
	sendFn func(ctx context.Context, msg mailer.Message) (string, error)

	mu   sync.Mutex
	sent []mailer.Message
}

func (m *mockSender) Mode() string { return "mock" }

func (m *mockSender) Send(ctx context.Context, msg mailer.Message) (string, error) {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	if m.sendFn != nil {
		return m.sendFn(ctx, msg)
	}
	return "msg-" + msg.Metadata["consultation_id"], nil
}

func (m *mockSender) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type upload struct {
	key         string
	body        string
	contentType string
}

type mockStore struct {
	uploadErr error

	mu      sync.Mutex
	uploads []upload
	prefix  string
}

func (m *mockStore) Start(*lifecycle.Coordinator) error { return nil }

func (m *mockStore) Upload(_ context.Context, key string, r io.Reader, contentType string) error {
	if m.uploadErr != nil {
		return m.uploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.uploads = append(m.uploads, upload{key: key, body: string(data), contentType: contentType})
	m.mu.Unlock()
	return nil
}

func (m *mockStore) Download(context.Context, string) (io.ReadCloser, error) {
	return nil, storage.ErrNotFound
}

func (m *mockStore) Delete(context.Context, string) error { return nil }

func (m *mockStore) Exists(context.Context, string) (bool, error) { return false, nil }

func (m *mockStore) List(_ context.Context, prefix string) ([]storage.Blob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefix = prefix
	var blobs []storage.Blob
	for _, u := range m.uploads {
		if strings.HasPrefix(u.key, prefix) {
			blobs = append(blobs, storage.Blob{Key: u.key, ContentType: u.contentType, Size: int64(len(u.body))})
		}
	}
	return blobs, nil
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func testConfig() *config.EmailConfig {
	return &config.EmailConfig{Timeout: "1s", Concurrency: 2, MaxBatch: 5}
}

func record(decision consultations.Decision) *consultations.Consultation {
	contact := "permits@northridge.example"
	return &consultations.Consultation{
		ID:            uuid.New(),
		Company:       "Northridge Energy",
		Project:       "Pipeline Expansion",
		ProjectType:   "oil_gas",
		ContactEmail:  &contact,
		Deadline:      consultations.NewDate(2026, time.March, 20),
		Decision:      decision,
		PaymentStatus: consultations.PaymentPending,
	}
}

func sourceOf(records ...*consultations.Consultation) *mockSource {
	byID := make(map[uuid.UUID]*consultations.Consultation, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}
	return &mockSource{
		findFn: func(_ context.Context, id uuid.UUID) (*consultations.Consultation, error) {
			c, ok := byID[id]
			if !ok {
				return nil, consultations.ErrNotFound
			}
			return c, nil
		},
	}
}

func TestSendEndorsement(t *testing.T) {
	c := record(consultations.DecisionEndorse)
	src := sourceOf(c)
	sender := &mockSender{}
	store := &mockStore{}

	sys := emails.New(testConfig(), src, sender, store, discard)

	result, err := sys.Send(context.Background(), c.ID, nil)
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	if !result.Success || result.Draft {
		t.Errorf("response = %+v, want plain success", result.Response)
	}
	if result.EmailID != "msg-"+c.ID.String() {
		t.Errorf("EmailID = %q", result.EmailID)
	}
	if !result.Consultation.EmailSent || result.Consultation.EmailSentAt == nil {
		t.Error("consultation not marked sent")
	}
	if src.marked.Load() != 1 {
		t.Errorf("MarkEmailSent calls = %d, want 1", src.marked.Load())
	}
	if len(store.uploads) != 0 {
		t.Errorf("uploads = %d, want 0", len(store.uploads))
	}

	msg := sender.sent[0]
	if len(msg.To) != 1 || msg.To[0] != *c.ContactEmail {
		t.Errorf("To = %v", msg.To)
	}
	if msg.Metadata["decision"] != "endorse_no_concerns" || msg.Metadata["deadline"] != "2026-03-20" {
		t.Errorf("Metadata = %v", msg.Metadata)
	}
	if !strings.Contains(msg.HTML, "Endorse with No Concerns") {
		t.Error("HTML missing decision label")
	}
}

func TestSendConditionalCreatesDraft(t *testing.T) {
	c := record(consultations.DecisionConditional)
	src := sourceOf(c)
	sender := &mockSender{}
	store := &mockStore{}

	sys := emails.New(testConfig(), src, sender, store, discard)

	result, err := sys.Send(context.Background(), c.ID, []string{"Archaeological monitor on site"})
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	if !result.Success || !result.Draft {
		t.Errorf("response = %+v, want draft success", result.Response)
	}
	if !strings.HasPrefix(result.DraftKey, emails.DraftPrefix(c.ID)) {
		t.Errorf("DraftKey = %q", result.DraftKey)
	}
	if sender.count() != 0 {
		t.Errorf("sender calls = %d, want 0", sender.count())
	}
	if len(store.uploads) != 1 {
		t.Fatalf("uploads = %d, want 1", len(store.uploads))
	}

	u := store.uploads[0]
	if u.key != result.DraftKey {
		t.Errorf("upload key = %q, want %q", u.key, result.DraftKey)
	}
	if !strings.HasPrefix(u.contentType, "text/html") {
		t.Errorf("content type = %q", u.contentType)
	}
	if !strings.Contains(u.body, "<li>Archaeological monitor on site</li>") {
		t.Error("draft missing condition")
	}
	if !result.Consultation.EmailSent {
		t.Error("draft creation should mark the consultation")
	}

	blobs, err := sys.Drafts(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("Drafts() error: %v", err)
	}
	if len(blobs) != 1 || blobs[0].Key != result.DraftKey {
		t.Errorf("Drafts() = %+v", blobs)
	}
}

func TestSendFailureLeavesRecord(t *testing.T) {
	t.Run("sender error", func(t *testing.T) {
		c := record(consultations.DecisionNotEndorsed)
		src := sourceOf(c)
		sender := &mockSender{
			sendFn: func(context.Context, mailer.Message) (string, error) {
				return "", mailer.ErrSimulatedFailure
			},
		}

		sys := emails.New(testConfig(), src, sender, &mockStore{}, discard)

		result, err := sys.Send(context.Background(), c.ID, nil)
		if err != nil {
			t.Fatalf("Send() error: %v", err)
		}
		if result.Success || result.EmailID != "" {
			t.Errorf("response = %+v, want failure", result.Response)
		}
		if result.Error != mailer.ErrSimulatedFailure.Error() {
			t.Errorf("Error = %q", result.Error)
		}
		if src.marked.Load() != 0 {
			t.Error("failed send must not mark the consultation")
		}
		if result.Consultation.EmailSent {
			t.Error("consultation reported as sent")
		}
	})

	t.Run("draft upload error", func(t *testing.T) {
		c := record(consultations.DecisionConditional)
		src := sourceOf(c)
		store := &mockStore{uploadErr: errors.New("container unavailable")}

		sys := emails.New(testConfig(), src, &mockSender{}, store, discard)

		result, err := sys.Send(context.Background(), c.ID, nil)
		if err != nil {
			t.Fatalf("Send() error: %v", err)
		}
		if result.Success {
			t.Error("expected failure")
		}
		if !strings.Contains(result.Error, "container unavailable") {
			t.Errorf("Error = %q", result.Error)
		}
		if src.marked.Load() != 0 {
			t.Error("failed draft must not mark the consultation")
		}
	})
}

func TestSendRejects(t *testing.T) {
	sent := record(consultations.DecisionEndorse)
	sent.EmailSent = true
	pending := record(consultations.DecisionPending)
	none := record(consultations.DecisionNone)

	src := sourceOf(sent, pending, none)
	sender := &mockSender{}
	sys := emails.New(testConfig(), src, sender, &mockStore{}, discard)

	tests := []struct {
		name string
		id   uuid.UUID
		want error
	}{
		{"already sent", sent.ID, consultations.ErrAlreadySent},
		{"pending", pending.ID, emails.ErrNotResolved},
		{"no decision", none.ID, emails.ErrNotResolved},
		{"missing", uuid.New(), consultations.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sys.Send(context.Background(), tt.id, nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("Send() error = %v, want %v", err, tt.want)
			}
		})
	}

	if sender.count() != 0 {
		t.Errorf("sender calls = %d, want 0", sender.count())
	}
}

func TestSendInFlightGuard(t *testing.T) {
	c := record(consultations.DecisionEndorse)
	other := record(consultations.DecisionEndorse)
	src := sourceOf(c, other)

	release := make(chan struct{})
	sender := &mockSender{
		sendFn: func(_ context.Context, msg mailer.Message) (string, error) {
			if msg.Metadata["consultation_id"] == c.ID.String() {
				<-release
			}
			return "ok", nil
		},
	}

	sys := emails.New(testConfig(), src, sender, &mockStore{}, discard)

	done := make(chan error, 1)
	go func() {
		_, err := sys.Send(context.Background(), c.ID, nil)
		done <- err
	}()

	deadline := time.Now().Add(time.Second)
	for !sys.InFlight(c.ID) {
		if time.Now().After(deadline) {
			t.Fatal("send never became in flight")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := sys.Send(context.Background(), c.ID, nil); !errors.Is(err, emails.ErrInFlight) {
		t.Errorf("second Send() error = %v, want ErrInFlight", err)
	}

	resp := sys.Dispatch(context.Background(), emails.RequestFor(c, nil))
	if resp.Success || resp.Error != emails.ErrInFlight.Error() {
		t.Errorf("Dispatch() = %+v, want in-flight rejection", resp)
	}

	if _, err := sys.Send(context.Background(), other.ID, nil); err != nil {
		t.Errorf("independent Send() error: %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first Send() error: %v", err)
	}
	if sys.InFlight(c.ID) {
		t.Error("in-flight marker not released")
	}
}

func TestDispatchTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.Timeout = "20ms"

	sender := &mockSender{
		sendFn: func(ctx context.Context, _ mailer.Message) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}

	sys := emails.New(cfg, sourceOf(), sender, &mockStore{}, discard)

	resp := sys.Dispatch(context.Background(), emails.RequestFor(record(consultations.DecisionEndorse), nil))
	if resp.Success {
		t.Fatal("expected timeout failure")
	}
	if !strings.Contains(resp.Error, "timed out") {
		t.Errorf("Error = %q, want timeout", resp.Error)
	}
}

func TestDispatchUnresolved(t *testing.T) {
	sender := &mockSender{}
	sys := emails.New(testConfig(), sourceOf(), sender, &mockStore{}, discard)

	resp := sys.Dispatch(context.Background(), emails.RequestFor(record(consultations.DecisionPending), nil))
	if resp.Success || resp.Error != emails.ErrNotResolved.Error() {
		t.Errorf("Dispatch() = %+v", resp)
	}
	if sender.count() != 0 {
		t.Error("sender called for unresolved decision")
	}
}

func TestSendBatch(t *testing.T) {
	a := record(consultations.DecisionEndorse)
	b := record(consultations.DecisionNotEndorsed)
	pending := record(consultations.DecisionPending)
	src := sourceOf(a, b, pending)

	var active, peak atomic.Int32
	sender := &mockSender{
		sendFn: func(_ context.Context, msg mailer.Message) (string, error) {
			n := active.Add(1)
			defer active.Add(-1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			return "msg-" + msg.Metadata["consultation_id"], nil
		},
	}

	cfg := testConfig()
	cfg.Concurrency = 1
	sys := emails.New(cfg, src, sender, &mockStore{}, discard)

	items, err := sys.SendBatch(context.Background(), []uuid.UUID{a.ID, pending.ID, a.ID, b.ID})
	if err != nil {
		t.Fatalf("SendBatch() error: %v", err)
	}

	if len(items) != 3 {
		t.Fatalf("items = %d, want 3 after dedupe", len(items))
	}
	if items[0].ID != a.ID || !items[0].Success {
		t.Errorf("items[0] = %+v", items[0])
	}
	if items[1].ID != pending.ID || items[1].Success || items[1].Error != emails.ErrNotResolved.Error() {
		t.Errorf("items[1] = %+v", items[1])
	}
	if items[2].ID != b.ID || !items[2].Success {
		t.Errorf("items[2] = %+v", items[2])
	}
	if peak.Load() > 1 {
		t.Errorf("peak concurrency = %d, want 1", peak.Load())
	}
	if src.marked.Load() != 2 {
		t.Errorf("MarkEmailSent calls = %d, want 2", src.marked.Load())
	}
}

func TestSendBatchLimits(t *testing.T) {
	sys := emails.New(testConfig(), sourceOf(), &mockSender{}, &mockStore{}, discard)

	if _, err := sys.SendBatch(context.Background(), nil); !errors.Is(err, emails.ErrEmptyBatch) {
		t.Errorf("empty batch error = %v", err)
	}

	ids := make([]uuid.UUID, 6)
	for i := range ids {
		ids[i] = uuid.New()
	}
	if _, err := sys.SendBatch(context.Background(), ids); !errors.Is(err, emails.ErrBatchSize) {
		t.Errorf("oversized batch error = %v", err)
	}
}
