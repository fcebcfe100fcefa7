package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"
)

// ErrSimulatedFailure is returned by the stub backend for its randomized failures.
var ErrSimulatedFailure = errors.New("failed to send email, please try again")

// Stub simulates a delivery backend with a fixed latency and a random failure rate.
type Stub struct {
	latency time.Duration
	rate    float64
	logger  *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewStub creates a Stub. A nil rng seeds one from the runtime source.
func NewStub(latency time.Duration, failureRate float64, rng *rand.Rand, logger *slog.Logger) *Stub {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Stub{
		latency: latency,
		rate:    failureRate,
		logger:  logger,
		rng:     rng,
	}
}

func (s *Stub) Mode() string { return ModeStub }

func (s *Stub) Send(ctx context.Context, msg Message) (string, error) {
	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	s.mu.Lock()
	fail := s.rng.Float64() < s.rate
	s.mu.Unlock()

	if fail {
		s.logger.Warn("simulated send failure", "subject", msg.Subject)
		return "", ErrSimulatedFailure
	}

	id := fmt.Sprintf("email_%s_%d", msg.Metadata["consultation_id"], time.Now().UnixMilli())
	s.logger.Info("simulated send", "email_id", id, "to", msg.To)
	return id, nil
}
