package llm

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"codeport/internal/domain"
	"codeport/internal/port"
)

// Retry configuration
const (
	defaultMaxRetries = 3
	initialBackoff    = 2 * time.Second
	maxBackoff        = 30 * time.Second
	backoffMultiplier = 2.0
)

// RetryTranslator retries transient failures of the wrapped translator with
// exponential backoff. Validation errors are returned immediately.
type RetryTranslator struct {
	next       port.Translator
	maxRetries int
	initial    time.Duration
	max        time.Duration
	logger     zerolog.Logger
}

func NewRetryTranslator(next port.Translator, maxRetries int) *RetryTranslator {
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}
	return &RetryTranslator{
		next:       next,
		maxRetries: maxRetries,
		initial:    initialBackoff,
		max:        maxBackoff,
		logger:     log.Logger,
	}
}

// WithBackoff overrides the initial and maximum backoff.
func (r *RetryTranslator) WithBackoff(initial, max time.Duration) *RetryTranslator {
	r.initial = initial
	r.max = max
	return r
}

func (r *RetryTranslator) WithLogger(logger zerolog.Logger) *RetryTranslator {
	r.logger = logger
	return r
}

func (r *RetryTranslator) CallChat(ctx context.Context, messages []domain.Message, unit domain.TranslationUnit) (domain.ChatResult, error) {
	var lastErr error
	backoff := r.initial
	attempts := 0

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			r.logger.Debug().
				Str("unit", unit.SymbolName).
				Int("attempt", attempt+1).
				Dur("backoff", backoff).
				Msg("retrying after backoff")

			select {
			case <-ctx.Done():
				return domain.ChatResult{}, ctx.Err()
			case <-time.After(backoff):
			}

			backoff = time.Duration(float64(backoff) * backoffMultiplier)
			if backoff > r.max {
				backoff = r.max
			}
		}

		attempts++
		res, err := r.next.CallChat(ctx, messages, unit)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return domain.ChatResult{}, ctx.Err()
		}

		if errors.Is(err, domain.ErrValidation) {
			r.logger.Debug().Err(err).Str("unit", unit.SymbolName).Msg("non-retryable error, stopping retries")
			break
		}

		r.logger.Warn().
			Err(err).
			Str("unit", unit.SymbolName).
			Int("attempt", attempt+1).
			Int("max_retries", r.maxRetries).
			Msg("retryable error occurred")
	}

	return domain.ChatResult{}, &domain.TransportError{Symbol: unit.SymbolName, Attempts: attempts, Err: lastErr}
}

func (r *RetryTranslator) ModelName() string {
	return r.next.ModelName()
}
