// Package gateway wraps a language-model backend with rate limiting,
// retry-with-backoff, response caching, and fallback answers, hiding quota
// limits and transient failures from callers.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeeves-ai/jeeves/pkg/backend"
	"github.com/jeeves-ai/jeeves/pkg/budget"
	"github.com/jeeves-ai/jeeves/pkg/cache/sqlite"
	"github.com/jeeves-ai/jeeves/pkg/config"
	"github.com/jeeves-ai/jeeves/pkg/exchange"
	"github.com/jeeves-ai/jeeves/pkg/models"
	"github.com/jeeves-ai/jeeves/pkg/translate"
)

// ErrInvalidRequest is returned for requests that fail local validation.
// Never retried, never cached.
var ErrInvalidRequest = errors.New("invalid request")

// ErrBackendUnavailable is returned when retries are exhausted or the
// backend failed fatally and fallback is disabled.
var ErrBackendUnavailable = errors.New("backend unavailable")

// maxBackoff bounds the exponential retry delay.
const maxBackoff = 30 * time.Second

const fallbackMessage = "The assistant is temporarily unavailable. Please try again in a few minutes."

// Cache is the response cache consumed by the gateway.
type Cache interface {
	Get(requestHash, model string) ([]byte, bool)
	Put(requestHash, model string, response []byte) error
}

// Budget gates outbound calls on a per-period quota.
type Budget interface {
	Check(ctx context.Context) error
}

// Recorder logs answered requests.
type Recorder interface {
	Record(ctx context.Context, rec models.HistoryRecord) error
}

// Gateway presents a single Answer operation over a backend. Safe for
// concurrent use: only the throttle schedule is guarded by the mutex, so
// cache lookups and in-flight backend calls never serialize behind it.
type Gateway struct {
	cfg        *config.Config
	backend    backend.Caller
	cache      Cache
	translator translate.Translator
	budget     Budget
	history    Recorder

	mu       sync.Mutex
	nextCall time.Time
}

// New creates a Gateway. cache, enforcer, and hist may be nil when the
// corresponding feature is disabled; a nil translator disables localization.
func New(cfg *config.Config, caller backend.Caller, cache Cache, translator translate.Translator, enforcer *budget.Enforcer, hist Recorder) *Gateway {
	if translator == nil {
		translator = translate.Noop{}
	}
	g := &Gateway{
		cfg:        cfg,
		backend:    caller,
		cache:      cache,
		translator: translator,
		history:    hist,
	}
	if enforcer != nil {
		g.budget = enforcer
	}
	return g
}

// Answer responds to a request from the cache, the backend, or the fallback
// policy, in that order of preference.
func (g *Gateway) Answer(ctx context.Context, req models.Request) (models.Answer, error) {
	start := time.Now()
	requestID := uuid.NewString()

	if req.NormalizedPrompt() == "" {
		return models.Answer{}, fmt.Errorf("%w: empty prompt", ErrInvalidRequest)
	}

	model := req.Model
	if model == "" {
		model = g.cfg.Backend.Model
	}
	keyReq := req
	keyReq.Model = model
	hash := sqlite.HashRequest(keyReq)

	// Fast path: a non-expired cache entry skips the throttle entirely.
	if g.cache != nil {
		if data, ok := g.cache.Get(hash, model); ok {
			ans := models.Answer{
				RequestID: requestID,
				Text:      string(data),
				Source:    models.SourceCache,
				Model:     model,
				Attempts:  0,
			}
			g.record(ctx, ans, hash, start)
			return ans, nil
		}
	}

	if g.budget != nil {
		if err := g.budget.Check(ctx); err != nil {
			if errors.Is(err, budget.ErrBudgetExceeded) {
				log.Printf("request %s: call budget exceeded", requestID)
				return g.fail(ctx, requestID, req, model, hash, 0, start, err)
			}
			return models.Answer{}, err
		}
	}

	attempts := 0
	var lastErr error
	for attempt := 0; attempt <= g.cfg.Retry.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(g.cfg.Retry.RetryDelay, attempt-1)
			log.Printf("request %s: retry %d/%d in %v after: %v", requestID, attempt, g.cfg.Retry.MaxRetries, delay, lastErr)
			if err := sleepCtx(ctx, delay); err != nil {
				return models.Answer{}, err
			}
		}

		if err := g.waitTurn(ctx); err != nil {
			return models.Answer{}, err
		}

		text, err := g.backend.Complete(ctx, req)
		g.noteCallDone()
		attempts++

		if err == nil {
			if g.cache != nil {
				if err := g.cache.Put(hash, model, []byte(text)); err != nil {
					log.Printf("request %s: cache put error: %v", requestID, err)
				}
			}
			ans := models.Answer{
				RequestID: requestID,
				Text:      text,
				Source:    models.SourceLive,
				Model:     model,
				Attempts:  attempts,
			}
			g.record(ctx, ans, hash, start)
			return ans, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			return models.Answer{}, ctx.Err()
		}
		if !backend.IsRetryable(err) {
			break
		}
	}

	return g.fail(ctx, requestID, req, model, hash, attempts, start, lastErr)
}

// IsBackendReachable reports backend availability without a full request.
func (g *Gateway) IsBackendReachable(ctx context.Context) bool {
	return g.backend.Reachable(ctx)
}

// fail resolves an unanswerable request: a fallback answer when enabled,
// otherwise ErrBackendUnavailable. Fallback answers are never cached.
func (g *Gateway) fail(ctx context.Context, requestID string, req models.Request, model, hash string, attempts int, start time.Time, cause error) (models.Answer, error) {
	if !g.cfg.Fallback.Enabled {
		return models.Answer{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, cause)
	}

	text, ok := exchange.AnswerLocally(req.NormalizedPrompt())
	if !ok {
		text = fallbackMessage
	}
	text = g.localize(ctx, req.NormalizedPrompt(), text)

	log.Printf("request %s: answering with fallback after %d attempts: %v", requestID, attempts, cause)
	ans := models.Answer{
		RequestID: requestID,
		Text:      text,
		Source:    models.SourceFallback,
		Model:     model,
		Attempts:  attempts,
	}
	g.record(ctx, ans, hash, start)
	return ans, nil
}

// localize translates a fallback answer into the language of the prompt.
// Any translation failure leaves the answer untranslated.
func (g *Gateway) localize(ctx context.Context, prompt, text string) string {
	if !g.cfg.Translation.Enabled {
		return text
	}
	lang, err := g.translator.Detect(ctx, prompt)
	if err != nil {
		log.Printf("language detection error: %v", err)
		return text
	}
	if lang == "" || lang == "en" {
		return text
	}
	translated, err := g.translator.Translate(ctx, text, "en", lang)
	if err != nil {
		log.Printf("translate error: %v", err)
		return text
	}
	return translated
}

// waitTurn reserves the next outbound call slot and suspends until it
// arrives. The mutex is held only for the reservation, never while waiting,
// so concurrent cache lookups proceed and the wait aborts on cancellation.
func (g *Gateway) waitTurn(ctx context.Context) error {
	interval := g.cfg.Retry.RateLimitDelay

	g.mu.Lock()
	now := time.Now()
	at := g.nextCall
	if at.Before(now) {
		at = now
	}
	g.nextCall = at.Add(interval)
	g.mu.Unlock()

	return sleepCtx(ctx, time.Until(at))
}

// noteCallDone pushes the next call slot out so the interval is measured
// from the end of the finished call, not just its start.
func (g *Gateway) noteCallDone() {
	g.mu.Lock()
	if next := time.Now().Add(g.cfg.Retry.RateLimitDelay); next.After(g.nextCall) {
		g.nextCall = next
	}
	g.mu.Unlock()
}

func (g *Gateway) record(ctx context.Context, ans models.Answer, hash string, start time.Time) {
	if g.history == nil {
		return
	}
	rec := models.HistoryRecord{
		RequestID:  ans.RequestID,
		PromptHash: hash,
		Model:      ans.Model,
		Source:     ans.Source,
		Attempts:   ans.Attempts,
		LatencyMs:  time.Since(start).Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
	if err := g.history.Record(ctx, rec); err != nil {
		log.Printf("history record error: %v", err)
	}
}

// backoffDelay returns base * 2^idx, capped at maxBackoff.
func backoffDelay(base time.Duration, idx int) time.Duration {
	if base <= 0 {
		return 0
	}
	d := base
	for i := 0; i < idx; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

// sleepCtx waits for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
