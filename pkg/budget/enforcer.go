// Package budget caps outbound backend calls per period, complementing the
// gateway's per-call throttle with a coarse daily or monthly quota.
package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jeeves-ai/jeeves/pkg/config"
	"github.com/jeeves-ai/jeeves/pkg/models"
)

// ErrBudgetExceeded is returned when the period's call cap is reached.
var ErrBudgetExceeded = errors.New("call budget exceeded")

// CallCounter supplies the number of outbound requests since a given time.
type CallCounter interface {
	CountCallsSince(ctx context.Context, since time.Time) (int64, error)
}

// Enforcer checks outbound call counts against the configured cap.
type Enforcer struct {
	cfg     config.BudgetConfig
	counter CallCounter
}

// New creates an Enforcer backed by the given counter.
func New(cfg config.BudgetConfig, counter CallCounter) *Enforcer {
	return &Enforcer{cfg: cfg, counter: counter}
}

// Check returns ErrBudgetExceeded if the current period's cap is reached.
func (e *Enforcer) Check(ctx context.Context) error {
	used, err := e.counter.CountCallsSince(ctx, periodStart(e.cfg.Period))
	if err != nil {
		return fmt.Errorf("budget check: %w", err)
	}
	if used >= e.cfg.MaxCalls {
		return ErrBudgetExceeded
	}
	return nil
}

// Status returns current usage against the cap.
func (e *Enforcer) Status(ctx context.Context) (models.BudgetStatus, error) {
	used, err := e.counter.CountCallsSince(ctx, periodStart(e.cfg.Period))
	if err != nil {
		return models.BudgetStatus{}, fmt.Errorf("budget status: %w", err)
	}
	remaining := e.cfg.MaxCalls - used
	if remaining < 0 {
		remaining = 0
	}
	return models.BudgetStatus{
		Period:    e.cfg.Period,
		MaxCalls:  e.cfg.MaxCalls,
		Used:      used,
		Remaining: remaining,
	}, nil
}

func periodStart(period models.BudgetPeriod) time.Time {
	now := time.Now().UTC()
	switch period {
	case models.BudgetMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	default: // daily
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
}
