package youtube

import (
	"fmt"
	"sync"
	"time"

	"github.com/kapu/youtube-data-go/internal/constants"
	"github.com/kapu/youtube-data-go/pkg/errors"
	"go.uber.org/zap"
)

// QuotaExceededError is the cause of the UpstreamError returned when a call
// would exceed the local daily budget.
type QuotaExceededError struct {
	Used      int
	Limit     int
	Requested int
	ResetTime time.Time
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("YouTube API quota exceeded: used %d/%d (requested %d more), resets at %s",
		e.Used, e.Limit, e.Requested, e.ResetTime.Format(time.RFC3339))
}

// quotaMeter tracks units spent since the last midnight Pacific reset.
// A limit of 0 disables the budget check; usage is still counted.
type quotaMeter struct {
	mu     sync.Mutex
	limit  int
	margin int
	used   int
	reset  time.Time
	now    func() time.Time
	logger *zap.Logger
	onUse  func(used int)
}

func newQuotaMeter(limit int, now func() time.Time, logger *zap.Logger) *quotaMeter {
	if now == nil {
		now = time.Now
	}
	margin := constants.QuotaConfig.SafetyMargin
	if margin >= limit {
		margin = 0
	}
	q := &quotaMeter{
		limit:  limit,
		margin: margin,
		now:    now,
		logger: logger,
	}
	q.reset = nextQuotaReset(now())
	return q
}

func nextQuotaReset(now time.Time) time.Time {
	pt, err := time.LoadLocation(constants.QuotaConfig.ResetLocation)
	if err != nil {
		pt = time.FixedZone("PT", -8*60*60)
	}
	local := now.In(pt)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, pt)
}

// rollover must be called with mu held.
func (q *quotaMeter) rollover() {
	if q.now().Before(q.reset) {
		return
	}
	q.used = 0
	q.reset = nextQuotaReset(q.now())
	q.logger.Info("YouTube API quota auto-reset", zap.Time("next_reset", q.reset))
}

// check returns an UpstreamError wrapping *QuotaExceededError when cost
// units would push usage over limit minus the safety margin.
func (q *quotaMeter) check(operation string, cost int) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.rollover()
	if q.limit <= 0 || q.used+cost <= q.limit-q.margin {
		return nil
	}

	upErr := errors.NewUpstreamError("local quota budget exhausted", operation, &QuotaExceededError{
		Used:      q.used,
		Limit:     q.limit,
		Requested: cost,
		ResetTime: q.reset,
	})
	upErr.Reason = "quotaExceeded"
	upErr.Context["reason"] = upErr.Reason
	return upErr
}

func (q *quotaMeter) consume(cost int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.rollover()
	q.used += cost
	if q.onUse != nil {
		q.onUse(q.used)
	}

	if q.limit <= 0 {
		return
	}
	remaining := q.limit - q.used
	q.logger.Debug("YouTube API quota consumed",
		zap.Int("cost", cost),
		zap.Int("used", q.used),
		zap.Int("remaining", remaining))

	if remaining < q.margin {
		q.logger.Warn("YouTube API quota running low",
			zap.Int("remaining", remaining),
			zap.Time("reset_time", q.reset))
	}
}

func (q *quotaMeter) status() (used, remaining int, resetTime time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.rollover()
	if q.limit <= 0 {
		return q.used, -1, q.reset
	}
	return q.used, q.limit - q.used, q.reset
}
