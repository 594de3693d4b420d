package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/anjiri1684/membership_network/logger"
	"github.com/robfig/cron/v3"
)

// IntentionExpirySpec runs the sweep at the top of every hour.
const IntentionExpirySpec = "0 * * * *"

const jobTimeout = time.Minute

type TokenExpirer interface {
	ExpireTokens(ctx context.Context) (int64, error)
}

type IntentionExpiryJob struct {
	expirer TokenExpirer
	logger  *slog.Logger
}

func NewIntentionExpiryJob(expirer TokenExpirer, l *slog.Logger) *IntentionExpiryJob {
	return &IntentionExpiryJob{expirer: expirer, logger: logger.Resolve(l)}
}

// Run clears lapsed registration tokens so they can no longer complete a profile.
func (j *IntentionExpiryJob) Run() {
	j.logger.Debug("Running job: ExpireIntentionTokens...")

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := j.expirer.ExpireTokens(ctx)
	if err != nil {
		j.logger.Error("error expiring intention tokens", "error", err)
		return
	}
	if n == 0 {
		return
	}
	j.logger.Info("intention tokens expired", "count", n)
}

// Schedule registers every background job on c.
func Schedule(c *cron.Cron, expiry *IntentionExpiryJob) error {
	if _, err := c.AddJob(IntentionExpirySpec, expiry); err != nil {
		return err
	}
	return nil
}
