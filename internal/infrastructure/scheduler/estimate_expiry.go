package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// EstimateExpiryJobName is the registered name of the estimate expiry job
const EstimateExpiryJobName = "estimate_expiry"

// EstimateExpirer marks estimates past their validity date as expired
type EstimateExpirer interface {
	// ExpireDue expires at most limit estimates valid before now and returns how many changed
	ExpireDue(ctx context.Context, now time.Time, limit int) (int, error)
}

// EstimateExpiryJob sweeps overdue draft and sent estimates in batches
type EstimateExpiryJob struct {
	expirer   EstimateExpirer
	batchSize int
	now       func() time.Time
	logger    *zap.Logger
}

// NewEstimateExpiryJob creates an EstimateExpiryJob. A non-positive batch size means 100.
func NewEstimateExpiryJob(expirer EstimateExpirer, batchSize int, logger *zap.Logger) *EstimateExpiryJob {
	if batchSize <= 0 {
		batchSize = 100
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EstimateExpiryJob{expirer: expirer, batchSize: batchSize, now: time.Now, logger: logger}
}

// Name implements Job
func (j *EstimateExpiryJob) Name() string {
	return EstimateExpiryJobName
}

// Run keeps expiring full batches until a short one comes back
func (j *EstimateExpiryJob) Run(ctx context.Context) error {
	now := j.now()
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := j.expirer.ExpireDue(ctx, now, j.batchSize)
		if err != nil {
			return err
		}
		total += n
		if n < j.batchSize {
			break
		}
	}
	if total > 0 {
		j.logger.Info("Estimates expired", zap.Int("count", total))
	}
	return nil
}

var _ Job = (*EstimateExpiryJob)(nil)
