package dispatch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/zen-systems/orchestrator/pkg/adapter"
	"github.com/zen-systems/orchestrator/pkg/schema"
)

// callWithPolicy issues one generate call to model under its time budget,
// retrying transient failures on the same model when retries are enabled.
func (d *Dispatcher) callWithPolicy(ctx context.Context, model, prompt string, category schema.Category, backup bool) (adapter.Result, schema.CallReport) {
	req := adapter.Request{
		Model:  model,
		Prompt: prompt,
		Options: adapter.Options{
			Temperature:   d.cfg.Temperature,
			MaxTokens:     d.cfg.MaxTokensFor(category),
			TopP:          d.cfg.TopP,
			RepeatPenalty: d.cfg.RepeatPenalty,
		},
	}
	timeout := d.cfg.TimeoutFor(model, category)
	retryCfg := d.cfg.Retry

	d.logger.Info("calling model",
		zap.String("model", model),
		zap.Duration("timeout", timeout),
		zap.Int("max_tokens", req.Options.MaxTokens),
		zap.Bool("backup", backup))

	start := time.Now()
	var res adapter.Result
	attempt := 0
	for ; ; attempt++ {
		res = d.generate(ctx, req, timeout)
		if res.OK() || !adapter.IsTransient(res.Err) || attempt >= retryCfg.MaxRetries {
			break
		}

		backoff := computeBackoff(retryCfg.BaseBackoffMs, retryCfg.MaxBackoffMs, attempt)
		d.logger.Warn("transient model failure, retrying",
			zap.String("model", model),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", backoff),
			zap.Error(res.Err))
		if err := sleepWithContext(ctx, backoff); err != nil {
			break
		}
	}
	res.Duration = time.Since(start)

	report := schema.CallReport{
		Model:          model,
		Outcome:        res.Outcome.String(),
		Retries:        attempt,
		Backup:         backup,
		DurationMillis: res.Duration.Milliseconds(),
	}
	if res.Err != nil {
		report.Error = res.Err.Error()
	}
	return res, report
}

func (d *Dispatcher) generate(ctx context.Context, req adapter.Request, timeout time.Duration) adapter.Result {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return d.adapter.Generate(cctx, req)
}

func computeBackoff(baseMs, maxMs, attempt int) time.Duration {
	backoff := time.Duration(baseMs) * time.Millisecond
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if backoff >= time.Duration(maxMs)*time.Millisecond {
			return time.Duration(maxMs) * time.Millisecond
		}
	}
	if backoff > time.Duration(maxMs)*time.Millisecond {
		return time.Duration(maxMs) * time.Millisecond
	}
	return backoff
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
