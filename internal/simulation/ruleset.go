package simulation

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"teagate/internal/config"
	"teagate/internal/logger"
	"teagate/internal/management"
	"teagate/pkg/metrics"
	"teagate/pkg/ruledsl"
)

// RuleSet is the inspection service's in-memory copy of the stored rules.
// It implements config_handler.ConfigReloader.
type RuleSet struct {
	source   RuleSource
	cache    *ruledsl.Cache
	interval time.Duration
	jitter   time.Duration
	logger   logger.Logger

	mu    sync.RWMutex
	rules []management.Rule
}

func NewRuleSet(source RuleSource, cfg config.ReloadConfig, cache *ruledsl.Cache, log logger.Logger) *RuleSet {
	interval := time.Duration(cfg.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	return &RuleSet{
		source:   source,
		cache:    cache,
		interval: interval,
		jitter:   time.Duration(cfg.JitterSeconds) * time.Second,
		logger:   log,
		rules:    make([]management.Rule, 0),
	}
}

// Rules returns a copy of the current snapshot.
func (r *RuleSet) Rules() []management.Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rules := make([]management.Rule, len(r.rules))
	copy(rules, r.rules)
	return rules
}

// ReloadRules waits a random jitter, then swaps in the stored rules. A rule
// set containing a rule that does not compile is rejected and the previous
// snapshot stays active.
func (r *RuleSet) ReloadRules(ctx context.Context) error {
	if err := r.applyJitter(ctx); err != nil {
		return err
	}
	return r.Load(ctx)
}

// Load reloads without jitter. It is used at startup.
func (r *RuleSet) Load(ctx context.Context) error {
	rules, err := r.source.ListRules(ctx)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}

	if r.cache != nil {
		r.cache.Invalidate()
	}
	for _, rule := range rules {
		if _, err := ruledsl.Compile(rule.DSL); err != nil {
			return fmt.Errorf("rule %d (%s) does not compile: %w", rule.ID, rule.Name, err)
		}
	}

	r.mu.Lock()
	r.rules = rules
	r.mu.Unlock()

	metrics.SetActiveRules(len(rules))
	r.logger.InfowCtx(ctx, "Successfully reloaded rules", "rules_count", len(rules))
	return nil
}

func (r *RuleSet) applyJitter(ctx context.Context) error {
	if r.jitter <= 0 {
		return nil
	}

	jitter := time.Duration(rand.Int63n(int64(r.jitter)))
	r.logger.DebugwCtx(ctx, "Reload scheduled with jitter", "jitter_ms", jitter.Milliseconds())

	select {
	case <-time.After(jitter):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StartReloader reloads on every interval until ctx is done. The initial
// load is the caller's job.
func (r *RuleSet) StartReloader(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := r.ReloadRules(ctx); err != nil && ctx.Err() == nil {
				r.logger.ErrorwCtx(ctx, "Failed to reload rules", "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
