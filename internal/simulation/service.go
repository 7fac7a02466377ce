package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"teagate/internal/constants"
	"teagate/internal/logger"
	"teagate/internal/management"
	"teagate/pkg/cel"
	pkgerrors "teagate/pkg/errors"
	"teagate/pkg/metrics"
	"teagate/pkg/ruledsl"
	"teagate/pkg/tracing"
)

// RuleSource yields the stored rules in evaluation order.
type RuleSource interface {
	ListRules(ctx context.Context) ([]management.Rule, error)
}

type Service struct {
	lots     management.LotRepository
	rules    RuleSource
	cache    *ruledsl.Cache
	selector *cel.Evaluator
	archive  ReportArchive
	logger   logger.Logger
	now      func() time.Time
}

type Option func(*Service)

// WithRuleCache memoizes compiled rules by DSL text.
func WithRuleCache(cache *ruledsl.Cache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

func WithSelector(evaluator *cel.Evaluator) Option {
	return func(s *Service) {
		s.selector = evaluator
	}
}

// WithArchive stores every report. Archive failures are logged only.
func WithArchive(archive ReportArchive) Option {
	return func(s *Service) {
		s.archive = archive
	}
}

func NewService(lots management.LotRepository, rules RuleSource, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		lots:   lots,
		rules:  rules,
		logger: log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Simulate runs every stored rule against one stored lot.
func (s *Service) Simulate(ctx context.Context, teaLotID int64) (*SimulationResponse, error) {
	ctx, span := tracing.StartSpan(ctx, constants.ServiceManagement, "simulation.simulate")
	defer span.End()

	lot, err := s.lots.GetTeaLot(ctx, teaLotID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	if lot == nil {
		return nil, pkgerrors.ErrNotFound.
			WithDetail("id", teaLotID).
			WithDetail("message", "tea lot not found")
	}

	rules, err := s.rules.ListRules(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	resp, err := s.simulateLot(ctx, *lot, rules)
	if err != nil {
		return nil, err
	}
	s.archiveReport(ctx, Report{Source: SourceAPI, TeaLotID: lot.ID, LotCode: lot.LotCode, Shippable: resp.Shippable, Results: resp.Results})
	return resp, nil
}

// BulkSimulate simulates the requested lots in id order. Unknown ids are
// skipped.
func (s *Service) BulkSimulate(ctx context.Context, req BulkSimulationRequest) (*BulkSimulationResponse, error) {
	ctx, span := tracing.StartSpan(ctx, constants.ServiceManagement, "simulation.bulk_simulate")
	defer span.End()

	if err := validateBulkRequest(req); err != nil {
		return nil, err
	}

	lots, err := s.selectLots(ctx, req)
	if err != nil {
		return nil, err
	}

	rules, err := s.rules.ListRules(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	resp := &BulkSimulationResponse{Results: make([]SimulationResponse, 0, len(lots))}
	for _, lot := range lots {
		result, err := s.simulateLot(ctx, lot, rules)
		if err != nil {
			return nil, err
		}
		s.archiveReport(ctx, Report{Source: SourceAPI, TeaLotID: lot.ID, LotCode: lot.LotCode, Shippable: result.Shippable, Results: result.Results})
		resp.Results = append(resp.Results, *result)
	}
	return resp, nil
}

func (s *Service) selectLots(ctx context.Context, req BulkSimulationRequest) ([]management.TeaLot, error) {
	var lots []management.TeaLot
	var err error
	if len(req.TeaLotIDs) > 0 {
		lots, err = s.lots.GetTeaLotsByIDs(ctx, req.TeaLotIDs)
		lots = inRequestOrder(req.TeaLotIDs, lots)
	} else {
		lots, err = s.lots.ListTeaLots(ctx, 0)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return management.SelectTeaLots(ctx, s.selector, req.Selector, lots)
}

// inRequestOrder lays the fetched lots out in the order of ids, repeating
// lots for repeated ids. Unknown ids are skipped.
func inRequestOrder(ids []int64, fetched []management.TeaLot) []management.TeaLot {
	byID := make(map[int64]management.TeaLot, len(fetched))
	for _, lot := range fetched {
		byID[lot.ID] = lot
	}
	ordered := make([]management.TeaLot, 0, len(ids))
	for _, id := range ids {
		if lot, ok := byID[id]; ok {
			ordered = append(ordered, lot)
		}
	}
	return ordered
}

// SimulateSnapshot evaluates measurements that are not stored as a lot,
// using the given rules. The inspection pipeline calls it with its RuleSet.
func (s *Service) SimulateSnapshot(ctx context.Context, lotCode string, snapshot ruledsl.TeaLotSnapshot, rules []management.Rule) (*SimulationResponse, error) {
	ctx, span := tracing.StartSpan(ctx, constants.ServiceInspection, "simulation.simulate_snapshot")
	defer span.End()

	return s.run(ctx, SourceInspection, management.TeaLot{LotCode: lotCode}, snapshot, rules)
}

// Archive stores a report built by the caller.
func (s *Service) Archive(ctx context.Context, report Report) {
	s.archiveReport(ctx, report)
}

// History lists archived reports, newest first.
func (s *Service) History(ctx context.Context, lotCode string, limit int) ([]Report, error) {
	if s.archive == nil {
		return nil, pkgerrors.ErrServiceUnavailable.WithDetail("message", "report archive not enabled")
	}
	if limit <= 0 || limit > constants.MaxLimit {
		limit = constants.DefaultLimit
	}
	reports, err := s.archive.List(ctx, lotCode, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrServiceUnavailable)
	}
	return reports, nil
}

func (s *Service) simulateLot(ctx context.Context, lot management.TeaLot, rules []management.Rule) (*SimulationResponse, error) {
	return s.run(ctx, SourceAPI, lot, lot.Snapshot(), rules)
}

func (s *Service) run(ctx context.Context, source string, lot management.TeaLot, snapshot ruledsl.TeaLotSnapshot, rules []management.Rule) (*SimulationResponse, error) {
	start := s.now()

	compiled := make([]*ruledsl.CompiledRule, len(rules))
	for i, rule := range rules {
		c, err := s.compile(rule)
		if err != nil {
			s.logger.ErrorwCtx(ctx, "Stored rule no longer compiles", "rule_id", rule.ID, "rule_name", rule.Name, "error", err)
			return nil, pkgerrors.FromSyntaxError(err).
				WithDetail("rule_id", rule.ID).
				WithDetail("message", fmt.Sprintf("rule %d does not compile: %v", rule.ID, err))
		}
		compiled[i] = c
	}

	sim := ruledsl.Simulate(snapshot, compiled)

	resp := &SimulationResponse{
		TeaLotID:  lot.ID,
		LotCode:   lot.LotCode,
		Shippable: sim.Shippable,
		Results:   make([]RuleResult, len(rules)),
	}
	for i, eval := range sim.Results {
		resp.Results[i] = ruleResult(rules[i], compiled[i], eval)
		metrics.IncRuleEvaluation(rules[i].Name, string(eval.Outcome), compiled[i].Severity().String())
	}

	metrics.ObserveSimulation(source, sim.Shippable, s.now().Sub(start))
	return resp, nil
}

// ruleResult reports the severity compiled from the DSL, not the stored one.
func ruleResult(rule management.Rule, compiled *ruledsl.CompiledRule, eval ruledsl.RuleEvaluation) RuleResult {
	result := RuleResult{
		RuleID:   rule.ID,
		RuleName: rule.Name,
		Result:   eval.Outcome,
		Severity: compiled.Severity(),
	}
	if eval.Failed() {
		result.Message = fmt.Sprintf("%s: %s", rule.Name, eval.Message)
	} else {
		result.Message = fmt.Sprintf("%s: pass", rule.Name)
	}
	return result
}

func (s *Service) compile(rule management.Rule) (*ruledsl.CompiledRule, error) {
	if s.cache == nil {
		return ruledsl.Compile(rule.DSL)
	}
	compiled, hit, err := s.cache.Compile(rule.DSL)
	if err == nil {
		metrics.IncRuleCacheLookup(hit)
	}
	return compiled, err
}

func (s *Service) archiveReport(ctx context.Context, report Report) {
	if s.archive == nil {
		return
	}
	if report.ID == "" {
		report.ID = uuid.New().String()
	}
	if report.SimulatedAt.IsZero() {
		report.SimulatedAt = s.now().UTC()
	}

	if err := s.archive.Save(ctx, report); err != nil {
		metrics.IncReportArchive("error")
		s.logger.WarnwCtx(ctx, "Failed to archive simulation report",
			"lot_code", report.LotCode,
			"source", report.Source,
			"error", err,
		)
		return
	}
	metrics.IncReportArchive("success")
}

func validateBulkRequest(req BulkSimulationRequest) error {
	if len(req.TeaLotIDs) == 0 && req.Selector == "" {
		return pkgerrors.ErrValidation.WithDetail("message", "teaLotIds or selector is required")
	}
	for _, id := range req.TeaLotIDs {
		if id <= 0 {
			return pkgerrors.ErrValidation.WithDetail("message", "all teaLotIds must be positive numbers")
		}
	}
	return nil
}
