package management

import (
	"context"
	"errors"
	"fmt"

	"teagate/internal/constants"
	"teagate/internal/logger"
	"teagate/pkg/cel"
	pkgerrors "teagate/pkg/errors"
	"teagate/pkg/metrics"
	"teagate/pkg/models"
	"teagate/pkg/ruledsl"
)

type service struct {
	lots                LotRepository
	rules               RuleRepository
	versioningRepo      VersioningRepository
	configEventProducer *ConfigEventProducer
	selector            *cel.Evaluator
	logger              logger.Logger
	auditEnabled        bool
}

type ServiceOption func(*service)

// WithVersioning records a version and an audit log entry for every rule
// change.
func WithVersioning(versioningRepo VersioningRepository) ServiceOption {
	return func(s *service) {
		s.versioningRepo = versioningRepo
		s.auditEnabled = versioningRepo != nil
	}
}

func WithConfigEvents(configEventProducer *ConfigEventProducer) ServiceOption {
	return func(s *service) {
		s.configEventProducer = configEventProducer
	}
}

// WithSelector enables CEL selectors on ListTeaLots.
func WithSelector(evaluator *cel.Evaluator) ServiceOption {
	return func(s *service) {
		s.selector = evaluator
	}
}

func WithLogger(log logger.Logger) ServiceOption {
	return func(s *service) {
		s.logger = log
	}
}

func NewService(lots LotRepository, rules RuleRepository, opts ...ServiceOption) Service {
	s := &service{
		lots:   lots,
		rules:  rules,
		logger: logger.NopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CreateTeaLot(ctx context.Context, req CreateTeaLotRequest) (*TeaLot, error) {
	if err := validationError(ValidateTeaLot(req)); err != nil {
		return nil, err
	}

	lot := req.toTeaLot()
	if err := s.lots.CreateTeaLot(ctx, lot); err != nil {
		return nil, internalError(err)
	}
	return lot, nil
}

func (s *service) ListTeaLots(ctx context.Context, filter TeaLotFilter) ([]TeaLot, error) {
	limit := clampLimit(filter.Limit)

	if filter.Selector == "" {
		lots, err := s.lots.ListTeaLots(ctx, limit)
		if err != nil {
			return nil, internalError(err)
		}
		return lots, nil
	}

	all, err := s.lots.ListTeaLots(ctx, 0)
	if err != nil {
		return nil, internalError(err)
	}
	selected, err := SelectTeaLots(ctx, s.selector, filter.Selector, all)
	if err != nil {
		return nil, err
	}
	if len(selected) > limit {
		selected = selected[:limit]
	}
	return selected, nil
}

func (s *service) ExportTeaLots(ctx context.Context) ([]TeaLot, error) {
	lots, err := s.lots.ListTeaLots(ctx, 0)
	if err != nil {
		return nil, internalError(err)
	}
	return lots, nil
}

func (s *service) GetTeaLot(ctx context.Context, id int64) (*TeaLot, error) {
	lot, err := s.lots.GetTeaLot(ctx, id)
	if err != nil {
		return nil, internalError(err)
	}
	if lot == nil {
		return nil, teaLotNotFound(id)
	}
	return lot, nil
}

func (s *service) DeleteTeaLot(ctx context.Context, id int64) error {
	deleted, err := s.lots.DeleteTeaLot(ctx, id)
	if err != nil {
		return internalError(err)
	}
	if !deleted {
		return teaLotNotFound(id)
	}
	return nil
}

func (s *service) BulkDeleteTeaLots(ctx context.Context, ids []int64) (int64, error) {
	if err := validationError(ValidateIDs(ids)); err != nil {
		return 0, err
	}
	n, err := s.lots.DeleteTeaLots(ctx, ids)
	if err != nil {
		return 0, internalError(err)
	}
	return n, nil
}

func (s *service) ImportTeaLots(ctx context.Context, req ImportTeaLotsRequest) (*ImportTeaLotsResponse, error) {
	if err := validationError(ValidateImportTeaLots(req)); err != nil {
		return nil, err
	}

	lots := make([]*TeaLot, len(req.TeaLots))
	for i, item := range req.TeaLots {
		lots[i] = item.toTeaLot()
	}
	if err := s.lots.ImportTeaLots(ctx, lots); err != nil {
		return nil, internalError(err)
	}

	resp := &ImportTeaLotsResponse{Imported: len(lots), TeaLots: make([]TeaLot, len(lots))}
	for i, lot := range lots {
		resp.TeaLots[i] = *lot
	}
	return resp, nil
}

func (s *service) CreateRule(ctx context.Context, req CreateRuleRequest) (*Rule, error) {
	if err := validationError(ValidateRule(req)); err != nil {
		return nil, err
	}

	rule, err := buildRule(req)
	if err != nil {
		return nil, err
	}
	if err := s.rules.CreateRule(ctx, rule); err != nil {
		return nil, internalError(err)
	}

	s.recordRuleChange(ctx, models.ActionCreate, nil, rule)
	s.publishConfigEvent(ctx, models.ActionCreate, rule.ID, nil)

	return rule, nil
}

func (s *service) ListRules(ctx context.Context) ([]Rule, error) {
	rules, err := s.rules.ListRules(ctx)
	if err != nil {
		return nil, internalError(err)
	}
	return rules, nil
}

func (s *service) GetRule(ctx context.Context, id int64) (*Rule, error) {
	rule, err := s.rules.GetRule(ctx, id)
	if err != nil {
		return nil, internalError(err)
	}
	if rule == nil {
		return nil, ruleNotFound(id)
	}
	return rule, nil
}

func (s *service) UpdateRule(ctx context.Context, id int64, req UpdateRuleRequest) (*Rule, error) {
	if err := validationError(ValidateUpdateRule(req)); err != nil {
		return nil, err
	}

	rule, err := s.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}
	old := *rule

	if req.Name != nil {
		rule.Name = *req.Name
	}
	if req.DSL != nil {
		compiled, err := compileRule(*req.DSL)
		if err != nil {
			return nil, err
		}
		rule.DSL = *req.DSL
		rule.Severity = compiled.Severity()
	}
	if req.Severity != nil {
		rule.Severity = *req.Severity
	}

	updated, err := s.rules.UpdateRule(ctx, rule)
	if err != nil {
		return nil, internalError(err)
	}
	if !updated {
		return nil, ruleNotFound(id)
	}

	s.recordRuleChange(ctx, models.ActionUpdate, &old, rule)
	s.publishConfigEvent(ctx, models.ActionUpdate, rule.ID, nil)

	return rule, nil
}

func (s *service) DeleteRule(ctx context.Context, id int64) error {
	rule, err := s.GetRule(ctx, id)
	if err != nil {
		return err
	}

	deleted, err := s.rules.DeleteRule(ctx, id)
	if err != nil {
		return internalError(err)
	}
	if !deleted {
		return ruleNotFound(id)
	}

	s.recordRuleChange(ctx, models.ActionDelete, rule, nil)
	s.publishConfigEvent(ctx, models.ActionDelete, id, nil)
	return nil
}

func (s *service) BulkDeleteRules(ctx context.Context, ids []int64) (int64, error) {
	if err := validationError(ValidateIDs(ids)); err != nil {
		return 0, err
	}

	n, err := s.rules.DeleteRules(ctx, ids)
	if err != nil {
		return 0, internalError(err)
	}
	if n == 0 {
		return 0, nil
	}

	if s.auditEnabled {
		entry := newAuditLog(ActorFromContext(ctx), models.ActionDelete, nil, nil, nil)
		entry.NewValue = map[string]interface{}{"ids": ids, "deleted": n}
		if err := s.versioningRepo.CreateAuditLog(ctx, entry); err != nil {
			s.logger.WarnwCtx(ctx, "Failed to write audit log", "action", entry.Action, "error", err)
		}
	}
	s.publishConfigEvent(ctx, models.ActionDelete, 0, map[string]interface{}{"ids": ids})

	return n, nil
}

func (s *service) ImportRules(ctx context.Context, req ImportRulesRequest) (*ImportRulesResponse, error) {
	if err := validationError(ValidateImportRules(req)); err != nil {
		return nil, err
	}

	rules := make([]*Rule, len(req.Rules))
	for i, item := range req.Rules {
		rule, err := buildRule(item)
		if err != nil {
			return nil, prefixError(err, fmt.Sprintf("rules[%d]", i))
		}
		rules[i] = rule
	}
	if err := s.rules.ImportRules(ctx, rules); err != nil {
		return nil, internalError(err)
	}

	resp := &ImportRulesResponse{Imported: len(rules), Rules: make([]Rule, len(rules))}
	for i, rule := range rules {
		s.recordRuleChange(ctx, models.ActionImport, nil, rule)
		resp.Rules[i] = *rule
	}
	s.publishConfigEvent(ctx, models.ActionImport, 0, map[string]interface{}{"imported": len(rules)})

	return resp, nil
}

func (s *service) GetRuleVersions(ctx context.Context, ruleID int64) ([]RuleVersion, error) {
	if s.versioningRepo == nil {
		return nil, pkgerrors.ErrServiceUnavailable.WithDetail("message", "versioning not enabled")
	}
	versions, err := s.versioningRepo.GetVersions(ctx, ruleID)
	if err != nil {
		return nil, internalError(err)
	}
	return versions, nil
}

func (s *service) GetRuleVersion(ctx context.Context, ruleID int64, version int) (*RuleVersion, error) {
	if s.versioningRepo == nil {
		return nil, pkgerrors.ErrServiceUnavailable.WithDetail("message", "versioning not enabled")
	}
	v, err := s.versioningRepo.GetVersion(ctx, ruleID, version)
	if err != nil {
		return nil, internalError(err)
	}
	if v == nil {
		return nil, pkgerrors.ErrNotFound.
			WithDetail("message", fmt.Sprintf("rule %d has no version %d", ruleID, version))
	}
	return v, nil
}

func (s *service) GetAuditLogs(ctx context.Context, ruleID *int64, limit int) ([]AuditLog, error) {
	if s.versioningRepo == nil {
		return nil, pkgerrors.ErrServiceUnavailable.WithDetail("message", "audit logging not enabled")
	}
	logs, err := s.versioningRepo.GetAuditLogs(ctx, ruleID, clampLimit(limit))
	if err != nil {
		return nil, internalError(err)
	}
	return logs, nil
}

// recordRuleChange never fails the caller; the rule change already happened.
func (s *service) recordRuleChange(ctx context.Context, action string, oldRule, newRule *Rule) {
	if !s.auditEnabled {
		return
	}

	actor := ActorFromContext(ctx)
	current := newRule
	if current == nil {
		current = oldRule
	}
	ruleID := current.ID

	if newRule != nil {
		if err := s.createVersion(ctx, actor, newRule); err != nil {
			s.logger.WarnwCtx(ctx, "Failed to record rule version", "rule_id", ruleID, "error", err)
		}
	}

	entry := newAuditLog(actor, action, &ruleID, oldRule, newRule)
	if err := s.versioningRepo.CreateAuditLog(ctx, entry); err != nil {
		s.logger.WarnwCtx(ctx, "Failed to write audit log", "rule_id", ruleID, "action", action, "error", err)
	}
}

func (s *service) createVersion(ctx context.Context, actor Actor, rule *Rule) error {
	next, err := s.versioningRepo.GetNextVersion(ctx, rule.ID)
	if err != nil {
		return err
	}
	data, err := ruleSnapshot(rule)
	if err != nil {
		return err
	}
	return s.versioningRepo.CreateVersion(ctx, &RuleVersion{
		RuleID:       rule.ID,
		RuleData:     data,
		Version:      next,
		ChangedBy:    actor.ChangedBy,
		ChangeReason: actor.ChangeReason,
	})
}

func (s *service) publishConfigEvent(ctx context.Context, action string, ruleID int64, metadata map[string]interface{}) {
	if s.configEventProducer == nil {
		return
	}
	if err := s.configEventProducer.PublishRuleChanged(ctx, action, ruleID, ActorFromContext(ctx).ChangedBy, metadata); err != nil {
		s.logger.ErrorwCtx(ctx, "Failed to publish rule change event", "rule_id", ruleID, "action", action, "error", err)
	}
}

// compileRule is the single place management compiles DSL text.
func compileRule(dsl string) (*ruledsl.CompiledRule, error) {
	compiled, err := ruledsl.Compile(dsl)
	if err != nil {
		var syntaxErr *ruledsl.SyntaxError
		reason := "unknown"
		if errors.As(err, &syntaxErr) {
			reason = string(syntaxErr.Reason)
		}
		metrics.IncRuleCompilation("error", reason)
		return nil, pkgerrors.FromSyntaxError(err)
	}
	metrics.IncRuleCompilation("success", "")
	return compiled, nil
}

func buildRule(req CreateRuleRequest) (*Rule, error) {
	compiled, err := compileRule(req.DSL)
	if err != nil {
		return nil, err
	}
	severity := compiled.Severity()
	if req.Severity != nil {
		severity = *req.Severity
	}
	return &Rule{Name: req.Name, DSL: req.DSL, Severity: severity}, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return constants.DefaultLimit
	}
	if limit > constants.MaxLimit {
		return constants.MaxLimit
	}
	return limit
}

// internalError keeps application errors as they are and wraps anything else.
func internalError(err error) error {
	var appErr *pkgerrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return pkgerrors.Wrap(err, pkgerrors.ErrInternal)
}

func teaLotNotFound(id int64) error {
	return pkgerrors.ErrNotFound.
		WithDetail("id", id).
		WithDetail("message", fmt.Sprintf("tea lot %d not found", id))
}

func ruleNotFound(id int64) error {
	return pkgerrors.ErrNotFound.
		WithDetail("id", id).
		WithDetail("message", fmt.Sprintf("rule %d not found", id))
}
