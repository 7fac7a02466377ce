package management

import (
	"context"
)

type Service interface {
	CreateTeaLot(ctx context.Context, req CreateTeaLotRequest) (*TeaLot, error)
	ListTeaLots(ctx context.Context, filter TeaLotFilter) ([]TeaLot, error)
	ExportTeaLots(ctx context.Context) ([]TeaLot, error)
	GetTeaLot(ctx context.Context, id int64) (*TeaLot, error)
	DeleteTeaLot(ctx context.Context, id int64) error
	BulkDeleteTeaLots(ctx context.Context, ids []int64) (int64, error)
	ImportTeaLots(ctx context.Context, req ImportTeaLotsRequest) (*ImportTeaLotsResponse, error)

	CreateRule(ctx context.Context, req CreateRuleRequest) (*Rule, error)
	ListRules(ctx context.Context) ([]Rule, error)
	GetRule(ctx context.Context, id int64) (*Rule, error)
	UpdateRule(ctx context.Context, id int64, req UpdateRuleRequest) (*Rule, error)
	DeleteRule(ctx context.Context, id int64) error
	BulkDeleteRules(ctx context.Context, ids []int64) (int64, error)
	ImportRules(ctx context.Context, req ImportRulesRequest) (*ImportRulesResponse, error)

	GetRuleVersions(ctx context.Context, ruleID int64) ([]RuleVersion, error)
	GetRuleVersion(ctx context.Context, ruleID int64, version int) (*RuleVersion, error)
	GetAuditLogs(ctx context.Context, ruleID *int64, limit int) ([]AuditLog, error)

	Seed(ctx context.Context) (*SeedResult, error)
}
