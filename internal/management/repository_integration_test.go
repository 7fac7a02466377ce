//go:build integration

package management_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teagate/internal/management"
	"teagate/internal/testinfra"
	pkgerrors "teagate/pkg/errors"
	"teagate/pkg/ruledsl"
)

func TestPostgresRepository_TeaLots(t *testing.T) {
	repo := management.NewPostgresRepository(testinfra.Postgres(t), "test")
	ctx := context.Background()

	lot := &management.TeaLot{LotCode: "LOT-IT-001", Origin: "Uji", Variety: "Samidori", Moisture: 9.6, PesticideLevel: 0.08, AromaScore: 82}
	require.NoError(t, repo.CreateTeaLot(ctx, lot))
	assert.NotZero(t, lot.ID)
	assert.False(t, lot.CreatedAt.IsZero())

	dup := *lot
	err := repo.CreateTeaLot(ctx, &dup)
	assert.True(t, pkgerrors.IsConflict(err))

	got, err := repo.GetTeaLot(ctx, lot.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "LOT-IT-001", got.LotCode)
	assert.InDelta(t, 9.6, got.Moisture, 1e-9)

	missing, err := repo.GetTeaLot(ctx, lot.ID+1000)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.ImportTeaLots(ctx, []*management.TeaLot{
		{LotCode: "LOT-IT-002", Origin: "Kagoshima", Variety: "Yutakamidori", Moisture: 8.1, PesticideLevel: 0.12, AromaScore: 65},
		{LotCode: "LOT-IT-003", Origin: "Miyazaki", Variety: "Saemidori", Moisture: 8.4, PesticideLevel: 0.18, AromaScore: 80},
	}))

	count, err := repo.CountTeaLots(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	lots, err := repo.ListTeaLots(ctx, 2)
	require.NoError(t, err)
	require.Len(t, lots, 2)
	assert.Equal(t, "LOT-IT-001", lots[0].LotCode)

	byIDs, err := repo.GetTeaLotsByIDs(ctx, []int64{lots[1].ID, lot.ID})
	require.NoError(t, err)
	assert.Len(t, byIDs, 2)

	deleted, err := repo.DeleteTeaLot(ctx, lot.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	n, err := repo.DeleteTeaLots(ctx, []int64{lots[1].ID, lot.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestPostgresRepository_ImportRollsBackOnConflict(t *testing.T) {
	repo := management.NewPostgresRepository(testinfra.Postgres(t), "test")
	ctx := context.Background()

	err := repo.ImportTeaLots(ctx, []*management.TeaLot{
		{LotCode: "LOT-IT-010", Origin: "Uji", Variety: "Gokou", Moisture: 8, PesticideLevel: 0.1, AromaScore: 70},
		{LotCode: "LOT-IT-010", Origin: "Uji", Variety: "Gokou", Moisture: 8, PesticideLevel: 0.1, AromaScore: 70},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))

	count, err := repo.CountTeaLots(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPostgresRepository_Rules(t *testing.T) {
	repo := management.NewPostgresRepository(testinfra.Postgres(t), "test")
	ctx := context.Background()

	rule := &management.Rule{
		Name:     "Moisture Check",
		DSL:      `rule("Moisture Check") { whenMoisture { it > 9.0 } then BLOCK }`,
		Severity: ruledsl.SeverityBlock,
	}
	require.NoError(t, repo.CreateRule(ctx, rule))
	require.NotZero(t, rule.ID)

	second := &management.Rule{
		Name:     "Aroma Check",
		DSL:      `rule("Aroma Check") { whenAromaScore { it < 70 } then INFO }`,
		Severity: ruledsl.SeverityInfo,
	}
	require.NoError(t, repo.CreateRule(ctx, second))

	rules, err := repo.ListRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "Moisture Check", rules[0].Name)
	assert.Equal(t, ruledsl.SeverityInfo, rules[1].Severity)

	rule.Severity = ruledsl.SeverityWarning
	updated, err := repo.UpdateRule(ctx, rule)
	require.NoError(t, err)
	assert.True(t, updated)

	got, err := repo.GetRule(ctx, rule.ID)
	require.NoError(t, err)
	assert.Equal(t, ruledsl.SeverityWarning, got.Severity)

	updated, err = repo.UpdateRule(ctx, &management.Rule{ID: 9999, Name: "x", DSL: rule.DSL, Severity: ruledsl.SeverityInfo})
	require.NoError(t, err)
	assert.False(t, updated)

	n, err := repo.DeleteRules(ctx, []int64{rule.ID, second.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestVersioningRepository(t *testing.T) {
	db := testinfra.Postgres(t)
	repo := management.NewPostgresRepository(db, "test")
	versions := management.NewVersioningRepository(db)
	ctx := context.Background()

	svc := management.NewService(repo, repo, management.WithVersioning(versions))
	ctx = management.WithActor(ctx, management.Actor{ChangedBy: "qa@example.com", ChangeReason: "tighten moisture"})

	rule, err := svc.CreateRule(ctx, management.CreateRuleRequest{
		Name: "Moisture Check",
		DSL:  `rule("Moisture Check") { whenMoisture { it > 9.0 } then BLOCK }`,
	})
	require.NoError(t, err)

	dsl := `rule("Moisture Check") { whenMoisture { it > 8.5 } then BLOCK }`
	_, err = svc.UpdateRule(ctx, rule.ID, management.UpdateRuleRequest{DSL: &dsl})
	require.NoError(t, err)

	history, err := svc.GetRuleVersions(ctx, rule.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 2, history[0].Version)
	assert.Equal(t, "qa@example.com", history[0].ChangedBy)

	v1, err := svc.GetRuleVersion(ctx, rule.ID, 1)
	require.NoError(t, err)
	assert.Contains(t, string(v1.RuleData), "9.0")

	logs, err := svc.GetAuditLogs(ctx, &rule.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "update", logs[0].Action)
	assert.Equal(t, "tighten moisture", logs[0].ChangeReason)
}
