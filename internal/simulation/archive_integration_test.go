//go:build integration

package simulation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teagate/internal/config"
	"teagate/internal/simulation"
	"teagate/internal/testinfra"
	"teagate/pkg/migrations"
	"teagate/pkg/ruledsl"
)

func TestMongoReportArchive(t *testing.T) {
	db := testinfra.MongoDB(t)
	ctx := context.Background()
	require.NoError(t, migrations.EnsureReportIndexes(ctx, db, "reports"))
	require.NoError(t, migrations.EnsureReportIndexes(ctx, db, "reports"))

	archive := simulation.NewCircuitBreakerArchive(
		simulation.NewMongoReportArchive(db, "reports"),
		config.CircuitBreakerConfig{Enabled: true, MaxRequests: 1, Timeout: time.Second, FailureRatio: 0.5, MinRequests: 3},
	)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	reports := []simulation.Report{
		{ID: "r1", Source: simulation.SourceAPI, TeaLotID: 1, LotCode: "LOT-2026-001", Shippable: true, SimulatedAt: base},
		{ID: "r2", Source: simulation.SourceInspection, InspectionID: "insp-1", LotCode: "LOT-2026-002", Shippable: false, SimulatedAt: base.Add(time.Minute),
			Results: []simulation.RuleResult{{RuleID: 1, RuleName: "Moisture Check", Result: ruledsl.OutcomeFail, Severity: ruledsl.SeverityBlock, Message: "Moisture Check: Moisture Check failed"}}},
		{ID: "r3", Source: simulation.SourceAPI, TeaLotID: 1, LotCode: "LOT-2026-001", Shippable: true, SimulatedAt: base.Add(2 * time.Minute)},
	}
	for _, r := range reports {
		require.NoError(t, archive.Save(ctx, r))
	}

	all, err := archive.List(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "r3", all[0].ID)

	lot2, err := archive.List(ctx, "LOT-2026-002", 10)
	require.NoError(t, err)
	require.Len(t, lot2, 1)
	require.Len(t, lot2[0].Results, 1)
	assert.Equal(t, ruledsl.SeverityBlock, lot2[0].Results[0].Severity)
	assert.Equal(t, ruledsl.OutcomeFail, lot2[0].Results[0].Result)

	limited, err := archive.List(ctx, "LOT-2026-001", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
