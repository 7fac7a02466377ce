package ruledsl

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	moistureCheck  = `rule("Moisture Check") { whenMoisture { it > 9.0 } then BLOCK }`
	pesticideCheck = `rule("Pesticide Check") { whenPesticideLevel { it > 0.15 } then WARNING }`
	aromaCheck     = `rule("Aroma Check") { whenAromaScore { it < 70 } then INFO }`
)

func TestEvaluate(t *testing.T) {
	rule := MustCompile(moistureCheck)

	tests := []struct {
		name     string
		snapshot TeaLotSnapshot
		want     RuleEvaluation
	}{
		{
			name:     "above threshold fails",
			snapshot: TeaLotSnapshot{Moisture: 9.5, PesticideLevel: 0, AromaScore: 80},
			want:     Fail("Moisture Check failed", SeverityBlock),
		},
		{
			name:     "below threshold passes",
			snapshot: TeaLotSnapshot{Moisture: 8.0, PesticideLevel: 0, AromaScore: 80},
			want:     Pass(),
		},
		{
			name:     "equal to threshold passes strict comparison",
			snapshot: TeaLotSnapshot{Moisture: 9.0},
			want:     Pass(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(rule, tt.snapshot))
		})
	}
}

func TestEvaluate_Comparators(t *testing.T) {
	tests := []struct {
		dsl      string
		snapshot TeaLotSnapshot
		wantFail bool
	}{
		{`rule("a") { whenAromaScore { it >= 70 } then INFO }`, TeaLotSnapshot{AromaScore: 70}, true},
		{`rule("a") { whenAromaScore { it > 70 } then INFO }`, TeaLotSnapshot{AromaScore: 70}, false},
		{`rule("a") { whenAromaScore { it <= 70 } then INFO }`, TeaLotSnapshot{AromaScore: 70}, true},
		{`rule("a") { whenAromaScore { it < 70 } then INFO }`, TeaLotSnapshot{AromaScore: 69}, true},
		{`rule("p") { whenPesticideLevel { it >= 0.1 } then INFO }`, TeaLotSnapshot{PesticideLevel: 0.1}, true},
		{`rule("p") { whenPesticideLevel { it < 0.1 } then INFO }`, TeaLotSnapshot{PesticideLevel: 0.1}, false},
		{`rule("m") { whenMoisture { it <= 0 } then INFO }`, TeaLotSnapshot{Moisture: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.dsl, func(t *testing.T) {
			result := Evaluate(MustCompile(tt.dsl), tt.snapshot)
			assert.Equal(t, tt.wantFail, result.Failed())
		})
	}
}

func TestEvaluate_PesticideWarningStaysShippable(t *testing.T) {
	rule := MustCompile(pesticideCheck)
	snapshot := TeaLotSnapshot{Moisture: 8.0, PesticideLevel: 0.20, AromaScore: 80}

	result := Evaluate(rule, snapshot)
	assert.Equal(t, Fail("Pesticide Check failed", SeverityWarning), result)

	simulation := Simulate(snapshot, []*CompiledRule{rule})
	assert.True(t, simulation.Shippable)
	assert.Equal(t, []RuleEvaluation{result}, simulation.Results)
}

func TestEvaluate_Deterministic(t *testing.T) {
	rule := MustCompile(aromaCheck)
	snapshot := TeaLotSnapshot{Moisture: 9.1, PesticideLevel: 0.05, AromaScore: 69}
	first := Evaluate(rule, snapshot)

	var wg sync.WaitGroup
	results := make([]RuleEvaluation, 64)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Evaluate(rule, snapshot)
		}(i)
	}
	wg.Wait()

	for _, result := range results {
		assert.Equal(t, first, result)
	}
}

func TestSimulate(t *testing.T) {
	rules := []*CompiledRule{
		MustCompile(moistureCheck),
		MustCompile(pesticideCheck),
		MustCompile(aromaCheck),
	}

	tests := []struct {
		name          string
		snapshot      TeaLotSnapshot
		wantShippable bool
		wantOutcomes  []Outcome
	}{
		{
			name:          "all pass",
			snapshot:      TeaLotSnapshot{Moisture: 8.8, PesticideLevel: 0.10, AromaScore: 78},
			wantShippable: true,
			wantOutcomes:  []Outcome{OutcomePass, OutcomePass, OutcomePass},
		},
		{
			name:          "block failure",
			snapshot:      TeaLotSnapshot{Moisture: 10.2, PesticideLevel: 0.12, AromaScore: 74},
			wantShippable: false,
			wantOutcomes:  []Outcome{OutcomeFail, OutcomePass, OutcomePass},
		},
		{
			name:          "warning and info failures only",
			snapshot:      TeaLotSnapshot{Moisture: 8.4, PesticideLevel: 0.18, AromaScore: 60},
			wantShippable: true,
			wantOutcomes:  []Outcome{OutcomePass, OutcomeFail, OutcomeFail},
		},
		{
			name:          "block failure among others",
			snapshot:      TeaLotSnapshot{Moisture: 9.6, PesticideLevel: 0.5, AromaScore: 10},
			wantShippable: false,
			wantOutcomes:  []Outcome{OutcomeFail, OutcomeFail, OutcomeFail},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			simulation := Simulate(tt.snapshot, rules)
			assert.Equal(t, tt.wantShippable, simulation.Shippable)
			require.Len(t, simulation.Results, len(tt.wantOutcomes))
			for i, outcome := range tt.wantOutcomes {
				assert.Equal(t, outcome, simulation.Results[i].Outcome, "rule %d", i)
			}
		})
	}
}

func TestSimulate_PreservesOrder(t *testing.T) {
	rules := []*CompiledRule{
		MustCompile(aromaCheck),
		MustCompile(moistureCheck),
	}
	snapshot := TeaLotSnapshot{Moisture: 9.5, AromaScore: 50}

	simulation := Simulate(snapshot, rules)
	require.Len(t, simulation.Results, 2)
	assert.Equal(t, "Aroma Check failed", simulation.Results[0].Message)
	assert.Equal(t, SeverityInfo, simulation.Results[0].Severity)
	assert.Equal(t, "Moisture Check failed", simulation.Results[1].Message)
	assert.Equal(t, SeverityBlock, simulation.Results[1].Severity)
	assert.False(t, simulation.Shippable)
}

func TestSimulate_NoRules(t *testing.T) {
	simulation := Simulate(TeaLotSnapshot{Moisture: 99}, nil)
	assert.True(t, simulation.Shippable)
	assert.Empty(t, simulation.Results)
}
