package management

import (
	"context"

	"teagate/pkg/models"
	"teagate/pkg/ruledsl"
)

func seedTeaLots() []*TeaLot {
	return []*TeaLot{
		{LotCode: "LOT-2026-001", Origin: "Shizuoka", Variety: "Yabukita", Moisture: 8.8, PesticideLevel: 0.10, AromaScore: 78},
		{LotCode: "LOT-2026-002", Origin: "Uji", Variety: "Samidori", Moisture: 9.6, PesticideLevel: 0.08, AromaScore: 82},
		{LotCode: "LOT-2026-003", Origin: "Kagoshima", Variety: "Yutakamidori", Moisture: 10.2, PesticideLevel: 0.12, AromaScore: 74},
		{LotCode: "LOT-2026-004", Origin: "Miyazaki", Variety: "Saemidori", Moisture: 8.4, PesticideLevel: 0.18, AromaScore: 80},
		{LotCode: "LOT-2026-005", Origin: "Shizuoka", Variety: "Okumidori", Moisture: 9.1, PesticideLevel: 0.05, AromaScore: 69},
	}
}

func seedRules() []*Rule {
	return []*Rule{
		{Name: "Moisture Check", DSL: `rule("Moisture Check") { whenMoisture { it > 9.0 } then BLOCK }`, Severity: ruledsl.SeverityBlock},
		{Name: "Pesticide Check", DSL: `rule("Pesticide Check") { whenPesticideLevel { it > 0.15 } then WARNING }`, Severity: ruledsl.SeverityWarning},
		{Name: "Aroma Check", DSL: `rule("Aroma Check") { whenAromaScore { it < 70 } then INFO }`, Severity: ruledsl.SeverityInfo},
	}
}

// Seed fills each table with the demo data when that table is empty.
// Tables that already hold rows are left alone.
func (s *service) Seed(ctx context.Context) (*SeedResult, error) {
	result := &SeedResult{}

	lotCount, err := s.lots.CountTeaLots(ctx)
	if err != nil {
		return nil, internalError(err)
	}
	if lotCount == 0 {
		lots := seedTeaLots()
		if err := s.lots.ImportTeaLots(ctx, lots); err != nil {
			return nil, internalError(err)
		}
		result.TeaLots = len(lots)
	}

	ruleCount, err := s.rules.CountRules(ctx)
	if err != nil {
		return nil, internalError(err)
	}
	if ruleCount == 0 {
		rules := seedRules()
		if err := s.rules.ImportRules(ctx, rules); err != nil {
			return nil, internalError(err)
		}
		for _, rule := range rules {
			s.recordRuleChange(ctx, models.ActionImport, nil, rule)
		}
		s.publishConfigEvent(ctx, models.ActionImport, 0, map[string]interface{}{"seeded": len(rules)})
		result.Rules = len(rules)
	}

	if result.TeaLots > 0 || result.Rules > 0 {
		s.logger.InfowCtx(ctx, "Seeded demo data", "tea_lots", result.TeaLots, "rules", result.Rules)
	}
	return result, nil
}
