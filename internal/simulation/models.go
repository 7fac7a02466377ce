package simulation

import (
	"time"

	"teagate/pkg/models"
	"teagate/pkg/ruledsl"
)

const (
	SourceAPI        = "api"
	SourceInspection = "inspection"
)

type RuleResult struct {
	RuleID   int64            `json:"ruleId" bson:"rule_id"`
	RuleName string           `json:"ruleName" bson:"rule_name"`
	Result   ruledsl.Outcome  `json:"result" bson:"result" swaggertype:"string" enums:"PASS,FAIL"`
	Severity ruledsl.Severity `json:"severity" bson:"severity" swaggertype:"string" enums:"INFO,WARNING,BLOCK"`
	Message  string           `json:"message" bson:"message"`
}

type SimulationResponse struct {
	TeaLotID  int64        `json:"teaLotId"`
	LotCode   string       `json:"lotCode"`
	Shippable bool         `json:"shippable"`
	Results   []RuleResult `json:"results"`
}

// BulkSimulationRequest selects lots by id, by CEL selector, or both.
type BulkSimulationRequest struct {
	TeaLotIDs []int64 `json:"teaLotIds"`
	Selector  string  `json:"selector,omitempty"`
}

type BulkSimulationResponse struct {
	Results []SimulationResponse `json:"results"`
}

// Report is one archived simulation.
type Report struct {
	ID           string       `json:"id" bson:"_id"`
	Source       string       `json:"source" bson:"source"`
	TeaLotID     int64        `json:"teaLotId,omitempty" bson:"tea_lot_id,omitempty"`
	InspectionID string       `json:"inspectionId,omitempty" bson:"inspection_id,omitempty"`
	LotCode      string       `json:"lotCode" bson:"lot_code"`
	Shippable    bool         `json:"shippable" bson:"shippable"`
	Results      []RuleResult `json:"results" bson:"results"`
	SimulatedAt  time.Time    `json:"simulatedAt" bson:"simulated_at"`
}

func (r SimulationResponse) verdict(inspectionID string, evaluatedAt time.Time) models.LotVerdict {
	results := make([]models.VerdictResult, len(r.Results))
	for i, res := range r.Results {
		results[i] = models.VerdictResult{
			RuleID:   res.RuleID,
			RuleName: res.RuleName,
			Result:   string(res.Result),
			Severity: res.Severity.String(),
			Message:  res.Message,
		}
	}
	return models.LotVerdict{
		InspectionID: inspectionID,
		LotCode:      r.LotCode,
		Shippable:    r.Shippable,
		Results:      results,
		EvaluatedAt:  evaluatedAt,
	}
}
