package management

import (
	"encoding/json"
	"time"

	"teagate/pkg/cel"
	"teagate/pkg/ruledsl"
)

type TeaLot struct {
	ID             int64     `json:"id"`
	LotCode        string    `json:"lotCode"`
	Origin         string    `json:"origin"`
	Variety        string    `json:"variety"`
	Moisture       float64   `json:"moisture"`
	PesticideLevel float64   `json:"pesticideLevel"`
	AromaScore     int       `json:"aromaScore"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (l TeaLot) Snapshot() ruledsl.TeaLotSnapshot {
	return ruledsl.TeaLotSnapshot{
		Moisture:       l.Moisture,
		PesticideLevel: l.PesticideLevel,
		AromaScore:     l.AromaScore,
	}
}

func (l TeaLot) SelectorFields() cel.LotFields {
	return cel.LotFields{
		LotCode:        l.LotCode,
		Origin:         l.Origin,
		Variety:        l.Variety,
		Moisture:       l.Moisture,
		PesticideLevel: l.PesticideLevel,
		AromaScore:     l.AromaScore,
	}
}

type CreateTeaLotRequest struct {
	LotCode        string  `json:"lotCode"`
	Origin         string  `json:"origin"`
	Variety        string  `json:"variety"`
	Moisture       float64 `json:"moisture"`
	PesticideLevel float64 `json:"pesticideLevel"`
	AromaScore     int     `json:"aromaScore"`
}

func (r CreateTeaLotRequest) toTeaLot() *TeaLot {
	return &TeaLot{
		LotCode:        r.LotCode,
		Origin:         r.Origin,
		Variety:        r.Variety,
		Moisture:       r.Moisture,
		PesticideLevel: r.PesticideLevel,
		AromaScore:     r.AromaScore,
	}
}

// TeaLotFilter narrows ListTeaLots. Selector is a CEL expression over the
// lot fields, e.g. `origin == "Uji" && moisture > 9.0`.
type TeaLotFilter struct {
	Selector string
	Limit    int
}

type Rule struct {
	ID        int64            `json:"id"`
	Name      string           `json:"name"`
	DSL       string           `json:"dsl"`
	Severity  ruledsl.Severity `json:"severity"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

type CreateRuleRequest struct {
	Name string `json:"name"`
	DSL  string `json:"dsl"`
	// Severity defaults to the one declared in the DSL.
	Severity *ruledsl.Severity `json:"severity,omitempty" swaggertype:"string" enums:"INFO,WARNING,BLOCK"`
}

type UpdateRuleRequest struct {
	Name     *string           `json:"name,omitempty"`
	DSL      *string           `json:"dsl,omitempty"`
	Severity *ruledsl.Severity `json:"severity,omitempty" swaggertype:"string" enums:"INFO,WARNING,BLOCK"`
}

type ImportTeaLotsRequest struct {
	TeaLots []CreateTeaLotRequest `json:"teaLots"`
}

type ImportTeaLotsResponse struct {
	Imported int      `json:"imported"`
	TeaLots  []TeaLot `json:"teaLots"`
}

type ImportRulesRequest struct {
	Rules []CreateRuleRequest `json:"rules"`
}

type ImportRulesResponse struct {
	Imported int    `json:"imported"`
	Rules    []Rule `json:"rules"`
}

type BulkDeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

type SeedResult struct {
	TeaLots int `json:"teaLots"`
	Rules   int `json:"rules"`
}

type RuleVersion struct {
	ID           string          `json:"id"`
	RuleID       int64           `json:"ruleId"`
	RuleData     json.RawMessage `json:"ruleData" swaggertype:"object"`
	Version      int             `json:"version"`
	ChangedBy    string          `json:"changedBy,omitempty"`
	ChangeReason string          `json:"changeReason,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type AuditLog struct {
	ID           string                 `json:"id"`
	RuleID       *int64                 `json:"ruleId,omitempty"`
	Action       string                 `json:"action"`
	OldValue     map[string]interface{} `json:"oldValue,omitempty"`
	NewValue     map[string]interface{} `json:"newValue,omitempty"`
	ChangedBy    string                 `json:"changedBy"`
	ChangeReason string                 `json:"changeReason,omitempty"`
	IPAddress    string                 `json:"ipAddress,omitempty"`
	Timestamp    time.Time              `json:"timestamp"`
}
