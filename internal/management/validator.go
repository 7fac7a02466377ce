package management

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"teagate/internal/constants"
	pkgerrors "teagate/pkg/errors"
)

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ValidateTeaLot returns every problem with req, in field order.
func ValidateTeaLot(req CreateTeaLotRequest) []string {
	var errs []string

	if isBlank(req.LotCode) {
		errs = append(errs, "lotCode cannot be blank")
	} else if utf8.RuneCountInString(req.LotCode) > constants.MaxLotCodeLength {
		errs = append(errs, fmt.Sprintf("lotCode cannot exceed %d characters", constants.MaxLotCodeLength))
	}
	if isBlank(req.Origin) {
		errs = append(errs, "origin cannot be blank")
	}
	if isBlank(req.Variety) {
		errs = append(errs, "variety cannot be blank")
	}
	if req.Moisture < 0 || req.Moisture > constants.MaxMoisture {
		errs = append(errs, "moisture must be between 0.0 and 100.0")
	}
	if req.PesticideLevel < 0 {
		errs = append(errs, "pesticideLevel cannot be negative")
	}
	if req.AromaScore < 0 || req.AromaScore > constants.MaxScore {
		errs = append(errs, "aromaScore must be between 0 and 100")
	}

	return errs
}

// ValidateRule checks the request shape only; compiling the DSL is left to
// the service so the compile reason can be reported separately.
func ValidateRule(req CreateRuleRequest) []string {
	var errs []string

	if isBlank(req.Name) {
		errs = append(errs, "name cannot be blank")
	} else if utf8.RuneCountInString(req.Name) > constants.MaxRuleNameLength {
		errs = append(errs, fmt.Sprintf("name cannot exceed %d characters", constants.MaxRuleNameLength))
	}
	if isBlank(req.DSL) {
		errs = append(errs, "dsl cannot be blank")
	}
	if req.Severity != nil && !req.Severity.Valid() {
		errs = append(errs, "severity must be one of INFO, WARNING, BLOCK")
	}

	return errs
}

func ValidateUpdateRule(req UpdateRuleRequest) []string {
	var errs []string

	if req.Name != nil {
		if isBlank(*req.Name) {
			errs = append(errs, "name cannot be blank")
		} else if utf8.RuneCountInString(*req.Name) > constants.MaxRuleNameLength {
			errs = append(errs, fmt.Sprintf("name cannot exceed %d characters", constants.MaxRuleNameLength))
		}
	}
	if req.DSL != nil && isBlank(*req.DSL) {
		errs = append(errs, "dsl cannot be blank")
	}
	if req.Severity != nil && !req.Severity.Valid() {
		errs = append(errs, "severity must be one of INFO, WARNING, BLOCK")
	}

	return errs
}

func ValidateImportTeaLots(req ImportTeaLotsRequest) []string {
	var errs []string
	if len(req.TeaLots) == 0 {
		errs = append(errs, "teaLots cannot be empty")
	}
	for i, lot := range req.TeaLots {
		for _, e := range ValidateTeaLot(lot) {
			errs = append(errs, fmt.Sprintf("teaLots[%d]: %s", i, e))
		}
	}
	return errs
}

func ValidateImportRules(req ImportRulesRequest) []string {
	var errs []string
	if len(req.Rules) == 0 {
		errs = append(errs, "rules cannot be empty")
	}
	for i, rule := range req.Rules {
		for _, e := range ValidateRule(rule) {
			errs = append(errs, fmt.Sprintf("rules[%d]: %s", i, e))
		}
	}
	return errs
}

func ValidateIDs(ids []int64) []string {
	var errs []string
	if len(ids) == 0 {
		errs = append(errs, "ids cannot be empty")
	}
	for _, id := range ids {
		if id <= 0 {
			errs = append(errs, "all ids must be positive numbers")
			break
		}
	}
	return errs
}

// validationError folds messages into one ErrValidation, or nil.
func validationError(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return pkgerrors.ErrValidation.
		WithDetail("message", strings.Join(errs, "; ")).
		WithDetail("errors", errs)
}
