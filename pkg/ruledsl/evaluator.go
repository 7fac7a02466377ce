package ruledsl

import "fmt"

type Outcome string

const (
	OutcomePass Outcome = "PASS"
	OutcomeFail Outcome = "FAIL"
)

// RuleEvaluation is the verdict of one rule against one snapshot. Message and
// Severity are only set when Outcome is OutcomeFail.
type RuleEvaluation struct {
	Outcome  Outcome
	Message  string
	Severity Severity
}

func Pass() RuleEvaluation {
	return RuleEvaluation{Outcome: OutcomePass}
}

func Fail(message string, severity Severity) RuleEvaluation {
	return RuleEvaluation{Outcome: OutcomeFail, Message: message, Severity: severity}
}

func (e RuleEvaluation) Failed() bool {
	return e.Outcome == OutcomeFail
}

// Blocking reports whether this verdict alone makes a lot non-shippable.
func (e RuleEvaluation) Blocking() bool {
	return e.Failed() && e.Severity == SeverityBlock
}

// Evaluate applies rule to snapshot. A condition that holds is a failure.
func Evaluate(rule *CompiledRule, snapshot TeaLotSnapshot) RuleEvaluation {
	if rule.condition.Evaluate(snapshot) {
		return Fail(fmt.Sprintf("%s failed", rule.name), rule.severity)
	}
	return Pass()
}

type Simulation struct {
	Shippable bool
	Results   []RuleEvaluation
}

// Simulate evaluates every rule in order. The lot is shippable unless at
// least one BLOCK rule failed.
func Simulate(snapshot TeaLotSnapshot, rules []*CompiledRule) Simulation {
	results := make([]RuleEvaluation, 0, len(rules))
	shippable := true
	for _, rule := range rules {
		result := Evaluate(rule, snapshot)
		if result.Blocking() {
			shippable = false
		}
		results = append(results, result)
	}
	return Simulation{Shippable: shippable, Results: results}
}
