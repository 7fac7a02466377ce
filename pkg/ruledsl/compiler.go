package ruledsl

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	ruleNamePattern  = regexp.MustCompile(`rule\("(.+?)"\)`)
	severityPattern  = regexp.MustCompile(`then\s+(INFO|WARNING|BLOCK)`)
	thresholdPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
)

type conditionKind int

const (
	kindMoisture conditionKind = iota
	kindPesticideLevel
	kindAromaScore
)

// conditionTokens is checked in order and the first present token wins, even
// when a later token appears earlier in the text.
var conditionTokens = []struct {
	token string
	kind  conditionKind
}{
	{"whenMoisture", kindMoisture},
	{"whenPesticideLevel", kindPesticideLevel},
	{"whenAromaScore", kindAromaScore},
}

// CompiledRule is an immutable rule produced by Compile.
type CompiledRule struct {
	name      string
	condition Condition
	severity  Severity
}

func (r *CompiledRule) Name() string         { return r.name }
func (r *CompiledRule) Condition() Condition { return r.condition }
func (r *CompiledRule) Severity() Severity   { return r.severity }

// Compile turns rule text of the form
//
//	rule("<name>") { when<Field> { it <op> <number> } then <SEVERITY> }
//
// into a CompiledRule. Extraction is token anchored rather than a full
// grammar, so surrounding text is tolerated as long as the required tokens
// appear. Any failure is returned as a new *SyntaxError; compare it with the
// Err* values through errors.Is.
//
// Moisture and pesticide thresholds are plain decimal literals with an
// optional sign, fraction and exponent, such as 9, -0.5, .15 or 1.5e-2.
// Type suffixes (9.0f, 9d), hex floats, Infinity, NaN and values outside
// the float64 range are rejected with ReasonThresholdNotNumeric. Aroma
// thresholds are base-10 integers.
//
// Compile has no shared state and is safe for concurrent use.
func Compile(dsl string) (*CompiledRule, error) {
	match := ruleNamePattern.FindStringSubmatch(dsl)
	if match == nil {
		return nil, syntaxError(ReasonMissingName, "")
	}
	name := match[1]

	match = severityPattern.FindStringSubmatch(dsl)
	if match == nil {
		return nil, syntaxError(ReasonMissingSeverity, "")
	}
	severity, err := ParseSeverity(match[1])
	if err != nil {
		return nil, syntaxError(ReasonMissingSeverity, err.Error())
	}

	token, kind, ok := detectCondition(dsl)
	if !ok {
		return nil, syntaxError(ReasonUnsupportedCondition, "")
	}

	predicate, err := predicateBlock(dsl, token)
	if err != nil {
		return nil, err
	}

	comparator, operand, err := splitPredicate(predicate)
	if err != nil {
		return nil, err
	}

	condition, err := buildCondition(kind, comparator, operand)
	if err != nil {
		return nil, err
	}

	return &CompiledRule{
		name:      name,
		condition: condition,
		severity:  severity,
	}, nil
}

// MustCompile is like Compile but panics on error. It is meant for rule text
// that is fixed at build time, such as seed data.
func MustCompile(dsl string) *CompiledRule {
	rule, err := Compile(dsl)
	if err != nil {
		panic(err)
	}
	return rule
}

func detectCondition(dsl string) (string, conditionKind, bool) {
	for _, candidate := range conditionTokens {
		if strings.Contains(dsl, candidate.token) {
			return candidate.token, candidate.kind, true
		}
	}
	return "", 0, false
}

// predicateBlock returns the text between the first '{' after token and the
// next '}'.
func predicateBlock(dsl, token string) (string, error) {
	tokenAt := strings.Index(dsl, token)
	if tokenAt < 0 {
		return "", syntaxError(ReasonUnsupportedCondition, "")
	}

	rest := dsl[tokenAt+len(token):]
	open := strings.IndexByte(rest, '{')
	if open < 0 {
		return "", syntaxError(ReasonMissingPredicateBlock, "")
	}
	closing := strings.IndexByte(rest[open+1:], '}')
	if closing < 0 {
		return "", syntaxError(ReasonMissingPredicateBlock, "")
	}
	return rest[open+1 : open+1+closing], nil
}

func splitPredicate(predicate string) (Comparator, string, error) {
	normalized := stripWhitespace(predicate)
	body, ok := strings.CutPrefix(normalized, "it")
	if !ok {
		return "", "", syntaxError(ReasonMissingOperator, "predicate must start with 'it'")
	}

	for _, comparator := range comparatorsLongestFirst {
		if operand, found := strings.CutPrefix(body, string(comparator)); found {
			return comparator, operand, nil
		}
	}
	return "", "", syntaxError(ReasonMissingOperator, "")
}

func buildCondition(kind conditionKind, comparator Comparator, operand string) (Condition, error) {
	if operand == "" {
		return nil, syntaxError(ReasonThresholdNotNumeric, "missing threshold")
	}

	switch kind {
	case kindAromaScore:
		threshold, err := strconv.ParseInt(operand, 10, 32)
		if err != nil {
			return nil, syntaxError(ReasonThresholdNotNumeric, "threshold is not an int")
		}
		return AromaScoreCondition{Comparator: comparator, Threshold: int(threshold)}, nil
	case kindPesticideLevel:
		threshold, err := parseThreshold(operand)
		if err != nil {
			return nil, err
		}
		return FieldCondition{Field: FieldPesticideLevel, Comparator: comparator, Threshold: threshold}, nil
	default:
		threshold, err := parseThreshold(operand)
		if err != nil {
			return nil, err
		}
		return FieldCondition{Field: FieldMoisture, Comparator: comparator, Threshold: threshold}, nil
	}
}

// parseThreshold accepts decimal literals only. strconv.ParseFloat alone
// would also take hex floats, "Inf" and "NaN".
func parseThreshold(operand string) (float64, error) {
	if !thresholdPattern.MatchString(operand) {
		return 0, syntaxError(ReasonThresholdNotNumeric, "")
	}
	threshold, err := strconv.ParseFloat(operand, 64)
	if err != nil {
		return 0, syntaxError(ReasonThresholdNotNumeric, "")
	}
	return threshold, nil
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
