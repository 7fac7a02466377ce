package ruledsl

import "fmt"

type Comparator string

const (
	ComparatorGreater        Comparator = ">"
	ComparatorGreaterOrEqual Comparator = ">="
	ComparatorLess           Comparator = "<"
	ComparatorLessOrEqual    Comparator = "<="
)

// comparatorsLongestFirst is the match order used by the compiler so that
// ">=" is never read as ">" followed by "=".
var comparatorsLongestFirst = []Comparator{
	ComparatorGreaterOrEqual,
	ComparatorLessOrEqual,
	ComparatorGreater,
	ComparatorLess,
}

func (c Comparator) Valid() bool {
	switch c {
	case ComparatorGreater, ComparatorGreaterOrEqual, ComparatorLess, ComparatorLessOrEqual:
		return true
	}
	return false
}

type number interface {
	~int | ~float64
}

// compare applies c to (value, threshold) using the primitive operators of T.
// There is no epsilon and no conversion between int and float64.
func compare[T number](c Comparator, value, threshold T) bool {
	switch c {
	case ComparatorGreater:
		return value > threshold
	case ComparatorGreaterOrEqual:
		return value >= threshold
	case ComparatorLess:
		return value < threshold
	case ComparatorLessOrEqual:
		return value <= threshold
	}
	return false
}

type Field string

const (
	FieldMoisture       Field = "MOISTURE"
	FieldPesticideLevel Field = "PESTICIDE_LEVEL"
)

func (f Field) valueOf(s TeaLotSnapshot) (float64, bool) {
	switch f {
	case FieldMoisture:
		return s.Moisture, true
	case FieldPesticideLevel:
		return s.PesticideLevel, true
	}
	return 0, false
}

// Condition is a single comparison over one snapshot attribute. A true result
// means the disqualifying threshold was reached.
//
// The set of implementations is closed: FieldCondition and AromaScoreCondition.
type Condition interface {
	Evaluate(snapshot TeaLotSnapshot) bool
	String() string
	isCondition()
}

// FieldCondition compares a floating point attribute against a float64 threshold.
type FieldCondition struct {
	Field      Field
	Comparator Comparator
	Threshold  float64
}

func (c FieldCondition) Evaluate(snapshot TeaLotSnapshot) bool {
	value, ok := c.Field.valueOf(snapshot)
	if !ok {
		return false
	}
	return compare(c.Comparator, value, c.Threshold)
}

func (c FieldCondition) String() string {
	return fmt.Sprintf("%s %s %v", c.Field, c.Comparator, c.Threshold)
}

func (FieldCondition) isCondition() {}

// AromaScoreCondition compares the integer aroma score against an int threshold.
type AromaScoreCondition struct {
	Comparator Comparator
	Threshold  int
}

func (c AromaScoreCondition) Evaluate(snapshot TeaLotSnapshot) bool {
	return compare(c.Comparator, snapshot.AromaScore, c.Threshold)
}

func (c AromaScoreCondition) String() string {
	return fmt.Sprintf("AROMA_SCORE %s %d", c.Comparator, c.Threshold)
}

func (AromaScoreCondition) isCondition() {}
