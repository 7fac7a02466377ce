package ruledsl

import "fmt"

// Severity is the operational impact of a failed rule. Only SeverityBlock
// makes a lot non-shippable.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityBlock
)

var severityNames = map[Severity]string{
	SeverityInfo:    "INFO",
	SeverityWarning: "WARNING",
	SeverityBlock:   "BLOCK",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

func (s Severity) Valid() bool {
	_, ok := severityNames[s]
	return ok
}

// ParseSeverity accepts the exact upper-case literals used in rule text.
func ParseSeverity(text string) (Severity, error) {
	switch text {
	case "INFO":
		return SeverityInfo, nil
	case "WARNING":
		return SeverityWarning, nil
	case "BLOCK":
		return SeverityBlock, nil
	}
	return 0, fmt.Errorf("unknown severity %q", text)
}

func (s Severity) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown severity %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
