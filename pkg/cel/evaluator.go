package cel

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

// LotFields are the variables a lot selector can reference.
type LotFields struct {
	LotCode        string
	Origin         string
	Variety        string
	Moisture       float64
	PesticideLevel float64
	AromaScore     int
}

func (f LotFields) vars() map[string]interface{} {
	return map[string]interface{}{
		"lot_code":        f.LotCode,
		"origin":          f.Origin,
		"variety":         f.Variety,
		"moisture":        f.Moisture,
		"pesticide_level": f.PesticideLevel,
		"aroma_score":     int64(f.AromaScore),
	}
}

// Evaluator compiles lot selectors such as
// `origin == "Shizuoka" && moisture > 9.0`. Compiled programs are cached by
// expression text.
type Evaluator struct {
	env *cel.Env

	mu       sync.RWMutex
	programs map[string]cel.Program
}

func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("lot_code", cel.StringType),
		cel.Variable("origin", cel.StringType),
		cel.Variable("variety", cel.StringType),
		cel.Variable("moisture", cel.DoubleType),
		cel.Variable("pesticide_level", cel.DoubleType),
		cel.Variable("aroma_score", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Evaluator{env: env, programs: make(map[string]cel.Program)}, nil
}

// ValidateSelector reports whether expression compiles to a bool.
func (e *Evaluator) ValidateSelector(expression string) error {
	_, err := e.compile(expression)
	return err
}

func (e *Evaluator) Matches(ctx context.Context, expression string, lot LotFields) (bool, error) {
	program, err := e.program(expression)
	if err != nil {
		return false, err
	}

	result, _, err := program.ContextEval(ctx, lot.vars())
	if err != nil {
		return false, fmt.Errorf("failed to evaluate selector: %w", err)
	}

	matched, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("selector did not return bool, got %T", result.Value())
	}
	return matched, nil
}

func (e *Evaluator) program(expression string) (cel.Program, error) {
	e.mu.RLock()
	p, ok := e.programs[expression]
	e.mu.RUnlock()
	if ok {
		return p, nil
	}

	p, err := e.compile(expression)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.programs[expression] = p
	e.mu.Unlock()
	return p, nil
}

func (e *Evaluator) compile(expression string) (cel.Program, error) {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("selector validation failed: %w", issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("selector must return bool, got %v", ast.OutputType())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}
	return program, nil
}
