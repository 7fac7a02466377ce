package management

import (
	"context"
	"strings"

	"teagate/pkg/cel"
	pkgerrors "teagate/pkg/errors"
)

// SelectTeaLots keeps the lots matching selector, in order. A blank
// selector keeps everything.
func SelectTeaLots(ctx context.Context, evaluator *cel.Evaluator, selector string, lots []TeaLot) ([]TeaLot, error) {
	if strings.TrimSpace(selector) == "" {
		return lots, nil
	}
	if evaluator == nil {
		return nil, pkgerrors.ErrValidation.WithDetail("message", "selectors are not enabled")
	}
	if err := evaluator.ValidateSelector(selector); err != nil {
		return nil, pkgerrors.ErrValidation.
			WithCause(err).
			WithDetail("message", "invalid selector: "+err.Error())
	}

	selected := make([]TeaLot, 0, len(lots))
	for _, lot := range lots {
		ok, err := evaluator.Matches(ctx, selector, lot.SelectorFields())
		if err != nil {
			return nil, pkgerrors.ErrValidation.
				WithCause(err).
				WithDetail("message", "selector failed on lot "+lot.LotCode+": "+err.Error())
		}
		if ok {
			selected = append(selected, lot)
		}
	}
	return selected, nil
}
