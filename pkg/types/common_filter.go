package types

import (
	"errors"
	"fmt"

	"gorm.io/gorm/clause"
)

var ErrInvalidFilter = errors.New("invalid filter")

type CommonFilterOperator string

const (
	CommonFilterOperatorEq        CommonFilterOperator = "eq"
	CommonFilterOperatorNotEq     CommonFilterOperator = "not_eq"
	CommonFilterOperatorLt        CommonFilterOperator = "lt"
	CommonFilterOperatorLte       CommonFilterOperator = "lte"
	CommonFilterOperatorGt        CommonFilterOperator = "gt"
	CommonFilterOperatorGte       CommonFilterOperator = "gte"
	CommonFilterOperatorDateRange CommonFilterOperator = "date_range"
	CommonFilterOperatorRange     CommonFilterOperator = "range"
	CommonFilterOperatorIn        CommonFilterOperator = "in"
	CommonFilterOperatorIsNull    CommonFilterOperator = "is_null"
	CommonFilterOperatorOr        CommonFilterOperator = "or"
)

// CommonFilter is a client supplied predicate. Operator "or" combines Filters;
// every other operator compares Field against Values.
type CommonFilter struct {
	Field    string               `json:"field"`
	Operator CommonFilterOperator `json:"operator"`
	Values   []any                `json:"values"`
	Filters  []CommonFilter       `json:"filters"`
}

// Validate rejects unknown columns and malformed operands. Field names end up
// in SQL verbatim, so callers must pass the set of columns they allow.
func (f *CommonFilter) Validate(allowed map[string]bool) error {
	if f.Operator == CommonFilterOperatorOr {
		if len(f.Filters) == 0 {
			return fmt.Errorf("%w: or without filters", ErrInvalidFilter)
		}
		for i := range f.Filters {
			if err := f.Filters[i].Validate(allowed); err != nil {
				return err
			}
		}
		return nil
	}
	if !allowed[f.Field] {
		return fmt.Errorf("%w: field %q", ErrInvalidFilter, f.Field)
	}
	switch f.Operator {
	case CommonFilterOperatorIsNull:
		return nil
	case CommonFilterOperatorRange, CommonFilterOperatorDateRange:
		if len(f.Values) < 2 {
			return fmt.Errorf("%w: %s needs two values", ErrInvalidFilter, f.Operator)
		}
	case CommonFilterOperatorEq, CommonFilterOperatorNotEq, CommonFilterOperatorLt, CommonFilterOperatorLte,
		CommonFilterOperatorGt, CommonFilterOperatorGte, CommonFilterOperatorIn:
		if len(f.Values) == 0 {
			return fmt.Errorf("%w: %s needs a value", ErrInvalidFilter, f.Operator)
		}
	default:
		return fmt.Errorf("%w: operator %q", ErrInvalidFilter, f.Operator)
	}
	return nil
}

// Build constructs a GORM expression.
func (f *CommonFilter) Build(builder clause.Builder) {
	if expr := f.expression(); expr != nil {
		expr.Build(builder)
	}
}

func (f *CommonFilter) expression() clause.Expression {
	switch f.Operator {
	case CommonFilterOperatorOr:
		exprs := make([]clause.Expression, 0, len(f.Filters))
		for i := range f.Filters {
			if e := f.Filters[i].expression(); e != nil {
				exprs = append(exprs, e)
			}
		}
		if len(exprs) == 0 {
			return nil
		}
		return clause.Or(exprs...)
	case CommonFilterOperatorIsNull:
		return clause.Eq{Column: f.Field, Value: nil}
	}

	if len(f.Values) == 0 {
		return nil
	}
	value := f.Values[0]

	switch f.Operator {
	case CommonFilterOperatorEq:
		return clause.Eq{Column: f.Field, Value: value}
	case CommonFilterOperatorNotEq:
		return clause.Neq{Column: f.Field, Value: value}
	case CommonFilterOperatorLt:
		return clause.Lt{Column: f.Field, Value: value}
	case CommonFilterOperatorLte:
		return clause.Lte{Column: f.Field, Value: value}
	case CommonFilterOperatorGt:
		return clause.Gt{Column: f.Field, Value: value}
	case CommonFilterOperatorGte:
		return clause.Gte{Column: f.Field, Value: value}
	case CommonFilterOperatorRange:
		if len(f.Values) < 2 {
			return nil
		}
		return clause.And(clause.Gte{Column: f.Field, Value: f.Values[0]}, clause.Lte{Column: f.Field, Value: f.Values[1]})
	case CommonFilterOperatorDateRange:
		// half-open so consecutive day ranges never overlap
		if len(f.Values) < 2 {
			return nil
		}
		return clause.And(clause.Gte{Column: f.Field, Value: f.Values[0]}, clause.Lt{Column: f.Field, Value: f.Values[1]})
	case CommonFilterOperatorIn:
		return clause.IN{Column: f.Field, Values: f.Values}
	default:
		return nil
	}
}
