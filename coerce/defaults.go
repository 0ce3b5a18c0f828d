package coerce

import (
	"fmt"
	"math/big"
	"strconv"
	"time"
)

const (
	Array    = "array"
	Boolean  = "boolean"
	String   = "string"
	Integer  = "integer"
	Float    = "float"
	Hash     = "hash"
	BigDecimal = "big_decimal"
	Complex  = "complex"
	Date     = "date"
	DateTime = "datetime"
	Rational = "rational"
	Time     = "time"
	Virtual  = "virtual"
)

var defaults = map[string]Func{
	Array:      coerceArray,
	Boolean:    coerceBoolean,
	String:     coerceString,
	Integer:    coerceInteger,
	Float:      coerceFloat,
	Hash:       coerceHash,
	BigDecimal: coerceBigDecimal,
	Complex:    coerceComplex,
	Date:       coerceDate,
	DateTime:   coerceDateTime,
	Rational:   coerceRational,
	Time:       coerceTime,
	Virtual:    coerceVirtual,
}

func coerceArray(value any, _ map[string]any) (any, error) {
	switch v := value.(type) {
	case []any:
		return v, nil
	case nil:
		return []any{}, nil
	default:
		return []any{v}, nil
	}
}

func coerceBoolean(value any, _ map[string]any) (any, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("cannot coerce %q into boolean", v)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("cannot coerce %T into boolean", value)
	}
}

func coerceString(value any, _ map[string]any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	case nil:
		return nil, fmt.Errorf("cannot coerce nil into string")
	default:
		return fmt.Sprintf("%v", v), nil
	}
}

func coerceInteger(value any, _ map[string]any) (any, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("cannot coerce %q into integer", v)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("cannot coerce %T into integer", value)
	}
}

func coerceFloat(value any, _ map[string]any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot coerce %q into float", v)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("cannot coerce %T into float", value)
	}
}

func coerceHash(value any, _ map[string]any) (any, error) {
	switch v := value.(type) {
	case map[string]any:
		return v, nil
	case nil:
		return map[string]any{}, nil
	default:
		return nil, fmt.Errorf("cannot coerce %T into hash", value)
	}
}

func coerceBigDecimal(value any, _ map[string]any) (any, error) {
	switch v := value.(type) {
	case *big.Float:
		return v, nil
	case string:
		f, ok := new(big.Float).SetString(v)
		if !ok {
			return nil, fmt.Errorf("cannot coerce %q into big_decimal", v)
		}
		return f, nil
	case float64:
		return big.NewFloat(v), nil
	case int:
		return big.NewFloat(float64(v)), nil
	default:
		return nil, fmt.Errorf("cannot coerce %T into big_decimal", value)
	}
}

func coerceComplex(value any, _ map[string]any) (any, error) {
	switch v := value.(type) {
	case complex128:
		return v, nil
	case float64:
		return complex(v, 0), nil
	case int:
		return complex(float64(v), 0), nil
	default:
		return nil, fmt.Errorf("cannot coerce %T into complex", value)
	}
}

func coerceDate(value any, _ map[string]any) (any, error) {
	switch v := value.(type) {
	case time.Time:
		year, month, day := v.Date()
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), nil
	case string:
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, fmt.Errorf("cannot coerce %q into date: %w", v, err)
		}
		return t, nil
	default:
		return nil, fmt.Errorf("cannot coerce %T into date", value)
	}
}

func coerceDateTime(value any, _ map[string]any) (any, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, fmt.Errorf("cannot coerce %q into datetime: %w", v, err)
		}
		return t, nil
	default:
		return nil, fmt.Errorf("cannot coerce %T into datetime", value)
	}
}

func coerceRational(value any, _ map[string]any) (any, error) {
	switch v := value.(type) {
	case *big.Rat:
		return v, nil
	case string:
		r, ok := new(big.Rat).SetString(v)
		if !ok {
			return nil, fmt.Errorf("cannot coerce %q into rational", v)
		}
		return r, nil
	case int:
		return new(big.Rat).SetInt64(int64(v)), nil
	default:
		return nil, fmt.Errorf("cannot coerce %T into rational", value)
	}
}

func coerceTime(value any, opts map[string]any) (any, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		layout := time.RFC3339
		if l, ok := opts["layout"].(string); ok && l != "" {
			layout = l
		}
		t, err := time.Parse(layout, v)
		if err != nil {
			return nil, fmt.Errorf("cannot coerce %q into time: %w", v, err)
		}
		return t, nil
	default:
		return nil, fmt.Errorf("cannot coerce %T into time", value)
	}
}

func coerceVirtual(value any, _ map[string]any) (any, error) {
	return value, nil
}
