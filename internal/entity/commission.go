package entity

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// decimalLiteral is the plain decimal form accepted in numeric strings; hex
// floats, underscores and Inf/NaN spellings are refused.
var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

const (
	CommissionRate       = 0.05
	DefaultDecimalPlaces = 2
)

type InvalidNumberError struct {
	Value  any
	Reason string
}

func (e *InvalidNumberError) Error() string {
	return fmt.Sprintf("invalid number %v: %s", e.Value, e.Reason)
}

// EstimatedCommission returns the commission owed on saleAmount for a lead in the given status.
func EstimatedCommission(saleAmount float64, status LeadStatus) float64 {
	if status == LeadStatusUnqualified {
		return 0
	}
	return roundTo(saleAmount*CommissionRate, DefaultDecimalPlaces)
}

// RoundDecimal converts value to a number and rounds it to places decimal digits.
// Numeric strings are accepted; anything that is not a finite number fails with *InvalidNumberError.
func RoundDecimal(value any, places int) (float64, error) {
	n, err := ParseNumber(value)
	if err != nil {
		return 0, err
	}
	return roundTo(n, places), nil
}

// ParseNumber extracts a finite float64 from a JSON-decoded or Go numeric value.
func ParseNumber(value any) (float64, error) {
	var n float64

	switch v := value.(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int32:
		n = float64(v)
	case int64:
		n = float64(v)
	case uint:
		n = float64(v)
	case uint32:
		n = float64(v)
	case uint64:
		n = float64(v)
	case json.Number:
		if !decimalLiteral.MatchString(string(v)) {
			return 0, &InvalidNumberError{Value: value, Reason: "not a decimal number"}
		}
		f, err := v.Float64()
		if err != nil {
			return 0, &InvalidNumberError{Value: value, Reason: "not a valid number"}
		}
		n = f
	case string:
		trimmed := strings.TrimSpace(v)
		if !decimalLiteral.MatchString(trimmed) {
			return 0, &InvalidNumberError{Value: value, Reason: "not a decimal number"}
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, &InvalidNumberError{Value: value, Reason: "not a valid number"}
		}
		n = f
	default:
		return 0, &InvalidNumberError{Value: value, Reason: fmt.Sprintf("expected string or number, got %T", value)}
	}

	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, &InvalidNumberError{Value: value, Reason: "not a finite number"}
	}
	return n, nil
}

// roundTo rounds half away from zero, the same result Math.round and toFixed give for the
// binary value, so 1.005 stays 1.00.
func roundTo(value float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	rounded := math.Round(value*pow) / pow
	if rounded == 0 {
		return 0
	}
	return rounded
}
