// Package models defines the upstream registry data model and the
// gateway's rollup output shapes. Upstream records are heterogeneous:
// the same concept can arrive under several field names, as a number or
// a string, or nested inside a related object. The types here absorb
// that variance at decode time so the rest of the code sees one shape.
package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FlexString handles JSON values that may be either a string or a number.
// Identity fields (ids, years, quarters) arrive in both forms upstream.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = FlexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*s = FlexString(num.String())
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into string", string(data))
}

// String returns the trimmed value.
func (s FlexString) String() string {
	return strings.TrimSpace(string(s))
}

// FlexBool handles JSON values that may be a bool, a string, or null.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "null", "false", `""`:
		*b = false
		return nil
	case "true":
		*b = true
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		v, err := strconv.ParseBool(strings.TrimSpace(str))
		*b = FlexBool(err == nil && v)
		return nil
	}
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*b = num != 0
		return nil
	}
	*b = false
	return nil
}

// ParseAmount converts a heterogeneous monetary value into a float64.
// Currency symbols and thousands separators are stripped from strings.
// Nil, false, and anything that does not parse to a finite number yield 0;
// the caller never sees NaN or an error. Malformed upstream data degrades
// totals instead of aborting aggregation.
func ParseAmount(v interface{}) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case bool:
		return 0
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0
		}
		return x
	case float32:
		return ParseAmount(float64(x))
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case json.Number:
		return parseAmountString(x.String())
	case string:
		return parseAmountString(x)
	default:
		return 0
	}
}

func parseAmountString(s string) float64 {
	s = strings.TrimSpace(strings.NewReplacer("$", "", ",", "").Replace(s))
	if s == "" {
		return 0
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}

// Amount is a monetary field that decodes via ParseAmount and never fails.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		*a = 0
		return nil
	}
	*a = Amount(ParseAmount(v))
	return nil
}

// ParseTime parses an upstream timestamp or date string.
// Returns the zero time when the value is empty or unparsable.
func ParseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
