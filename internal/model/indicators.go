package model

import (
	"encoding/json"
	"strconv"
)

// Value is an indicator reading that may be Unavailable when history is too short.
type Value struct {
	V     float64
	Valid bool
}

// Unavailable is the zero Value.
var Unavailable = Value{}

// Some wraps an available reading.
func Some(v float64) Value { return Value{V: v, Valid: true} }

// String renders the value, or "N/A".
func (v Value) String() string {
	if !v.Valid {
		return "N/A"
	}
	return strconv.FormatFloat(v.V, 'f', -1, 64)
}

// MarshalJSON encodes an unavailable value as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.V)
}

// UnmarshalJSON accepts a number or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Unavailable
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}

// MACD holds the MACD line, its signal line and the histogram.
type MACD struct {
	Line      Value `json:"line"`
	Signal    Value `json:"signal"`
	Histogram Value `json:"histogram"`
}

// Available reports whether the MACD could be computed.
func (m MACD) Available() bool { return m.Histogram.Valid }

// Bands holds Bollinger band levels.
type Bands struct {
	Mid   Value `json:"mid"`
	Upper Value `json:"upper"`
	Lower Value `json:"lower"`
}

// Available reports whether the bands could be computed.
func (b Bands) Available() bool { return b.Mid.Valid && b.Upper.Valid && b.Lower.Valid }

// Summary holds the descriptive statistics of a price series.
type Summary struct {
	Latest       float64 `json:"latest"`
	Highest      float64 `json:"highest"`
	Lowest       float64 `json:"lowest"`
	Average      float64 `json:"average"`
	DeviationPct float64 `json:"deviation_pct"` // latest vs average
}
