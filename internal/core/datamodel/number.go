package datamodel

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Number is a quantity the backend sends either as a JSON number or as a
// numeric string. Anything else (null, "", "n/a", objects) decodes as
// zero so one odd field never costs the whole record.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	*n = 0

	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*n = Number(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	*n = Number(d.InexactFloat64())
	return nil
}

func (n Number) Float64() float64 {
	return float64(n)
}
