// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package kpi

import (
	"math"
	"strconv"

	"github.com/goccy/go-json"
)

// Value is a derived metric that may be undefined. The zero Value is Undefined.
type Value struct {
	v  float64
	ok bool
}

// Undefined marks a metric whose denominator was zero or whose input was absent.
var Undefined = Value{}

// Of wraps v. NaN and infinities become Undefined.
func Of(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Undefined
	}
	return Value{v: v, ok: true}
}

// Get returns the number and whether it is defined.
func (x Value) Get() (float64, bool) {
	return x.v, x.ok
}

// Defined reports whether the value holds a number.
func (x Value) Defined() bool {
	return x.ok
}

// Or returns the number, or def when undefined.
func (x Value) Or(def float64) float64 {
	if !x.ok {
		return def
	}
	return x.v
}

// Neg negates a defined value.
func (x Value) Neg() Value {
	if !x.ok {
		return Undefined
	}
	return Of(-x.v)
}

// Sub returns x - y, undefined if either side is.
func (x Value) Sub(y Value) Value {
	if !x.ok || !y.ok {
		return Undefined
	}
	return Of(x.v - y.v)
}

func (x Value) String() string {
	if !x.ok {
		return "undefined"
	}
	return strconv.FormatFloat(x.v, 'g', -1, 64)
}

// MarshalJSON writes null for Undefined.
func (x Value) MarshalJSON() ([]byte, error) {
	if !x.ok {
		return []byte("null"), nil
	}
	return json.Marshal(x.v)
}

// UnmarshalJSON reads null as Undefined.
func (x *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*x = Undefined
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*x = Of(f)
	return nil
}

// Sum adds the values, undefined if any is.
func Sum(values ...Value) Value {
	total := 0.0
	for _, v := range values {
		if !v.ok {
			return Undefined
		}
		total += v.v
	}
	return Of(total)
}

// Mean averages the defined values, undefined when none are.
func Mean(values ...Value) Value {
	total, n := 0.0, 0
	for _, v := range values {
		if v.ok {
			total += v.v
			n++
		}
	}
	if n == 0 {
		return Undefined
	}
	return Of(total / float64(n))
}
