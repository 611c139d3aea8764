package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// FlexString decodes JSON strings, numbers and booleans into a string.
// The backend is inconsistent about quoting ids, prices and flags.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(data)
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

// Float parses the value as a finite decimal number.
func (f FlexString) Float() (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(f)), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Int parses the value as an integer.
func (f FlexString) Int() (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(string(f)))
	if err != nil {
		return 0, false
	}
	return v, true
}
