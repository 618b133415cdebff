package model

import (
	"bytes"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var flexJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// FlexString accepts a JSON string or number. Product drawings are integers
// in the catalog but stored as text on order snapshots.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := flexJSON.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	if data[0] != '-' && (data[0] < '0' || data[0] > '9') {
		return fmt.Errorf("flex string: expected string or number, got %s", string(data))
	}
	var n jsoniter.Number
	if err := flexJSON.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("flex string: invalid number %s: %w", string(data), err)
	}
	*f = FlexString(n.String())
	return nil
}

// Ptr returns nil for a nil receiver, so absent JSON stays NULL.
func (f *FlexString) Ptr() *string {
	if f == nil {
		return nil
	}
	s := string(*f)
	return &s
}
