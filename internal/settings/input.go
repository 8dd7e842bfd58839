package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// NumericInput はJSONの数値と数値文字列のどちらも受け付ける入力値。
// 受け取った表記をそのまま保持し、検証はスキーマ側で行う。
type NumericInput struct {
	Raw string
}

// UnmarshalJSON はjson.Unmarshalerを実装する。nullは空入力として扱う。
func (n *NumericInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		n.Raw = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n.Raw = s
	default:
		var num json.Number
		if err := json.Unmarshal(data, &num); err != nil {
			return fmt.Errorf("numeric input must be a number or string: %w", err)
		}
		n.Raw = num.String()
	}
	return nil
}

// MarshalJSON はjson.Marshalerを実装する。
func (n NumericInput) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Raw)
}

// Number はfloat64からNumericInputを作る。
func Number(f float64) NumericInput {
	return NumericInput{Raw: strconv.FormatFloat(f, 'f', -1, 64)}
}
