package console

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// truthy mirrors the falsy set of JSON values: null, false, "", and 0.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case float64:
		return t != 0 && !math.IsNaN(t)
	case int:
		return t != 0
	case int64:
		return t != 0
	default:
		return true
	}
}

// FormatCell renders a row value for a table cell. Falsy values render as an
// empty cell; objects and arrays render as compact JSON.
func FormatCell(v any) string {
	if !truthy(v) {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return "true"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	}
}

// HeaderLabel capitalises the first letter of a column name.
func HeaderLabel(column string) string {
	r, size := utf8.DecodeRuneInString(column)
	if size == 0 {
		return ""
	}
	return string(unicode.ToUpper(r)) + column[size:]
}
