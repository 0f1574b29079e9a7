package dth22

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Field names as they appear in request and response bodies.
const (
	fieldID         = "id"
	fieldUnitName   = "unit_name"
	fieldSuhu       = "suhu"
	fieldKelembapan = "kelembapan"
)

const maxUnitNameLength = 100

// ParseCreate decodes a create body {unit_name, suhu, kelembapan}.
//
// Any field that is absent, null or an empty string yields MsgFieldsRequired.
// Numeric fields accept JSON numbers and numeric strings.
func ParseCreate(body []byte) (NewReading, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return NewReading{}, err
	}

	for _, name := range []string{fieldUnitName, fieldSuhu, fieldKelembapan} {
		if isBlank(fields[name]) {
			return NewReading{}, invalid("", MsgFieldsRequired)
		}
	}

	unit, err := parseUnitName(fields[fieldUnitName])
	if err != nil {
		return NewReading{}, err
	}
	suhu, err := parseNumber(fieldSuhu, fields[fieldSuhu])
	if err != nil {
		return NewReading{}, err
	}
	kelembapan, err := parseNumber(fieldKelembapan, fields[fieldKelembapan])
	if err != nil {
		return NewReading{}, err
	}

	return NewReading{UnitName: unit, Suhu: suhu, Kelembapan: kelembapan}, nil
}

// ParseUpdate decodes an update body {id, unit_name?, suhu?, kelembapan?}.
//
// When pathID is non-empty it identifies the reading and the body id is
// ignored. Blank optional fields are left unchanged. Unknown fields,
// including created_at and updated_at, are ignored.
func ParseUpdate(body []byte, pathID string) (int64, Patch, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return 0, Patch{}, err
	}

	var id int64
	if pathID != "" {
		id, err = ParseID(pathID)
	} else {
		id, err = parseRawID(fields[fieldID])
	}
	if err != nil {
		return 0, Patch{}, err
	}

	var patch Patch
	if raw := fields[fieldUnitName]; !isBlank(raw) {
		unit, err := parseUnitName(raw)
		if err != nil {
			return 0, Patch{}, err
		}
		patch.UnitName = &unit
	}
	if raw := fields[fieldSuhu]; !isBlank(raw) {
		v, err := parseNumber(fieldSuhu, raw)
		if err != nil {
			return 0, Patch{}, err
		}
		patch.Suhu = &v
	}
	if raw := fields[fieldKelembapan]; !isBlank(raw) {
		v, err := parseNumber(fieldKelembapan, raw)
		if err != nil {
			return 0, Patch{}, err
		}
		patch.Kelembapan = &v
	}

	return id, patch, nil
}

// ParseID parses a reading ID from a URL path segment.
func ParseID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, invalid(fieldID, MsgIDRequired)
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 0 {
		return 0, invalid(fieldID, MsgIDInvalid)
	}
	return id, nil
}

func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return nil, invalid("", MsgInvalidBody)
	}
	return fields, nil
}

// isBlank reports whether a raw value counts as not supplied.
func isBlank(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return true
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func parseRawID(raw json.RawMessage) (int64, error) {
	if isBlank(raw) {
		return 0, invalid(fieldID, MsgIDRequired)
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, invalid(fieldID, MsgIDInvalid)
	}
	switch t := v.(type) {
	case float64:
		if t == 0 {
			return 0, invalid(fieldID, MsgIDRequired)
		}
		if t < 0 || t != math.Trunc(t) || t > math.MaxInt64 {
			return 0, invalid(fieldID, MsgIDInvalid)
		}
		return int64(t), nil
	case string:
		return ParseID(t)
	case bool:
		if !t {
			return 0, invalid(fieldID, MsgIDRequired)
		}
	}
	return 0, invalid(fieldID, MsgIDInvalid)
}

func parseUnitName(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", invalid(fieldUnitName, "Field unit_name harus berupa teks")
	}
	s = strings.TrimSpace(s)
	if len(s) > maxUnitNameLength {
		return "", invalid(fieldUnitName, "Field unit_name terlalu panjang")
	}
	return s, nil
}

func parseNumber(field string, raw json.RawMessage) (float64, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, invalid(field, "Field "+field+" harus berupa angka")
	}

	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, invalid(field, "Field "+field+" harus berupa angka")
		}
		f = parsed
	default:
		return 0, invalid(field, "Field "+field+" harus berupa angka")
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, invalid(field, "Field "+field+" harus berupa angka")
	}
	return f, nil
}
