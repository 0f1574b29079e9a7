package console

// ValueKey is the column used when a response is not an object.
const ValueKey = "value"

// Normalize turns a parsed JSON body into table rows.
//
//   - array: one row per element (non-object elements become {value: elem})
//   - object: a single row
//   - anything else, including null: a single {value: body} row
func Normalize(body any) []*Object {
	switch v := body.(type) {
	case []any:
		rows := make([]*Object, 0, len(v))
		for _, elem := range v {
			rows = append(rows, asRow(elem))
		}
		return rows
	default:
		return []*Object{asRow(v)}
	}
}

func asRow(v any) *Object {
	if obj, ok := v.(*Object); ok && obj != nil {
		return obj
	}
	row := NewObject()
	row.Set(ValueKey, v)
	return row
}

// Columns returns the keys of the first row. Keys that only appear in later
// rows are not shown.
func Columns(rows []*Object) []string {
	if len(rows) == 0 {
		return nil
	}
	return rows[0].Keys()
}
