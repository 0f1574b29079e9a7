package dth22

import (
	"errors"
	"testing"
)

func validationMessage(t *testing.T, err error) string {
	t.Helper()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error %v is not a *ValidationError", err)
	}
	return ve.Message
}

func TestParseCreate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    NewReading
		wantMsg string
	}{
		{
			name: "numbers",
			body: `{"unit_name":"kamar-1","suhu":27.5,"kelembapan":61}`,
			want: NewReading{UnitName: "kamar-1", Suhu: 27.5, Kelembapan: 61},
		},
		{
			name: "numeric strings",
			body: `{"unit_name":"kamar-1","suhu":"27.5","kelembapan":" 61 "}`,
			want: NewReading{UnitName: "kamar-1", Suhu: 27.5, Kelembapan: 61},
		},
		{
			name: "zero is a value",
			body: `{"unit_name":"freezer","suhu":0,"kelembapan":0}`,
			want: NewReading{UnitName: "freezer"},
		},
		{
			name: "unknown fields ignored",
			body: `{"unit_name":"a","suhu":1,"kelembapan":2,"id":9,"created_at":"x"}`,
			want: NewReading{UnitName: "a", Suhu: 1, Kelembapan: 2},
		},
		{name: "missing suhu", body: `{"unit_name":"kamar-1","kelembapan":61}`, wantMsg: MsgFieldsRequired},
		{name: "null kelembapan", body: `{"unit_name":"a","suhu":1,"kelembapan":null}`, wantMsg: MsgFieldsRequired},
		{name: "empty unit", body: `{"unit_name":"  ","suhu":1,"kelembapan":2}`, wantMsg: MsgFieldsRequired},
		{name: "empty object", body: `{}`, wantMsg: MsgFieldsRequired},
		{name: "non numeric suhu", body: `{"unit_name":"a","suhu":"hot","kelembapan":2}`, wantMsg: "Field suhu harus berupa angka"},
		{name: "boolean kelembapan", body: `{"unit_name":"a","suhu":1,"kelembapan":true}`, wantMsg: "Field kelembapan harus berupa angka"},
		{name: "NaN string", body: `{"unit_name":"a","suhu":"NaN","kelembapan":2}`, wantMsg: "Field suhu harus berupa angka"},
		{name: "numeric unit", body: `{"unit_name":5,"suhu":1,"kelembapan":2}`, wantMsg: "Field unit_name harus berupa teks"},
		{name: "array body", body: `[1,2]`, wantMsg: MsgInvalidBody},
		{name: "null body", body: `null`, wantMsg: MsgInvalidBody},
		{name: "not json", body: `unit_name=a`, wantMsg: MsgInvalidBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCreate([]byte(tt.body))
			if tt.wantMsg != "" {
				if msg := validationMessage(t, err); msg != tt.wantMsg {
					t.Errorf("message = %q, want %q", msg, tt.wantMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCreate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseCreate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseUpdate(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	s := func(v string) *string { return &v }

	tests := []struct {
		name    string
		body    string
		pathID  string
		wantID  int64
		want    Patch
		wantMsg string
	}{
		{name: "numeric id", body: `{"id":3,"suhu":"30.5"}`, wantID: 3, want: Patch{Suhu: f(30.5)}},
		{name: "string id", body: `{"id":"7","unit_name":"b"}`, wantID: 7, want: Patch{UnitName: s("b")}},
		{name: "all fields", body: `{"id":1,"unit_name":"a","suhu":1,"kelembapan":2}`, wantID: 1,
			want: Patch{UnitName: s("a"), Suhu: f(1), Kelembapan: f(2)}},
		{name: "blank fields skipped", body: `{"id":1,"unit_name":"","suhu":null}`, wantID: 1},
		{name: "path id wins", body: `{"id":1,"kelembapan":40}`, pathID: "5", wantID: 5, want: Patch{Kelembapan: f(40)}},
		{name: "path id without body id", body: `{"suhu":2}`, pathID: "8", wantID: 8, want: Patch{Suhu: f(2)}},
		{name: "missing id", body: `{"suhu":2}`, wantMsg: MsgIDRequired},
		{name: "zero id", body: `{"id":0}`, wantMsg: MsgIDRequired},
		{name: "empty string id", body: `{"id":""}`, wantMsg: MsgIDRequired},
		{name: "fractional id", body: `{"id":1.5}`, wantMsg: MsgIDInvalid},
		{name: "negative id", body: `{"id":-2}`, wantMsg: MsgIDInvalid},
		{name: "word id", body: `{"id":"abc"}`, wantMsg: MsgIDInvalid},
		{name: "bad path id", body: `{}`, pathID: "abc", wantMsg: MsgIDInvalid},
		{name: "bad number", body: `{"id":1,"kelembapan":"wet"}`, wantMsg: "Field kelembapan harus berupa angka"},
		{name: "invalid body", body: `"x"`, wantMsg: MsgInvalidBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, patch, err := ParseUpdate([]byte(tt.body), tt.pathID)
			if tt.wantMsg != "" {
				if msg := validationMessage(t, err); msg != tt.wantMsg {
					t.Errorf("message = %q, want %q", msg, tt.wantMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseUpdate() error = %v", err)
			}
			if id != tt.wantID {
				t.Errorf("id = %d, want %d", id, tt.wantID)
			}
			if !patchEqual(patch, tt.want) {
				t.Errorf("patch = %s, want %s", describePatch(patch), describePatch(tt.want))
			}
		})
	}
}

func TestValidationErrorString(t *testing.T) {
	if got := invalid("", MsgFieldsRequired).Error(); got != "dth22: "+MsgFieldsRequired {
		t.Errorf("Error() = %q", got)
	}
	if got := invalid("id", MsgIDInvalid).Error(); got != "dth22: id: "+MsgIDInvalid {
		t.Errorf("Error() = %q", got)
	}
}

func patchEqual(a, b Patch) bool {
	strEq := func(x, y *string) bool { return (x == nil) == (y == nil) && (x == nil || *x == *y) }
	numEq := func(x, y *float64) bool { return (x == nil) == (y == nil) && (x == nil || *x == *y) }
	return strEq(a.UnitName, b.UnitName) && numEq(a.Suhu, b.Suhu) && numEq(a.Kelembapan, b.Kelembapan)
}

func describePatch(p Patch) string {
	out := "{"
	if p.UnitName != nil {
		out += " unit_name=" + *p.UnitName
	}
	if p.Suhu != nil {
		out += " suhu=set"
	}
	if p.Kelembapan != nil {
		out += " kelembapan=set"
	}
	return out + " }"
}
