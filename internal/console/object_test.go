package console

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestParseJSON_KeepsKeyOrder(t *testing.T) {
	v, err := ParseJSON([]byte(`{"zeta":1,"alpha":{"b":2,"a":[1,"x",null]},"mid":true}`))
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}
	obj, ok := v.(*Object)
	if !ok {
		t.Fatalf("ParseJSON() = %T, want *Object", v)
	}
	if got := obj.Keys(); !reflect.DeepEqual(got, []string{"zeta", "alpha", "mid"}) {
		t.Errorf("Keys() = %v", got)
	}

	nested, _ := obj.Get("alpha")
	if got := nested.(*Object).Keys(); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Errorf("nested Keys() = %v", got)
	}

	out, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != `{"zeta":1,"alpha":{"b":2,"a":[1,"x",null]},"mid":true}` {
		t.Errorf("Marshal() = %s", out)
	}
}

func TestParseJSON_Scalars(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{in: `42`, want: json.Number("42")},
		{in: `"hi"`, want: "hi"},
		{in: `true`, want: true},
		{in: `null`, want: nil},
		{in: ` [] `, want: []any{}},
	}
	for _, tt := range tests {
		got, err := ParseJSON([]byte(tt.in))
		if err != nil {
			t.Errorf("ParseJSON(%s) error = %v", tt.in, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseJSON(%s) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestParseJSON_Invalid(t *testing.T) {
	for _, in := range []string{``, `{`, `{"a":}`, `[1,]`, `1 2`, `hello`} {
		if _, err := ParseJSON([]byte(in)); err == nil {
			t.Errorf("ParseJSON(%q) expected error", in)
		}
	}
}

func TestObject_SetKeepsPosition(t *testing.T) {
	o := NewObject()
	o.Set("a", 1)
	o.Set("b", 2)
	o.Set("a", 3)

	if got := o.Keys(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Keys() = %v", got)
	}
	if v, _ := o.Get("a"); v != 3 {
		t.Errorf("Get(a) = %v, want 3", v)
	}

	clone := o.Clone()
	clone.Set("c", 4)
	if o.Len() != 2 {
		t.Errorf("Clone() shares keys with original")
	}
}
