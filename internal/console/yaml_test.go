package console

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestObject_MarshalYAMLKeepsOrder(t *testing.T) {
	v, err := ParseJSON([]byte(`{"z":1,"a":"x","note":null,"f":2.5,"nested":{"b":true,"a":[1,"two"]}}`))
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}

	out, err := yaml.Marshal(v)
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}

	want := `z: 1
a: x
note: null
f: 2.5
nested:
    b: true
    a:
        - 1
        - two
`
	if string(out) != want {
		t.Errorf("yaml =\n%s\nwant\n%s", out, want)
	}
}
