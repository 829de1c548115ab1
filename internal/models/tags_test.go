package models

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestTags_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    *Tags
		wantErr bool
	}{
		{"array", `{"tags":["jardin","compost"]}`, tagsPtr(`["jardin","compost"]`), false},
		{"encoded string", `{"tags":"[\"jardin\"]"}`, tagsPtr(`["jardin"]`), false},
		{"empty array", `{"tags":[]}`, tagsPtr(`[]`), false},
		{"null", `{"tags":null}`, nil, false},
		{"absent", `{}`, nil, false},
		{"number", `{"tags":42}`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in ContentInput
			err := json.Unmarshal([]byte(tt.input), &in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if !reflect.DeepEqual(in.Tags, tt.want) {
				t.Errorf("Expected %v, got %v", deref(tt.want), deref(in.Tags))
			}
		})
	}
}

func TestTags_MarshalAsEncodedString(t *testing.T) {
	c := Content{ID: "art_1", Tags: tagsPtr(`["a"]`)}
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var raw map[string]interface{}
	json.Unmarshal(data, &raw)
	if raw["tags"] != `["a"]` {
		t.Errorf("Expected tags to be the encoded string, got %#v", raw["tags"])
	}
}

func TestTags_List(t *testing.T) {
	if got := NewTags([]string{"a", "b"}).List(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Expected [a b], got %v", got)
	}
	if got := Tags("not json").List(); got != nil {
		t.Errorf("Expected nil for malformed tags, got %v", got)
	}
	if NewTags(nil) != "[]" {
		t.Errorf("Expected nil list to encode as [], got %s", NewTags(nil))
	}
}

func tagsPtr(s string) *Tags {
	t := Tags(s)
	return &t
}

func deref(t *Tags) string {
	if t == nil {
		return "<nil>"
	}
	return string(*t)
}
