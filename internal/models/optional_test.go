package models

import (
	"encoding/json"
	"testing"
)

func TestOpt_DistinguishesAbsentNullAndValue(t *testing.T) {
	type payload struct {
		Name  Opt[string] `json:"name"`
		Limit Opt[*int]   `json:"limit"`
	}

	tests := []struct {
		name     string
		body     string
		nameSet  bool
		nameVal  string
		limitSet bool
		limitNil bool
		limitVal int
	}{
		{"all absent", `{}`, false, "", false, true, 0},
		{"value supplied", `{"name":"Review","limit":5}`, true, "Review", true, false, 5},
		{"explicit null clears", `{"limit":null}`, false, "", true, true, 0},
		{"empty string still set", `{"name":""}`, true, "", false, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p payload
			if err := json.Unmarshal([]byte(tt.body), &p); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if p.Name.Set != tt.nameSet || p.Name.Value != tt.nameVal {
				t.Errorf("name = set:%v %q, want set:%v %q", p.Name.Set, p.Name.Value, tt.nameSet, tt.nameVal)
			}
			if p.Limit.Set != tt.limitSet {
				t.Fatalf("limit set = %v, want %v", p.Limit.Set, tt.limitSet)
			}
			if tt.limitSet {
				if tt.limitNil != (p.Limit.Value == nil) {
					t.Fatalf("limit nil = %v, want %v", p.Limit.Value == nil, tt.limitNil)
				}
				if !tt.limitNil && *p.Limit.Value != tt.limitVal {
					t.Errorf("limit = %d, want %d", *p.Limit.Value, tt.limitVal)
				}
			}
		})
	}
}

func TestSome(t *testing.T) {
	o := Some(42)
	if !o.Set || o.Value != 42 {
		t.Errorf("Some(42) = %+v", o)
	}
}

func TestNewID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := NewID("tsk")
		if err != nil {
			t.Fatalf("NewID: %v", err)
		}
		if len(id) != 9 || id[:4] != "tsk-" {
			t.Errorf("id = %q, want tsk- prefix and 9 chars", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q on iteration %d", id, i)
		}
		seen[id] = true
	}
}
