package history

import (
	"testing"
)

func item(kv ...string) Item {
	it := Item{}
	for i := 0; i+1 < len(kv); i += 2 {
		it[kv[i]] = kv[i+1]
	}
	return it
}

func TestTrim_UnderBoundUnchanged(t *testing.T) {
	items := Items{item("content", "a"), item("content", "b")}
	got := Trim(items, 5)
	if len(got) != 2 {
		t.Fatalf("Trim() len = %d, want 2", len(got))
	}
	if got[0]["content"] != "a" || got[1]["content"] != "b" {
		t.Errorf("Trim() reordered items: %v", got)
	}
}

func TestTrim_AtBoundDropsOldest(t *testing.T) {
	items := Items{item("content", "a"), item("content", "b"), item("content", "c")}
	got := Trim(items, 3)
	if len(got) != 2 {
		t.Fatalf("Trim() len = %d, want 2", len(got))
	}
	if got[0]["content"] != "b" {
		t.Errorf("Trim() oldest survivor = %v, want b", got[0])
	}
}

func TestTrim_ResultAlwaysBelowMax(t *testing.T) {
	for n := 0; n < 20; n++ {
		items := make(Items, n)
		for i := range items {
			items[i] = item("content", "x")
		}
		for max := 1; max < 10; max++ {
			got := Trim(items, max)
			if len(got) >= max {
				t.Errorf("Trim(n=%d, max=%d) len = %d, want < max", n, max, len(got))
			}
		}
	}
}

func TestTrim_CorrelatedPairRemovedTogether(t *testing.T) {
	items := Items{
		item("type", "call", "call_id", "c1"),
		item("content", "a"),
		item("type", "output", "call_id", "c1"),
		item("content", "b"),
	}
	got := Trim(items, 4)
	// Removing the oldest (call c1) must also remove its output, even though
	// the output is not at the front.
	if len(got) != 2 {
		t.Fatalf("Trim() len = %d, want 2: %v", len(got), got)
	}
	for _, it := range got {
		if it.CallID() == "c1" {
			t.Errorf("Trim() kept item with trimmed call_id: %v", it)
		}
	}
	if got[0]["content"] != "a" || got[1]["content"] != "b" {
		t.Errorf("Trim() survivors out of order: %v", got)
	}
}

func TestTrim_SiblingDropCanUndershoot(t *testing.T) {
	items := Items{
		item("call_id", "c1"),
		item("call_id", "c1"),
		item("call_id", "c1"),
		item("content", "keep"),
	}
	got := Trim(items, 4)
	if len(got) != 1 {
		t.Fatalf("Trim() len = %d, want 1 (undershoot expected): %v", len(got), got)
	}
	if got[0]["content"] != "keep" {
		t.Errorf("Trim() survivor = %v, want keep", got[0])
	}
}

func TestTrim_ZeroMaxEmpties(t *testing.T) {
	items := Items{item("content", "a")}
	if got := Trim(items, 0); len(got) != 0 {
		t.Errorf("Trim(max=0) len = %d, want 0", len(got))
	}
	if got := Trim(items, -1); len(got) != 0 {
		t.Errorf("Trim(max=-1) len = %d, want 0", len(got))
	}
}

func TestTrim_DoesNotMutateInput(t *testing.T) {
	items := Items{item("content", "a"), item("content", "b"), item("content", "c")}
	Trim(items, 2)
	if len(items) != 3 || items[0]["content"] != "a" {
		t.Errorf("Trim() mutated its input: %v", items)
	}
}

func TestCallID(t *testing.T) {
	tests := []struct {
		name string
		it   Item
		want string
	}{
		{"present", Item{"call_id": "abc"}, "abc"},
		{"absent", Item{"content": "x"}, ""},
		{"non-string", Item{"call_id": 42}, ""},
		{"nil item", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.it.CallID(); got != tt.want {
				t.Errorf("CallID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodeDecode_PreservesOrder(t *testing.T) {
	items := Items{
		item("role", "user", "content", "hello"),
		item("type", "call", "call_id", "c9"),
		item("type", "output", "call_id", "c9"),
	}
	data, err := Encode(items)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(got) != len(items) {
		t.Fatalf("round trip len = %d, want %d", len(got), len(items))
	}
	for i := range items {
		for k, v := range items[i] {
			if got[i][k] != v {
				t.Errorf("round trip item %d key %q = %v, want %v", i, k, got[i][k], v)
			}
		}
	}
}

func TestEncode_NilIsEmptyList(t *testing.T) {
	data, err := Encode(nil)
	if err != nil {
		t.Fatalf("Encode(nil) error = %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("Encode(nil) = %s, want []", data)
	}
}

func TestDecode_Garbage(t *testing.T) {
	if _, err := Decode([]byte("\x80not json")); err == nil {
		t.Error("Decode(garbage) error = nil, want error")
	}
}

func TestNewUserTurn(t *testing.T) {
	it := NewUserTurn("hi there")
	if it["role"] != "user" || it["content"] != "hi there" {
		t.Errorf("NewUserTurn() = %v", it)
	}
}
