package item

import "testing"

func TestValidID(t *testing.T) {
	tests := []struct {
		name string
		id   any
		want bool
	}{
		{"nil", nil, false},
		{"int", 1, true},
		{"string", "a", true},
		{"slice", []int{1}, false},
		{"map", map[string]int{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidID(tt.id); got != tt.want {
				t.Errorf("ValidID(%v) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	if !Equal(1, 1) {
		t.Error("Equal(1, 1) = false")
	}
	if Equal(1, 1.0) {
		t.Error("Equal(int, float64) should be false")
	}
	if !Equal([]int{1, 2}, []int{1, 2}) {
		t.Error("Equal on equal slices should be true")
	}
	if Equal(nil, 0) {
		t.Error("Equal(nil, 0) should be false")
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b any
		want int
	}{
		{nil, 1, -1},
		{1, nil, 1},
		{1, 2, -1},
		{2.5, 2, 1},
		{"a", "b", -1},
		{false, true, -1},
		{3, 3.0, 0},
	}
	for _, tt := range tests {
		if got := Compare(tt.a, tt.b); got != tt.want {
			t.Errorf("Compare(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestToFloat(t *testing.T) {
	if f, ok := ToFloat(" 12.5 "); !ok || f != 12.5 {
		t.Errorf("ToFloat(\" 12.5 \") = %v, %v", f, ok)
	}
	if _, ok := ToFloat("abc"); ok {
		t.Error("ToFloat(\"abc\") should fail")
	}
	if _, ok := ToFloat(""); ok {
		t.Error("ToFloat(\"\") should fail")
	}
	if f, ok := ToFloat(int64(7)); !ok || f != 7 {
		t.Errorf("ToFloat(int64(7)) = %v, %v", f, ok)
	}
}

func TestRecord(t *testing.T) {
	r := NewRecord("")
	id, ok := r.Get(DefaultIDField).(string)
	if !ok || id == "" {
		t.Fatalf("NewRecord id = %v, want non-empty string", r.Get(DefaultIDField))
	}
	if err := r.Set("name", "x"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if r.Get("name") != "x" {
		t.Errorf("Get(name) = %v, want x", r.Get("name"))
	}
	if NewRecord("key").Get("key") == r.Get(DefaultIDField) {
		t.Error("NewRecord should generate distinct ids")
	}
}

func TestJSON(t *testing.T) {
	j := NewJSON(`{"id":3,"name":"ada","address":{"city":"london"}}`)

	if got := j.Get("id"); got != float64(3) {
		t.Errorf("Get(id) = %v (%T), want 3", got, got)
	}
	if got := j.Get("address.city"); got != "london" {
		t.Errorf("Get(address.city) = %v, want london", got)
	}
	if got := j.Get("missing"); got != nil {
		t.Errorf("Get(missing) = %v, want nil", got)
	}

	if err := j.Set("name", "grace"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := j.Get("name"); got != "grace" {
		t.Errorf("after Set, Get(name) = %v", got)
	}

	fields := j.Fields()
	want := []string{"id", "name", "address"}
	if len(fields) != len(want) {
		t.Fatalf("Fields() = %v, want %v", fields, want)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Errorf("Fields()[%d] = %q, want %q", i, fields[i], want[i])
		}
	}
}
