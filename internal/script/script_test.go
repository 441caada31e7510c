package script

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/dshills/gridstorm/internal/core"
	"github.com/dshills/gridstorm/internal/dataview"
	"github.com/dshills/gridstorm/internal/item"
	"github.com/dshills/gridstorm/internal/logging"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e := New(Options{Timeout: 200 * time.Millisecond, Logger: logging.Null()})
	t.Cleanup(e.Close)
	return e
}

func sales() []item.Item {
	return []item.Item{
		item.Record{"id": 1, "region": "east", "amount": 50},
		item.Record{"id": 2, "region": "west", "amount": 250},
		item.Record{"id": 3, "region": "east", "amount": 400},
		item.NewJSON(`{"id": 4, "region": "north", "amount": 120}`),
	}
}

func TestEval(t *testing.T) {
	e := newEngine(t)
	it := item.Record{"name": "widget", "qty": 3, "price": 2.5, "tags": []any{"a", "b"}}

	tests := []struct {
		src  string
		vars map[string]any
		want any
	}{
		{"qty * price", nil, 7.5},
		{"qty + 1", nil, int64(4)},
		{"string.upper(name)", nil, "WIDGET"},
		{"#tags", nil, int64(2)},
		{"missing == nil", nil, true},
		{"value .. '!'", map[string]any{"value": "hi"}, "hi!"},
		{"local x = qty * 2\nreturn x", nil, int64(6)},
		{"{qty, name}", nil, []any{int64(3), "widget"}},
	}
	for _, tt := range tests {
		got, err := e.Eval(tt.src, it, tt.vars)
		if err != nil {
			t.Errorf("Eval(%q): %v", tt.src, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Eval(%q) = %#v, want %#v", tt.src, got, tt.want)
		}
	}
}

func TestItemFieldsShadowVariables(t *testing.T) {
	e := newEngine(t)
	got, err := e.Eval("value", item.Record{"value": "field"}, map[string]any{"value": "var"})
	if err != nil || got != "field" {
		t.Errorf("Eval = %v, %v", got, err)
	}
}

func TestCompileError(t *testing.T) {
	e := newEngine(t)
	if _, err := e.Compile("amount >"); !errors.Is(err, ErrCompile) {
		t.Errorf("err = %v, want ErrCompile", err)
	}
}

func TestSandbox(t *testing.T) {
	e := newEngine(t)
	for _, src := range []string{
		"os.exit(1)",
		"io.open('/etc/passwd')",
		"dofile('/tmp/x.lua')",
		"require('os')",
		"load('return 1')()",
	} {
		if _, err := e.Eval(src, nil, nil); err == nil {
			t.Errorf("Eval(%q) succeeded", src)
		}
	}
	if runs, failed := e.Stats(); runs != 5 || failed != 5 {
		t.Errorf("stats = %d runs, %d failed", runs, failed)
	}
}

func TestTimeout(t *testing.T) {
	e := New(Options{Timeout: 20 * time.Millisecond, Logger: logging.Null()})
	defer e.Close()

	_, err := e.Eval("local n = 0\nwhile true do n = n + 1 end\nreturn n", nil, nil)
	if err == nil {
		t.Fatal("endless loop returned")
	}
	if got, err := e.Eval("1 + 1", nil, nil); err != nil || got != int64(2) {
		t.Errorf("engine unusable after timeout: %v, %v", got, err)
	}
}

func TestClosed(t *testing.T) {
	e := New(DefaultOptions())
	p, err := e.Compile("1")
	if err != nil {
		t.Fatal(err)
	}
	e.Close()
	e.Close()
	if _, err := p.Run(nil, nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Run err = %v", err)
	}
	if _, err := e.Compile("1"); !errors.Is(err, ErrClosed) {
		t.Errorf("Compile err = %v", err)
	}
}

func TestCompileFilter(t *testing.T) {
	e := newEngine(t)
	filter, err := e.CompileFilter("amount >= args.min and region ~= 'west'")
	if err != nil {
		t.Fatal(err)
	}

	dv := dataview.New(dataview.WithLogger(logging.Null()))
	dv.SetFilterArgs(map[string]any{"min": 100})
	dv.SetFilter(filter)
	if err := dv.SetItems(sales()); err != nil {
		t.Fatal(err)
	}

	var ids []string
	for i := 0; i < dv.Len(); i++ {
		ids = append(ids, fmt.Sprint(item.ID(core.ItemOf(dv.Row(i)), "id")))
	}
	if got := strings.Join(ids, ","); got != "3,4" {
		t.Errorf("filtered ids = %s, want 3,4", got)
	}
}

func TestFilterErrorDropsItem(t *testing.T) {
	e := newEngine(t)
	filter, err := e.CompileFilter("amount.x > 1")
	if err != nil {
		t.Fatal(err)
	}
	if filter(item.Record{"amount": 5}, nil) {
		t.Error("failing filter kept the item")
	}
}

func TestCompileFormatter(t *testing.T) {
	e := newEngine(t)
	col := &core.Column{ID: "amount", Field: "amount"}

	f, err := e.CompileFormatter("region .. ': ' .. string.format('%.1f', value)")
	if err != nil {
		t.Fatal(err)
	}
	row := core.DataRow{Item: sales()[2]}
	if got := f(2, 1, 400, col, row); got != "east: 400.0" {
		t.Errorf("formatter = %q", got)
	}

	bad, _ := e.CompileFormatter("value.nope.deeper")
	if got := bad(0, 0, nil, col, row); got != ErrorText {
		t.Errorf("failing formatter = %q", got)
	}

	empty, _ := e.CompileFormatter("nil")
	if got := empty(0, 0, 1, col, row); got != "" {
		t.Errorf("nil formatter = %q", got)
	}

	group, _ := e.CompileFormatter("field .. '=' .. tostring(region)")
	if got := group(0, 0, nil, col, &core.Group{Title: "east"}); got != "amount=nil" {
		t.Errorf("group row formatter = %q", got)
	}
}
