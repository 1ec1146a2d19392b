package main

import (
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/scriptum/value"
)

func TestParseBindings(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.cli")
	defer teardown()
	//
	bindings, err := parseBindings(strings.NewReader(`
price: 100
rate: 0.25
name: widget
active: true
missing: ~
tags: [a, b]
limits:
  upper: 10
  lower: 1
`))
	if err != nil {
		t.Fatal(err)
	}
	if len(bindings) != 7 {
		t.Errorf("expected 7 bindings, got %d", len(bindings))
	}
	if v := bindings["price"]; !v.Is(value.IntKind) || v.AsInt() != 100 {
		t.Errorf("expected int 100, got %v", v)
	}
	if v := bindings["rate"]; !v.Is(value.FloatKind) || v.AsFloat() != 0.25 {
		t.Errorf("expected float 0.25, got %v", v)
	}
	if v := bindings["name"]; v.AsString() != "widget" {
		t.Errorf("expected 'widget', got %v", v)
	}
	if v := bindings["active"]; !v.AsBool() {
		t.Errorf("expected true, got %v", v)
	}
	if v := bindings["missing"]; !v.IsVoid() {
		t.Errorf("expected void, got %v", v)
	}
	if v := bindings["tags"]; v.AsList().Len() != 2 {
		t.Errorf("expected list of 2, got %v", v)
	}
	if keys := bindings["limits"].AsDict().Keys(); len(keys) != 2 || keys[0] != "upper" {
		t.Errorf("expected keys in document order, got %v", keys)
	}
}

func TestBindingsMustBeMapping(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.cli")
	defer teardown()
	//
	if _, err := parseBindings(strings.NewReader("- 1\n- 2\n")); err == nil {
		t.Errorf("expected error for top-level sequence")
	}
	if b, err := parseBindings(strings.NewReader("")); err != nil || len(b) != 0 {
		t.Errorf("expected no bindings for empty input, got %v (%v)", b, err)
	}
}
