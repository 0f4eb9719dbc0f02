package tomlctx

import (
	"slices"
	"testing"
)

func TestContext_String(t *testing.T) {
	root := Root("axbind.toml")

	tests := []struct {
		name string
		ctx  Context
		want string
	}{
		{"zero", Context{}, ""},
		{"root", root, "axbind.toml"},
		{"key", root.With("meta"), "axbind.toml: meta"},
		{
			"nested",
			root.With("groups").Index(0).With("captures").Index(2).With("escape"),
			"axbind.toml: groups[0].captures[2].escape",
		},
		{"unlabeled", Context{}.With("values").With("x"), "values.x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ctx.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContext_BranchingKeepsParent(t *testing.T) {
	groups := Root("f.toml").With("groups")

	first := groups.Index(0)
	second := groups.Index(1)

	if got := groups.String(); got != "f.toml: groups" {
		t.Errorf("parent changed after branching: %q", got)
	}

	if first.Equal(second) {
		t.Error("sibling branches compare equal")
	}

	if !first.Equal(Root("f.toml").With("groups").Index(0)) {
		t.Error("equal paths compare unequal")
	}
}

func TestContext_Segments(t *testing.T) {
	ctx := Root("m.toml").With("values").With("x").Index(3)

	want := []string{"values", "x", "[3]"}
	if got := ctx.Segments(); !slices.Equal(got, want) {
		t.Errorf("Segments() = %v, want %v", got, want)
	}

	if got := ctx.Label(); got != "m.toml" {
		t.Errorf("Label() = %q", got)
	}
}

func TestContext_EqualDifferentLabel(t *testing.T) {
	if Root("a.toml").With("x").Equal(Root("b.toml").With("x")) {
		t.Error("paths under different roots compare equal")
	}
}
