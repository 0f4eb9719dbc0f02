package optwrite

import "testing"

type record struct {
	escape Opt[string]
	proxy  Opt[string]
	limit  Opt[int]
}

func (r *record) OptWrite(other record) {
	r.escape.Write(other.escape)
	r.proxy.Write(other.proxy)
	r.limit.Write(other.limit)
}

func (r record) OverriddenBy(other record) record {
	r.OptWrite(other)

	return r
}

func TestOpt(t *testing.T) {
	var unset Opt[string]

	if unset.IsSet() {
		t.Error("zero Opt is set")
	}

	if got := unset.Or("def"); got != "def" {
		t.Errorf("Or() = %q", got)
	}

	if v, ok := Some("x").Get(); !ok || v != "x" {
		t.Errorf("Get() = %q, %v", v, ok)
	}

	if Maybe("x", false).IsSet() {
		t.Error("Maybe(false) is set")
	}

	// An explicitly set zero value still overrides.
	if got := Some("a").OverriddenBy(Some("")); !got.IsSet() || got.Or("z") != "" {
		t.Errorf("set empty value did not override: %+v", got)
	}
}

// samples enumerates records covering every combination of set and unset
// fields with distinct values.
func samples() []record {
	var out []record

	for mask := range 8 {
		r := record{}
		if mask&1 != 0 {
			r.escape = Some("e" + string(rune('0'+mask)))
		}

		if mask&2 != 0 {
			r.proxy = Some("p" + string(rune('0'+mask)))
		}

		if mask&4 != 0 {
			r.limit = Some(mask)
		}

		out = append(out, r)
	}

	return out
}

func TestIdentity(t *testing.T) {
	for _, r := range samples() {
		if got := r.OverriddenBy(record{}); got != r {
			t.Errorf("%+v overridden by empty = %+v", r, got)
		}

		if got := (record{}).OverriddenBy(r); got != r {
			t.Errorf("empty overridden by %+v = %+v", r, got)
		}
	}
}

func TestAssociativity(t *testing.T) {
	for _, a := range samples() {
		for _, b := range samples() {
			for _, c := range samples() {
				left := a.OverriddenBy(b).OverriddenBy(c)
				right := a.OverriddenBy(b.OverriddenBy(c))

				inPlace := a
				inPlace.OptWrite(b)
				inPlace.OptWrite(c)

				folded := Fold(a, b, c)

				if left != right || left != inPlace || left != folded {
					t.Fatalf("merge of %+v, %+v, %+v disagrees:\n"+
						"left=%+v right=%+v inPlace=%+v fold=%+v",
						a, b, c, left, right, inPlace, folded)
				}
			}
		}
	}
}

func TestInnerNeverReverted(t *testing.T) {
	outer := record{escape: Some("outer"), limit: Some(1)}
	inner := record{escape: Some("inner")}

	got := Fold(outer, inner)

	if v, _ := got.escape.Get(); v != "inner" {
		t.Errorf("escape = %q, want inner", v)
	}

	if v, _ := got.limit.Get(); v != 1 {
		t.Errorf("limit = %d, want 1", v)
	}

	if got.proxy.IsSet() {
		t.Error("proxy set by nobody")
	}
}

func TestFoldEmpty(t *testing.T) {
	if got := Fold[record](); got != (record{}) {
		t.Errorf("Fold() = %+v", got)
	}
}
