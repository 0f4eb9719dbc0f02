// Package optwrite merges records whose fields are individually optional.
//
// A field set in an overriding record replaces the base field; a field left
// unset keeps the base value. Scopes are merged outer to inner, so a value
// set by an inner scope is never reverted by an outer one.
package optwrite

// Opt is a value that may be unset. The zero value is unset.
type Opt[T any] struct {
	val T
	set bool
}

// Some returns an Opt holding v.
func Some[T any](v T) Opt[T] { return Opt[T]{val: v, set: true} }

// None returns an unset Opt.
func None[T any]() Opt[T] { return Opt[T]{} }

// Maybe returns an Opt holding v if ok is true, else an unset Opt.
func Maybe[T any](v T, ok bool) Opt[T] {
	if !ok {
		return Opt[T]{}
	}

	return Some(v)
}

// Get returns the held value and whether it is set.
func (o Opt[T]) Get() (T, bool) { return o.val, o.set }

// Or returns the held value, or def if o is unset.
func (o Opt[T]) Or(def T) T {
	if o.set {
		return o.val
	}

	return def
}

// IsSet reports whether o holds a value.
func (o Opt[T]) IsSet() bool { return o.set }

// Write replaces o with other if other is set.
func (o *Opt[T]) Write(other Opt[T]) {
	if other.set {
		*o = other
	}
}

// OverriddenBy returns other if it is set, else o.
func (o Opt[T]) OverriddenBy(other Opt[T]) Opt[T] {
	o.Write(other)

	return o
}

// Writer is implemented by pointers to records that merge field by field.
type Writer[T any] interface {
	*T
	OptWrite(other T)
}

// Fold merges scopes from outermost to innermost and returns the result.
// Fold of no scopes is the zero record.
func Fold[T any, P Writer[T]](scopes ...T) T {
	var acc T

	for _, s := range scopes {
		P(&acc).OptWrite(s)
	}

	return acc
}
