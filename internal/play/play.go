package play

import "strings"

// Type identifies a play category in the numbers lottery.
// Each type carries a fixed digit length for its bet numbers.
type Type string

const (
	Fijo     Type = "fijo"
	Corrido  Type = "corrido"
	Posicion Type = "posicion"
	Parle    Type = "parle"
	Centena  Type = "centena"
	Tripleta Type = "tripleta"
)

// All lists every play type in display order. Iteration over limit and
// capacity maps follows this order to keep output deterministic.
var All = []Type{Fijo, Corrido, Posicion, Parle, Centena, Tripleta}

// Descriptor groups the per-type grammar rules in one place so they stay
// consistent between the parser, the limit engine and the capacity view.
type Descriptor struct {
	// DigitLen is the exact length of every zero-padded bet number.
	DigitLen int
	// HalfSwap marks numbers made of two 2-digit picks whose order does
	// not matter for equality (parle).
	HalfSwap bool
	// Enumerable marks number spaces small enough to list exhaustively
	// in the capacity view.
	Enumerable bool
}

var descriptors = map[Type]Descriptor{
	Fijo:     {DigitLen: 2, Enumerable: true},
	Corrido:  {DigitLen: 2, Enumerable: true},
	Posicion: {DigitLen: 2, Enumerable: true},
	Parle:    {DigitLen: 4, HalfSwap: true},
	Centena:  {DigitLen: 3, Enumerable: true},
	Tripleta: {DigitLen: 6},
}

// Describe returns the descriptor for t. It panics on an unknown type:
// play types form a closed set and an unknown value is a programming error.
func Describe(t Type) Descriptor {
	d, ok := descriptors[t]
	if !ok {
		panic("play: unknown type " + string(t))
	}
	return d
}

// Valid reports whether t is one of the known play types.
func (t Type) Valid() bool {
	_, ok := descriptors[t]
	return ok
}

// DigitLen returns the fixed digit length for t's numbers.
func (t Type) DigitLen() int { return Describe(t).DigitLen }

// Canonical returns the normalized form of a zero-padded number for t.
// For parle the two 2-digit halves are sorted so "3412" and "1234" compare
// equal; for every other type the number is its own canonical form.
// Duplicate detection, usage aggregation and limit lookups must all go
// through this function.
func Canonical(t Type, number string) string {
	if !Describe(t).HalfSwap || len(number) != 4 {
		return number
	}
	a, b := number[:2], number[2:]
	if b < a {
		return b + a
	}
	return number
}

// Pad left-zero-pads raw to width digits. Raw strings longer than width
// are returned unchanged; callers validate length separately.
func Pad(raw string, width int) string {
	if len(raw) >= width {
		return raw
	}
	return strings.Repeat("0", width-len(raw)) + raw
}
