// Copyright 2025-2026 The Loom Authors. SPDX-License-Identifier: Apache-2.0

package edsl

import (
	"fmt"
	"strings"
)

// AffineExpr is a fully resolved affine map coordinate used by finalized
// contractions: an integer-linear combination of the contraction's local index
// variables plus a constant, optionally floor-divided by a positive literal.
// Dimension symbols have already been folded into Const by the time one of
// these exists.
type AffineExpr struct {
	Coefs []int64 // one coefficient per local index variable
	Const int64
	Div   int64 // positive; 1 means no division
}

// Eval computes the coordinate at the given index point. The point must have
// len(Coefs) entries.
func (e AffineExpr) Eval(point []int64) int64 {
	acc := e.Const
	for i, c := range e.Coefs {
		if c != 0 {
			acc += c * point[i]
		}
	}
	if e.Div != 1 {
		acc = floorDiv(acc, e.Div)
	}
	return acc
}

// IsBare reports whether the expression is exactly one local index variable
// with coefficient 1 and returns its position.
func (e AffineExpr) IsBare() (idx int, ok bool) {
	if e.Const != 0 || e.Div != 1 {
		return 0, false
	}
	idx = -1
	for i, c := range e.Coefs {
		switch c {
		case 0:
		case 1:
			if idx >= 0 {
				return 0, false
			}
			idx = i
		default:
			return 0, false
		}
	}
	if idx < 0 {
		return 0, false
	}
	return idx, true
}

// String prints the canonical form, e.g. "2*d0 + d1 - 1", "(d0 + d2)/2" or
// "0". Terms appear in local index order, constant last.
func (e AffineExpr) String() string {
	var sb strings.Builder
	printed := 0
	writeTerm := func(coef int64, name string) {
		if printed == 0 {
			if coef < 0 {
				sb.WriteByte('-')
				coef = -coef
			}
		} else {
			if coef < 0 {
				sb.WriteString(" - ")
				coef = -coef
			} else {
				sb.WriteString(" + ")
			}
		}
		if name == "" {
			fmt.Fprintf(&sb, "%d", coef)
		} else if coef == 1 {
			sb.WriteString(name)
		} else {
			fmt.Fprintf(&sb, "%d*%s", coef, name)
		}
		printed++
	}
	for i, c := range e.Coefs {
		if c != 0 {
			writeTerm(c, fmt.Sprintf("d%d", i))
		}
	}
	if e.Const != 0 || printed == 0 {
		writeTerm(e.Const, "")
	}
	body := sb.String()
	if e.Div == 1 {
		return body
	}
	if printed > 1 {
		return fmt.Sprintf("(%s)/%d", body, e.Div)
	}
	return fmt.Sprintf("%s/%d", body, e.Div)
}

// normalize divides coefficients, constant and divisor by their common factor.
// Exact: floor((g*a)/(g*b)) == floor(a/b).
func (e AffineExpr) normalize() AffineExpr {
	if e.Div == 1 {
		return e
	}
	g := e.Div
	for _, c := range e.Coefs {
		g = gcd(g, c)
	}
	g = gcd(g, e.Const)
	if g <= 1 {
		return e
	}
	out := AffineExpr{Coefs: make([]int64, len(e.Coefs)), Const: e.Const / g, Div: e.Div / g}
	for i, c := range e.Coefs {
		out.Coefs[i] = c / g
	}
	return out
}

// IndexBound is the inferred half-open domain [Lo, Hi) of one local index
// variable of a contraction.
type IndexBound struct {
	Lo, Hi int64
}

// Size returns the number of points in the bound, never negative.
func (b IndexBound) Size() int64 {
	if b.Hi <= b.Lo {
		return 0
	}
	return b.Hi - b.Lo
}

func (b IndexBound) String() string {
	return fmt.Sprintf("[%d, %d)", b.Lo, b.Hi)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// ceilDiv rounds toward positive infinity; b must be positive.
func ceilDiv(a, b int64) int64 {
	return floorDiv(a+b-1, b)
}

func gcd(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
