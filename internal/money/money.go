// Package money centralizes the monetary conventions of the system: every
// amount is a fixed-point decimal rounded to 2 fractional places (centavos),
// using round-half-away-from-zero. Repeated postings therefore never
// accumulate binary floating-point drift.
package money

import "github.com/shopspring/decimal"

// Tolerancia is the maximum absolute divergence (in R$) a shift may close
// with before a written justification becomes mandatory.
var Tolerancia = decimal.New(100, -2) // 1.00

// Round normalizes an amount to currency precision (2 places, half away
// from zero — decimal.Round semantics).
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// DentroDaTolerancia reports whether a divergence is small enough to close
// a shift without justification.
func DentroDaTolerancia(divergencia decimal.Decimal) bool {
	return divergencia.Abs().LessThanOrEqual(Tolerancia)
}
