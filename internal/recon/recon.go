// Package recon is the shift cash-reconciliation engine.
//
// It is deliberately pure: given the accumulated state of a shift (initial
// float, cash sales, withdrawal total, counted cash, PIX and per-machine
// cumulative card readings) it computes the full closing summary — expected
// cash, divergence, per-machine settled values, digital and gross revenue —
// without touching any store. Both the close path and the admin correction
// path call the same Fechar function, which is what makes corrections
// idempotent: identical inputs always produce an identical summary.
package recon

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/thiagopvn/pastelaria-24h-sub000/internal/money"
)

// ErrJustificativaObrigatoria is returned when the divergence exceeds the
// tolerance and no justification text was supplied.
var ErrJustificativaObrigatoria = errors.New("divergencia acima da tolerancia exige justificativa")

// Leitura is one card machine's input at close time: the cumulative total the
// terminal displays plus the baseline to subtract from it.
//
// The baseline comes from two different places depending on the caller:
//   - close: the cumulative reading stored by the latest shift closed earlier
//     the same day (zero when there is none);
//   - correction: DerivarBaseline over the shift's own stored pair, never a
//     fresh lookup, so correcting shifts out of order cannot drift baselines.
type Leitura struct {
	Maquina   string
	Acumulado decimal.Decimal
	Baseline  decimal.Decimal
}

// ResultadoMaquina is the settled per-machine output.
type ResultadoMaquina struct {
	Maquina   string
	Acumulado decimal.Decimal
	Real      decimal.Decimal
}

// Entrada is everything the engine needs to close (or re-close) a shift.
type Entrada struct {
	SaldoInicial    decimal.Decimal
	VendasDinheiro  decimal.Decimal
	TotalSangrias   decimal.Decimal
	QtdSangrias     int
	DinheiroContado decimal.Decimal
	Pix             decimal.Decimal
	Leituras        []Leitura
	Justificativa   string
}

// Resumo is the finalized closing summary. It is entirely recomputable from
// an Entrada, so corrections overwrite it wholesale instead of patching
// individual fields.
type Resumo struct {
	DinheiroContado  decimal.Decimal
	EsperadoDinheiro decimal.Decimal
	Divergencia      decimal.Decimal
	Justificativa    *string
	TotalSangrias    decimal.Decimal
	QtdSangrias      int
	Pix              decimal.Decimal
	Maquinas         []ResultadoMaquina
	TotalDigital     decimal.Decimal
	TotalReceita     decimal.Decimal
}

// ResolverPeriodo converts a cumulative card-terminal reading into the value
// actually settled during the period. Terminals reset at events outside our
// control (midnight resets are not reliable), so a cumulative reading lower
// than the baseline means a reset happened — the baseline is treated as zero
// rather than producing a negative value.
func ResolverPeriodo(acumulado, baseline decimal.Decimal) decimal.Decimal {
	if acumulado.LessThan(baseline) {
		return money.Round(acumulado)
	}
	return money.Round(acumulado.Sub(baseline))
}

// DerivarBaseline reconstructs the baseline a previous close used from the
// pair it stored. Corrections must call this instead of looking the baseline
// up again among other shifts.
func DerivarBaseline(acumuladoArmazenado, realArmazenado decimal.Decimal) decimal.Decimal {
	return money.Round(acumuladoArmazenado.Sub(realArmazenado))
}

// Fechar computes the closing summary.
//
//	esperado    = saldoInicial + vendasDinheiro − totalSangrias
//	divergencia = contado − esperado
//
// When |divergencia| exceeds money.Tolerancia and Justificativa is blank the
// engine fails with ErrJustificativaObrigatoria before producing a summary,
// so callers abort without mutating anything.
func Fechar(in Entrada) (*Resumo, error) {
	esperado := money.Round(in.SaldoInicial.Add(in.VendasDinheiro).Sub(in.TotalSangrias))
	contado := money.Round(in.DinheiroContado)
	divergencia := contado.Sub(esperado)

	if !money.DentroDaTolerancia(divergencia) && in.Justificativa == "" {
		return nil, ErrJustificativaObrigatoria
	}

	pix := money.Round(in.Pix)
	totalDigital := pix
	maquinas := make([]ResultadoMaquina, 0, len(in.Leituras))
	for _, l := range in.Leituras {
		real := ResolverPeriodo(l.Acumulado, l.Baseline)
		totalDigital = totalDigital.Add(real)
		maquinas = append(maquinas, ResultadoMaquina{
			Maquina:   l.Maquina,
			Acumulado: money.Round(l.Acumulado),
			Real:      real,
		})
	}

	resumo := &Resumo{
		DinheiroContado:  contado,
		EsperadoDinheiro: esperado,
		Divergencia:      divergencia,
		TotalSangrias:    money.Round(in.TotalSangrias),
		QtdSangrias:      in.QtdSangrias,
		Pix:              pix,
		Maquinas:         maquinas,
		TotalDigital:     totalDigital,
		TotalReceita:     totalDigital.Add(money.Round(in.VendasDinheiro)),
	}
	if in.Justificativa != "" {
		j := in.Justificativa
		resumo.Justificativa = &j
	}
	return resumo, nil
}
