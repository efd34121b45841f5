package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// NumberToWords spells an amount in Spanish with currency and cents.
// Example: 1500.50 -> "MIL QUINIENTOS LEMPIRAS CON 50/100"
func NumberToWords(amount decimal.Decimal) string {
	amount = amount.Round(2)
	prefix := ""
	if amount.IsNegative() {
		prefix = "MENOS "
		amount = amount.Neg()
	}

	integerPart := amount.Truncate(0)
	cents := amount.Sub(integerPart).Mul(decimal.NewFromInt(100)).IntPart()

	words := apocope(spellInteger(integerPart.IntPart()))
	currency := "LEMPIRAS"
	if integerPart.Equal(decimal.NewFromInt(1)) {
		currency = "LEMPIRA"
	}
	return fmt.Sprintf("%s%s %s CON %02d/100", prefix, words, currency, cents)
}

func spellInteger(n int64) string {
	switch {
	case n == 0:
		return "CERO"
	case n < 10:
		return units[n]
	case n < 30:
		return specials[n]
	case n < 100:
		if u := n % 10; u != 0 {
			return tens[n/10] + " Y " + units[u]
		}
		return tens[n/10]
	case n < 1000:
		h, rest := n/100, n%100
		if rest == 0 {
			return hundreds[h]
		}
		if h == 1 {
			return "CIENTO " + spellInteger(rest)
		}
		return hundreds[h] + " " + spellInteger(rest)
	case n < 1_000_000:
		return scaled(n, 1000, "MIL", "MIL")
	case n < 1_000_000_000_000:
		return scaled(n, 1_000_000, "UN MILLÓN", "MILLONES")
	}
	return "NÚMERO MUY GRANDE"
}

// scaled spells n as "<multiplier> <unit> <rest>", using single for a multiplier of one
func scaled(n, unit int64, single, plural string) string {
	mult, rest := n/unit, n%unit
	head := single
	if mult != 1 {
		head = apocope(spellInteger(mult)) + " " + plural
	}
	if rest == 0 {
		return head
	}
	return head + " " + spellInteger(rest)
}

// apocope shortens a trailing UNO before a noun: "VEINTIUNO" -> "VEINTIÚN"
func apocope(words string) string {
	switch {
	case words == "UNO":
		return "UN"
	case strings.HasSuffix(words, "VEINTIUNO"):
		return strings.TrimSuffix(words, "VEINTIUNO") + "VEINTIÚN"
	case strings.HasSuffix(words, " UNO"):
		return strings.TrimSuffix(words, "UNO") + "UN"
	}
	return words
}

var units = []string{
	"", "UNO", "DOS", "TRES", "CUATRO", "CINCO", "SEIS", "SIETE", "OCHO", "NUEVE",
}

var specials = map[int64]string{
	10: "DIEZ", 11: "ONCE", 12: "DOCE", 13: "TRECE", 14: "CATORCE", 15: "QUINCE",
	16: "DIECISÉIS", 17: "DIECISIETE", 18: "DIECIOCHO", 19: "DIECINUEVE",
	20: "VEINTE", 21: "VEINTIUNO", 22: "VEINTIDÓS", 23: "VEINTITRÉS", 24: "VEINTICUATRO",
	25: "VEINTICINCO", 26: "VEINTISÉIS", 27: "VEINTISIETE", 28: "VEINTIOCHO", 29: "VEINTINUEVE",
}

var tens = []string{
	"", "", "VEINTE", "TREINTA", "CUARENTA", "CINCUENTA", "SESENTA", "SETENTA", "OCHENTA", "NOVENTA",
}

var hundreds = []string{
	"", "CIEN", "DOSCIENTOS", "TRESCIENTOS", "CUATROCIENTOS", "QUINIENTOS", "SEISCIENTOS", "SETECIENTOS", "OCHOCIENTOS", "NOVECIENTOS",
}
