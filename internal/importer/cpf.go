package importer

// cpf.go implements CPF (Cadastro de Pessoas Físicas) check-digit
// validation. A CPF is 11 digits; the last two are verification digits
// computed with weighted mod-11 sums over the preceding digits.

import "strings"

// ValidCPF reports whether s is a check-digit-valid CPF.
// Formatting characters are stripped before validation.
func ValidCPF(s string) bool {
	cpf := DigitsOnly(s)
	if len(cpf) != 11 {
		return false
	}

	// Sequences of a single repeated digit pass the check-digit math but
	// are not real CPFs.
	if strings.Count(cpf, cpf[:1]) == 11 {
		return false
	}

	if int(cpf[9]-'0') != cpfDigit(cpf, 9) {
		return false
	}
	return int(cpf[10]-'0') == cpfDigit(cpf, 10)
}

// cpfDigit computes the verification digit at position pos (9 or 10).
func cpfDigit(cpf string, pos int) int {
	sum := 0
	for i := 0; i < pos; i++ {
		sum += int(cpf[i]-'0') * (pos + 1 - i)
	}
	d := 11 - sum%11
	if d >= 10 {
		d = 0
	}
	return d
}

// FormatCPF renders an 11-digit CPF as 000.000.000-00 for display.
// Anything else is returned unchanged.
func FormatCPF(s string) string {
	cpf := DigitsOnly(s)
	if len(cpf) != 11 {
		return s
	}
	return cpf[:3] + "." + cpf[3:6] + "." + cpf[6:9] + "-" + cpf[9:]
}
