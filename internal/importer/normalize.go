package importer

// normalize.go converts raw cell text into canonical value shapes. All
// functions here are pure: same input, same output, no side effects.
//
// The rules handle the messy reality of operator-maintained spreadsheets:
// formatted CPFs and phone numbers, Brazilian DD/MM/YYYY dates, Excel
// formula prefixes, stray quotes, and inconsistent casing.

import (
	"regexp"
	"strings"
	"time"
)

var nonDigitRegex = regexp.MustCompile(`\D`)

// isoDateRegex matches an already-normalized ISO date.
var isoDateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// brDateRegex matches the Brazilian day-first format.
var brDateRegex = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)

// genericDateLayouts are tried, in order, for dates that are neither ISO
// nor Brazilian. Day-first layouts come first since that is what this
// domain's spreadsheets contain.
var genericDateLayouts = []string{
	"02-01-2006",
	"2.1.2006",
	"2006/01/02",
	"2 Jan 2006",
	"Jan 2, 2006",
	"20060102",
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// surrounding whitespace, Excel formula prefixes (="..."), and stray quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

// DigitsOnly strips every non-digit character. Used for CPF, CEP and for
// phone numbers when validating; phone display values keep their original
// formatting.
func DigitsOnly(s string) string {
	return nonDigitRegex.ReplaceAllString(s, "")
}

// NormalizeDate returns an ISO (YYYY-MM-DD) date when the input is ISO
// already, Brazilian DD/MM/YYYY, or parseable by one of the generic
// layouts. On total failure the original string is returned unchanged so
// the validator can flag it with the text the operator actually typed.
func NormalizeDate(s string) string {
	s = CleanCell(s)
	if s == "" {
		return ""
	}

	if isoDateRegex.MatchString(s) {
		return s
	}

	if m := brDateRegex.FindStringSubmatch(s); m != nil {
		t, err := time.Parse("2/1/2006", s)
		if err == nil {
			return t.Format("2006-01-02")
		}
		return s
	}

	for _, layout := range genericDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}

	return s
}

// NormalizeEmail trims and lowercases.
func NormalizeEmail(s string) string {
	return strings.ToLower(CleanCell(s))
}

// parseContractFlag interprets the contract-delivered column. The source
// sheets mark delivery with "OK"; common boolean spellings are accepted too.
func parseContractFlag(s string) bool {
	switch strings.ToUpper(CleanCell(s)) {
	case "OK", "SIM", "TRUE", "YES", "1", "X":
		return true
	default:
		return false
	}
}

// normalizeRecord builds a StudentRecord from one raw row using a resolved
// mapping. Unmapped fields stay absent; a missing city falls back to the
// configured default town.
func normalizeRecord(row []string, m *resolvedMapping, opts Options) StudentRecord {
	var rec StudentRecord
	for field := range m.columns {
		applyField(&rec, field, m.cell(row, field), opts)
	}

	if rec.City == "" {
		rec.City = opts.DefaultCity
	}
	if rec.State == "" {
		rec.State = opts.DefaultState
	}
	return rec
}

// applyField normalizes one raw value and assigns it to the record field.
// This is the single entry point for both preview generation and per-row
// edits, so edited values go through exactly the same rules.
func applyField(rec *StudentRecord, field Field, raw string, opts Options) {
	switch field {
	case FieldName:
		rec.Name = CleanCell(raw)
	case FieldCPF:
		rec.CPF = DigitsOnly(raw)
	case FieldBirthDate:
		rec.BirthDate = NormalizeDate(raw)
	case FieldPhone:
		rec.Phone = CleanCell(raw)
	case FieldEmail:
		rec.Email = NormalizeEmail(raw)
	case FieldStreet:
		rec.Street = CleanCell(raw)
	case FieldDistrict:
		rec.District = CleanCell(raw)
	case FieldCity:
		rec.City = CleanCell(raw)
		if rec.City == "" {
			rec.City = opts.DefaultCity
		}
	case FieldPostalCode:
		rec.PostalCode = DigitsOnly(raw)
	case FieldGuardianName:
		rec.GuardianName = CleanCell(raw)
	case FieldGuardianCPF:
		rec.GuardianCPF = DigitsOnly(raw)
	case FieldGuardianPhone:
		rec.GuardianPhone = CleanCell(raw)
	case FieldGroup:
		rec.Group = CleanCell(raw)
	case FieldContractDelivered:
		rec.ContractDelivered = parseContractFlag(raw)
	case FieldNotes:
		rec.Notes = CleanCell(raw)
	}
}
