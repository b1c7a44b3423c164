package importer

// validate.go applies the record rule set. There is one set of rules; the
// mode changes severity and repair behavior, not the logic shape. Rules
// that repair data (placeholder CPFs, default birth dates, phone and email
// stand-ins) mutate the record and annotate the repair as a warning so the
// operator always sees what was synthesized.

import (
	"fmt"
	"strings"
	"time"
)

// phoneUnknown is the sentinel stored when permissive mode accepts a row
// with no phone. It is visibly fake and filterable.
const phoneUnknown = "00000000000"

// emailPlaceholderDomain marks a synthesized email. The .invalid TLD can
// never deliver, so the stand-in is structurally distinguishable from a
// real address.
const emailPlaceholderDomain = "@temp.invalid"

// validateRecord checks one normalized record, applying permissive repairs
// in place. rowIndex feeds generated email stand-ins and error messages.
func validateRecord(rec *StudentRecord, rowIndex int, seq *placeholderSeq, opts Options) []Issue {
	var issues []Issue
	permissive := opts.Mode == ModePermissive

	// Name is the one field no mode can repair.
	if len(rec.Name) < 3 {
		issues = append(issues, Issue{FieldName, "name required (minimum 3 characters)", SeverityError})
	}

	issues = append(issues, validateCPFField(rec, seq, permissive)...)
	issues = append(issues, validateBirthDate(rec, permissive, opts)...)

	// Each repair rule has a matching sentinel check first, so the warning
	// survives re-validation after an edit instead of the record silently
	// turning Valid over synthesized data.
	switch {
	case rec.Phone == phoneUnknown:
		issues = append(issues, Issue{FieldPhone, "phone missing, unknown sentinel assigned", SeverityWarning})
	case rec.Phone == "" && permissive:
		rec.Phone = phoneUnknown
		issues = append(issues, Issue{FieldPhone, "phone missing, unknown sentinel assigned", SeverityWarning})
	case rec.Phone == "":
		issues = append(issues, Issue{FieldPhone, "phone required", SeverityError})
	case len(DigitsOnly(rec.Phone)) < 8:
		issues = append(issues, Issue{FieldPhone, "phone looks incomplete (fewer than 8 digits)", SeverityWarning})
	}

	switch {
	case strings.HasSuffix(rec.Email, emailPlaceholderDomain):
		issues = append(issues, Issue{FieldEmail, "email missing, placeholder assigned", SeverityWarning})
	case rec.Email == "" && permissive:
		rec.Email = fmt.Sprintf("student%d%s", rowIndex, emailPlaceholderDomain)
		issues = append(issues, Issue{FieldEmail, "email missing, placeholder assigned", SeverityWarning})
	case rec.Email == "":
		issues = append(issues, Issue{FieldEmail, "email required", SeverityError})
	case !strings.Contains(rec.Email, "@"):
		issues = append(issues, Issue{FieldEmail, "email is missing @", SeverityError})
	}

	issues = append(issues, validateGuardian(rec, opts)...)

	return issues
}

// validateCPFField handles the primary identifier. A previously synthesized
// placeholder stays in place across re-validation so batch counts and
// uniqueness are stable under preview edits.
func validateCPFField(rec *StudentRecord, seq *placeholderSeq, permissive bool) []Issue {
	switch {
	case IsPlaceholderCPF(rec.CPF):
		return []Issue{{FieldCPF, "placeholder CPF assigned, update after enrollment", SeverityWarning}}
	case rec.CPF == "" && permissive:
		rec.CPF = seq.next()
		return []Issue{{FieldCPF, "placeholder CPF assigned, update after enrollment", SeverityWarning}}
	case rec.CPF == "":
		return []Issue{{FieldCPF, "CPF required", SeverityError}}
	case !ValidCPF(rec.CPF):
		return []Issue{{FieldCPF, fmt.Sprintf("invalid CPF %q", FormatCPF(rec.CPF)), SeverityError}}
	}
	return nil
}

func validateBirthDate(rec *StudentRecord, permissive bool, opts Options) []Issue {
	switch {
	case rec.BirthDate == "" && permissive:
		rec.BirthDate = opts.DefaultBirthDate
		return []Issue{{FieldBirthDate, "birth date missing, default substituted", SeverityWarning}}
	// A permissive value equal to the default is indistinguishable from a
	// substitution; the warning stays so re-validation cannot clear it.
	case rec.BirthDate == opts.DefaultBirthDate && permissive:
		return []Issue{{FieldBirthDate, "birth date missing, default substituted", SeverityWarning}}
	case rec.BirthDate == "":
		return []Issue{{FieldBirthDate, "birth date required", SeverityError}}
	case !isoDateRegex.MatchString(rec.BirthDate):
		// Normalization left the original text in place: unparsable.
		return []Issue{{FieldBirthDate, fmt.Sprintf("unparsable birth date %q (use YYYY-MM-DD or DD/MM/YYYY)", rec.BirthDate), SeverityError}}
	}
	return nil
}

// validateGuardian enforces guardian data for minors. Age is full elapsed
// years, not a calendar-year difference.
func validateGuardian(rec *StudentRecord, opts Options) []Issue {
	birth, err := time.Parse("2006-01-02", rec.BirthDate)
	if err != nil {
		return nil // birth date already reported
	}

	age := ageAt(birth, opts.now())
	if age >= 18 {
		if rec.GuardianCPF != "" && !ValidCPF(rec.GuardianCPF) {
			return []Issue{{FieldGuardianCPF, fmt.Sprintf("invalid guardian CPF %q", FormatCPF(rec.GuardianCPF)), SeverityError}}
		}
		return nil
	}

	var issues []Issue
	if rec.GuardianName == "" {
		issues = append(issues, Issue{FieldGuardianName, fmt.Sprintf("guardian name required for minors (age %d)", age), SeverityError})
	}
	switch {
	case rec.GuardianCPF == "":
		issues = append(issues, Issue{FieldGuardianCPF, fmt.Sprintf("guardian CPF required for minors (age %d)", age), SeverityError})
	case !ValidCPF(rec.GuardianCPF):
		issues = append(issues, Issue{FieldGuardianCPF, fmt.Sprintf("invalid guardian CPF %q", FormatCPF(rec.GuardianCPF)), SeverityError})
	}
	return issues
}

// ageAt returns full elapsed years between birth and now, decrementing when
// the birthday has not yet occurred this year.
func ageAt(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}
