package importer

// mapping.go matches source spreadsheet headers to canonical fields.
//
// Detection is heuristic but deterministic: for each canonical field the
// pattern list is tried in declared order, and for each pattern the headers
// are scanned in file order; the first header whose lowercase text contains
// the pattern wins. Operator-supplied overrides always beat detection.

import (
	"fmt"
	"strings"
)

// fieldPattern is one canonical field with its priority-ordered substring
// patterns. Patterns are Portuguese-first because that is what the source
// sheets contain, with English fallbacks for exported data.
type fieldPattern struct {
	field    Field
	patterns []string
}

// fieldPatterns declares detection order for every canonical field. Earlier
// fields claim their header before later ones are considered; a header is
// never assigned to two fields.
var fieldPatterns = []fieldPattern{
	{FieldGuardianName, []string{"nome responsavel", "nome responsável", "nome do responsavel", "nome do responsável", "responsavel", "responsável", "guardian", "pai", "mae"}},
	{FieldGuardianCPF, []string{"cpf responsavel", "cpf responsável", "cpf do responsavel", "cpf do responsável"}},
	{FieldGuardianPhone, []string{"telefone responsavel", "telefone responsável", "telefone do responsavel", "telefone do responsável", "fone responsavel"}},
	{FieldName, []string{"nome", "name", "aluno"}},
	{FieldCPF, []string{"cpf", "documento"}},
	{FieldBirthDate, []string{"nascimento", "data", "birth", "aniversario"}},
	{FieldPhone, []string{"telefone", "celular", "phone", "fone"}},
	{FieldEmail, []string{"email", "e-mail", "mail"}},
	{FieldStreet, []string{"endereco", "endereço", "address", "rua"}},
	{FieldDistrict, []string{"bairro", "neighborhood"}},
	{FieldCity, []string{"cidade", "city"}},
	{FieldPostalCode, []string{"cep", "postal"}},
	{FieldGroup, []string{"turma", "grupo", "class"}},
	{FieldContractDelivered, []string{"contrato", "contract"}},
	{FieldNotes, []string{"observacao", "observações", "observacoes", "obs", "notes", "comentario"}},
}

// requiredFields returns the fields that must be mapped before a preview
// can be generated. Permissive mode only insists on the student name; every
// other absence is repaired or warned about downstream.
func requiredFields(mode Mode) []Field {
	if mode == ModePermissive {
		return []Field{FieldName}
	}
	return []Field{FieldName, FieldCPF, FieldBirthDate, FieldPhone, FieldEmail}
}

// FieldMapping maps canonical fields to the source header label they were
// resolved to. Fields absent from the map are unmapped.
type FieldMapping map[Field]string

// AutoDetectMapping resolves headers against the declared pattern lists.
func AutoDetectMapping(headers []string) FieldMapping {
	lower := make([]string, len(headers))
	for i, h := range headers {
		lower[i] = strings.ToLower(CleanCell(h))
	}

	mapping := make(FieldMapping)
	claimed := make(map[int]bool)

	for _, fp := range fieldPatterns {
		idx := -1
	scan:
		for _, pattern := range fp.patterns {
			for i, h := range lower {
				if !claimed[i] && h != "" && strings.Contains(h, pattern) {
					idx = i
					break scan
				}
			}
		}
		if idx >= 0 {
			mapping[fp.field] = headers[idx]
			claimed[idx] = true
		}
	}

	return mapping
}

// resolvedMapping is a FieldMapping validated against a concrete header
// row: every entry carries the column index, so downstream code does
// positionally-safe lookups instead of repeated header searches.
type resolvedMapping struct {
	columns map[Field]int
}

// cell returns the cleaned cell for a field, or "" if the row is short.
func (m *resolvedMapping) cell(row []string, field Field) string {
	idx, ok := m.columns[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// resolveMapping validates a mapping against the header row and the mode's
// required-field set. Overrides replace detected entries per field; an
// override naming a header that does not exist is an error rather than a
// silent fallback to detection. Missing required fields are reported as a
// MappingIncompleteError.
func resolveMapping(headers []string, mapping FieldMapping, mode Mode) (*resolvedMapping, error) {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		key := strings.ToLower(CleanCell(h))
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}

	resolved := &resolvedMapping{columns: make(map[Field]int, len(mapping))}
	for field, header := range mapping {
		idx, ok := index[strings.ToLower(CleanCell(header))]
		if !ok {
			return nil, fmt.Errorf("mapped header %q for field %q not found in file", header, field)
		}
		resolved.columns[field] = idx
	}

	var missing []Field
	for _, f := range requiredFields(mode) {
		if _, ok := resolved.columns[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, &MappingIncompleteError{Missing: missing}
	}

	return resolved, nil
}
