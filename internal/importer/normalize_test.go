package importer

import "testing"

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "João da Silva", want: "João da Silva"},
		{name: "surrounding whitespace", input: "  Maria  ", want: "Maria"},
		{name: "excel formula prefix", input: `="69000000"`, want: "69000000"},
		{name: "bare equals prefix", input: "=123", want: "123"},
		{name: "stray double quotes", input: `"Centro"`, want: "Centro"},
		{name: "stray single quotes", input: "'Turma A'", want: "Turma A"},
		{name: "empty", input: "", want: ""},
		{name: "whitespace only", input: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanCell(tt.input); got != tt.want {
				t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDigitsOnly(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "formatted cpf", input: "111.444.777-35", want: "11144477735"},
		{name: "formatted phone", input: "(92) 98765-4321", want: "92987654321"},
		{name: "formatted cep", input: "69000-000", want: "69000000"},
		{name: "no digits", input: "abc", want: ""},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DigitsOnly(tt.input); got != tt.want {
				t.Errorf("DigitsOnly(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "brazilian full", input: "15/03/2005", want: "2005-03-15"},
		{name: "brazilian single digit day and month", input: "1/2/2003", want: "2003-02-01"},
		{name: "already iso", input: "2005-03-15", want: "2005-03-15"},
		{name: "dashes day first", input: "15-03-2005", want: "2005-03-15"},
		{name: "dots day first", input: "15.3.2005", want: "2005-03-15"},
		{name: "slashes year first", input: "2005/03/15", want: "2005-03-15"},
		{name: "compact", input: "20050315", want: "2005-03-15"},
		{name: "with surrounding spaces", input: " 15/03/2005 ", want: "2005-03-15"},
		{name: "impossible day returned verbatim", input: "31/02/2020", want: "31/02/2020"},
		{name: "garbage returned verbatim", input: "not a date", want: "not a date"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDate(tt.input); got != tt.want {
				t.Errorf("NormalizeDate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Joao.Silva@Email.COM "); got != "joao.silva@email.com" {
		t.Errorf("NormalizeEmail = %q, want %q", got, "joao.silva@email.com")
	}
}

func TestParseContractFlag(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"OK", true},
		{"ok", true},
		{" Ok ", true},
		{"SIM", true},
		{"X", true},
		{"1", true},
		{"yes", true},
		{"", false},
		{"NAO", false},
		{"pendente", false},
	}

	for _, tt := range tests {
		if got := parseContractFlag(tt.input); got != tt.want {
			t.Errorf("parseContractFlag(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
