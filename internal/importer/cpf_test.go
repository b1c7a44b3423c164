package importer

import "testing"

func TestValidCPF(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "valid bare digits", input: "11144477735", want: true},
		{name: "valid formatted", input: "111.444.777-35", want: true},
		{name: "valid second example", input: "529.982.247-25", want: true},
		{name: "valid with spaces", input: " 390.533.447-05 ", want: true},
		{name: "wrong first check digit", input: "11144477745", want: false},
		{name: "wrong second check digit", input: "11144477736", want: false},
		{name: "all same digit", input: "11111111111", want: false},
		{name: "all zeros", input: "00000000000", want: false},
		{name: "too short", input: "1114447773", want: false},
		{name: "too long", input: "111444777350", want: false},
		{name: "empty", input: "", want: false},
		{name: "letters only", input: "abcdefghijk", want: false},
		{name: "placeholder", input: "TEMP0011234", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidCPF(tt.input); got != tt.want {
				t.Errorf("ValidCPF(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatCPF(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "bare digits", input: "11144477735", want: "111.444.777-35"},
		{name: "already formatted", input: "111.444.777-35", want: "111.444.777-35"},
		{name: "short value unchanged", input: "12345", want: "12345"},
		{name: "placeholder unchanged", input: "TEMP0011234", want: "TEMP0011234"},
		{name: "empty unchanged", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatCPF(tt.input); got != tt.want {
				t.Errorf("FormatCPF(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
