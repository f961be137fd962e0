package invoker

import "testing"

func TestQuote(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "''"},
		{"plain", "'plain'"},
		{"it's", `'it'"'"'s'`},
		{"''", `''"'"''"'"''`},
		{"$(rm -rf /)", "'$(rm -rf /)'"},
		{"a;b", "'a;b'"},
		{"line1\nline2", "'line1\nline2'"},
	}

	for _, tt := range tests {
		if got := Quote(tt.input); got != tt.want {
			t.Errorf("Quote(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCommandLine(t *testing.T) {
	got := CommandLine("gemini", "gemini-2.5-pro", "Use a singleton cache")
	want := `'gemini' -m 'gemini-2.5-pro' -p 'Use a singleton cache'`
	if got != want {
		t.Errorf("CommandLine = %q, want %q", got, want)
	}
}
