package render

import (
	"strings"
	"testing"
)

func TestMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains string
	}{
		{"heading", "## Bilhete Seguro", "<h2>Bilhete Seguro</h2>"},
		{"bold", "**Over 8.5 escanteios**", "<strong>Over 8.5 escanteios</strong>"},
		{"list", "- Flamengo\n- Palmeiras", "<li>Flamengo</li>"},
		{"table", "| Jogo | Odd |\n|---|---|\n| A x B | 1.20 |", "<table>"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := string(Markdown(tc.input))
			if !strings.Contains(got, tc.contains) {
				t.Errorf("Expected output to contain %q, got %q", tc.contains, got)
			}
		})
	}
}

func TestMarkdown_DropsRawHTML(t *testing.T) {
	got := string(Markdown("antes <script>alert(1)</script> depois"))
	if strings.Contains(got, "<script>") {
		t.Fatalf("expected raw HTML to be omitted, got %q", got)
	}
	if !strings.Contains(got, "antes") || !strings.Contains(got, "depois") {
		t.Fatalf("expected surrounding text to survive, got %q", got)
	}
}
