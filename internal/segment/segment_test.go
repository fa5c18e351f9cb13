package segment

import (
	"reflect"
	"strings"
	"testing"

	"github.com/leonardotrapani/readalong/internal/similarity"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name    string
		passage string
		want    []string
	}{
		{
			name:    "two sentences",
			passage: "The cat sat. It was happy!",
			want:    []string{"The cat sat.", "It was happy!"},
		},
		{
			name:    "no terminal punctuation",
			passage: "once upon a time there was a fox",
			want:    []string{"once upon a time there was a fox"},
		},
		{
			name:    "trailing fragment kept",
			passage: "First one. and then",
			want:    []string{"First one.", "and then"},
		},
		{
			name:    "ocr line wrap joins sentence",
			passage: "The quick brown\nfox jumps. Over the\r\nlazy dog?",
			want:    []string{"The quick brown fox jumps.", "Over the lazy dog?"},
		},
		{
			name:    "punctuation run stays together",
			passage: "Really?! Yes.",
			want:    []string{"Really?!", "Yes."},
		},
		{
			name:    "decimal point is not a boundary",
			passage: "Pi is 3.14 or so. Right.",
			want:    []string{"Pi is 3.14 or so.", "Right."},
		},
		{
			name:    "space before punctuation removed",
			passage: "Hello , world . Bye !",
			want:    []string{"Hello, world.", "Bye!"},
		},
		{
			name:    "paragraph break after punctuation",
			passage: "End of one.\n\n\nStart of two.",
			want:    []string{"End of one.", "Start of two."},
		},
		{
			name:    "korean text",
			passage: "고양이가 앉았다. 행복했다!",
			want:    []string{"고양이가 앉았다.", "행복했다!"},
		},
		{
			name:    "lone punctuation",
			passage: " . ",
			want:    []string{"."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.passage)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Split(%q) = %q, want %q", tt.passage, got, tt.want)
			}
		})
	}
}

func TestSplitEmpty(t *testing.T) {
	for _, passage := range []string{"", "   ", "\n\n\r\n", "\t"} {
		if got := Split(passage); len(got) != 0 {
			t.Errorf("Split(%q) = %q, want empty list", passage, got)
		}
	}
}

func TestSplitNoEmptySentences(t *testing.T) {
	passage := "One.  Two!   \n\n  Three?  "
	for i, s := range Split(passage) {
		if strings.TrimSpace(s) == "" {
			t.Errorf("sentence %d is empty", i)
		}
		if s != strings.TrimSpace(s) {
			t.Errorf("sentence %d has surrounding whitespace: %q", i, s)
		}
	}
}

func TestSplitReconstructsPassage(t *testing.T) {
	passages := []string{
		"The cat sat. It was happy!",
		"A line that wraps\nacross OCR output. Another one ?\n\nNew paragraph here",
		"Wait... what?! Okay.",
		"\"Quoted,\" she said. (Then left.)",
	}

	for _, p := range passages {
		joined := strings.Join(Split(p), " ")
		if similarity.Normalize(joined) != similarity.Normalize(p) {
			t.Errorf("normalized reconstruction mismatch for %q: got %q", p, joined)
		}
	}
}

func TestNormalizeLineBreaks(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", ""},
		{"single break becomes space", "a\nb", "a b"},
		{"crlf", "a\r\nb", "a b"},
		{"bare cr", "a\rb", "a b"},
		{"paragraph kept", "a\n\nb", "a\n\nb"},
		{"many breaks collapse to one paragraph", "a\n\n\n\nb", "a\n\nb"},
		{"blank line with spaces", "a\n  \nb", "a\n\nb"},
		{"unicode line separator", "a\u2028b", "a b"},
		{"space runs collapse", "a    b\t\tc", "a b c"},
		{"trims paragraphs", "  a  \n\n  b  ", "a\n\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeLineBreaks(tt.raw); got != tt.want {
				t.Errorf("NormalizeLineBreaks(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  hello   world  ", "hello world"},
		{"hello , world", "hello, world"},
		{"wait ; what :", "wait; what:"},
		{"done .", "done."},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Clean(tt.in); got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
