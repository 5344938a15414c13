package extract

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want QuestionType
	}{
		{
			name: "inline choices",
			text: "Which PPE is required? A. Gloves B. Mask C. Gown",
			want: TypeMCQ,
		},
		{
			name: "mcq keyword",
			text: "Select the correct infection control procedure from the options below.",
			want: TypeMCQ,
		},
		{
			name: "true false",
			text: "True or false: gloves replace hand hygiene.",
			want: TypeTrueFalse,
		},
		{
			name: "essay verb",
			text: "Explain the chain of infection.",
			want: TypeEssay,
		},
		{
			name: "recall verb",
			text: "List three hand hygiene steps",
			want: TypeShortAnswer,
		},
		{
			name: "interrogative with question mark",
			text: "What is the first step after a needlestick injury?",
			want: TypeShortAnswer,
		},
		{
			name: "scenario keyword",
			text: "A patient presents with fever after surgery. Consider the response required.",
			want: TypeScenario,
		},
		{
			name: "demonstration verb",
			text: "Demonstrate correct glove removal",
			want: TypePractical,
		},
		{
			name: "bare question mark",
			text: "Gloves on before gown?",
			want: TypeQuestion,
		},
		{
			name: "nothing recognizable",
			text: "Section 3 continues on the next page",
			want: TypeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.text); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractChoices(t *testing.T) {
	span := "Which option is correct?\nA. Wash hands first\nB. Apply gloves first\nc) Skip hand hygiene\n(D) None of the above\nx\n"
	choices := extractChoices(span)

	want := []string{
		"Wash hands first",
		"Apply gloves first",
		"Skip hand hygiene",
		"None of the above",
	}
	if len(choices) != len(want) {
		t.Fatalf("got %d choices %v, want %d", len(choices), choices, len(want))
	}
	for i := range want {
		if choices[i] != want[i] {
			t.Errorf("choice %d = %q, want %q", i, choices[i], want[i])
		}
	}
}

func TestExtractChoicesMinimumLength(t *testing.T) {
	choices := extractChoices("A. ok\nB. An actual option")
	if len(choices) != 1 {
		t.Fatalf("got %v, want only the long option", choices)
	}
	if choices[0] != "An actual option" {
		t.Errorf("choice = %q", choices[0])
	}
}

func TestCleanChoiceDuplicatedPrefix(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"A. Wash hands", "Wash hands"},
		{"Wash hands", "Wash hands"},
		{"b) b) Gloves on", "Gloves on"},
	}

	for _, tt := range tests {
		if got := cleanChoice(tt.input); got != tt.want {
			t.Errorf("cleanChoice(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
