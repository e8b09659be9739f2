package vocabulary

import (
	"strings"
	"testing"
)

func TestCountWord(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		token  string
		expect int
	}{
		{name: "single", text: "i write go daily", token: "go", expect: 1},
		{name: "inside word", text: "mongodb and django", token: "go", expect: 0},
		{name: "adjacent occurrences", text: "senior senior,senior", token: "senior", expect: 3},
		{name: "symbols", text: "c++, c# and f#", token: "c++", expect: 1},
		{name: "dotted", text: "built with node.js.", token: "node.js", expect: 1},
		{name: "phrase", text: "machine learning engineer", token: "machine learning", expect: 1},
		{name: "empty token", text: "anything", token: "", expect: 0},
		{name: "text start and end", text: "go", token: "go", expect: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CountWord(tt.text, tt.token); got != tt.expect {
				t.Fatalf("expected %d, got %d", tt.expect, got)
			}
		})
	}
}

func TestFindSkillsEveryVocabularyToken(t *testing.T) {
	v := Default()

	for _, skill := range v.Skills() {
		text := "Worked on ... " + strings.ToUpper(skill) + " ... daily"
		found := v.FindSkills(text)

		ok := false
		for _, f := range found {
			if f == skill {
				ok = true
				break
			}
		}
		if !ok {
			t.Fatalf("skill %q not found in %q (found %v)", skill, text, found)
		}
	}
}

func TestDisplayAll(t *testing.T) {
	got := DisplayAll([]string{"react", "Python", "python", "machine learning", ""})
	expect := []string{"Machine Learning", "Python", "React"}

	if strings.Join(got, "|") != strings.Join(expect, "|") {
		t.Fatalf("expected %v, got %v", expect, got)
	}
}
