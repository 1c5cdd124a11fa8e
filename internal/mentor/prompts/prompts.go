// Package prompts holds the mentor's system prompt and the canned replies
// used when the completion service gives nothing usable.
package prompts

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed system.md
var systemPrompt string

//go:embed fallback.yaml
var fallbackYAML []byte

const defaultName = "there"

func SystemPrompt() string { return strings.TrimSpace(systemPrompt) }

type Rule struct {
	ID       string   `yaml:"id"`
	Keywords []string `yaml:"keywords"`
	Reply    string   `yaml:"reply"`
}

// Matches reports whether any keyword occurs in the already-lowercased text.
func (r Rule) Matches(lowered string) bool {
	for _, k := range r.Keywords {
		if k != "" && strings.Contains(lowered, k) {
			return true
		}
	}
	return false
}

// Fallback picks a reply by ordered keyword rules. The first matching rule
// wins; with no match the default greeting is rendered for the student.
type Fallback struct {
	rules    []Rule
	greeting *template.Template
}

type fallbackDoc struct {
	Rules   []Rule `yaml:"rules"`
	Default string `yaml:"default"`
}

// LoadFallback parses the embedded rule table.
func LoadFallback() (*Fallback, error) {
	return ParseFallback(fallbackYAML)
}

func ParseFallback(raw []byte) (*Fallback, error) {
	var doc fallbackDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode fallback rules: %w", err)
	}
	if strings.TrimSpace(doc.Default) == "" {
		return nil, fmt.Errorf("fallback rules: missing default reply")
	}
	seen := map[string]bool{}
	for i := range doc.Rules {
		r := &doc.Rules[i]
		if r.ID == "" || seen[r.ID] {
			return nil, fmt.Errorf("fallback rule %d: missing or duplicate id %q", i, r.ID)
		}
		seen[r.ID] = true
		if len(r.Keywords) == 0 {
			return nil, fmt.Errorf("fallback rule %q: no keywords", r.ID)
		}
		for j, k := range r.Keywords {
			r.Keywords[j] = strings.ToLower(k)
		}
	}
	tmpl, err := template.New("greeting").Option("missingkey=error").Parse(doc.Default)
	if err != nil {
		return nil, fmt.Errorf("fallback default template: %w", err)
	}
	return &Fallback{rules: doc.Rules, greeting: tmpl}, nil
}

// MustLoadFallback is LoadFallback for wiring code; the embedded table is
// covered by tests.
func MustLoadFallback() *Fallback {
	f, err := LoadFallback()
	if err != nil {
		panic(err)
	}
	return f
}

// Select returns the rule id and reply for text. It has no side effects and
// always returns the same reply for the same inputs.
func (f *Fallback) Select(text, studentName string) (string, string) {
	lowered := strings.ToLower(text)
	for _, r := range f.rules {
		if r.Matches(lowered) {
			return r.ID, r.Reply
		}
	}
	return "default", f.Greeting(studentName)
}

func (f *Fallback) Greeting(studentName string) string {
	name := strings.TrimSpace(studentName)
	if name == "" {
		name = defaultName
	}
	var buf bytes.Buffer
	if err := f.greeting.Execute(&buf, struct{ Name string }{Name: name}); err != nil {
		return "Hey " + name + "!"
	}
	return buf.String()
}

func (f *Fallback) Rules() []Rule {
	out := make([]Rule, len(f.rules))
	copy(out, f.rules)
	return out
}
