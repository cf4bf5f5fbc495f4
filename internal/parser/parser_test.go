package parser

import (
	"reflect"
	"testing"
)

func TestParse_FrontmatterAndBody(t *testing.T) {
	r := Parse("---\ntitle: Hello\ntags:\n  - go\n  - notes\n---\n# Heading\nBody text.\n")
	if r.Title != "Hello" {
		t.Errorf("title = %q, want %q", r.Title, "Hello")
	}
	if !reflect.DeepEqual(r.Tags, []string{"go", "notes"}) {
		t.Errorf("tags = %v, want [go notes]", r.Tags)
	}
	if r.Body != "# Heading\nBody text.\n" {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_HeadingTitle(t *testing.T) {
	r := Parse("intro\n# Just a heading\nSome text.\n")
	if r.Title != "Just a heading" {
		t.Errorf("title = %q, want %q", r.Title, "Just a heading")
	}
}

func TestParse_PlainText(t *testing.T) {
	r := Parse("Hello world")
	if r.Title != "" || len(r.Tags) != 0 || r.Body != "Hello world" {
		t.Errorf("plain text parse = %+v", r)
	}
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	input := "---\n: invalid: yaml: {{{\n---\nBody\n"
	r := Parse(input)
	if r.Body != input {
		t.Errorf("invalid YAML should leave the whole text as body, got %q", r.Body)
	}
}

func TestParse_InlineTags(t *testing.T) {
	r := Parse("회의 메모 #project-x and #회의 but not mid#word")
	if !reflect.DeepEqual(r.Tags, []string{"project-x", "회의"}) {
		t.Errorf("tags = %v", r.Tags)
	}
}

func TestMergeTags(t *testing.T) {
	got := MergeTags([]string{"a", " b "}, []string{"b", "c", ""})
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("merge = %v", got)
	}
}
