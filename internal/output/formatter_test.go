package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"json":     FormatJSON,
		"JSON":     FormatJSON,
		"markdown": FormatMarkdown,
		"md":       FormatMarkdown,
		"toon":     FormatTOON,
		"text":     FormatText,
		"":         FormatText,
		"bogus":    FormatText,
	}
	for in, want := range cases {
		if got := ParseFormat(in); got != want {
			t.Errorf("ParseFormat(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestStructured(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatTOON} {
		fm := &Formatter{format: f}
		if !fm.Structured() {
			t.Errorf("%v should be structured", f)
		}
	}
	for _, f := range []Format{FormatText, FormatMarkdown} {
		fm := &Formatter{format: f}
		if fm.Structured() {
			t.Errorf("%v should not be structured", f)
		}
	}
}

func TestOutputJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	f, err := NewFormatter(FormatJSON, path, true)
	if err != nil {
		t.Fatal(err)
	}
	payload := map[string]int{"nodes": 3}
	if err := f.Output(payload); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]int
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["nodes"] != 3 {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestOutputTOON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.toon")

	f, err := NewFormatter(FormatTOON, path, true)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Output(map[string]int{"nodes": 3}); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("TOON output is empty")
	}
}

func TestMarkdownTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")

	f, err := NewFormatter(FormatMarkdown, path, true)
	if err != nil {
		t.Fatal(err)
	}
	err = f.Table("Results", []string{"Name", "Count"}, [][]string{
		{"alpha", "1"},
		{"beta", "2"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{"## Results", "| Name | Count |", "| --- | --- |", "| alpha | 1 |"} {
		if !strings.Contains(text, want) {
			t.Errorf("markdown missing %q:\n%s", want, text)
		}
	}
}

func TestTextTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")

	f, err := NewFormatter(FormatText, path, true)
	if err != nil {
		t.Fatal(err)
	}
	if f.Colored() {
		t.Error("file output must disable color")
	}
	err = f.Table("Stats", []string{"Metric", "Value"}, [][]string{{"nodes", "42"}})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.Contains(text, "Stats") {
		t.Errorf("missing title:\n%s", text)
	}
	if !strings.Contains(text, "42") {
		t.Errorf("missing row value:\n%s", text)
	}
}
