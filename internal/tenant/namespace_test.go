package tenant

import (
	"strings"
	"testing"
	"time"
)

func TestNamespace(t *testing.T) {
	tests := []struct {
		name string
		org  string
		dept string
		want string
	}{
		{name: "strips punctuation", org: "Finance!", dept: "R&D", want: "organizations/finance/rd/uploads"},
		{name: "keeps dash and underscore", org: "Acme-Co_EU", dept: "IT", want: "organizations/acme-co_eu/it/uploads"},
		{name: "drops spaces and dots", org: "Acme Inc.", dept: "Finance", want: "organizations/acmeinc/finance/uploads"},
		{name: "empty after canonicalization", org: "!!!", dept: "", want: "organizations///uploads"},
		{name: "non ascii letters dropped", org: "Zürich AG", dept: "Légal", want: "organizations/zrichag/lgal/uploads"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Namespace(tt.org, tt.dept)
			if got != tt.want {
				t.Fatalf("Namespace(%q, %q) = %q, want %q", tt.org, tt.dept, got, tt.want)
			}
			if again := Namespace(tt.org, tt.dept); again != got {
				t.Fatalf("Namespace is not stable: %q then %q", got, again)
			}
		})
	}
}

func TestNamespaceCharset(t *testing.T) {
	inputs := []string{
		"", " ", "ABC xyz", "a/b\\c", "日本語", "tab\tnew\nline", "emoji 🚀 org", "%2F..%00", "MiXeD-Case_123",
	}
	for _, org := range inputs {
		for _, dept := range inputs {
			got := Namespace(org, dept)
			for _, r := range got {
				ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '/' || r == '-'
				if !ok {
					t.Fatalf("Namespace(%q, %q) = %q contains %q", org, dept, got, r)
				}
			}
			if strings.Count(got, "/") != 4 {
				t.Fatalf("Namespace(%q, %q) = %q: expected exactly four separators", org, dept, got)
			}
		}
	}
}

func TestObjectName(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		filename string
		want     string
	}{
		{filename: "report.csv", want: "report_20240102_030405.csv"},
		{filename: "Q1 Report (final).PDF", want: "q1reportfinal_20240102_030405.PDF"},
		{filename: "archive.tar.gz", want: "archivetar_20240102_030405.gz"},
		{filename: "README", want: "readme_20240102_030405"},
		{filename: ".env", want: "_20240102_030405.env"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := ObjectName(tt.filename, at); got != tt.want {
				t.Fatalf("ObjectName(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

func TestKeys(t *testing.T) {
	ns := Namespace("Acme Inc.", "Finance")
	name := ObjectName("report.csv", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))

	if got, want := ObjectKey(ns, name), "organizations/acmeinc/finance/uploads/report_20240102_030405.csv"; got != want {
		t.Fatalf("ObjectKey = %q, want %q", got, want)
	}
	if got, want := MetadataKey(ns, name), "organizations/acmeinc/finance/uploads/metadata/report_20240102_030405.csv.metadata.json"; got != want {
		t.Fatalf("MetadataKey = %q, want %q", got, want)
	}
}

func TestExtension(t *testing.T) {
	if got := Extension("Deck.PPTX"); got != "pptx" {
		t.Fatalf("Extension = %q, want pptx", got)
	}
	if got := Extension("noext"); got != "" {
		t.Fatalf("Extension = %q, want empty", got)
	}
}
