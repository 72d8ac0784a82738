package openapi

import (
	"bytes"
	"os"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestSpecReturnsCopyAndMatchesFile(t *testing.T) {
	want, err := os.ReadFile("immunizetrack.yaml")
	if err != nil {
		t.Fatalf("read immunizetrack.yaml: %v", err)
	}
	spec := Spec()
	if !bytes.Equal(spec, want) {
		t.Fatalf("Spec does not match the embedded document")
	}
	spec[0] ^= 0xFF
	if !bytes.Equal(Spec(), want) {
		t.Fatalf("Spec mutation leaked into embedded content")
	}
}

func TestSpecDocumentsEveryRoute(t *testing.T) {
	var doc struct {
		OpenAPI string                    `yaml:"openapi"`
		Paths   map[string]map[string]any `yaml:"paths"`
	}
	if err := yaml.Unmarshal(APISpec, &doc); err != nil {
		t.Fatalf("parse spec: %v", err)
	}
	if doc.OpenAPI == "" {
		t.Fatalf("missing openapi version")
	}
	for _, path := range []string{
		"/api/v1/{kind}",
		"/api/v1/summary/{kind}",
		"/api/v1/portal/children/{id}/upcoming",
		"/api/v1/{kind}/{id}",
		"/api/v1/dashboard",
		"/api/v1/portal/children",
		"/api/v1/exports",
		"/api/v1/exports/{id}/download",
	} {
		if _, ok := doc.Paths[path]; !ok {
			t.Fatalf("path %s not documented", path)
		}
	}
	if _, ok := doc.Paths["/api/v1/exports"]["post"]; !ok {
		t.Fatalf("export creation not documented")
	}
}
