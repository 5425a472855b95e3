package views

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadTemplates_success(t *testing.T) {
	err := LoadTemplates()
	if err != nil {
		t.Fatalf("LoadTemplates() = %v; want nil", err)
	}
	if welcomeTmpl == nil {
		t.Fatal("LoadTemplates() left welcomeTmpl nil")
	}
}

func TestLoadTemplates_failure_sub(t *testing.T) {
	// Empty FS has no "templates" directory; ParseFS matches nothing.
	emptyFS := fstest.MapFS{}
	err := loadTemplatesFromFS(emptyFS, "templates")
	if err == nil {
		t.Fatal("loadTemplatesFromFS(emptyFS, \"templates\") = nil; want error")
	}
}

func TestLoadTemplates_failure_parse(t *testing.T) {
	badFS := fstest.MapFS{
		"templates/welcome.html": {Data: []byte("{{ .")},
	}
	err := loadTemplatesFromFS(badFS, "templates")
	if err == nil {
		t.Fatal("loadTemplatesFromFS(badFS, \"templates\") = nil; want error")
	}
}

func TestRenderWelcome_notLoaded(t *testing.T) {
	prev := welcomeTmpl
	welcomeTmpl = nil
	t.Cleanup(func() { welcomeTmpl = prev })

	var buf bytes.Buffer
	err := RenderWelcome(&buf, DefaultWelcomeData())
	if err == nil {
		t.Fatal("RenderWelcome() = nil; want error when templates not loaded")
	}
	if !strings.Contains(err.Error(), "not loaded") {
		t.Errorf("err = %q; want message containing \"not loaded\"", err.Error())
	}
}

func TestRenderWelcome_defaultData(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates(): %v", err)
	}

	var buf bytes.Buffer
	if err := RenderWelcome(&buf, DefaultWelcomeData()); err != nil {
		t.Fatalf("RenderWelcome() = %v; want nil", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Welcome to Honolulu, Hawaii Climate API!",
		`<a href="/api/v1.0/precipitation">Precipitation</a>`,
		`<a href="/api/v1.0/stations">Stations</a>`,
		`<a href="/api/v1.0/tobs">Temperature Observations</a>`,
		"/api/v1.0/start_date/end_date (format: yyyy-mm-dd)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q; got %q", want, out)
		}
	}
}

func TestRenderWelcome_escapesData(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates(): %v", err)
	}

	var buf bytes.Buffer
	data := &WelcomeData{Title: "<script>alert(1)</script>"}
	if err := RenderWelcome(&buf, data); err != nil {
		t.Fatalf("RenderWelcome() = %v", err)
	}
	if strings.Contains(buf.String(), "<script>") {
		t.Errorf("title not escaped: %q", buf.String())
	}
}
