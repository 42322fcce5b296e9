package catalog

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/MrSnakeDoc/portfolio/internal/domain"
)

const testTechnologies = `
- kind: csharp
  name: "C#"
  logo: { file: logo_csharp, background: "#8a71e3", invert: true }
- kind: react
  name: React
  logo: { file: logo_react, background: "#61dafb", invert: true }
`

func testFS(experiences, projects string) fstest.MapFS {
	return fstest.MapFS{
		technologiesFile: {Data: []byte(testTechnologies)},
		experiencesFile:  {Data: []byte(experiences)},
		projectsFile:     {Data: []byte(projects)},
	}
}

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	techs := c.Technologies()
	if len(techs) != int(domain.TechnologyBlazor) {
		t.Errorf("Technologies() = %d entries, want %d", len(techs), domain.TechnologyBlazor)
	}
	for i, tech := range techs {
		if tech.Kind != domain.TechnologyKind(i+1) {
			t.Errorf("Technologies()[%d].Kind = %v, want %v", i, tech.Kind, i+1)
		}
	}

	if len(c.Experiences()) == 0 {
		t.Error("Experiences() should not be empty")
	}
	if len(c.Projects()) == 0 {
		t.Error("Projects() should not be empty")
	}
}

func TestTechnologyLookup(t *testing.T) {
	c, err := Load(testFS("[]", "[]"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tech, ok := c.Technology(domain.TechnologyCSharp)
	if !ok {
		t.Fatal("Technology(CSharp) not found")
	}
	if tech.Name != "C#" || tech.Logo.BackgroundColor != "#8a71e3" || !tech.Logo.InvertColor {
		t.Errorf("Technology(CSharp) = %+v", tech)
	}

	if _, ok := c.Technology(domain.TechnologyMongoDb); ok {
		t.Error("Technology(MongoDb) should not be found in the test catalog")
	}
	if _, ok := c.Technology(domain.TechnologyKind(999)); ok {
		t.Error("Technology(999) should not be found")
	}

	resolved := c.Resolve([]domain.TechnologyKind{domain.TechnologyReact, 999, domain.TechnologyCSharp})
	if len(resolved) != 2 || resolved[0].Name != "React" || resolved[1].Name != "C#" {
		t.Errorf("Resolve() = %+v", resolved)
	}
}

func TestExperiencesOrder(t *testing.T) {
	experiences := `
- jobTitle: Old
  company: A
  startedAt: 2017-08-01
  endedAt: 2022-08-01
  technologies: [csharp]
- jobTitle: Current early
  company: B
  startedAt: 2022-08-01
  technologies: [react]
- jobTitle: Middle
  company: C
  startedAt: 2024-04-01
  endedAt: 2025-02-01
- jobTitle: Current late
  company: D
  startedAt: 2025-03-01
`
	c, err := Load(testFS(experiences, "[]"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got := c.Experiences()
	want := []string{"Current late", "Current early", "Middle", "Old"}
	if len(got) != len(want) {
		t.Fatalf("Experiences() = %d entries, want %d", len(got), len(want))
	}
	for i, title := range want {
		if got[i].JobTitle != title {
			t.Errorf("Experiences()[%d] = %q, want %q", i, got[i].JobTitle, title)
		}
	}
	if !got[0].Ongoing() || got[2].Ongoing() {
		t.Error("Ongoing() mismatch")
	}
}

func TestProjectsOrder(t *testing.T) {
	projects := `
- name: first
  startedAt: 2020-05-01
- name: third
  startedAt: 2025-08-09
- name: second
  startedAt: 2023-03-01
`
	c, err := Load(testFS("[]", projects))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got := c.Projects()
	want := []string{"third", "second", "first"}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("Projects()[%d] = %q, want %q", i, got[i].Name, name)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		fsys    fstest.MapFS
		wantErr string
	}{
		{
			name:    "unknown technology key",
			fsys:    testFS("- jobTitle: x\n  technologies: [cobol]\n", "[]"),
			wantErr: "unknown technology",
		},
		{
			name:    "technology missing from table",
			fsys:    testFS("[]", "- name: x\n  technologies: [mongodb]\n"),
			wantErr: "missing from",
		},
		{
			name: "duplicate technology",
			fsys: fstest.MapFS{
				technologiesFile: {Data: []byte("- kind: react\n  name: A\n- kind: 16\n  name: B\n")},
				experiencesFile:  {Data: []byte("[]")},
				projectsFile:     {Data: []byte("[]")},
			},
			wantErr: "duplicate technology",
		},
		{
			name:    "missing file",
			fsys:    fstest.MapFS{technologiesFile: {Data: []byte(testTechnologies)}},
			wantErr: "failed to read",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.fsys)
			if err == nil {
				t.Fatal("Load() should have failed")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
