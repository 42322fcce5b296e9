package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/portfolio/internal/domain"
)

//go:embed data/*.yaml
var dataFS embed.FS

const (
	technologiesFile = "technologies.yaml"
	experiencesFile  = "experiences.yaml"
	projectsFile     = "projects.yaml"
)

// Catalog holds the static reference tables of the site.
// It is immutable after Load and safe for concurrent use.
type Catalog struct {
	technologies map[domain.TechnologyKind]domain.Technology
	ordered      []domain.Technology
	experiences  []domain.Experience
	projects     []domain.Project
}

// Default loads the catalog embedded in the binary.
func Default() (*Catalog, error) {
	sub, err := fs.Sub(dataFS, "data")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded catalog: %w", err)
	}
	return Load(sub)
}

// Load reads technologies.yaml, experiences.yaml and projects.yaml from fsys.
func Load(fsys fs.FS) (*Catalog, error) {
	var technologies []domain.Technology
	if err := decodeFile(fsys, technologiesFile, &technologies); err != nil {
		return nil, err
	}

	c := &Catalog{
		technologies: make(map[domain.TechnologyKind]domain.Technology, len(technologies)),
		ordered:      make([]domain.Technology, 0, len(technologies)),
	}
	for _, tech := range technologies {
		if _, dup := c.technologies[tech.Kind]; dup {
			return nil, fmt.Errorf("%s: duplicate technology %q", technologiesFile, tech.Kind.Key())
		}
		c.technologies[tech.Kind] = tech
		c.ordered = append(c.ordered, tech)
	}
	sort.Slice(c.ordered, func(i, j int) bool {
		return c.ordered[i].Kind < c.ordered[j].Kind
	})

	if err := decodeFile(fsys, experiencesFile, &c.experiences); err != nil {
		return nil, err
	}
	for _, exp := range c.experiences {
		if err := c.checkKinds(experiencesFile, exp.CompanyName, exp.Technologies); err != nil {
			return nil, err
		}
	}
	// Ongoing positions first, then by end date, then by start date.
	sort.SliceStable(c.experiences, func(i, j int) bool {
		a, b := c.experiences[i], c.experiences[j]
		if a.Ongoing() != b.Ongoing() {
			return a.Ongoing()
		}
		if !a.EndedAt.Equal(b.EndedAt) {
			return a.EndedAt.After(b.EndedAt)
		}
		return a.StartedAt.After(b.StartedAt)
	})

	if err := decodeFile(fsys, projectsFile, &c.projects); err != nil {
		return nil, err
	}
	for _, p := range c.projects {
		if err := c.checkKinds(projectsFile, p.Name, p.Technologies); err != nil {
			return nil, err
		}
	}
	sort.SliceStable(c.projects, func(i, j int) bool {
		return c.projects[i].StartedAt.After(c.projects[j].StartedAt)
	})

	return c, nil
}

func decodeFile(fsys fs.FS, name string, out any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

func (c *Catalog) checkKinds(file, owner string, kinds []domain.TechnologyKind) error {
	for _, kind := range kinds {
		if _, ok := c.technologies[kind]; !ok {
			return fmt.Errorf("%s: %q references technology %q missing from %s",
				file, owner, kind.Key(), technologiesFile)
		}
	}
	return nil
}

// Technology returns the technology for kind, or false when unknown.
func (c *Catalog) Technology(kind domain.TechnologyKind) (domain.Technology, bool) {
	tech, ok := c.technologies[kind]
	return tech, ok
}

// Technologies returns every technology ordered by kind.
func (c *Catalog) Technologies() []domain.Technology {
	return append([]domain.Technology(nil), c.ordered...)
}

// Resolve maps kinds to technologies, silently dropping unknown kinds.
func (c *Catalog) Resolve(kinds []domain.TechnologyKind) []domain.Technology {
	out := make([]domain.Technology, 0, len(kinds))
	for _, kind := range kinds {
		if tech, ok := c.technologies[kind]; ok {
			out = append(out, tech)
		}
	}
	return out
}

// Experiences returns the career history, most recent first.
func (c *Catalog) Experiences() []domain.Experience {
	return append([]domain.Experience(nil), c.experiences...)
}

// Projects returns the projects, newest first.
func (c *Catalog) Projects() []domain.Project {
	return append([]domain.Project(nil), c.projects...)
}
