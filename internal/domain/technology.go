package domain

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// TechnologyKind identifies a supported technology.
// Values are stable: they are persisted in blog meta.json files.
type TechnologyKind int

const (
	TechnologyCSharp     TechnologyKind = 1
	TechnologyNet        TechnologyKind = 2
	TechnologyNodeJs     TechnologyKind = 3
	TechnologyJavaScript TechnologyKind = 4
	TechnologyCss        TechnologyKind = 5
	TechnologyHtml5      TechnologyKind = 6
	TechnologyMongoDb    TechnologyKind = 7
	TechnologyMySql      TechnologyKind = 8
	TechnologyPostgreSql TechnologyKind = 9
	TechnologyClickhouse TechnologyKind = 10
	TechnologyPowerShell TechnologyKind = 11
	TechnologySharePoint TechnologyKind = 12
	TechnologyTeams      TechnologyKind = 13
	TechnologySqlServer  TechnologyKind = 14
	TechnologyTypeScript TechnologyKind = 15
	TechnologyReact      TechnologyKind = 16
	TechnologyBlazor     TechnologyKind = 17
)

// technologyKeys maps the lowercase key used in data files to its kind.
var technologyKeys = map[string]TechnologyKind{
	"csharp":     TechnologyCSharp,
	"net":        TechnologyNet,
	"nodejs":     TechnologyNodeJs,
	"javascript": TechnologyJavaScript,
	"css":        TechnologyCss,
	"html5":      TechnologyHtml5,
	"mongodb":    TechnologyMongoDb,
	"mysql":      TechnologyMySql,
	"postgresql": TechnologyPostgreSql,
	"clickhouse": TechnologyClickhouse,
	"powershell": TechnologyPowerShell,
	"sharepoint": TechnologySharePoint,
	"teams":      TechnologyTeams,
	"sqlserver":  TechnologySqlServer,
	"typescript": TechnologyTypeScript,
	"react":      TechnologyReact,
	"blazor":     TechnologyBlazor,
}

// ParseTechnologyKind resolves a data-file key ("csharp") or a numeric
// value ("1") to a known kind.
func ParseTechnologyKind(s string) (TechnologyKind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if kind, ok := technologyKeys[s]; ok {
		return kind, true
	}
	if n, err := strconv.Atoi(s); err == nil {
		kind := TechnologyKind(n)
		return kind, kind.Valid()
	}
	return 0, false
}

// Valid reports whether k is part of the closed enumeration.
func (k TechnologyKind) Valid() bool {
	return k >= TechnologyCSharp && k <= TechnologyBlazor
}

// Key returns the data-file key of k, or its number when unknown.
func (k TechnologyKind) Key() string {
	for key, kind := range technologyKeys {
		if kind == k {
			return key
		}
	}
	return strconv.Itoa(int(k))
}

// UnmarshalYAML accepts either the key or the numeric value.
func (k *TechnologyKind) UnmarshalYAML(node *yaml.Node) error {
	kind, ok := ParseTechnologyKind(node.Value)
	if !ok {
		return fmt.Errorf("line %d: unknown technology %q", node.Line, node.Value)
	}
	*k = kind
	return nil
}

// TechnologyLogo carries the rendering hints of a technology badge.
type TechnologyLogo struct {
	FileName        string `json:"fileName" yaml:"file"`
	BackgroundColor string `json:"backgroundColor" yaml:"background"`
	// InvertColor asks the UI to invert the icon for contrast.
	InvertColor bool `json:"invertColor" yaml:"invert"`
}

// Technology is immutable reference data, one per kind.
type Technology struct {
	Kind TechnologyKind `json:"kind" yaml:"kind"`
	Name string         `json:"name" yaml:"name"`
	Logo TechnologyLogo `json:"logo" yaml:"logo"`
}
