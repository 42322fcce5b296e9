package domain

import "time"

// Experience is one position held, most recent first when listed.
type Experience struct {
	JobTitle        string   `json:"jobTitle" yaml:"jobTitle"`
	CompanyName     string   `json:"companyName" yaml:"company"`
	CompanyImageURL string   `json:"companyImageUrl" yaml:"companyImage"`
	Descriptions    []string `json:"descriptions" yaml:"descriptions"`

	StartedAt time.Time `json:"startedAt" yaml:"startedAt"`
	// EndedAt is zero while the position is ongoing.
	EndedAt time.Time `json:"endedAt,omitempty" yaml:"endedAt"`

	Technologies []TechnologyKind `json:"technologies" yaml:"technologies"`
	ImageURLs    []string         `json:"imageUrls" yaml:"images"`
}

// Ongoing reports whether the position has no end date.
func (e *Experience) Ongoing() bool {
	return e.EndedAt.IsZero()
}

// Project is a personal or company side project.
type Project struct {
	Name         string           `json:"name" yaml:"name"`
	ProjectURL   string           `json:"projectUrl,omitempty" yaml:"url"`
	Descriptions []string         `json:"descriptions" yaml:"descriptions"`
	StartedAt    time.Time        `json:"startedAt" yaml:"startedAt"`
	Technologies []TechnologyKind `json:"technologies" yaml:"technologies"`
	ImageURLs    []string         `json:"imageUrls" yaml:"images"`
}
