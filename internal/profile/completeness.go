package profile

import "github.com/jonathan/career-compass/internal/types"

// Completeness is how much of the profile is filled in, for the dashboard.
type Completeness struct {
	Filled  int      `json:"filled"`
	Total   int      `json:"total"`
	Percent int      `json:"percent"`
	Missing []string `json:"missing"`
}

// Measure reports which profile sections are still empty.
func Measure(p *types.UserProfile) Completeness {
	checks := []struct {
		name   string
		filled bool
	}{
		{"fullName", p.FullName != ""},
		{"phone", p.Phone != ""},
		{"location", p.Location != ""},
		{"bio", p.Bio != ""},
		{"linkedin", p.Linkedin != ""},
		{"github", p.Github != ""},
		{"graduationMarks", p.GraduationMarks.Value != nil},
		{"twelfthMarks", p.TwelfthMarks.Value != nil},
		{"tenthMarks", p.TenthMarks.Value != nil},
		{"programmingLanguages", len(p.ProgrammingLanguages) > 0},
		{"tools", len(p.Tools) > 0},
		{"projects", len(p.Projects) > 0},
		{"internships", len(p.Internships) > 0},
		{"certifications", len(p.Certifications) > 0},
		{"languages", len(p.Languages) > 0},
		{"communicationSkills", p.CommunicationSkills != ""},
	}

	c := Completeness{Total: len(checks), Missing: []string{}}
	for _, check := range checks {
		if check.filled {
			c.Filled++
		} else {
			c.Missing = append(c.Missing, check.name)
		}
	}
	c.Percent = c.Filled * 100 / c.Total
	return c
}
