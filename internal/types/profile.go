//nolint:revive // types is a standard Go package name pattern
package types

// ScoreUnit tags an academic score value.
type ScoreUnit string

const (
	UnitPercentage ScoreUnit = "percentage"
	UnitCGPA       ScoreUnit = "cgpa"
)

// Valid reports whether u is one of the known units.
func (u ScoreUnit) Valid() bool {
	return u == UnitPercentage || u == UnitCGPA
}

// ScoreRecord is an academic score. A nil Value means "not provided".
type ScoreRecord struct {
	Value *float64  `json:"value"`
	Type  ScoreUnit `json:"type"`
}

// UserProfile is the stored profile of a single user.
type UserProfile struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	PhotoURL string `json:"photoURL"`

	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Bio      string `json:"bio"`

	Github    string `json:"github"`
	Linkedin  string `json:"linkedin"`
	Portfolio string `json:"portfolio"`
	Instagram string `json:"instagram"`
	Twitter   string `json:"twitter"`
	AicteID   string `json:"aicteId"`

	TenthMarks      ScoreRecord `json:"tenthMarks"`
	TwelfthMarks    ScoreRecord `json:"twelfthMarks"`
	DiplomaMarks    ScoreRecord `json:"diplomaMarks"`
	GraduationMarks ScoreRecord `json:"graduationMarks"`

	Internships          []string `json:"internships"`
	Certifications       []string `json:"certifications"`
	Courses              []string `json:"courses"`
	CommunicationSkills  string   `json:"communicationSkills"`
	Languages            []string `json:"languages"`
	ProgrammingLanguages []string `json:"programmingLanguages"`
	Projects             []string `json:"projects"`
	Tools                []string `json:"tools"`
}

// ListField names one of the repeatable string lists on a profile.
type ListField string

const (
	ListInternships          ListField = "internships"
	ListCertifications       ListField = "certifications"
	ListCourses              ListField = "courses"
	ListLanguages            ListField = "languages"
	ListProgrammingLanguages ListField = "programmingLanguages"
	ListProjects             ListField = "projects"
	ListTools                ListField = "tools"
)

// ListFields is every repeatable list, in form order.
var ListFields = []ListField{
	ListInternships,
	ListCertifications,
	ListCourses,
	ListLanguages,
	ListProgrammingLanguages,
	ListProjects,
	ListTools,
}

// List returns a pointer to the named list, or nil for an unknown field.
func (p *UserProfile) List(field ListField) *[]string {
	switch field {
	case ListInternships:
		return &p.Internships
	case ListCertifications:
		return &p.Certifications
	case ListCourses:
		return &p.Courses
	case ListLanguages:
		return &p.Languages
	case ListProgrammingLanguages:
		return &p.ProgrammingLanguages
	case ListProjects:
		return &p.Projects
	case ListTools:
		return &p.Tools
	}
	return nil
}

// Scores returns pointers to the four score records keyed by their JSON name.
func (p *UserProfile) Scores() map[string]*ScoreRecord {
	return map[string]*ScoreRecord{
		"tenthMarks":      &p.TenthMarks,
		"twelfthMarks":    &p.TwelfthMarks,
		"diplomaMarks":    &p.DiplomaMarks,
		"graduationMarks": &p.GraduationMarks,
	}
}
