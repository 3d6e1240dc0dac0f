package profile

import (
	"encoding/json"
	"testing"

	"github.com/jonathan/career-compass/internal/schemas"
	"github.com/jonathan/career-compass/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_ValidatesAgainstSchema(t *testing.T) {
	p := Default("user-1", "asha@example.com", "Asha Rao", "")

	require.NoError(t, schemas.Validate(schemas.UserProfile, p))
	assert.Equal(t, "Asha Rao", p.FullName)
	assert.NotNil(t, p.Projects)
	assert.Nil(t, p.GraduationMarks.Value)
	assert.Equal(t, types.UnitPercentage, p.GraduationMarks.Type)
}

func TestFlexNumber(t *testing.T) {
	tests := []struct {
		name string
		json string
		want *float64
	}{
		{"number", `88.5`, ptr(88.5)},
		{"integer", `90`, ptr(90)},
		{"numeric string", `"8.2"`, ptr(8.2)},
		{"padded string", `" 75 "`, ptr(75)},
		{"empty string", `""`, nil},
		{"null", `null`, nil},
		{"word", `"eighty"`, nil},
		{"NaN string", `"NaN"`, nil},
		{"infinity string", `"Inf"`, nil},
		{"overflow", `"1e400"`, nil},
		{"boolean", `true`, nil},
		{"object", `{"v": 1}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n FlexNumber
			require.NoError(t, json.Unmarshal([]byte(tt.json), &n))
			got := n.Float()
			if tt.want == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.InDelta(t, *tt.want, *got, 1e-9)
			}
		})
	}
}

func TestApply_SanitizesForm(t *testing.T) {
	body := `{
		"fullName": "  Asha Rao ",
		"tenthMarks": {"value": "", "type": "percentage"},
		"twelfthMarks": {"value": "abc", "type": "percentage"},
		"diplomaMarks": {"value": null},
		"graduationMarks": {"value": "8.4", "type": "cgpa"},
		"projects": ["Chat app", "  ", ""],
		"tools": ["Git", " Docker "]
	}`
	var form Form
	require.NoError(t, json.Unmarshal([]byte(body), &form))

	p := Default("user-1", "asha@example.com", "", "")
	Apply(p, &form)

	assert.Equal(t, "Asha Rao", p.FullName)
	assert.Nil(t, p.TenthMarks.Value)
	assert.Nil(t, p.TwelfthMarks.Value)
	assert.Nil(t, p.DiplomaMarks.Value)
	assert.Equal(t, types.UnitPercentage, p.DiplomaMarks.Type)
	require.NotNil(t, p.GraduationMarks.Value)
	assert.Equal(t, 8.4, *p.GraduationMarks.Value)
	assert.Equal(t, types.UnitCGPA, p.GraduationMarks.Type)
	assert.Equal(t, []string{"Chat app"}, p.Projects)
	assert.Equal(t, []string{"Git", "Docker"}, p.Tools)
	assert.Equal(t, []string{}, p.Internships)
	assert.Equal(t, "user-1", p.ID)

	require.NoError(t, schemas.Validate(schemas.UserProfile, p))

	data, err := json.Marshal(p.TwelfthMarks)
	require.NoError(t, err)
	assert.JSONEq(t, `{"value": null, "type": "percentage"}`, string(data))
}

func TestNormalize(t *testing.T) {
	p := &types.UserProfile{ID: "u", TenthMarks: types.ScoreRecord{Type: "gpa"}}
	Normalize(p)

	assert.Equal(t, types.UnitPercentage, p.TenthMarks.Type)
	for _, f := range types.ListFields {
		assert.NotNil(t, *p.List(f), f)
	}
}

func TestListEdits(t *testing.T) {
	original := []string{"Go", "SQL"}

	added := Append(original, "React")
	assert.Equal(t, []string{"Go", "SQL", "React"}, added)
	assert.Equal(t, []string{"Go", "SQL"}, original)

	removed, err := Remove(added, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "React"}, removed)
	assert.Equal(t, []string{"Go", "SQL", "React"}, added)

	_, err = Remove(added, 3)
	assert.Error(t, err)
	_, err = Remove(nil, 0)
	assert.Error(t, err)
}

func TestSkillsSummary(t *testing.T) {
	p := &types.UserProfile{
		ProgrammingLanguages: []string{"JavaScript"},
		Tools:                []string{"React", " "},
		Languages:            []string{"English"},
		Courses:              []string{"CS50"},
		Certifications:       []string{"AWS CCP"},
		Projects:             []string{"ignored"},
	}
	assert.Equal(t, "JavaScript, React, English, CS50, AWS CCP", SkillsSummary(p))
	assert.Equal(t, "", SkillsSummary(&types.UserProfile{}))
}

func TestMeasure(t *testing.T) {
	p := Default("u", "e@example.com", "Asha", "")
	c := Measure(p)
	assert.Equal(t, 1, c.Filled)
	assert.Equal(t, 16, c.Total)
	assert.Equal(t, 6, c.Percent)
	assert.Contains(t, c.Missing, "projects")
	assert.NotContains(t, c.Missing, "fullName")
}

func ptr(v float64) *float64 { return &v }
