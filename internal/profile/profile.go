// Package profile holds the user profile editor rules: the default profile,
// form sanitizing and the pure list edits behind repeatable form fields.
package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jonathan/career-compass/internal/types"
)

// Default returns the empty profile created on first sign-in.
func Default(id, email, fullName, photoURL string) *types.UserProfile {
	p := &types.UserProfile{
		ID:       id,
		Email:    email,
		FullName: fullName,
		PhotoURL: photoURL,
	}
	Normalize(p)
	return p
}

// Normalize fills nil lists with empty ones and defaults unknown score units
// to percentage, so the profile always serializes to its schema shape.
func Normalize(p *types.UserProfile) {
	for _, field := range types.ListFields {
		list := p.List(field)
		if *list == nil {
			*list = []string{}
		}
	}
	for _, score := range p.Scores() {
		if !score.Type.Valid() {
			score.Type = types.UnitPercentage
		}
	}
}

// ScoreInput is a score as submitted by a form. Value may be a JSON number,
// a numeric string, an empty string or null.
type ScoreInput struct {
	Value FlexNumber      `json:"value"`
	Type  types.ScoreUnit `json:"type"`
}

// FlexNumber accepts a JSON number or string and records whether it held a usable number.
type FlexNumber struct {
	Raw string
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *FlexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		n.Raw = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		n.Raw = s
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		// Booleans, objects and arrays are treated as "not a number".
		n.Raw = string(data)
		return nil
	}
	n.Raw = num.String()
	return nil
}

// Float returns the parsed value, or nil when empty, non-numeric, NaN or infinite.
func (n FlexNumber) Float() *float64 {
	s := strings.TrimSpace(n.Raw)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Form is the editable part of a profile as submitted by the client.
type Form struct {
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

	TenthMarks      ScoreInput `json:"tenthMarks"`
	TwelfthMarks    ScoreInput `json:"twelfthMarks"`
	DiplomaMarks    ScoreInput `json:"diplomaMarks"`
	GraduationMarks ScoreInput `json:"graduationMarks"`

	Internships          []string `json:"internships"`
	Certifications       []string `json:"certifications"`
	Courses              []string `json:"courses"`
	CommunicationSkills  string   `json:"communicationSkills"`
	Languages            []string `json:"languages"`
	ProgrammingLanguages []string `json:"programmingLanguages"`
	Projects             []string `json:"projects"`
	Tools                []string `json:"tools"`
}

// Apply merges a sanitized form into p. Identity fields (id, email) are never
// taken from the form.
func Apply(p *types.UserProfile, f *Form) {
	p.PhotoURL = strings.TrimSpace(f.PhotoURL)
	p.FullName = strings.TrimSpace(f.FullName)
	p.Phone = strings.TrimSpace(f.Phone)
	p.Location = strings.TrimSpace(f.Location)
	p.Bio = strings.TrimSpace(f.Bio)

	p.Github = strings.TrimSpace(f.Github)
	p.Linkedin = strings.TrimSpace(f.Linkedin)
	p.Portfolio = strings.TrimSpace(f.Portfolio)
	p.Instagram = strings.TrimSpace(f.Instagram)
	p.Twitter = strings.TrimSpace(f.Twitter)
	p.AicteID = strings.TrimSpace(f.AicteID)

	p.TenthMarks = SanitizeScore(f.TenthMarks)
	p.TwelfthMarks = SanitizeScore(f.TwelfthMarks)
	p.DiplomaMarks = SanitizeScore(f.DiplomaMarks)
	p.GraduationMarks = SanitizeScore(f.GraduationMarks)

	p.Internships = CleanList(f.Internships)
	p.Certifications = CleanList(f.Certifications)
	p.Courses = CleanList(f.Courses)
	p.CommunicationSkills = strings.TrimSpace(f.CommunicationSkills)
	p.Languages = CleanList(f.Languages)
	p.ProgrammingLanguages = CleanList(f.ProgrammingLanguages)
	p.Projects = CleanList(f.Projects)
	p.Tools = CleanList(f.Tools)
}

// SanitizeScore turns a submitted score into a stored one: unusable values
// become nil and an unknown unit becomes percentage.
func SanitizeScore(in ScoreInput) types.ScoreRecord {
	unit := in.Type
	if !unit.Valid() {
		unit = types.UnitPercentage
	}
	return types.ScoreRecord{Value: in.Value.Float(), Type: unit}
}

// CleanList trims entries and drops blank ones. The result is never nil.
func CleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Append returns a copy of items with value added at the end.
func Append(items []string, value string) []string {
	out := make([]string, len(items), len(items)+1)
	copy(out, items)
	return append(out, value)
}

// Remove returns a copy of items without the entry at index.
func Remove(items []string, index int) ([]string, error) {
	if index < 0 || index >= len(items) {
		return nil, fmt.Errorf("index %d out of range [0,%d)", index, len(items))
	}
	out := make([]string, 0, len(items)-1)
	out = append(out, items[:index]...)
	return append(out, items[index+1:]...), nil
}

// SkillsSummary joins the skill-like lists into the comma-separated string
// the skill-gap analysis expects.
func SkillsSummary(p *types.UserProfile) string {
	var parts []string
	for _, list := range [][]string{p.ProgrammingLanguages, p.Tools, p.Languages, p.Courses, p.Certifications} {
		parts = append(parts, CleanList(list)...)
	}
	return strings.Join(parts, ", ")
}
