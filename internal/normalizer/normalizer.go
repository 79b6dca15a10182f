package normalizer

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"profileimport/internal/model"
	"profileimport/internal/provider"

	"github.com/google/uuid"
)

// ErrMissingIdentity marks a payload that parsed but carries no resolvable
// name under any alias. This is the single authoritative "is this a real
// profile" check; everything else is a soft warning.
var ErrMissingIdentity = errors.New("profile has no resolvable name")

// Normalizer maps arbitrary provider payloads into the canonical profile.
type Normalizer struct {
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

func New(logger *slog.Logger) *Normalizer {
	return &Normalizer{
		logger: logger.With("component", "normalizer"),
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

// Normalize resolves field aliases, infers dates, assigns synthetic entry ids
// and validates minimal completeness. It returns soft warnings alongside the
// profile; only a missing identity is fatal.
func (n *Normalizer) Normalize(raw provider.RawProfile) (*model.CanonicalProfile, []string, error) {
	if raw == nil {
		return nil, nil, ErrMissingIdentity
	}

	info, err := n.personalInfo(raw)
	if err != nil {
		return nil, nil, err
	}

	profile := &model.CanonicalProfile{
		PersonalInfo:        info,
		Experience:          n.experience(raw),
		Education:           n.education(raw),
		Skills:              n.skills(raw),
		Languages:           n.languages(raw),
		Projects:            n.projects(raw),
		Certifications:      n.certifications(raw),
		VolunteerExperience: n.volunteer(raw),
		Publications:        n.publications(raw),
		Courses:             n.courses(raw),
		Organizations:       n.organizations(raw),
	}

	var warnings []string
	if len(profile.Experience) == 0 {
		warnings = append(warnings, "profile has no experience entries")
	}
	if len(profile.Education) == 0 {
		warnings = append(warnings, "profile has no education entries")
	}
	warnings = append(warnings, schemaWarnings(profile)...)
	return profile, warnings, nil
}

func (n *Normalizer) personalInfo(raw provider.RawProfile) (model.PersonalInfo, error) {
	first := stringField(raw, firstNameAliases...)
	last := stringField(raw, lastNameAliases...)
	full := stringField(raw, fullNameAliases...)

	switch {
	case first != "" && full == "":
		full = strings.TrimSpace(first + " " + last)
	case first == "" && full != "":
		first, last = splitFullName(full)
	}
	if full == "" {
		return model.PersonalInfo{}, ErrMissingIdentity
	}

	return model.PersonalInfo{
		FirstName: first,
		LastName:  last,
		FullName:  full,
		Headline:  stringField(raw, headlineAliases...),
		Summary:   stringField(raw, summaryAliases...),
		Location:  stringField(raw, locationAliases...),
		Email:     stringField(raw, emailAliases...),
		Phone:     stringField(raw, phoneAliases...),
		Website:   stringField(raw, websiteAliases...),
	}, nil
}

// splitFullName splits at the first whitespace boundary: the first token is
// the first name, the rest is the last name.
func splitFullName(full string) (string, string) {
	parts := strings.SplitN(strings.TrimSpace(full), " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.TrimSpace(parts[1])
}

func (n *Normalizer) experience(raw provider.RawProfile) []model.Experience {
	entries := listField(raw, experienceSectionAliases...)
	out := make([]model.Experience, 0, len(entries))
	for _, e := range entries {
		exp := model.Experience{
			ID:          n.newID(),
			Title:       stringField(e, jobTitleAliases...),
			Company:     stringField(e, companyAliases...),
			Location:    stringField(e, locationAliases...),
			Description: stringField(e, descriptionAliases...),
			DateRange:   inferDateRange(e, n.now()),
		}
		if exp.Title == "" && exp.Company == "" {
			continue
		}
		out = append(out, exp)
	}
	return out
}

func (n *Normalizer) education(raw provider.RawProfile) []model.Education {
	entries := listField(raw, educationSectionAliases...)
	out := make([]model.Education, 0, len(entries))
	for _, e := range entries {
		edu := model.Education{
			ID:        n.newID(),
			School:    stringField(e, schoolAliases...),
			Degree:    stringField(e, degreeAliases...),
			Field:     stringField(e, studyFieldAliases...),
			DateRange: inferDateRange(e, n.now()),
		}
		if edu.School == "" && edu.Degree == "" {
			continue
		}
		out = append(out, edu)
	}
	return out
}

func (n *Normalizer) skills(raw provider.RawProfile) []model.Skill {
	entries := listField(raw, skillsSectionAliases...)
	out := make([]model.Skill, 0, len(entries))
	for _, e := range entries {
		name := stringField(e, skillNameAliases...)
		if name == "" {
			continue
		}
		out = append(out, model.Skill{
			ID:    n.newID(),
			Name:  name,
			Level: stringField(e, skillLevelAliases...),
		})
	}
	return out
}

func (n *Normalizer) languages(raw provider.RawProfile) []model.Language {
	entries := listField(raw, languagesSectionAliases...)
	out := make([]model.Language, 0, len(entries))
	for _, e := range entries {
		name := stringField(e, languageNameAliases...)
		if name == "" {
			continue
		}
		out = append(out, model.Language{
			ID:          n.newID(),
			Name:        name,
			Proficiency: stringField(e, proficiencyAliases...),
		})
	}
	return out
}

func (n *Normalizer) projects(raw provider.RawProfile) []model.Project {
	entries := listField(raw, projectsSectionAliases...)
	out := make([]model.Project, 0, len(entries))
	for _, e := range entries {
		name := stringField(e, projectNameAliases...)
		if name == "" {
			continue
		}
		out = append(out, model.Project{
			ID:          n.newID(),
			Name:        name,
			Description: stringField(e, descriptionAliases...),
			URL:         stringField(e, urlAliases...),
			DateRange:   inferDateRange(e, n.now()),
		})
	}
	return out
}

func (n *Normalizer) certifications(raw provider.RawProfile) []model.Certification {
	entries := listField(raw, certificationsSectionAliases...)
	out := make([]model.Certification, 0, len(entries))
	for _, e := range entries {
		name := stringField(e, projectNameAliases...)
		if name == "" {
			continue
		}
		out = append(out, model.Certification{
			ID:     n.newID(),
			Name:   name,
			Issuer: stringField(e, issuerAliases...),
			Date:   stringField(e, dateAliases...),
			URL:    stringField(e, urlAliases...),
		})
	}
	return out
}

func (n *Normalizer) volunteer(raw provider.RawProfile) []model.VolunteerExperience {
	entries := listField(raw, volunteerSectionAliases...)
	out := make([]model.VolunteerExperience, 0, len(entries))
	for _, e := range entries {
		v := model.VolunteerExperience{
			ID:           n.newID(),
			Role:         stringField(e, volunteerRoleAliases...),
			Organization: stringField(e, companyAliases...),
			Description:  stringField(e, descriptionAliases...),
			DateRange:    inferDateRange(e, n.now()),
		}
		if v.Role == "" && v.Organization == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

func (n *Normalizer) publications(raw provider.RawProfile) []model.Publication {
	entries := listField(raw, publicationsSectionAliases...)
	out := make([]model.Publication, 0, len(entries))
	for _, e := range entries {
		title := stringField(e, projectNameAliases...)
		if title == "" {
			continue
		}
		out = append(out, model.Publication{
			ID:        n.newID(),
			Title:     title,
			Publisher: stringField(e, publisherAliases...),
			Date:      stringField(e, dateAliases...),
			URL:       stringField(e, urlAliases...),
		})
	}
	return out
}

func (n *Normalizer) courses(raw provider.RawProfile) []model.Course {
	entries := listField(raw, coursesSectionAliases...)
	out := make([]model.Course, 0, len(entries))
	for _, e := range entries {
		name := stringField(e, projectNameAliases...)
		if name == "" {
			continue
		}
		out = append(out, model.Course{
			ID:       n.newID(),
			Name:     name,
			Provider: stringField(e, courseProviderAliases...),
		})
	}
	return out
}

func (n *Normalizer) organizations(raw provider.RawProfile) []model.Organization {
	entries := listField(raw, organizationsSectionAliases...)
	out := make([]model.Organization, 0, len(entries))
	for _, e := range entries {
		name := stringField(e, projectNameAliases...)
		if name == "" {
			continue
		}
		out = append(out, model.Organization{
			ID:   n.newID(),
			Name: name,
			Role: stringField(e, orgRoleAliases...),
		})
	}
	return out
}

// stringField resolves the first alias carrying a non-empty string value.
func stringField(m map[string]interface{}, aliases ...string) string {
	for _, alias := range aliases {
		if v, ok := m[alias]; ok {
			if s, ok := v.(string); ok {
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return ""
}

// listField resolves the first alias carrying a non-empty list. String
// entries are wrapped as {"name": entry} so bare skill/language lists map
// like object lists.
func listField(m map[string]interface{}, aliases ...string) []map[string]interface{} {
	for _, alias := range aliases {
		v, ok := m[alias]
		if !ok {
			continue
		}
		items, ok := v.([]interface{})
		if !ok {
			continue
		}
		out := make([]map[string]interface{}, 0, len(items))
		for _, item := range items {
			switch it := item.(type) {
			case map[string]interface{}:
				out = append(out, it)
			case string:
				if strings.TrimSpace(it) != "" {
					out = append(out, map[string]interface{}{"name": it})
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}
