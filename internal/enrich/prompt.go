package enrich

import (
	"fmt"
	"strings"

	"profileimport/internal/model"
)

func summaryPrompt(profile *model.CanonicalProfile) string {
	var b strings.Builder
	b.WriteString("Write a concise professional summary (2-3 sentences, first person, no preamble) for the following person.\n\n")
	fmt.Fprintf(&b, "Name: %s\n", profile.PersonalInfo.FullName)
	if profile.PersonalInfo.Headline != "" {
		fmt.Fprintf(&b, "Headline: %s\n", profile.PersonalInfo.Headline)
	}
	for i, exp := range profile.Experience {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&b, "Experience: %s at %s (%s - %s)\n", exp.Title, exp.Company, exp.StartDate, exp.EndDate)
	}
	if len(profile.Skills) > 0 {
		names := make([]string, 0, len(profile.Skills))
		for _, sk := range profile.Skills {
			names = append(names, sk.Name)
		}
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(names, ", "))
	}
	return b.String()
}

func skillPrompt(profile *model.CanonicalProfile, skill *model.Skill) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write one sentence (no preamble) describing practical proficiency with %q", skill.Name)
	if skill.Level != "" {
		fmt.Fprintf(&b, " at a %s level", skill.Level)
	}
	b.WriteString(", suitable for a CV skill section.\n")
	if len(profile.Experience) > 0 {
		fmt.Fprintf(&b, "Context: the person most recently worked as %s at %s.\n", profile.Experience[0].Title, profile.Experience[0].Company)
	}
	return b.String()
}
