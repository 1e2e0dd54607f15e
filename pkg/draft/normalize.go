package draft

import (
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/quillworks/quill/pkg/models"
)

// currentMarkers are end-date values the collaborator uses to mean "still
// ongoing".
var currentMarkers = map[string]bool{
	"":        true,
	"present": true,
	"current": true,
}

// normalize enforces the identity and structure rules on a generated
// payload: verified principal facts override generated values, ongoing
// entries are marked consistently, and every list is non-nil so consumers
// never branch on missing sections.
func normalize(p *models.DraftPayload, input Input, facts PrincipalFacts) {
	if name := strings.TrimSpace(input.Name); name != "" {
		first, last := splitName(name)
		p.PersonalInfo.FirstName = first
		p.PersonalInfo.LastName = last
	} else {
		if facts.FirstName != "" {
			p.PersonalInfo.FirstName = facts.FirstName
		}
		if facts.LastName != "" {
			p.PersonalInfo.LastName = facts.LastName
		}
	}
	if facts.Email != "" {
		p.PersonalInfo.Email = facts.Email
	}
	if input.UseSocialPhoto && facts.PhotoURL != "" {
		p.PersonalInfo.PhotoURL = facts.PhotoURL
	}

	for i := range p.WorkExperience {
		exp := &p.WorkExperience[i]
		if currentMarkers[strings.ToLower(strings.TrimSpace(exp.EndDate))] {
			exp.Current = true
			exp.EndDate = ""
		}
		if exp.Bullets == nil {
			exp.Bullets = []string{}
		}
	}
	for i := range p.Education {
		edu := &p.Education[i]
		if edu.Current {
			edu.EndDate = ""
		}
	}
	for i := range p.SkillCategories {
		if p.SkillCategories[i].Items == nil {
			p.SkillCategories[i].Items = []models.DraftSkillItem{}
		}
	}
	for i := range p.CustomSections {
		sec := &p.CustomSections[i]
		if sec.Items == nil {
			sec.Items = []models.DraftCustomItem{}
		}
		for j := range sec.Items {
			if sec.Items[j].Current {
				sec.Items[j].EndDate = ""
			}
		}
	}

	if p.WorkExperience == nil {
		p.WorkExperience = []models.DraftExperience{}
	}
	if p.Education == nil {
		p.Education = []models.DraftEducation{}
	}
	if p.SkillCategories == nil {
		p.SkillCategories = []models.DraftSkillCategory{}
	}
	if p.Strengths == nil {
		p.Strengths = []string{}
	}
	if p.Hobbies == nil {
		p.Hobbies = []string{}
	}
	if p.CustomSections == nil {
		p.CustomSections = []models.DraftCustomSection{}
	}
}

// checkStructure verifies a decoded payload carries enough substance to be
// worth persisting. A syntactically valid but empty object is as useless
// as unparseable output and gets the same retry treatment.
func checkStructure(p models.DraftPayload) error {
	var result *multierror.Error
	if p.PersonalInfo.FirstName == "" && p.PersonalInfo.LastName == "" &&
		p.PersonalInfo.Headline == "" {
		result = multierror.Append(result, errMissingField("personal_info"))
	}
	if len(p.WorkExperience) == 0 && len(p.Education) == 0 &&
		len(p.SkillCategories) == 0 && len(p.CustomSections) == 0 {
		result = multierror.Append(result, errMissingField("content sections"))
	}
	return result.ErrorOrNil()
}

type errMissingField string

func (e errMissingField) Error() string {
	return "generated payload is missing " + string(e)
}

// splitName breaks a display name on the first space; a single token
// becomes the first name.
func splitName(name string) (first, last string) {
	parts := strings.SplitN(name, " ", 2)
	first = parts[0]
	if len(parts) == 2 {
		last = strings.TrimSpace(parts[1])
	}
	return first, last
}
