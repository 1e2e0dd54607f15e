package document

import (
	"encoding/json"

	"github.com/quillworks/quill/pkg/models"
)

// PopulateFromPayload fills doc's section slices from a normalized draft
// payload. Each top-level list keeps its input order unless an entry
// carries an explicit order override. Version restore reuses this: a
// snapshot stores the same identity-free payload shape.
func PopulateFromPayload(doc *models.Document, payload models.DraftPayload) {
	pi := payload.PersonalInfo
	doc.PersonalInfo = &models.PersonalInfo{
		FirstName:   pi.FirstName,
		LastName:    pi.LastName,
		Headline:    pi.Headline,
		Summary:     pi.Summary,
		Email:       pi.Email,
		Phone:       pi.Phone,
		City:        pi.City,
		Country:     pi.Country,
		Website:     pi.Website,
		LinkedInURL: pi.LinkedInURL,
		GitHubURL:   pi.GitHubURL,
		PhotoURL:    pi.PhotoURL,
	}

	doc.WorkExperiences = make([]models.WorkExperience, 0, len(payload.WorkExperience))
	for i, exp := range payload.WorkExperience {
		doc.WorkExperiences = append(doc.WorkExperiences, models.WorkExperience{
			PositionTitle: exp.PositionTitle,
			CompanyName:   exp.CompanyName,
			City:          exp.City,
			Country:       exp.Country,
			StartDate:     exp.StartDate,
			EndDate:       exp.EndDate,
			Current:       exp.Current,
			Description:   exp.Description,
			Bullets:       marshalStrings(exp.Bullets),
			Order:         orderOr(exp.Order, i),
		})
	}

	doc.Educations = make([]models.Education, 0, len(payload.Education))
	for i, edu := range payload.Education {
		doc.Educations = append(doc.Educations, models.Education{
			Degree:       edu.Degree,
			FieldOfStudy: edu.FieldOfStudy,
			SchoolName:   edu.SchoolName,
			City:         edu.City,
			Country:      edu.Country,
			StartDate:    edu.StartDate,
			EndDate:      edu.EndDate,
			Current:      edu.Current,
			Description:  edu.Description,
			Order:        orderOr(edu.Order, i),
		})
	}

	doc.SkillCategories = make([]models.SkillCategory, 0, len(payload.SkillCategories))
	for i, cat := range payload.SkillCategories {
		items := make([]models.SkillItem, 0, len(cat.Items))
		for j, item := range cat.Items {
			items = append(items, models.SkillItem{
				Name:  item.Name,
				Level: skillLevelOrDefault(item.Level),
				Order: j,
			})
		}
		doc.SkillCategories = append(doc.SkillCategories, models.SkillCategory{
			Name:  cat.Name,
			Order: orderOr(cat.Order, i),
			Items: items,
		})
	}

	doc.Strengths = make([]models.Strength, 0, len(payload.Strengths))
	for i, label := range payload.Strengths {
		doc.Strengths = append(doc.Strengths, models.Strength{Label: label, Order: i})
	}

	doc.Hobbies = make([]models.Hobby, 0, len(payload.Hobbies))
	for i, label := range payload.Hobbies {
		doc.Hobbies = append(doc.Hobbies, models.Hobby{Label: label, Order: i})
	}

	doc.CustomSections = make([]models.CustomSection, 0, len(payload.CustomSections))
	for i, sec := range payload.CustomSections {
		items := make([]models.CustomItem, 0, len(sec.Items))
		for j, item := range sec.Items {
			items = append(items, models.CustomItem{
				Title:       item.Title,
				Subtitle:    item.Subtitle,
				Meta:        item.Meta,
				Description: item.Description,
				StartDate:   item.StartDate,
				EndDate:     item.EndDate,
				Current:     item.Current,
				Order:       j,
			})
		}
		doc.CustomSections = append(doc.CustomSections, models.CustomSection{
			Type:  customTypeOrDefault(sec.Type),
			Title: sec.Title,
			Order: orderOr(sec.Order, i),
			Items: items,
		})
	}
}

// PayloadFromGraph converts a loaded section graph back into the
// identity-free payload shape. Used when capturing version snapshots so
// the stored blob never references live rows.
func PayloadFromGraph(doc *models.Document) models.DraftPayload {
	var payload models.DraftPayload

	if pi := doc.PersonalInfo; pi != nil {
		payload.PersonalInfo = models.DraftPersonalInfo{
			FirstName:   pi.FirstName,
			LastName:    pi.LastName,
			Headline:    pi.Headline,
			Summary:     pi.Summary,
			Email:       pi.Email,
			Phone:       pi.Phone,
			City:        pi.City,
			Country:     pi.Country,
			Website:     pi.Website,
			LinkedInURL: pi.LinkedInURL,
			GitHubURL:   pi.GitHubURL,
			PhotoURL:    pi.PhotoURL,
		}
	}

	payload.WorkExperience = make([]models.DraftExperience, 0, len(doc.WorkExperiences))
	for _, exp := range doc.WorkExperiences {
		order := exp.Order
		payload.WorkExperience = append(payload.WorkExperience, models.DraftExperience{
			PositionTitle: exp.PositionTitle,
			CompanyName:   exp.CompanyName,
			City:          exp.City,
			Country:       exp.Country,
			StartDate:     exp.StartDate,
			EndDate:       exp.EndDate,
			Current:       exp.Current,
			Description:   exp.Description,
			Bullets:       unmarshalStrings(exp.Bullets),
			Order:         &order,
		})
	}

	payload.Education = make([]models.DraftEducation, 0, len(doc.Educations))
	for _, edu := range doc.Educations {
		order := edu.Order
		payload.Education = append(payload.Education, models.DraftEducation{
			Degree:       edu.Degree,
			FieldOfStudy: edu.FieldOfStudy,
			SchoolName:   edu.SchoolName,
			City:         edu.City,
			Country:      edu.Country,
			StartDate:    edu.StartDate,
			EndDate:      edu.EndDate,
			Current:      edu.Current,
			Description:  edu.Description,
			Order:        &order,
		})
	}

	payload.SkillCategories = make([]models.DraftSkillCategory, 0, len(doc.SkillCategories))
	for _, cat := range doc.SkillCategories {
		order := cat.Order
		items := make([]models.DraftSkillItem, 0, len(cat.Items))
		for _, item := range cat.Items {
			items = append(items, models.DraftSkillItem{
				Name:  item.Name,
				Level: string(item.Level),
			})
		}
		payload.SkillCategories = append(payload.SkillCategories, models.DraftSkillCategory{
			Name:  cat.Name,
			Items: items,
			Order: &order,
		})
	}

	payload.Strengths = make([]string, 0, len(doc.Strengths))
	for _, s := range doc.Strengths {
		payload.Strengths = append(payload.Strengths, s.Label)
	}

	payload.Hobbies = make([]string, 0, len(doc.Hobbies))
	for _, h := range doc.Hobbies {
		payload.Hobbies = append(payload.Hobbies, h.Label)
	}

	payload.CustomSections = make([]models.DraftCustomSection, 0, len(doc.CustomSections))
	for _, sec := range doc.CustomSections {
		order := sec.Order
		items := make([]models.DraftCustomItem, 0, len(sec.Items))
		for _, item := range sec.Items {
			items = append(items, models.DraftCustomItem{
				Title:       item.Title,
				Subtitle:    item.Subtitle,
				Meta:        item.Meta,
				Description: item.Description,
				StartDate:   item.StartDate,
				EndDate:     item.EndDate,
				Current:     item.Current,
			})
		}
		payload.CustomSections = append(payload.CustomSections, models.DraftCustomSection{
			Type:  string(sec.Type),
			Title: sec.Title,
			Items: items,
			Order: &order,
		})
	}

	return payload
}

func orderOr(override *int, fallback int) int {
	if override != nil {
		return *override
	}
	return fallback
}

func unmarshalStrings(raw models.JSON) []string {
	out := []string{}
	if len(raw) == 0 {
		return out
	}
	_ = json.Unmarshal(raw, &out)
	return out
}

func marshalStrings(in []string) models.JSON {
	if in == nil {
		in = []string{}
	}
	raw, err := json.Marshal(in)
	if err != nil {
		return models.JSON("[]")
	}
	return models.JSON(raw)
}

func skillLevelOrDefault(level string) models.SkillLevel {
	switch models.SkillLevel(level) {
	case models.SkillLevelBeginner, models.SkillLevelIntermediate,
		models.SkillLevelProfessional, models.SkillLevelExpert:
		return models.SkillLevel(level)
	default:
		return models.SkillLevelIntermediate
	}
}

func customTypeOrDefault(t string) models.CustomSectionType {
	switch models.CustomSectionType(t) {
	case models.CustomSectionAchievements, models.CustomSectionProjects,
		models.CustomSectionAwards, models.CustomSectionCertificates,
		models.CustomSectionLanguages, models.CustomSectionPublications:
		return models.CustomSectionType(t)
	default:
		return models.CustomSectionCustom
	}
}
