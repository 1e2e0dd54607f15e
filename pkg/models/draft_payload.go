package models

// DraftPayload is the canonical document-graph shape produced by draft
// generation and consumed by materialization. It is the wire format stored
// in DraftSession.DraftPayload, deliberately free of row identities.
//
// Every structurally-expected list is always present after normalization;
// downstream consumers never see a missing list.
type DraftPayload struct {
	PersonalInfo    DraftPersonalInfo    `json:"personal_info"`
	WorkExperience  []DraftExperience    `json:"work_experience"`
	Education       []DraftEducation     `json:"education"`
	SkillCategories []DraftSkillCategory `json:"skill_categories"`
	Strengths       []string             `json:"strengths"`
	Hobbies         []string             `json:"hobbies"`
	CustomSections  []DraftCustomSection `json:"custom_sections"`
}

// DraftPersonalInfo mirrors the personal-info singleton.
type DraftPersonalInfo struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Headline    string `json:"headline"`
	Summary     string `json:"summary"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	City        string `json:"city"`
	Country     string `json:"country"`
	Website     string `json:"website"`
	LinkedInURL string `json:"linkedin_url"`
	GitHubURL   string `json:"github_url"`
	PhotoURL    string `json:"photo_url"`
}

// DraftExperience is one proposed employment entry.
type DraftExperience struct {
	PositionTitle string   `json:"position_title"`
	CompanyName   string   `json:"company_name"`
	City          string   `json:"city"`
	Country       string   `json:"country"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	Current       bool     `json:"is_current"`
	Description   string   `json:"description"`
	Bullets       []string `json:"bullets"`
	Order         *int     `json:"order,omitempty"`
}

// DraftEducation is one proposed education entry.
type DraftEducation struct {
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"field_of_study"`
	SchoolName   string `json:"school_name"`
	City         string `json:"city"`
	Country      string `json:"country"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Current      bool   `json:"is_current"`
	Description  string `json:"description"`
	Order        *int   `json:"order,omitempty"`
}

// DraftSkillCategory is a proposed skill group with nested items.
type DraftSkillCategory struct {
	Name  string           `json:"name"`
	Items []DraftSkillItem `json:"items"`
	Order *int             `json:"order,omitempty"`
}

// DraftSkillItem is one proposed skill.
type DraftSkillItem struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

// DraftCustomSection is a proposed typed section with nested items.
type DraftCustomSection struct {
	Type  string            `json:"type"`
	Title string            `json:"title"`
	Items []DraftCustomItem `json:"items"`
	Order *int              `json:"order,omitempty"`
}

// DraftCustomItem is one proposed entry inside a custom section.
type DraftCustomItem struct {
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Meta        string `json:"meta"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Current     bool   `json:"is_current"`
}
