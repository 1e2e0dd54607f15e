package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Skill proficiency levels.
type SkillLevel string

const (
	SkillLevelBeginner     SkillLevel = "beginner"
	SkillLevelIntermediate SkillLevel = "intermediate"
	SkillLevelProfessional SkillLevel = "professional"
	SkillLevelExpert       SkillLevel = "expert"
)

// Custom section types.
type CustomSectionType string

const (
	CustomSectionAchievements CustomSectionType = "achievements"
	CustomSectionProjects     CustomSectionType = "projects"
	CustomSectionAwards       CustomSectionType = "awards"
	CustomSectionCertificates CustomSectionType = "certificates"
	CustomSectionLanguages    CustomSectionType = "languages"
	CustomSectionPublications CustomSectionType = "publications"
	CustomSectionCustom       CustomSectionType = "custom"
)

// WorkExperience is one employment entry on a document.
// Dates are stored as strings (YYYY-MM or YYYY) so AI-generated drafts round
// trip without lossy parsing; an empty end date with Current=true means the
// position is ongoing.
type WorkExperience struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`

	PositionTitle string `gorm:"type:varchar(200);not null" json:"positionTitle"`
	CompanyName   string `gorm:"type:varchar(200);not null" json:"companyName"`
	City          string `gorm:"type:varchar(100)" json:"city"`
	Country       string `gorm:"type:varchar(100)" json:"country"`

	StartDate string `gorm:"type:varchar(10)" json:"startDate"`
	EndDate   string `gorm:"type:varchar(10)" json:"endDate"`
	Current   bool   `json:"current"`

	Description string `gorm:"type:text" json:"description"`
	Bullets     JSON   `gorm:"type:jsonb" json:"bullets"`

	Order int `gorm:"column:sort_order;not null;default:0" json:"order"`
}

// TableName specifies the table name.
func (WorkExperience) TableName() string {
	return "work_experiences"
}

// BeforeCreate assigns an ID if not provided.
func (e *WorkExperience) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// Education is one education entry on a document.
type Education struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`

	Degree       string `gorm:"type:varchar(200);not null" json:"degree"`
	FieldOfStudy string `gorm:"type:varchar(200)" json:"fieldOfStudy"`
	SchoolName   string `gorm:"type:varchar(200);not null" json:"schoolName"`
	City         string `gorm:"type:varchar(100)" json:"city"`
	Country      string `gorm:"type:varchar(100)" json:"country"`

	StartDate string `gorm:"type:varchar(10)" json:"startDate"`
	EndDate   string `gorm:"type:varchar(10)" json:"endDate"`
	Current   bool   `json:"current"`

	Description string `gorm:"type:text" json:"description"`

	Order int `gorm:"column:sort_order;not null;default:0" json:"order"`
}

// TableName specifies the table name.
func (Education) TableName() string {
	return "educations"
}

// BeforeCreate assigns an ID if not provided.
func (e *Education) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// SkillCategory groups skill items under a label (e.g. "Languages").
type SkillCategory struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`

	Name  string      `gorm:"type:varchar(100);not null" json:"name"`
	Order int         `gorm:"column:sort_order;not null;default:0" json:"order"`
	Items []SkillItem `gorm:"foreignKey:CategoryID" json:"items"`
}

// TableName specifies the table name.
func (SkillCategory) TableName() string {
	return "skill_categories"
}

// BeforeCreate assigns an ID if not provided.
func (c *SkillCategory) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// SkillItem is a single skill with a proficiency level.
type SkillItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CategoryID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`

	Name  string     `gorm:"type:varchar(100);not null" json:"name"`
	Level SkillLevel `gorm:"type:varchar(20);not null;default:'intermediate'" json:"level"`
	Order int        `gorm:"column:sort_order;not null;default:0" json:"order"`
}

// TableName specifies the table name.
func (SkillItem) TableName() string {
	return "skill_items"
}

// BeforeCreate assigns an ID if not provided.
func (s *SkillItem) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Strength is a short labeled entry in the strengths list.
type Strength struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`

	Label string `gorm:"type:varchar(100);not null" json:"label"`
	Order int    `gorm:"column:sort_order;not null;default:0" json:"order"`
}

// TableName specifies the table name.
func (Strength) TableName() string {
	return "strengths"
}

// BeforeCreate assigns an ID if not provided.
func (s *Strength) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Hobby is a short labeled entry in the interests list.
type Hobby struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`

	Label string `gorm:"type:varchar(100);not null" json:"label"`
	Order int    `gorm:"column:sort_order;not null;default:0" json:"order"`
}

// TableName specifies the table name.
func (Hobby) TableName() string {
	return "hobbies"
}

// BeforeCreate assigns an ID if not provided.
func (h *Hobby) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// CustomSection is a typed section with nested items (projects,
// certificates and similar).
type CustomSection struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`

	Type  CustomSectionType `gorm:"type:varchar(20);not null;default:'custom'" json:"type"`
	Title string            `gorm:"type:varchar(200);not null" json:"title"`
	Order int               `gorm:"column:sort_order;not null;default:0" json:"order"`
	Items []CustomItem      `gorm:"foreignKey:SectionID" json:"items"`
}

// TableName specifies the table name.
func (CustomSection) TableName() string {
	return "custom_sections"
}

// BeforeCreate assigns an ID if not provided.
func (c *CustomSection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CustomItem is one entry inside a custom section.
type CustomItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SectionID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`

	Title       string `gorm:"type:varchar(200);not null" json:"title"`
	Subtitle    string `gorm:"type:varchar(200)" json:"subtitle"`
	Meta        string `gorm:"type:varchar(200)" json:"meta"`
	Description string `gorm:"type:text" json:"description"`

	StartDate string `gorm:"type:varchar(10)" json:"startDate"`
	EndDate   string `gorm:"type:varchar(10)" json:"endDate"`
	Current   bool   `json:"current"`

	Order int `gorm:"column:sort_order;not null;default:0" json:"order"`
}

// TableName specifies the table name.
func (CustomItem) TableName() string {
	return "custom_items"
}

// BeforeCreate assigns an ID if not provided.
func (i *CustomItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
