package document

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/quillworks/quill/pkg/models"
)

// The materialize, duplicate and restore paths all need the same
// "copy this nested structure under a new owner" move. createList is that
// move, applied per collection: prep assigns identity, ownership and
// sequence order, then the row is inserted.
func createList[T any](tx *gorm.DB, items []T, prep func(*T, int)) error {
	for i := range items {
		prep(&items[i], i)
		if err := tx.Omit(clause.Associations).Create(&items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// createSections inserts the full owned section graph of doc. Child
// identities are reset so the rows are always fresh; values and sequence
// orders are taken as-is from the in-memory graph.
func createSections(tx *gorm.DB, doc *models.Document) error {
	if doc.PersonalInfo != nil {
		pi := *doc.PersonalInfo
		pi.ID = 0
		pi.DocumentID = doc.ID
		if err := tx.Create(&pi).Error; err != nil {
			return err
		}
		doc.PersonalInfo = &pi
	}

	if err := createList(tx, doc.WorkExperiences, func(e *models.WorkExperience, i int) {
		e.ID = uuid.Nil
		e.DocumentID = doc.ID
	}); err != nil {
		return err
	}

	if err := createList(tx, doc.Educations, func(e *models.Education, i int) {
		e.ID = uuid.Nil
		e.DocumentID = doc.ID
	}); err != nil {
		return err
	}

	for ci := range doc.SkillCategories {
		cat := &doc.SkillCategories[ci]
		cat.ID = uuid.Nil
		cat.DocumentID = doc.ID
		items := cat.Items
		cat.Items = nil
		if err := tx.Omit(clause.Associations).Create(cat).Error; err != nil {
			return err
		}
		if err := createList(tx, items, func(it *models.SkillItem, i int) {
			it.ID = uuid.Nil
			it.CategoryID = cat.ID
		}); err != nil {
			return err
		}
		cat.Items = items
	}

	if err := createList(tx, doc.Strengths, func(s *models.Strength, i int) {
		s.ID = uuid.Nil
		s.DocumentID = doc.ID
	}); err != nil {
		return err
	}

	if err := createList(tx, doc.Hobbies, func(h *models.Hobby, i int) {
		h.ID = uuid.Nil
		h.DocumentID = doc.ID
	}); err != nil {
		return err
	}

	for si := range doc.CustomSections {
		sec := &doc.CustomSections[si]
		sec.ID = uuid.Nil
		sec.DocumentID = doc.ID
		items := sec.Items
		sec.Items = nil
		if err := tx.Omit(clause.Associations).Create(sec).Error; err != nil {
			return err
		}
		if err := createList(tx, items, func(it *models.CustomItem, i int) {
			it.ID = uuid.Nil
			it.SectionID = sec.ID
		}); err != nil {
			return err
		}
		sec.Items = items
	}

	return nil
}

// deleteSections removes every live section row of a document except the
// personal-info singleton, which restore replaces in place.
func deleteSections(tx *gorm.DB, documentID uuid.UUID) error {
	var categoryIDs []uuid.UUID
	if err := tx.Model(&models.SkillCategory{}).
		Where("document_id = ?", documentID).
		Pluck("id", &categoryIDs).Error; err != nil {
		return err
	}
	if len(categoryIDs) > 0 {
		if err := tx.Where("category_id IN ?", categoryIDs).
			Delete(&models.SkillItem{}).Error; err != nil {
			return err
		}
	}

	var sectionIDs []uuid.UUID
	if err := tx.Model(&models.CustomSection{}).
		Where("document_id = ?", documentID).
		Pluck("id", &sectionIDs).Error; err != nil {
		return err
	}
	if len(sectionIDs) > 0 {
		if err := tx.Where("section_id IN ?", sectionIDs).
			Delete(&models.CustomItem{}).Error; err != nil {
			return err
		}
	}

	for _, model := range []interface{}{
		&models.WorkExperience{},
		&models.Education{},
		&models.SkillCategory{},
		&models.Strength{},
		&models.Hobby{},
		&models.CustomSection{},
	} {
		if err := tx.Where("document_id = ?", documentID).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

// ReplaceSectionsIn destructively rebuilds the section graph of a document
// inside the caller's transaction: the personal-info singleton is updated
// in place, all other live section rows are deleted and recreated from the
// in-memory graph. Used by version restore.
func ReplaceSectionsIn(tx *gorm.DB, doc *models.Document) error {
	if doc.PersonalInfo != nil {
		pi := *doc.PersonalInfo
		pi.DocumentID = doc.ID

		var existing models.PersonalInfo
		err := tx.Where("document_id = ?", doc.ID).First(&existing).Error
		switch {
		case err == nil:
			pi.ID = existing.ID
			if err := tx.Save(&pi).Error; err != nil {
				return err
			}
		case err == gorm.ErrRecordNotFound:
			pi.ID = 0
			if err := tx.Create(&pi).Error; err != nil {
				return err
			}
		default:
			return err
		}
		doc.PersonalInfo = &pi
	}

	if err := deleteSections(tx, doc.ID); err != nil {
		return err
	}

	// Temporarily detach personal info so createSections does not insert
	// a second singleton row.
	pi := doc.PersonalInfo
	doc.PersonalInfo = nil
	err := createSections(tx, doc)
	doc.PersonalInfo = pi
	return err
}

// cloneGraph returns a value-only deep copy of a loaded document graph with
// all identities cleared. Nothing mutable is shared with the source.
func cloneGraph(src *models.Document) *models.Document {
	dst := &models.Document{
		OwnerID:         src.OwnerID,
		Title:           src.Title,
		TemplateID:      src.TemplateID,
		Language:        src.Language,
		TargetRole:      src.TargetRole,
		SectionSettings: cloneJSON(src.SectionSettings),
		AIGenerated:     src.AIGenerated,
		AIModel:         src.AIModel,
		AIPrompt:        cloneJSON(src.AIPrompt),
		Status:          src.Status,
	}

	if src.PersonalInfo != nil {
		pi := *src.PersonalInfo
		pi.ID = 0
		pi.DocumentID = uuid.Nil
		dst.PersonalInfo = &pi
	}

	dst.WorkExperiences = make([]models.WorkExperience, len(src.WorkExperiences))
	for i, e := range src.WorkExperiences {
		e.ID = uuid.Nil
		e.DocumentID = uuid.Nil
		e.Bullets = cloneJSON(e.Bullets)
		dst.WorkExperiences[i] = e
	}

	dst.Educations = append([]models.Education(nil), src.Educations...)
	for i := range dst.Educations {
		dst.Educations[i].ID = uuid.Nil
		dst.Educations[i].DocumentID = uuid.Nil
	}

	dst.SkillCategories = make([]models.SkillCategory, len(src.SkillCategories))
	for i, c := range src.SkillCategories {
		c.ID = uuid.Nil
		c.DocumentID = uuid.Nil
		items := make([]models.SkillItem, len(c.Items))
		for j, it := range c.Items {
			it.ID = uuid.Nil
			it.CategoryID = uuid.Nil
			items[j] = it
		}
		c.Items = items
		dst.SkillCategories[i] = c
	}

	dst.Strengths = append([]models.Strength(nil), src.Strengths...)
	for i := range dst.Strengths {
		dst.Strengths[i].ID = uuid.Nil
		dst.Strengths[i].DocumentID = uuid.Nil
	}

	dst.Hobbies = append([]models.Hobby(nil), src.Hobbies...)
	for i := range dst.Hobbies {
		dst.Hobbies[i].ID = uuid.Nil
		dst.Hobbies[i].DocumentID = uuid.Nil
	}

	dst.CustomSections = make([]models.CustomSection, len(src.CustomSections))
	for i, sec := range src.CustomSections {
		sec.ID = uuid.Nil
		sec.DocumentID = uuid.Nil
		items := make([]models.CustomItem, len(sec.Items))
		for j, it := range sec.Items {
			it.ID = uuid.Nil
			it.SectionID = uuid.Nil
			items[j] = it
		}
		sec.Items = items
		dst.CustomSections[i] = sec
	}

	return dst
}

func cloneJSON(j models.JSON) models.JSON {
	if j == nil {
		return nil
	}
	return models.JSON(append([]byte(nil), j...))
}
