package models

func ModelsToAutoMigrate() []interface{} {
	return []interface{}{
		&Document{},
		&PersonalInfo{},
		&WorkExperience{},
		&Education{},
		&SkillCategory{},
		&SkillItem{},
		&Strength{},
		&Hobby{},
		&CustomSection{},
		&CustomItem{},
		&DraftSession{},
		&DocumentVersion{},
		&ShareLink{},
		&UsageRecord{},
	}
}
