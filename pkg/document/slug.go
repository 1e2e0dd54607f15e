package document

import (
	"fmt"
	"strings"
	"unicode"

	"gorm.io/gorm"

	"github.com/quillworks/quill/pkg/models"
)

// slugify lowercases the title and collapses every non-alphanumeric run
// into a single hyphen.
func slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "document"
	}
	return slug
}

// nextSlug returns the slugified title, suffixed with a counter when the
// base slug is taken. Soft-deleted rows count as taken because the slug
// column is unique across them too.
func nextSlug(tx *gorm.DB, title string) string {
	base := slugify(title)
	slug := base
	for counter := 1; ; counter++ {
		var count int64
		if err := tx.Unscoped().Model(&models.Document{}).
			Where("slug = ?", slug).
			Count(&count).Error; err != nil || count == 0 {
			return slug
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}
