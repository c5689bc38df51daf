package utils

import (
	"strconv"
	"strings"
	"unicode"

	"gorm.io/gorm"
)

// Slugify lowercases s and joins its letter and digit runs with hyphens.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// UniqueSlug slugifies title and appends -2, -3, ... until no row of model uses it.
func UniqueSlug(db *gorm.DB, model interface{}, title string) (string, error) {
	base := Slugify(title)
	if base == "" {
		base = "item"
	}
	slug := base
	for i := 2; ; i++ {
		var count int64
		if err := db.Unscoped().Model(model).Where("slug = ?", slug).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = base + "-" + strconv.Itoa(i)
	}
}
