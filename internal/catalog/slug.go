package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"eventdesk.io/eventdesk/internal/repository"
)

const slugMaxAttempts = 100

// Slugify derives a URL slug from a title: lowercased, non-alphanumeric
// characters stripped, whitespace runs become single hyphens.
func Slugify(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	fields := strings.FieldsFunc(b.String(), func(r rune) bool {
		return r == ' ' || r == '-'
	})
	return strings.Join(fields, "-")
}

// uniqueSlug resolves slug collisions by appending a numeric suffix, retrying
// up to slugMaxAttempts, then falling back to a timestamp suffix. Retries are
// internal and never surface to the caller.
func uniqueSlug(ctx context.Context, events repository.EventRepository, title, excludeID string) (string, error) {
	base := Slugify(title)
	for attempt := 0; attempt < slugMaxAttempts; attempt++ {
		slug := base
		if attempt > 0 {
			slug = fmt.Sprintf("%s-%d", base, attempt)
		}
		taken, err := events.SlugTaken(ctx, slug, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
	}
	return fmt.Sprintf("%s-%d", base, time.Now().UnixMilli()), nil
}
