package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	maxSlugLength   = 80
	maxSlugAttempts = 99
)

// ErrSlugExhausted means the allocator ran out of suffixed candidates.
// Not expected under normal load; guards against collision storms.
var ErrSlugExhausted = errors.New("could not generate unique slug")

// Slugify derives a URL-safe identifier from a title: lower-case, trimmed,
// quotes stripped, runs of non-alphanumerics collapsed to one hyphen,
// leading/trailing hyphens removed, capped at 80 characters.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, `"`, "")

	var b strings.Builder
	b.Grow(len(s))
	lastHyphen := true // swallow leading hyphens
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}

	return slug
}

// allocateSlug probes the store for the derived candidate and appends -1,
// -2, ... until a free one is found. Best-effort only: the real safety net
// against a probe/insert race is the unique constraint on blogs.slug.
func (s *BlogService) allocateSlug(ctx context.Context, title string) (string, error) {
	const op = "blog_service.allocateSlug"

	base := Slugify(title)

	for counter := 0; counter <= maxSlugAttempts; counter++ {
		candidate := base
		if counter > 0 {
			candidate = fmt.Sprintf("%s-%d", base, counter)
		}

		exists, err := s.repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		if !exists {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%s: %w", op, ErrSlugExhausted)
}
