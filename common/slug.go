package common

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrEmptySlug = errors.New("slug cannot be empty")
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
)

const maxSlugLength = 48

func Slugify(input, fallback string) (string, error) {
	slug := slugify(input)
	if slug == "" {
		slug = slugify(fallback)
	}
	if slug == "" {
		return "", ErrEmptySlug
	}
	return slug, nil
}

// WorkspaceSlug builds a slug for a workspace name that stays unique across
// tenants by suffixing the tail of the workspace id.
func WorkspaceSlug(name, id string) (string, error) {
	base, err := Slugify(name, "workspace")
	if err != nil {
		return "", err
	}
	if len(base) > maxSlugLength {
		base = strings.TrimRight(base[:maxSlugLength], "-")
	}

	suffix := slugify(id)
	if len(suffix) > 6 {
		suffix = suffix[len(suffix)-6:]
	}
	if suffix == "" {
		return base, nil
	}
	return base + "-" + suffix, nil
}

func slugify(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	slug := nonSlugChars.ReplaceAllString(lower, "-")
	return strings.Trim(slug, "-")
}
