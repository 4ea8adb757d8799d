package services

import (
	"fmt"
	"strings"

	"github.com/moduleforge/moduleforge/internal/common"
)

const (
	maxTitleLen       = 100
	maxDescriptionLen = 500

	defaultPageLimit = 20
	maxPageLimit     = 50
)

// validateTitle trims the title and enforces the 1–100 character rule.
func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title is required", common.ErrValidation)
	}
	if len(title) > maxTitleLen {
		return "", fmt.Errorf("%w: title must be at most %d characters", common.ErrValidation, maxTitleLen)
	}
	return title, nil
}

// validateDescription enforces the 500 character ceiling; empty is fine.
func validateDescription(description string) (string, error) {
	if len(description) > maxDescriptionLen {
		return "", fmt.Errorf("%w: description must be at most %d characters", common.ErrValidation, maxDescriptionLen)
	}
	return description, nil
}

// normalizePage clamps page and limit to their allowed ranges
// (page ≥ 1, limit 1–50, default 20).
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	return page, limit
}

// totalPages computes the page count for a listing envelope.
func totalPages(total, limit int) int {
	if total == 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
