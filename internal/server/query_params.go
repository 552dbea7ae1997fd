package server

import (
	"strconv"
	"strings"
)

func parseOptionalBool(value string) (*bool, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// parseSortOrder accepts "asc" or "desc" and leaves the default to the service otherwise.
func parseSortOrder(value string) (*bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return nil, nil
	case "asc":
		desc := false
		return &desc, nil
	case "desc":
		desc := true
		return &desc, nil
	default:
		return parseOptionalBool(value)
	}
}
