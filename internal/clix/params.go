package clix

import (
	"fmt"
	"strings"

	"servicebot/internal/models"

	"github.com/spf13/pflag"
)

type PaginationParams struct {
	Limit  int
	Offset int
}

func ParsePagination(flags *pflag.FlagSet) (PaginationParams, error) {
	limit, _ := flags.GetInt("limit")
	offset, _ := flags.GetInt("offset")
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return PaginationParams{Limit: limit, Offset: offset}, nil
}

// ParseStatus reads the --status flag. An empty value means any status.
func ParseStatus(flags *pflag.FlagSet) (models.ConversationStatus, error) {
	raw, _ := flags.GetString("status")
	status := models.ConversationStatus(strings.ToLower(strings.TrimSpace(raw)))
	if status != "" && !status.Valid() {
		return "", fmt.Errorf("unknown status %q (want active or completed)", raw)
	}
	return status, nil
}
