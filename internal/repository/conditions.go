package repository

import (
	"errors"
	"strings"

	"github.com/tripdesk/supplier-contracts/internal/model"
)

// ErrGuardFailed is returned when a conditional update matched the row
// but its guard predicate rejected the change.
var ErrGuardFailed = errors.New("update guard failed")

type conditions struct {
	parts []string
	args  []interface{}
}

func (c *conditions) add(clause string, args ...interface{}) {
	c.parts = append(c.parts, clause)
	c.args = append(c.args, args...)
}

func (c *conditions) where() string {
	if len(c.parts) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.parts, " AND ")
}

func pageClause(page model.PageRequest, args []interface{}) (string, []interface{}) {
	if page.Size <= 0 {
		return "", args
	}
	return " LIMIT ? OFFSET ?", append(args, page.Size, page.Offset())
}

func likePattern(search string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.TrimSpace(search)) + "%"
}
