package service

import (
	"strconv"
	"time"

	"github.com/imaps/imaps-backend/internal/inventory/domain"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// changeSet accumulates field-level diffs for one mutation. A field
// whose old and new representations are equal produces no entry.
type changeSet struct {
	table        string
	subjectID    string
	subjectLabel string
	entries      []*domain.ChangeLogEntry
}

func newChangeSet(table, subjectID, subjectLabel string) *changeSet {
	return &changeSet{table: table, subjectID: subjectID, subjectLabel: subjectLabel}
}

func (c *changeSet) add(column, prev, next string) {
	if prev == next {
		return
	}
	id := c.subjectID
	label := c.subjectLabel
	c.entries = append(c.entries, &domain.ChangeLogEntry{
		TableName:     c.table,
		ColumnName:    column,
		PreviousValue: prev,
		NewValue:      next,
		SubjectID:     &id,
		SubjectLabel:  &label,
	})
}

func (c *changeSet) addInt(column string, prev, next int) {
	c.add(column, strconv.Itoa(prev), strconv.Itoa(next))
}

func (c *changeSet) addDate(column string, prev, next time.Time) {
	c.add(column, prev.Format(dateLayout), next.Format(dateLayout))
}

func (c *changeSet) addDecimal(column string, prev, next decimal.NullDecimal) {
	c.add(column, formatDecimal(prev), formatDecimal(next))
}

func (c *changeSet) addOptional(column string, prev, next *string) {
	c.add(column, derefOrEmpty(prev), derefOrEmpty(next))
}

// Entries returns the accumulated diff, at most one entry per changed
// column.
func (c *changeSet) Entries() []*domain.ChangeLogEntry {
	return c.entries
}

func formatDecimal(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
