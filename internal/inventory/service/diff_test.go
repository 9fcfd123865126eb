package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeSet_OnlyChangedFieldsProduceEntries(t *testing.T) {
	cs := newChangeSet("suppliers", "abc", "SUP-01")

	cs.add("name", "Acme", "Acme")
	cs.add("code", "SUP-01", "SUP-02")
	cs.addInt("quantity_bought", 100, 100)
	cs.addInt("quantity_left", 100, 80)

	entries := cs.Entries()
	require.Len(t, entries, 2)

	assert.Equal(t, "code", entries[0].ColumnName)
	assert.Equal(t, "SUP-01", entries[0].PreviousValue)
	assert.Equal(t, "SUP-02", entries[0].NewValue)

	assert.Equal(t, "quantity_left", entries[1].ColumnName)
	assert.Equal(t, "100", entries[1].PreviousValue)
	assert.Equal(t, "80", entries[1].NewValue)
}

func TestChangeSet_EntriesCarrySubject(t *testing.T) {
	cs := newChangeSet("ingredient_lots", "some-id", "20250101-SB-042")
	cs.add("material_name", "Shea Butter", "Shea Butter Raw")

	entries := cs.Entries()
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].SubjectID)
	require.NotNil(t, entries[0].SubjectLabel)
	assert.Equal(t, "ingredient_lots", entries[0].TableName)
	assert.Equal(t, "some-id", *entries[0].SubjectID)
	assert.Equal(t, "20250101-SB-042", *entries[0].SubjectLabel)
}

func TestChangeSet_DateAndDecimalFormatting(t *testing.T) {
	cs := newChangeSet("ingredient_lots", "id", "label")

	cs.addDate("expiration_date",
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	cs.addDecimal("cost",
		decimal.NullDecimal{},
		decimal.NewNullDecimal(decimal.RequireFromString("12.50")))

	entries := cs.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "2025-03-01", entries[0].PreviousValue)
	assert.Equal(t, "2025-06-01", entries[0].NewValue)
	assert.Equal(t, "", entries[1].PreviousValue)
	assert.Equal(t, "12.5", entries[1].NewValue)
}

func TestChangeSet_OptionalFields(t *testing.T) {
	email := "orders@acme.example"
	cs := newChangeSet("suppliers", "id", "SUP-01")
	cs.addOptional("contact_email", nil, &email)
	cs.addOptional("contact_phone", nil, nil)

	entries := cs.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "contact_email", entries[0].ColumnName)
	assert.Equal(t, "", entries[0].PreviousValue)
	assert.Equal(t, email, entries[0].NewValue)
}
