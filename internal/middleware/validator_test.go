package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFileName(t *testing.T) {
	valid := []string{"deck.pdf", "model.DOCX", "notes.txt", "metrics.csv", "memo.md"}
	for _, name := range valid {
		assert.NoError(t, ValidateFileName(name), name)
	}

	invalid := []string{"", "run.exe", "pitch", "../etc/passwd.txt", "dir/deck.pdf"}
	for _, name := range invalid {
		assert.Error(t, ValidateFileName(name), name)
	}
}

func TestValidateTenantID(t *testing.T) {
	assert.NoError(t, ValidateTenantID("fund-a"))
	assert.NoError(t, ValidateTenantID("Fund_01"))
	assert.Error(t, ValidateTenantID(""))
	assert.Error(t, ValidateTenantID("fund/a"))
	assert.Error(t, ValidateTenantID("tenant with spaces"))
}

func TestValidateMemoID(t *testing.T) {
	assert.NoError(t, ValidateMemoID("0f2a9b6c-1d3e-4f5a-8b7c-9d0e1f2a3b4c-memo"))
	assert.Error(t, ValidateMemoID(""))
	assert.Error(t, ValidateMemoID("0f2a9b6c-1d3e-4f5a-8b7c-9d0e1f2a3b4c"))
	assert.Error(t, ValidateMemoID("not-a-uuid-memo"))
}

func TestValidateLimitAndDays(t *testing.T) {
	assert.Equal(t, 20, ValidateLimit(0))
	assert.Equal(t, 100, ValidateLimit(500))
	assert.Equal(t, 33, ValidateLimit(33))

	assert.Equal(t, 7, ValidateDays(-1))
	assert.Equal(t, 365, ValidateDays(1000))
	assert.Equal(t, 30, ValidateDays(30))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "deck.pdf", SanitizeString("deck.pdf\x00"))
	assert.Equal(t, "a b", SanitizeString("  a b \x07"))
}
