package middleware

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

// ValidateFileName checks upload names against the supported document types
func ValidateFileName(name string) error {
	if name == "" {
		return fmt.Errorf("file name cannot be empty")
	}

	cleaned := filepath.Base(name)
	if strings.Contains(name, "..") || cleaned != name {
		return fmt.Errorf("invalid file name: %s", name)
	}

	allowed := map[string]bool{
		".pdf":  true,
		".docx": true,
		".txt":  true,
		".csv":  true,
		".md":   true,
	}
	ext := strings.ToLower(filepath.Ext(cleaned))
	if !allowed[ext] {
		return fmt.Errorf("unsupported file extension: %s (allowed: pdf, docx, txt, csv, md)", ext)
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateTenantID validates tenant ID format
func ValidateTenantID(tenant string) error {
	if tenant == "" {
		return fmt.Errorf("tenant ID cannot be empty")
	}

	// Allow alphanumeric, dash, underscore (max 64 chars)
	pattern := `^[a-zA-Z0-9_-]{1,64}$`
	matched, _ := regexp.MatchString(pattern, tenant)
	if !matched {
		return fmt.Errorf("invalid tenant ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}

	return nil
}

// ValidateMemoID validates memo ID format
func ValidateMemoID(memoID string) error {
	if memoID == "" {
		return fmt.Errorf("memo ID cannot be empty")
	}

	// UUID pattern with -memo suffix
	pattern := `^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}-memo$`
	matched, _ := regexp.MatchString(pattern, memoID)
	if !matched {
		return fmt.Errorf("invalid memo ID format")
	}

	return nil
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// ValidateDays validates days parameter
func ValidateDays(days int) int {
	if days <= 0 {
		return 7 // default
	}
	if days > 365 {
		return 365 // max 1 year
	}
	return days
}
