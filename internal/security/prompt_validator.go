package security

import (
	"fmt"
	"regexp"
	"strings"
)

const MaxPromptLength = 2000

// dangerousPatterns covers prompt injection, command execution, and path
// traversal attempts smuggled into a question.
var dangerousPatterns = []*regexp.Regexp{
	// Command execution
	regexp.MustCompile(`(?i)\brm\s+-`),
	regexp.MustCompile(`(?i)\brm\s+/`),
	regexp.MustCompile(`(?i)\bcurl\s+`),
	regexp.MustCompile(`(?i)\bwget\s+`),
	regexp.MustCompile(`(?i)\bbash\s+-`),
	regexp.MustCompile(`(?i)\bsh\s+-`),
	regexp.MustCompile(`(?i)\bsudo\s+`),

	// File operations / path traversal
	regexp.MustCompile(`\.\.\/`),
	regexp.MustCompile(`/etc/passwd`),
	regexp.MustCompile(`/etc/shadow`),
	regexp.MustCompile(`/proc/`),
	regexp.MustCompile(`\.env\s`),
	regexp.MustCompile(`\.env$`),
	regexp.MustCompile(`id_rsa`),
	regexp.MustCompile(`\.ssh/`),
	regexp.MustCompile(`>\s*/`),

	// Code execution
	regexp.MustCompile(`(?i)eval\s*\(`),
	regexp.MustCompile(`(?i)exec\s*\(`),
	regexp.MustCompile(`(?i)system\s*\(`),
	regexp.MustCompile(`(?i)__import__\s*\(`),
	regexp.MustCompile(`(?i)subprocess\s*\(`),
	regexp.MustCompile(`(?i)os\.system`),

	// Prompt injection
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?previous\s+instructions`),
	regexp.MustCompile(`(?i)disregard\s+(all\s+)?previous\s+instructions`),
	regexp.MustCompile(`(?i)forget\s+(all\s+)?previous\s+instructions`),
	regexp.MustCompile(`(?i)override\s+(all\s+)?previous\s+instructions`),
	regexp.MustCompile(`(?i)new\s+context\s*:`),
	regexp.MustCompile(`(?i)instead\s+of\s+the\s+above`),
}

var suspiciousIndicators = []string{
	"create file", "eval", "exec",
	"import os", "import sys", "subprocess", "__import__",
}

var dataKeywords = []string{
	"data", "table", "query", "show", "list", "get", "find",
	"budget", "department", "order", "transaction", "user", "report",
	"analytics", "metrics", "search", "count", "sum", "aggregate",
	"average", "total", "revenue", "sales", "spend", "spent",
	"top", "bottom", "compare", "trend", "how many", "how much",
	"which", "what", "when", "where", "who", "highest", "lowest",
}

// PromptValidator validates questions for injection and dangerous content
// before they reach the model.
type PromptValidator struct{}

func NewPromptValidator() *PromptValidator {
	return &PromptValidator{}
}

// ValidationResult contains validation outcome
type ValidationResult struct {
	Valid   bool
	Message string
}

// Validate checks a question for dangerous patterns.
func (v *PromptValidator) Validate(prompt string) ValidationResult {
	if len(prompt) > MaxPromptLength {
		return ValidationResult{
			Valid:   false,
			Message: fmt.Sprintf("question too long: %d chars (max %d)", len(prompt), MaxPromptLength),
		}
	}

	if strings.TrimSpace(prompt) == "" {
		return ValidationResult{Valid: false, Message: "question cannot be empty"}
	}

	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(prompt) {
			return ValidationResult{
				Valid:   false,
				Message: fmt.Sprintf("dangerous pattern detected: %s", pattern.String()),
			}
		}
	}

	lower := strings.ToLower(prompt)
	for _, indicator := range suspiciousIndicators {
		if strings.Contains(lower, indicator) {
			return ValidationResult{
				Valid:   false,
				Message: fmt.Sprintf("suspicious instruction indicator detected: %q", indicator),
			}
		}
	}

	// Require at least one data-related keyword
	hasDataKW := false
	for _, kw := range dataKeywords {
		if strings.Contains(lower, kw) {
			hasDataKW = true
			break
		}
	}
	if !hasDataKW {
		return ValidationResult{
			Valid:   false,
			Message: "question must relate to the database (query, show, list, etc.)",
		}
	}

	return ValidationResult{Valid: true, Message: "ok"}
}
