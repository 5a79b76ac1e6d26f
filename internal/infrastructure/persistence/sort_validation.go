package persistence

import "strings"

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed
// fields. Returns the defaultField if the input is empty or not whitelisted.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" || !allowedFields[trimmed] {
		return defaultField
	}
	return trimmed
}

// RegisterSortFields contains allowed sort fields for cash registers
var RegisterSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"balance":    true,
	"status":     true,
}

// TransactionSortFields contains allowed sort fields for cash transactions
var TransactionSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"amount":     true,
	"type":       true,
}

// AuditSortFields contains allowed sort fields for cash audits
var AuditSortFields = map[string]bool{
	"id":          true,
	"audit_date":  true,
	"kind":        true,
	"end_balance": true,
}
