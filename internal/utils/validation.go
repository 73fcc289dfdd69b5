package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	accountNamePattern   = regexp.MustCompile(`^[a-z0-9]{3,24}$`)
	containerNamePattern = regexp.MustCompile(`^[a-z0-9](?:-?[a-z0-9])+$`)
	tableNamePattern     = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]{2,62}$`)
)

// well-known containers that do not follow the usual naming rules
var systemContainers = map[string]bool{
	"$root": true,
	"$web":  true,
	"$logs": true,
}

// ValidateRequired validates that a string is not empty
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(fieldName, "is required")
	}
	return nil
}

// ValidateAccountName validates a storage account name
func ValidateAccountName(name string) error {
	if err := ValidateRequired(name, "account"); err != nil {
		return err
	}

	if !accountNamePattern.MatchString(name) {
		return NewValidationError("account", "must be 3-24 characters of lowercase letters and numbers")
	}

	return nil
}

// ValidateContainerName validates a blob container name
func ValidateContainerName(name string) error {
	if systemContainers[name] {
		return nil
	}
	return validateDNSName(name, "container name")
}

// ValidateQueueName validates a queue name
func ValidateQueueName(name string) error {
	return validateDNSName(name, "queue name")
}

// ValidateFileSystemName validates a datalake filesystem name
func ValidateFileSystemName(name string) error {
	return validateDNSName(name, "filesystem name")
}

// ValidateTableName validates a table name
func ValidateTableName(name string) error {
	if err := ValidateRequired(name, "table name"); err != nil {
		return err
	}

	if !tableNamePattern.MatchString(name) {
		return NewValidationError("table name", "must be 3-63 alphanumeric characters and start with a letter")
	}

	return nil
}

// validateDNSName checks the naming rules shared by containers, queues and filesystems:
// 3-63 lowercase letters, numbers and single hyphens, starting and ending with a letter or number.
func validateDNSName(name, fieldName string) error {
	if err := ValidateRequired(name, fieldName); err != nil {
		return err
	}

	if len(name) < 3 || len(name) > 63 {
		return NewValidationError(fieldName, fmt.Sprintf("must be between 3 and 63 characters, got %d", len(name)))
	}

	if !containerNamePattern.MatchString(name) {
		return NewValidationError(fieldName, "can only contain lowercase letters, numbers, and single hyphens, and must start and end with a letter or number")
	}

	return nil
}
