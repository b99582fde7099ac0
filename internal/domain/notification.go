package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Product types that carry a new or revised origin.
var processedTypes = map[string]bool{
	"origin":     true,
	"phase-data": true,
}

// ParseNotification deserializes a RawEvent's value into a ProductNotification.
func ParseNotification(raw RawEvent) (ProductNotification, error) {
	var n ProductNotification
	if err := json.Unmarshal(raw.Value, &n); err != nil {
		return ProductNotification{}, fmt.Errorf("parse notification: %w", err)
	}
	n.Source = strings.TrimSpace(n.Source)
	n.Code = strings.TrimSpace(n.Code)
	n.Type = strings.TrimSpace(n.Type)
	n.Status = strings.ToUpper(strings.TrimSpace(n.Status))
	return n, nil
}

// EventID joins the network source and product code, e.g. "us" + "7000abcd".
func (n ProductNotification) EventID() string {
	return n.Source + n.Code
}

// Check reports whether the notification should be processed. Deletes and
// product types other than origin/phase-data wrap ErrSkipped.
func (n ProductNotification) Check() error {
	if n.Status == "DELETE" {
		return fmt.Errorf("%w: deletes are not processed", ErrSkipped)
	}
	if !processedTypes[n.Type] {
		return fmt.Errorf("%w: product type %q is not processed", ErrSkipped, n.Type)
	}
	if n.Source == "" || n.Code == "" {
		return fmt.Errorf("%w: source and code are required", ErrInvalidNotification)
	}
	return nil
}
