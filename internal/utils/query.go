// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import "strconv"

// AtoiDefault converts a string to an int using strconv.Atoi.
// If the string is empty or cannot be parsed as an integer,
// it returns the provided default value instead. Handlers use it
// for optional numeric query parameters such as "adults".
//
// Example:
//
//	n := utils.AtoiDefault("2", 1)  // returns 2
//	n = utils.AtoiDefault("", 1)    // returns 1
//	n = utils.AtoiDefault("x", 1)   // returns 1
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
