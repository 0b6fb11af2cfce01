// Package sanitizer provides input normalization functions applied before
// validation and storage.
//
// All normalization functions are idempotent - applying them multiple times
// produces the same result. Functions handle invalid input gracefully,
// typically by returning empty strings or empty slices rather than errors.
//
// The package is designed to be used across the services for consistent data
// normalization before validation and storage.
//
// Normalization includes:
//   - Strings: Collapse whitespace, trim leading/trailing spaces
//   - Usernames: Trim surrounding whitespace and lowercase
//   - Emails: Trim and lowercase
//   - Equipment lists: Split on commas, trim, lowercase, drop duplicates
package sanitizer
