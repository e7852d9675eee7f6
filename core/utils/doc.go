// Package utils provides loose-type conversion helpers.
// Ban providers disagree on JSON types (numeric ids as numbers or strings, flags as
// 0/1 or booleans, timestamps as unix seconds or RFC3339); these helpers normalize them.
package utils
