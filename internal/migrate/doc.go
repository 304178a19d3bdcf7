// Package migrate converts a legacy single-record save state into carrier
// definitions. Legacy instructions are split into 256-bit groups the same way
// the legacy writer laid them out, and each group becomes one definition that
// keeps the prefix and key coordinate receivers already expect.
package migrate
