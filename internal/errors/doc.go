// Package errors provides coded, structured errors for the toast service.
//
// Notification operations never fail loudly: a toast that cannot be shown is
// dropped and a diagnostic is logged. The codes defined here give those
// diagnostics a stable identity in logs, and the same values travel back to
// HTTP clients and CLI users when a request or a config file is rejected.
//
// # Error Categories
//
// Errors are organized into categories:
//   - runtime: degraded notification operations (renderer missing, unknown key)
//   - config: configuration loading and validation
//   - request: malformed API requests
//
// # Error Codes
//
// Each error has a unique code (e.g., "T001") that maps to a short message
// and a longer explanation.
//
// # Usage
//
//	err := errors.New("C003").
//	    WithDetail("toast.durationMs must not be negative")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR C003: Invalid configuration
//	//
//	//   toast.durationMs must not be negative
package errors
