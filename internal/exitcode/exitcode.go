// Package exitcode defines exit codes shared by every binary.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, unknown value, not found).
	UserError = 1

	// ConfigError indicates missing configuration or a failed secret lookup.
	ConfigError = 2

	// BackendError indicates a remote API or network error.
	BackendError = 3
)
