package cli

// Exit codes for the reflink CLI.
const (
	// ExitSuccess means the document was processed. Unresolved references
	// are not a failure.
	ExitSuccess = 0

	// ExitFailure indicates an I/O error, cancellation or timeout.
	ExitFailure = 1

	// ExitConfigError indicates invalid arguments or configuration, including
	// a repository that does not resolve. The input file is never modified.
	ExitConfigError = 2
)
