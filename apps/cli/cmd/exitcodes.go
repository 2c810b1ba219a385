package cmd

// Exit codes for hitvars CLI
const (
	// ExitSuccess indicates every placeholder and capture resolved
	ExitSuccess = 0

	// ExitResolveFailure indicates a placeholder or capture failed to resolve
	ExitResolveFailure = 1

	// ExitInputError indicates an input file could not be read
	ExitInputError = 2

	// ExitConfigError indicates a configuration or environment file error
	ExitConfigError = 3

	// ExitNetworkError indicates a network/connection error
	ExitNetworkError = 4

	// ExitStoreError indicates the capture store could not be used
	ExitStoreError = 5

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)
