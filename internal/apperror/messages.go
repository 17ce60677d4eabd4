package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal error",
	CodeUnknownError:  "An unknown error occurred",

	// Price sampling errors
	CodeAdapterUnavailable: "Exchange adapter is unavailable",
	CodePriceUnavailable:   "No price available for asset",
	CodeStalePrice:         "Cached price is older than the staleness bound",

	// Opportunity lifecycle errors
	CodeOpportunityNotFound: "Arbitrage opportunity not found",
	CodeOpportunityStale:    "Arbitrage opportunity is no longer active",
	CodeNoLongerProfitable:  "Opportunity fell below the profit threshold on revalidation",

	// Execution errors
	CodeExecutionThrottled: "Too many executions in flight",
	CodeLegFailure:         "Trade leg execution failed",
	CodeExecutionTimeout:   "Execution exceeded the maximum allowed time",

	// Ticker feed errors
	CodeTickerFetchFailed: "Failed to fetch ticker data",
	CodeInvalidTicker:     "Ticker response could not be parsed",

	// Circuit breaker errors
	CodeCircuitOpen: "Circuit breaker is open",
}
