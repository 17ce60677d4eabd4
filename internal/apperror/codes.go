package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Arbitrage engine error codes
const (
	// Price sampling errors
	CodeAdapterUnavailable Code = "ADAPTER_UNAVAILABLE"
	CodePriceUnavailable   Code = "PRICE_UNAVAILABLE"
	CodeStalePrice         Code = "STALE_PRICE"

	// Opportunity lifecycle errors
	CodeOpportunityNotFound Code = "OPPORTUNITY_NOT_FOUND"
	CodeOpportunityStale    Code = "OPPORTUNITY_STALE"
	CodeNoLongerProfitable  Code = "NO_LONGER_PROFITABLE"

	// Execution errors
	CodeExecutionThrottled Code = "EXECUTION_THROTTLED"
	CodeLegFailure         Code = "LEG_FAILURE"
	CodeExecutionTimeout   Code = "EXECUTION_TIMEOUT"

	// Ticker feed errors
	CodeTickerFetchFailed Code = "TICKER_FETCH_FAILED"
	CodeInvalidTicker     Code = "INVALID_TICKER"

	// Circuit breaker errors
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)
