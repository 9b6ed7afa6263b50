package errors

// ErrorCode represents a specific error code in the system.
type ErrorCode string

const (
	// InvalidTick represents a tick with a bad price or timestamp. The tick
	// is skipped; nothing downstream is affected.
	InvalidTick ErrorCode = "invalid_tick"
	// InsufficientFunds represents a BUY rejected because the portfolio cash
	// cannot cover the cost. The ledger is unchanged.
	InsufficientFunds ErrorCode = "insufficient_funds"
	// NoMatchingPosition represents a SELL with no open position to match.
	// The ledger is unchanged.
	NoMatchingPosition ErrorCode = "no_matching_position"
	// InsufficientHistory represents a strategy window too short to evaluate.
	// The evaluator returns no signal; this is not surfaced as a failure.
	InsufficientHistory ErrorCode = "insufficient_history"
	// InvalidTrade represents a trade with a non-positive price or quantity.
	InvalidTrade ErrorCode = "invalid_trade"
	// InvalidRange represents an empty or inverted time range.
	InvalidRange ErrorCode = "invalid_range"

	// KiteRequestError represents a failed request to the Kite REST API.
	KiteRequestError ErrorCode = "kite_request_error"
	// KiteResponseError represents an unparsable Kite API response.
	KiteResponseError ErrorCode = "kite_response_error"

	// RedisConfigError represents an invalid Redis client configuration.
	RedisConfigError ErrorCode = "redis_config_error"
	// RedisConnectionError represents a failed Redis connection attempt.
	RedisConnectionError ErrorCode = "redis_connection_error"
	// RedisPingError represents a failed Redis ping.
	RedisPingError ErrorCode = "redis_ping_error"
	// RedisGetError represents an error when getting a value from Redis.
	RedisGetError ErrorCode = "redis_get_error"
	// RedisSetError represents an error when setting a value in Redis.
	RedisSetError ErrorCode = "redis_set_error"
	// RedisHGetError represents an error when getting a field from a hash in Redis.
	RedisHGetError ErrorCode = "redis_hget_error"
	// RedisHSetError represents an error when setting fields in a hash in Redis.
	RedisHSetError ErrorCode = "redis_hset_error"
	// RedisDelError represents an error when deleting keys from Redis.
	RedisDelError ErrorCode = "redis_del_error"
	// RedisHDelError represents an error when deleting fields from a hash in Redis.
	RedisHDelError ErrorCode = "redis_hdel_error"

	// StreamConnectionError represents a failed websocket dial or a
	// connection dropped mid-stream.
	StreamConnectionError ErrorCode = "stream_connection_error"

	// GeneralRepositoryError represents a generic repository error.
	GeneralRepositoryError ErrorCode = "general_repository_error"
)

// DomainError is an `error` carrying a code from the taxonomy above.
// Every DomainError in this codebase is recoverable: it signals that a
// tick/trade had no effect and must be observable, never fatal.
type DomainError struct {
	// Message is the user-defined error message.
	Message string

	// Code is the taxonomy code for this error.
	Code ErrorCode

	// Field (optional) is the related field the error occurred on, if any.
	Field string
}

// NewDomainError creates a new DomainError with the given parameters.
func NewDomainError(message string, code ErrorCode, field string) *DomainError {
	return &DomainError{
		Message: message,
		Code:    code,
		Field:   field,
	}
}

// Error is used to implement the Golang `error` interface.
func (e *DomainError) Error() string {
	return e.Message
}

// CodeEquals checks whether a given `error` has a specific code.
func CodeEquals(err error, code ErrorCode) bool {
	domainErr, ok := err.(*DomainError)
	if !ok {
		return false
	}

	return domainErr.Code == code
}
