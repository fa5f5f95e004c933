package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// RateLimitReason is the errdetails.ErrorInfo reason attached to
// rate-limited RPC responses.
const RateLimitReason = "QUICK_LOOKUP_RATE_LIMITED"

// ErrorInfoDomain scopes ErrorInfo reasons emitted by the server.
const ErrorInfoDomain = "darktrack"

// Metadata keys carried in ErrorInfo for rate-limited responses.
const (
	MetaNextAvailableAt      = "next_available_at"
	MetaNextAvailableDisplay = "next_available_display"
)
