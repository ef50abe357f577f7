package consts

// APICode is the numeric "code" field of a Wish API envelope.
//
// Zero means success. The named values are the ones the SDK reacts to.
type APICode int

const (
	CodeSuccess          APICode = 0
	CodeMissingParam     APICode = 1000
	CodeInvalidParam     APICode = 1001
	CodeNotFound         APICode = 1004
	CodeUnauthorized     APICode = 4000
	CodeInvalidKey       APICode = 4001
	CodeTokenExpired     APICode = 1015
	CodeUnknownError     APICode = 9000
	CodeRateLimitReached APICode = 1028
)
