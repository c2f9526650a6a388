package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Instant layer.
	ErrBadRequest = "E_BAD_REQUEST"
	ErrBadMode    = "E_BAD_MODE"
	ErrBadStep    = "E_BAD_STEP"
	ErrInternal   = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrBadRequest:      {},
	ErrBadMode:         {},
	ErrBadStep:         {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
