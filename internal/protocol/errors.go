package protocol

import "errors"

var (
	ErrNilMessage         = errors.New("protocol: nil message")
	ErrShortHeader        = errors.New("protocol: short header")
	ErrInvalidMagic       = errors.New("protocol: invalid magic")
	ErrUnsupportedVersion = errors.New("protocol: unsupported version")
	ErrKindMismatch       = errors.New("protocol: message kind mismatch")
	ErrTruncatedBody      = errors.New("protocol: truncated body element")
	ErrInvalidBodyValue   = errors.New("protocol: invalid body element value")
	ErrBodyTooLarge       = errors.New("protocol: body element too large")
	ErrMessageTooLarge    = errors.New("protocol: message exceeds datagram bound")
)
