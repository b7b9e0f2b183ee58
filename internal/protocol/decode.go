package protocol

import "encoding/binary"

// DecodeClientToServer parses one inbound datagram. Decoded values never
// alias b, so callers may reuse their receive buffer.
func DecodeClientToServer(b []byte) (*ClientToServer, error) {
	if len(b) < clientHeaderLen {
		return nil, ErrShortHeader
	}
	if err := checkPrelude(b, KindClientToServer); err != nil {
		return nil, err
	}
	msg := &ClientToServer{
		Header: ClientHeader{
			CurrentSequence:      binary.BigEndian.Uint64(b[preludeLen : preludeLen+8]),
			LastReceivedSequence: binary.BigEndian.Uint64(b[preludeLen+8 : preludeLen+16]),
		},
	}

	err := eachBody(b[clientHeaderLen:], func(tag BodyTag, value []byte) error {
		switch tag {
		case TagPing:
			if len(value) != 0 {
				return ErrInvalidBodyValue
			}
			msg.Bodies = append(msg.Bodies, Ping{})
		case TagInput:
			msg.Bodies = append(msg.Bodies, Input{Payload: cloneValue(value)})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// DecodeServerToClient parses one outbound datagram, used by clients and
// round-trip tests.
func DecodeServerToClient(b []byte) (*ServerToClient, error) {
	if len(b) < serverHeaderLen {
		return nil, ErrShortHeader
	}
	if err := checkPrelude(b, KindServerToClient); err != nil {
		return nil, err
	}
	msg := &ServerToClient{
		Header: ServerHeader{
			Sequence: binary.BigEndian.Uint64(b[preludeLen : preludeLen+8]),
		},
	}

	err := eachBody(b[serverHeaderLen:], func(tag BodyTag, value []byte) error {
		switch tag {
		case TagPong:
			if len(value) != 8 {
				return ErrInvalidBodyValue
			}
			msg.Bodies = append(msg.Bodies, Pong{Sequence: binary.BigEndian.Uint64(value)})
		case TagTerrain:
			msg.Bodies = append(msg.Bodies, Terrain{Snapshot: cloneValue(value)})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func checkPrelude(b []byte, want MessageKind) error {
	if binary.BigEndian.Uint32(b[0:4]) != Magic {
		return ErrInvalidMagic
	}
	if binary.BigEndian.Uint16(b[4:6]) != Version {
		return ErrUnsupportedVersion
	}
	if MessageKind(b[6]) != want {
		return ErrKindMismatch
	}
	return nil
}

// eachBody walks tag/length/value triples until the buffer is exhausted.
// Unknown tags are skipped whole; the handler only sees known shapes.
func eachBody(b []byte, fn func(tag BodyTag, value []byte) error) error {
	for offset := 0; offset < len(b); {
		if len(b)-offset < bodyHeaderLen {
			return ErrTruncatedBody
		}
		tag := BodyTag(b[offset])
		length := int(binary.BigEndian.Uint16(b[offset+1 : offset+3]))
		offset += bodyHeaderLen
		if length > len(b)-offset {
			return ErrTruncatedBody
		}
		if err := fn(tag, b[offset:offset+length]); err != nil {
			return err
		}
		offset += length
	}
	return nil
}

func cloneValue(v []byte) []byte {
	if len(v) == 0 {
		return nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out
}
