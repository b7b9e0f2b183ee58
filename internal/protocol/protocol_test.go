package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestClientMessageRoundTrip(t *testing.T) {
	msg := &ClientToServer{
		Header: ClientHeader{CurrentSequence: 42, LastReceivedSequence: 41},
		Bodies: []ClientBodyElem{
			Ping{},
			Input{Payload: []byte{0x01, 0x02, 0x03}},
			Ping{},
		},
	}

	buf, err := EncodeClientToServer(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeClientToServer(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Header != msg.Header {
		t.Fatalf("header mismatch: got=%+v want=%+v", decoded.Header, msg.Header)
	}
	if len(decoded.Bodies) != 3 {
		t.Fatalf("unexpected body count: %d", len(decoded.Bodies))
	}
	input, ok := decoded.Bodies[1].(Input)
	if !ok {
		t.Fatalf("body[1] is %T, want Input", decoded.Bodies[1])
	}
	if !bytes.Equal(input.Payload, []byte{0x01, 0x02, 0x03}) {
		t.Fatalf("input payload mismatch: %v", input.Payload)
	}

	buf2, err := EncodeClientToServer(decoded)
	if err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if !bytes.Equal(buf, buf2) {
		t.Fatalf("round-trip mismatch")
	}
}

func TestServerMessageRoundTrip(t *testing.T) {
	msg := &ServerToClient{
		Header: ServerHeader{Sequence: 7},
		Bodies: []ServerBodyElem{
			Pong{Sequence: 6},
			Terrain{Snapshot: []byte("chunk-0,0")},
		},
	}

	buf, err := EncodeServerToClient(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeServerToClient(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Header.Sequence != 7 {
		t.Fatalf("sequence mismatch: %d", decoded.Header.Sequence)
	}
	pong, ok := decoded.Bodies[0].(Pong)
	if !ok || pong.Sequence != 6 {
		t.Fatalf("body[0] mismatch: %+v", decoded.Bodies[0])
	}
	terrain, ok := decoded.Bodies[1].(Terrain)
	if !ok || string(terrain.Snapshot) != "chunk-0,0" {
		t.Fatalf("body[1] mismatch: %+v", decoded.Bodies[1])
	}

	buf2, err := EncodeServerToClient(decoded)
	if err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if !bytes.Equal(buf, buf2) {
		t.Fatalf("round-trip mismatch")
	}
}

func TestDecodeShortHeader(t *testing.T) {
	if _, err := DecodeClientToServer([]byte{1, 2, 3}); !errors.Is(err, ErrShortHeader) {
		t.Fatalf("expected ErrShortHeader, got %v", err)
	}
}

func TestDecodeInvalidMagic(t *testing.T) {
	buf, err := EncodeClientToServer(&ClientToServer{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	buf[0] = 0
	if _, err := DecodeClientToServer(buf); !errors.Is(err, ErrInvalidMagic) {
		t.Fatalf("expected ErrInvalidMagic, got %v", err)
	}
}

func TestDecodeUnsupportedVersion(t *testing.T) {
	buf, err := EncodeClientToServer(&ClientToServer{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	binary.BigEndian.PutUint16(buf[4:6], Version+1)
	if _, err := DecodeClientToServer(buf); !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestDecodeKindMismatch(t *testing.T) {
	buf, err := EncodeServerToClient(&ServerToClient{Header: ServerHeader{Sequence: 1}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeClientToServer(buf); !errors.Is(err, ErrKindMismatch) {
		t.Fatalf("expected ErrKindMismatch, got %v", err)
	}
}

func TestDecodeTruncatedBody(t *testing.T) {
	msg := &ClientToServer{Bodies: []ClientBodyElem{Input{Payload: []byte("abcdef")}}}
	buf, err := EncodeClientToServer(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeClientToServer(buf[:len(buf)-2]); !errors.Is(err, ErrTruncatedBody) {
		t.Fatalf("expected ErrTruncatedBody, got %v", err)
	}
}

func TestDecodePingWithValueRejected(t *testing.T) {
	buf, err := EncodeClientToServer(&ClientToServer{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	buf = append(buf, byte(TagPing), 0x00, 0x01, 0xff)
	if _, err := DecodeClientToServer(buf); !errors.Is(err, ErrInvalidBodyValue) {
		t.Fatalf("expected ErrInvalidBodyValue, got %v", err)
	}
}

func TestDecodePongWrongWidthRejected(t *testing.T) {
	buf, err := EncodeServerToClient(&ServerToClient{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	buf = append(buf, byte(TagPong), 0x00, 0x04, 1, 2, 3, 4)
	if _, err := DecodeServerToClient(buf); !errors.Is(err, ErrInvalidBodyValue) {
		t.Fatalf("expected ErrInvalidBodyValue, got %v", err)
	}
}

func TestDecodeUnknownTagSkipped(t *testing.T) {
	buf, err := EncodeClientToServer(&ClientToServer{Bodies: []ClientBodyElem{Ping{}}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	buf = append(buf, 0xee, 0x00, 0x02, 0xaa, 0xbb)

	decoded, err := DecodeClientToServer(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded.Bodies) != 1 {
		t.Fatalf("unknown tag should be skipped, bodies=%d", len(decoded.Bodies))
	}
	if _, ok := decoded.Bodies[0].(Ping); !ok {
		t.Fatalf("body[0] is %T, want Ping", decoded.Bodies[0])
	}
}

func TestEncodeMessageTooLarge(t *testing.T) {
	msg := &ServerToClient{
		Bodies: []ServerBodyElem{Terrain{Snapshot: make([]byte, MaxDatagramSize)}},
	}
	if _, err := EncodeServerToClient(msg); !errors.Is(err, ErrMessageTooLarge) {
		t.Fatalf("expected ErrMessageTooLarge, got %v", err)
	}
}

func TestDecodeDoesNotAliasInput(t *testing.T) {
	msg := &ClientToServer{Bodies: []ClientBodyElem{Input{Payload: []byte{9, 9, 9}}}}
	buf, err := EncodeClientToServer(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeClientToServer(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i := range buf {
		buf[i] = 0
	}
	input := decoded.Bodies[0].(Input)
	if !bytes.Equal(input.Payload, []byte{9, 9, 9}) {
		t.Fatalf("decoded payload aliases receive buffer: %v", input.Payload)
	}
}
