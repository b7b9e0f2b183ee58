package protocol

import "encoding/binary"

// EncodeClientToServer renders msg as one datagram.
func EncodeClientToServer(msg *ClientToServer) ([]byte, error) {
	if msg == nil {
		return nil, ErrNilMessage
	}
	buf := make([]byte, clientHeaderLen, clientHeaderLen+bodyHeaderLen*len(msg.Bodies))
	putPrelude(buf, KindClientToServer)
	binary.BigEndian.PutUint64(buf[preludeLen:preludeLen+8], msg.Header.CurrentSequence)
	binary.BigEndian.PutUint64(buf[preludeLen+8:preludeLen+16], msg.Header.LastReceivedSequence)

	for _, body := range msg.Bodies {
		var err error
		switch elem := body.(type) {
		case Ping:
			buf, err = appendBody(buf, TagPing, nil)
		case Input:
			buf, err = appendBody(buf, TagInput, elem.Payload)
		default:
			err = ErrInvalidBodyValue
		}
		if err != nil {
			return nil, err
		}
	}
	if len(buf) > MaxDatagramSize {
		return nil, ErrMessageTooLarge
	}
	return buf, nil
}

// EncodeServerToClient renders msg as one datagram.
func EncodeServerToClient(msg *ServerToClient) ([]byte, error) {
	if msg == nil {
		return nil, ErrNilMessage
	}
	buf := make([]byte, serverHeaderLen, serverHeaderLen+bodyHeaderLen*len(msg.Bodies))
	putPrelude(buf, KindServerToClient)
	binary.BigEndian.PutUint64(buf[preludeLen:preludeLen+8], msg.Header.Sequence)

	for _, body := range msg.Bodies {
		var err error
		switch elem := body.(type) {
		case Pong:
			var seq [8]byte
			binary.BigEndian.PutUint64(seq[:], elem.Sequence)
			buf, err = appendBody(buf, TagPong, seq[:])
		case Terrain:
			buf, err = appendBody(buf, TagTerrain, elem.Snapshot)
		default:
			err = ErrInvalidBodyValue
		}
		if err != nil {
			return nil, err
		}
	}
	if len(buf) > MaxDatagramSize {
		return nil, ErrMessageTooLarge
	}
	return buf, nil
}

func putPrelude(buf []byte, kind MessageKind) {
	binary.BigEndian.PutUint32(buf[0:4], Magic)
	binary.BigEndian.PutUint16(buf[4:6], Version)
	buf[6] = byte(kind)
}

func appendBody(buf []byte, tag BodyTag, value []byte) ([]byte, error) {
	if len(value) > int(^uint16(0)) {
		return nil, ErrBodyTooLarge
	}
	var head [bodyHeaderLen]byte
	head[0] = byte(tag)
	binary.BigEndian.PutUint16(head[1:3], uint16(len(value)))
	buf = append(buf, head[:]...)
	buf = append(buf, value...)
	return buf, nil
}
