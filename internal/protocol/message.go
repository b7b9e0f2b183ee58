package protocol

const (
	// Magic identifies a Lodestone datagram ("LODE").
	Magic uint32 = 0x4C4F4445
	// Version is the only wire version this build speaks.
	Version uint16 = 1

	// MaxDatagramSize bounds one encoded message. Messages that do not fit
	// are a configuration error, not a runtime condition to recover from.
	MaxDatagramSize = 1400
)

// MessageKind discriminates the two wire directions.
type MessageKind uint8

const (
	KindClientToServer MessageKind = 1
	KindServerToClient MessageKind = 2
)

// BodyTag identifies one body element variant within a message. Tag
// namespaces are per-direction; unknown tags are skipped on decode so the
// variant set can grow independently on either side.
type BodyTag uint8

const (
	TagPing  BodyTag = 1
	TagInput BodyTag = 2

	TagPong    BodyTag = 1
	TagTerrain BodyTag = 2
)

const (
	preludeLen      = 4 + 2 + 1 // magic + version + kind
	clientHeaderLen = preludeLen + 8 + 8
	serverHeaderLen = preludeLen + 8
	bodyHeaderLen   = 1 + 2 // tag + length
)

// ClientHeader carries the client's own sequence and its acknowledgment of
// the highest server sequence it has seen.
type ClientHeader struct {
	CurrentSequence      uint64
	LastReceivedSequence uint64
}

// ServerHeader carries the server's global sequence at send time.
type ServerHeader struct {
	Sequence uint64
}

// ClientToServer is one inbound wire message.
type ClientToServer struct {
	Header ClientHeader
	Bodies []ClientBodyElem
}

// ServerToClient is one outbound wire message.
type ServerToClient struct {
	Header ServerHeader
	Bodies []ServerBodyElem
}

// ClientBodyElem is one self-contained payload unit inside a client message.
type ClientBodyElem interface {
	clientBody()
}

// Ping requests a Pong echoing the message's current sequence.
type Ping struct{}

// Input carries an opaque player-input payload for the input store.
type Input struct {
	Payload []byte
}

func (Ping) clientBody()  {}
func (Input) clientBody() {}

// ServerBodyElem is one self-contained payload unit inside a server message.
type ServerBodyElem interface {
	serverBody()
}

// Pong acknowledges the client message that carried the echoed sequence.
type Pong struct {
	Sequence uint64
}

// Terrain carries one opaque world snapshot.
type Terrain struct {
	Snapshot []byte
}

func (Pong) serverBody()    {}
func (Terrain) serverBody() {}
