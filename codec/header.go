package codec

// HeaderSize is the fixed size, in bytes, of every datagram's leading
// PacketHeader, regardless of packet kind.
const HeaderSize = 29

// PacketID is the discriminant at byte offset 6 of every packet header.
// Only the kinds named in spec.md §3 are decoded by this package; the rest
// (LapData, CarSetups, CarTelemetry, CarStatus, LobbyInfo, CarDamage,
// TyreSets, MotionEx) are recognised as valid ids but rejected by
// DecodeBody with ErrUnknownKind, since no component of this system
// consumes them.
type PacketID uint8

const (
	PacketIDMotion               PacketID = 0
	PacketIDSession              PacketID = 1
	PacketIDLapData              PacketID = 2
	PacketIDEvent                PacketID = 3
	PacketIDParticipants         PacketID = 4
	PacketIDCarSetups            PacketID = 5
	PacketIDCarTelemetry         PacketID = 6
	PacketIDCarStatus            PacketID = 7
	PacketIDFinalClassification  PacketID = 8
	PacketIDLobbyInfo            PacketID = 9
	PacketIDCarDamage            PacketID = 10
	PacketIDSessionHistory       PacketID = 11
	PacketIDTyreSets             PacketID = 12
	PacketIDMotionEx             PacketID = 13
)

// Header is the decoded form of PacketHeader. SessionUID is the partition
// key for every snapshot and dedup state; a zero value means "not yet in a
// session" and is handled by the ingest loop, not by this package.
type Header struct {
	PacketFormat            uint16
	GameYear                uint8
	GameMajorVersion        uint8
	GameMinorVersion        uint8
	PacketVersion           uint8
	PacketID                PacketID
	SessionUID              uint64
	SessionTime             float32
	FrameIdentifier         uint32
	OverallFrameIdentifier  uint32
	PlayerCarIndex          uint8
	SecondaryPlayerCarIndex uint8
}

// DecodeHeader never panics: any input shorter than HeaderSize yields
// ErrMalformedHeader instead.
func DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, ErrMalformedHeader
	}

	r := newReader(b)
	var h Header
	h.PacketFormat = r.u16()
	h.GameYear = r.u8()
	h.GameMajorVersion = r.u8()
	h.GameMinorVersion = r.u8()
	h.PacketVersion = r.u8()
	h.PacketID = PacketID(r.u8())
	h.SessionUID = r.u64()
	h.SessionTime = r.f32()
	h.FrameIdentifier = r.u32()
	h.OverallFrameIdentifier = r.u32()
	h.PlayerCarIndex = r.u8()
	h.SecondaryPlayerCarIndex = r.u8()
	if r.err != nil {
		return Header{}, ErrMalformedHeader
	}
	return h, nil
}
