// Package codec decodes the game's fixed little-endian UDP packet family.
// It is pure and total over well-formed bytes: malformed input always
// yields an error, never a panic, so the ingest loop can drop a bad
// datagram and keep running (spec.md §4.1, §7).
package codec

// Packet is the decoded form of any recognised packet kind. It is a closed
// sum type: Motion, Session, Participants, Event, SessionHistory and
// FinalClassification are the only implementations.
type Packet interface {
	isPacket()
}

// DecodeBody decodes a datagram's body given its already-decoded header.
// b must start at byte 0 of the datagram (i.e. include the header) — the
// same slice passed to DecodeHeader.
func DecodeBody(h Header, b []byte) (Packet, error) {
	if len(b) < HeaderSize {
		return nil, ErrMalformedHeader
	}

	r := newReader(b)
	r.pos = HeaderSize

	switch h.PacketID {
	case PacketIDMotion:
		return decodeMotion(h, r)
	case PacketIDSession:
		return decodeSession(h, r)
	case PacketIDParticipants:
		return decodeParticipants(h, r)
	case PacketIDEvent:
		return decodeEvent(h, r)
	case PacketIDSessionHistory:
		return decodeSessionHistory(h, r)
	case PacketIDFinalClassification:
		return decodeFinalClassification(h, r)
	default:
		return nil, ErrUnknownKind
	}
}

// Decode is the convenience entry point: decode the header, then the body.
func Decode(b []byte) (Header, Packet, error) {
	h, err := DecodeHeader(b)
	if err != nil {
		return Header{}, nil, err
	}
	p, err := DecodeBody(h, b)
	if err != nil {
		return h, nil, err
	}
	return h, p, nil
}
