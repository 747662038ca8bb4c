package codec

// NameFieldWidth is the fixed width, in bytes, of a participant's name
// field on the wire (§4.1: nul-terminated within a 48-byte field).
const NameFieldWidth = 48

// Participant is one driver/car entry of a Participants packet.
type Participant struct {
	AIControlled  uint8
	DriverID      uint8
	NetworkID     uint8
	TeamID        uint8
	MyTeam        uint8
	RaceNumber    uint8
	Nationality   uint8
	Name          string
	YourTelemetry uint8
	ShowOnlineNames uint8
	Platform      uint8
}

// Participants is the decoded PacketParticipantsData.
type Participants struct {
	Header        Header
	NumActiveCars uint8
	Cars          [MaxCars]Participant
}

func (Participants) isPacket() {}

func decodeParticipants(h Header, r *reader) (Participants, error) {
	p := Participants{Header: h}
	p.NumActiveCars = r.u8()
	for i := range p.Cars {
		c := &p.Cars[i]
		c.AIControlled = r.u8()
		c.DriverID = r.u8()
		c.NetworkID = r.u8()
		c.TeamID = r.u8()
		c.MyTeam = r.u8()
		c.RaceNumber = r.u8()
		c.Nationality = r.u8()
		c.Name = r.name(NameFieldWidth)
		c.YourTelemetry = r.u8()
		c.ShowOnlineNames = r.u8()
		c.Platform = r.u8()
	}
	if r.err != nil {
		return Participants{}, r.err
	}
	return p, nil
}
