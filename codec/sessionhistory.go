package codec

// MaxLapHistory and MaxTyreStints bound SessionHistory's two wire arrays.
const (
	MaxLapHistory = 100
	MaxTyreStints = 8
)

// SectorTriple is the (sector1, sector2, sector3) times of one lap, in
// milliseconds. The dedup tracker in ingest/history.go compares these by
// value to decide whether a SessionHistory update is new information.
type SectorTriple struct {
	Sector1Ms uint32
	Sector2Ms uint32
	Sector3Ms uint32
}

// LapHistory is one lap's entry in a car's session history.
type LapHistory struct {
	LapTimeMs        uint32
	Sectors          SectorTriple
	LapValidBitFlags uint8
}

// TyreStint is one stint's entry in a car's tyre-stint history.
type TyreStint struct {
	EndLap              uint8
	TyreActualCompound  uint8
	TyreVisualCompound  uint8
}

// SessionHistory is the decoded PacketSessionHistoryData for a single car.
// Its snapshot key is (championship, session_uid, CarIdx); the ingest
// loop's per-car dedup state is keyed by CarIdx alone and lasts for the
// listener's lifetime, so it is not reset when session_uid changes.
type SessionHistory struct {
	Header Header

	CarIdx            uint8
	NumLaps           uint8
	NumTyreStints     uint8
	BestLapTimeLapNum uint8
	BestSector1LapNum uint8
	BestSector2LapNum uint8
	BestSector3LapNum uint8

	Laps       []LapHistory
	TyreStints []TyreStint
}

func (SessionHistory) isPacket() {}

// LastLap returns the most recently recorded lap, or (zero value, false)
// if no laps have been recorded yet.
func (s SessionHistory) LastLap() (LapHistory, bool) {
	if s.NumLaps == 0 || len(s.Laps) == 0 {
		return LapHistory{}, false
	}
	return s.Laps[s.NumLaps-1], true
}

func decodeSessionHistory(h Header, r *reader) (SessionHistory, error) {
	s := SessionHistory{Header: h}
	s.CarIdx = r.u8()
	s.NumLaps = r.u8()
	s.NumTyreStints = r.u8()
	s.BestLapTimeLapNum = r.u8()
	s.BestSector1LapNum = r.u8()
	s.BestSector2LapNum = r.u8()
	s.BestSector3LapNum = r.u8()
	if r.err != nil {
		return SessionHistory{}, r.err
	}
	if int(s.NumLaps) > MaxLapHistory || int(s.NumTyreStints) > MaxTyreStints {
		return SessionHistory{}, ErrTruncated
	}

	laps := make([]LapHistory, MaxLapHistory)
	for i := range laps {
		lapTimeMs := r.u32()
		sector1Ms := r.u16()
		sector1Min := r.u8()
		sector2Ms := r.u16()
		sector2Min := r.u8()
		sector3Ms := r.u16()
		sector3Min := r.u8()
		validFlags := r.u8()
		laps[i] = LapHistory{
			LapTimeMs: lapTimeMs,
			Sectors: SectorTriple{
				Sector1Ms: uint32(sector1Min)*60000 + uint32(sector1Ms),
				Sector2Ms: uint32(sector2Min)*60000 + uint32(sector2Ms),
				Sector3Ms: uint32(sector3Min)*60000 + uint32(sector3Ms),
			},
			LapValidBitFlags: validFlags,
		}
	}
	s.Laps = laps[:s.NumLaps]

	stints := make([]TyreStint, MaxTyreStints)
	for i := range stints {
		stints[i].EndLap = r.u8()
		stints[i].TyreActualCompound = r.u8()
		stints[i].TyreVisualCompound = r.u8()
	}
	s.TyreStints = stints[:s.NumTyreStints]

	if r.err != nil {
		return SessionHistory{}, r.err
	}
	return s, nil
}
