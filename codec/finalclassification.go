package codec

// MaxTyreStintsFinal bounds the per-car tyre-stint arrays in a
// FinalClassification packet.
const MaxTyreStintsFinal = 8

// FinalClassificationEntry is one car's row in the final results table.
type FinalClassificationEntry struct {
	Position      uint8
	NumLaps       uint8
	GridPosition  uint8
	Points        uint8
	NumPitStops   uint8
	ResultStatus  uint8
	ResultReason  uint8
	BestLapTimeMs uint32
	TotalRaceTime float64
	PenaltiesTime uint8
	NumPenalties  uint8
	NumTyreStints uint8
	TyreStintsActual [MaxTyreStintsFinal]uint8
	TyreStintsVisual [MaxTyreStintsFinal]uint8
	TyreStintsEndLaps [MaxTyreStintsFinal]uint8
}

// FinalClassification is the decoded PacketFinalClassificationData. Its
// receipt ends the ingest loop's state machine (spec.md §4.5): it is
// broadcast exactly once and then the listener transitions to Draining.
type FinalClassification struct {
	Header  Header
	NumCars uint8
	Cars    [MaxCars]FinalClassificationEntry
}

func (FinalClassification) isPacket() {}

func decodeFinalClassification(h Header, r *reader) (FinalClassification, error) {
	f := FinalClassification{Header: h}
	f.NumCars = r.u8()
	for i := range f.Cars {
		c := &f.Cars[i]
		c.Position = r.u8()
		c.NumLaps = r.u8()
		c.GridPosition = r.u8()
		c.Points = r.u8()
		c.NumPitStops = r.u8()
		c.ResultStatus = r.u8()
		c.ResultReason = r.u8()
		c.BestLapTimeMs = r.u32()
		c.TotalRaceTime = r.f64()
		c.PenaltiesTime = r.u8()
		c.NumPenalties = r.u8()
		c.NumTyreStints = r.u8()
		for j := range c.TyreStintsActual {
			c.TyreStintsActual[j] = r.u8()
		}
		for j := range c.TyreStintsVisual {
			c.TyreStintsVisual[j] = r.u8()
		}
		for j := range c.TyreStintsEndLaps {
			c.TyreStintsEndLaps[j] = r.u8()
		}
	}
	if r.err != nil {
		return FinalClassification{}, r.err
	}
	return f, nil
}
