package codec

// MaxCars is the largest grid size the game's wire format allocates for
// per-car arrays (Motion, Participants).
const MaxCars = 22

// CarMotion is one car's slice of a Motion packet: position, velocity,
// orientation and g-forces, all in the game's native units.
type CarMotion struct {
	WorldPositionX  float32
	WorldPositionY  float32
	WorldPositionZ  float32
	WorldVelocityX  float32
	WorldVelocityY  float32
	WorldVelocityZ  float32
	WorldForwardDirX int16
	WorldForwardDirY int16
	WorldForwardDirZ int16
	WorldRightDirX   int16
	WorldRightDirY   int16
	WorldRightDirZ   int16
	GForceLateral      float32
	GForceLongitudinal float32
	GForceVertical     float32
	Yaw   float32
	Pitch float32
	Roll  float32
}

// Motion is the decoded PacketMotionData: one CarMotion per car on the
// grid, always MaxCars entries regardless of how many are actually active.
type Motion struct {
	Header Header
	Cars   [MaxCars]CarMotion
}

func (Motion) isPacket() {}

func decodeMotion(h Header, r *reader) (Motion, error) {
	m := Motion{Header: h}
	for i := range m.Cars {
		c := &m.Cars[i]
		c.WorldPositionX = r.f32()
		c.WorldPositionY = r.f32()
		c.WorldPositionZ = r.f32()
		c.WorldVelocityX = r.f32()
		c.WorldVelocityY = r.f32()
		c.WorldVelocityZ = r.f32()
		c.WorldForwardDirX = r.i16()
		c.WorldForwardDirY = r.i16()
		c.WorldForwardDirZ = r.i16()
		c.WorldRightDirX = r.i16()
		c.WorldRightDirY = r.i16()
		c.WorldRightDirZ = r.i16()
		c.GForceLateral = r.f32()
		c.GForceLongitudinal = r.f32()
		c.GForceVertical = r.f32()
		c.Yaw = r.f32()
		c.Pitch = r.f32()
		c.Roll = r.f32()
	}
	if r.err != nil {
		return Motion{}, r.err
	}
	return m, nil
}
