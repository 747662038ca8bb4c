package codec

// MaxMarshalZones and MaxWeatherSamples bound the two variable-length
// (but fixed-capacity on the wire) arrays inside PacketSessionData.
const (
	MaxMarshalZones   = 21
	MaxWeatherSamples = 64
)

// MarshalZone is one segment of track under a single marshal flag.
type MarshalZone struct {
	ZoneStart float32 // fraction (0..1) of the track length where the zone starts
	ZoneFlag  int8
}

// WeatherSample is one entry of the session's rolling weather forecast.
type WeatherSample struct {
	SessionType             uint8
	TimeOffset              uint8
	Weather                 uint8
	TrackTemperature        int8
	TrackTemperatureChange  int8
	AirTemperature          int8
	AirTemperatureChange    int8
	RainPercentage          uint8
}

// Session is the decoded PacketSessionData: weather, track and rule-set
// state for the current session, plus the marshal-zone and forecast
// arrays spec.md §3 calls out by name.
type Session struct {
	Header Header

	Weather           uint8
	TrackTemperature  int8
	AirTemperature    int8
	TotalLaps         uint8
	TrackLength       uint16
	SessionType       uint8
	TrackID           int8
	Formula           uint8
	SessionTimeLeft   uint16
	SessionDuration   uint16
	PitSpeedLimit     uint8
	GamePaused        uint8
	IsSpectating      uint8
	SpectatorCarIndex uint8

	MarshalZones []MarshalZone

	SafetyCarStatus uint8
	NetworkGame     uint8

	WeatherForecastSamples []WeatherSample

	ForecastAccuracy uint8
	AIDifficulty     uint8

	SeasonLinkIdentifier   uint32
	WeekendLinkIdentifier  uint32
	SessionLinkIdentifier  uint32

	PitStopWindowIdealLap      uint8
	PitStopWindowLatestLap     uint8
	PitStopRebookingAvailable  uint8

	SteeringAssist uint8
	BrakingAssist  uint8
	GearboxAssist  uint8
	PitAssist      uint8
	PitReleaseAssist uint8
	ERSAssist      uint8
	DRSAssist      uint8

	DynamicRacingLine     uint8
	DynamicRacingLineType uint8
	GameMode              uint8
	RuleSet               uint8
	TimeOfDay             uint32
	SessionLength         uint8

	NumSafetyCarPeriods        uint8
	NumVirtualSafetyCarPeriods uint8
	NumRedFlagPeriods          uint8
}

func (Session) isPacket() {}

func decodeSession(h Header, r *reader) (Session, error) {
	s := Session{Header: h}

	s.Weather = r.u8()
	s.TrackTemperature = r.i8()
	s.AirTemperature = r.i8()
	s.TotalLaps = r.u8()
	s.TrackLength = r.u16()
	s.SessionType = r.u8()
	s.TrackID = r.i8()
	s.Formula = r.u8()
	s.SessionTimeLeft = r.u16()
	s.SessionDuration = r.u16()
	s.PitSpeedLimit = r.u8()
	s.GamePaused = r.u8()
	s.IsSpectating = r.u8()
	s.SpectatorCarIndex = r.u8()
	r.u8() // m_sliProNativeSupport, not surfaced

	numMarshalZones := r.u8()
	if r.err != nil {
		return Session{}, r.err
	}
	if int(numMarshalZones) > MaxMarshalZones {
		return Session{}, ErrTruncated
	}
	zones := make([]MarshalZone, MaxMarshalZones)
	for i := range zones {
		zones[i].ZoneStart = r.f32()
		zones[i].ZoneFlag = r.i8()
	}
	s.MarshalZones = zones[:numMarshalZones]

	s.SafetyCarStatus = r.u8()
	s.NetworkGame = r.u8()

	numWeatherSamples := r.u8()
	if r.err != nil {
		return Session{}, r.err
	}
	if int(numWeatherSamples) > MaxWeatherSamples {
		return Session{}, ErrTruncated
	}
	samples := make([]WeatherSample, MaxWeatherSamples)
	for i := range samples {
		samples[i].SessionType = r.u8()
		samples[i].TimeOffset = r.u8()
		samples[i].Weather = r.u8()
		samples[i].TrackTemperature = r.i8()
		samples[i].TrackTemperatureChange = r.i8()
		samples[i].AirTemperature = r.i8()
		samples[i].AirTemperatureChange = r.i8()
		samples[i].RainPercentage = r.u8()
	}
	s.WeatherForecastSamples = samples[:numWeatherSamples]

	s.ForecastAccuracy = r.u8()
	s.AIDifficulty = r.u8()
	s.SeasonLinkIdentifier = r.u32()
	s.WeekendLinkIdentifier = r.u32()
	s.SessionLinkIdentifier = r.u32()
	s.PitStopWindowIdealLap = r.u8()
	s.PitStopWindowLatestLap = r.u8()
	s.PitStopRebookingAvailable = r.u8()
	s.SteeringAssist = r.u8()
	s.BrakingAssist = r.u8()
	s.GearboxAssist = r.u8()
	s.PitAssist = r.u8()
	s.PitReleaseAssist = r.u8()
	s.ERSAssist = r.u8()
	s.DRSAssist = r.u8()
	s.DynamicRacingLine = r.u8()
	s.DynamicRacingLineType = r.u8()
	s.GameMode = r.u8()
	s.RuleSet = r.u8()
	s.TimeOfDay = r.u32()
	s.SessionLength = r.u8()
	r.u8() // m_speedUnitsLeadPlayer
	r.u8() // m_temperatureUnitsLeadPlayer
	r.u8() // m_speedUnitsSecondaryPlayer
	r.u8() // m_temperatureUnitsSecondaryPlayer
	s.NumSafetyCarPeriods = r.u8()
	s.NumVirtualSafetyCarPeriods = r.u8()
	s.NumRedFlagPeriods = r.u8()

	if r.err != nil {
		return Session{}, r.err
	}
	return s, nil
}
