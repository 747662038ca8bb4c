package store

import "fmt"

// sessionKey builds the f123:championship:{cid}:session:{sid}:{suffix}
// key family every snapshot write uses (spec.md §6).
func sessionKey(championshipID uint32, sessionUID uint64, suffix string) string {
	return fmt.Sprintf("f123:championship:%d:session:%d:%s", championshipID, sessionUID, suffix)
}

// SessionKey is the snapshot key for a Session packet.
func SessionKey(championshipID uint32, sessionUID uint64) string {
	return sessionKey(championshipID, sessionUID, "session")
}

// ParticipantsKey is the snapshot key for a Participants packet.
func ParticipantsKey(championshipID uint32, sessionUID uint64) string {
	return sessionKey(championshipID, sessionUID, "participants")
}

// HistoryKey is the snapshot key for one car's SessionHistory.
func HistoryKey(championshipID uint32, sessionUID uint64, carIdx uint8) string {
	return sessionKey(championshipID, sessionUID, fmt.Sprintf("history:car:%d", carIdx))
}
