package realtime

import "strconv"

// Publisher pushes an event to every live connection of one user.
type Publisher interface {
	Publish(userID uint64, event string, payload any)
}

// RoomFor returns the room a user's connections join.
func RoomFor(userID uint64) string {
	return "user:" + strconv.FormatUint(userID, 10)
}

// NopPublisher drops every event. Used when the hub is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(uint64, string, any) {}
