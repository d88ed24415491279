package notify

import "time"

// TopicUserRegistered is the topic welcome notifications are driven from.
const TopicUserRegistered = "user.registered"

// UserRegisteredEvent is emitted after a successful registration.
type UserRegisteredEvent struct {
	UserID       int64     `json:"userId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	RegisteredAt time.Time `json:"registeredAt"`
}
