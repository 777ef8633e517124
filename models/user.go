package models

import "time"

type User struct {
	ID           string    `bson:"_id"          json:"id"`
	Name         string    `bson:"name"         json:"name"`
	Email        string    `bson:"email"        json:"email"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	CreatedAt    time.Time `bson:"createdAt"    json:"createdAt"`
}

// Session is the authenticated identity attached to a request context.
type Session struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}
