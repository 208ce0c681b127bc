package model

import "time"

// User is the authenticated principal owning records. Only identity and the
// credential hash matter here; everything else about users lives outside
// this service.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
