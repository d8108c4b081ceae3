package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Username       string
	HashedPassword string
	Nickname       string
	Bio            string
	ProfileImage   string
}

// Public part of the user. Never holds password or refresh fingerprint
type Profile struct {
	ID           uuid.UUID `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	Username     string    `json:"username"`
	Nickname     string    `json:"nickname"`
	Bio          string    `json:"bio"`
	ProfileImage string    `json:"profileImage"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:           u.ID,
		CreatedAt:    u.CreatedAt,
		Username:     u.Username,
		Nickname:     u.Nickname,
		Bio:          u.Bio,
		ProfileImage: u.ProfileImage,
	}
}

// Fields to change on profile update; nil means keep as is
type ProfileUpdate struct {
	Nickname *string
	Bio      *string
}
