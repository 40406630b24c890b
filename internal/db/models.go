package db

import (
	"time"
)

// Match statuses.
const (
	MatchPending   = "pending"
	MatchConfirmed = "confirmed"
)

// User table.
//
// PrefVector caches the embedding of the user's stated preferences.
// It is regenerated lazily; PrefGeneratedAt is nil until the first
// successful embedding call and is cleared by storing a new vector.
type User struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"uniqueIndex;size:64;not null"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Active       bool   `gorm:"default:true"`
	LastLoginAt  time.Time

	// Open set of typed preferences plus the set that drives matching.
	PreferredTypes []string          `gorm:"serializer:json;type:text"`
	Preferences    map[string]string `gorm:"serializer:json;type:text"`

	PrefVector      []float32 `gorm:"serializer:json;type:text"`
	PrefGeneratedAt *time.Time

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Experience is a user-authored post describing an activity or place.
// PlaceRef and ImageURL are display-only references into external
// services; they never participate in matching.
type Experience struct {
	ID             uint64 `gorm:"primaryKey;autoIncrement"`
	OwnerID        uint64 `gorm:"index;not null"`
	Title          string `gorm:"size:255;not null"`
	Description    string `gorm:"type:text"`
	ExperienceType string `gorm:"size:64;index;not null"`
	Lat            *float64
	Lng            *float64
	PlaceRef       string `gorm:"size:128"`
	ImageURL       string `gorm:"size:512"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Swipe records a user's like/pass decision on an experience.
//
// Composite PK: (UserID, ExperienceID)
//   - Ensures a single row per pair (overwrite guarantee): a repeated
//     swipe updates Liked in place rather than duplicating.
//
// Index idx_experience_liked(experience_id, liked) optimizes like
// counting and the cascade on experience deletion.
type Swipe struct {
	UserID       uint64    `gorm:"primaryKey"`
	ExperienceID uint64    `gorm:"primaryKey;index:idx_experience_liked,priority:1"`
	Liked        bool      `gorm:"not null;index:idx_experience_liked,priority:2"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// Match is a derived record of mutual interest between an experience's
// owner and a swiper. UserAID is the swiper, UserBID the owner at
// creation time, but every lookup treats the pair as unordered: two
// rows with swapped user order for the same experience are the same
// logical match and get collapsed at read time.
type Match struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	UserAID      uint64    `gorm:"index;not null"`
	UserBID      uint64    `gorm:"index;not null"`
	ExperienceID uint64    `gorm:"index;not null"`
	Status       string    `gorm:"size:16;not null;default:pending"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// PairKey returns the canonical unordered representation of a user
// pair. Every match lookup and dedup path must go through this.
func PairKey(a, b uint64) (uint64, uint64) {
	if a > b {
		return b, a
	}
	return a, b
}
