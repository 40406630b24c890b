package db

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var seedExperienceTypes = []string{
	"Coffee", "Hiking", "Museum", "Street Food", "Live Music", "Cycling",
}

// SeedTestData resets the database and populates it with demo users,
// experiences and swipes.
//
// Behavior:
//  1. Clears existing data in all core tables.
//  2. Creates 12 users, each with two preferred experience types.
//  3. Creates 3 experiences per user spread across the type set.
//  4. Generates swipes with ~70% likes; likes on others' experiences
//     produce pending matches, and every 4th gets confirmed.
//
// Compatible with both MySQL and SQLite.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	for _, table := range []string{"matches", "swipes", "experiences", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE matches AUTO_INCREMENT = 1")
		db.Exec("ALTER TABLE experiences AUTO_INCREMENT = 1")
		db.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name IN ('matches', 'experiences', 'users')")
	}

	log.Println("Cleared existing data")

	// --- Seed Users ---
	users := make([]User, 0, 12)
	for i := 1; i <= 12; i++ {
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		user := User{
			Username:     fmt.Sprintf("user%d", i),
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: string(hash),
			Active:       true,
			LastLoginAt:  time.Now().Add(-time.Duration(r.Intn(500)) * time.Hour),
			PreferredTypes: []string{
				seedExperienceTypes[(i-1)%len(seedExperienceTypes)],
				seedExperienceTypes[(i+1)%len(seedExperienceTypes)],
			},
			Preferences: map[string]string{"radius_km": "25"},
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("Seeded %d users.", len(users))

	// --- Seed Experiences (3 per user) ---
	experiences := make([]Experience, 0, len(users)*3)
	for _, u := range users {
		for j := 0; j < 3; j++ {
			expType := seedExperienceTypes[r.Intn(len(seedExperienceTypes))]
			exp := Experience{
				OwnerID:        u.ID,
				Title:          fmt.Sprintf("%s with %s", expType, u.Username),
				Description:    fmt.Sprintf("A %s experience hosted by %s", expType, u.Username),
				ExperienceType: expType,
			}
			if err := db.Create(&exp).Error; err != nil {
				return fmt.Errorf("failed to seed experience: %w", err)
			}
			experiences = append(experiences, exp)
		}
	}
	log.Printf("Seeded %d experiences.", len(experiences))

	// --- Seed Swipes + Matches ---
	counter := 0
	for _, u := range users {
		for j := 0; j < 8; j++ {
			exp := experiences[r.Intn(len(experiences))]
			if exp.OwnerID == u.ID {
				continue
			}

			liked := r.Intn(100) < 70
			swipe := Swipe{UserID: u.ID, ExperienceID: exp.ID, Liked: liked}
			if err := db.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "experience_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"liked", "updated_at"}),
			}).Create(&swipe).Error; err != nil {
				return fmt.Errorf("failed to seed swipe: %w", err)
			}

			if !liked {
				continue
			}

			// like on someone else's experience → pending match unless
			// the pair already matched on it
			var existing Match
			err := db.Where("experience_id = ?", exp.ID).
				Where("(user_a_id = ? AND user_b_id = ?) OR (user_a_id = ? AND user_b_id = ?)",
					u.ID, exp.OwnerID, exp.OwnerID, u.ID).
				First(&existing).Error
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}

			status := MatchPending
			if counter%4 == 0 {
				status = MatchConfirmed
			}
			match := Match{
				UserAID:      u.ID,
				UserBID:      exp.OwnerID,
				ExperienceID: exp.ID,
				Status:       status,
			}
			if err := db.Create(&match).Error; err != nil {
				return fmt.Errorf("failed to seed match: %w", err)
			}
			counter++
		}
	}
	log.Printf("Seeded swipes and %d matches.", counter)

	return nil
}
