// Package seed provides database seeding utilities for development and
// testing. All seeded accounts share the password "password123".
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"

	"ripple/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Options configures a seeding run.
type Options struct {
	NumProfiles int
	NumPosts    int
	ShouldClean bool
	// MaxDays spreads created_at timestamps over this many days back.
	MaxDays int
}

// Seeder populates the database with generated data.
type Seeder struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // weak randomness is fine for seeding
	return &Seeder{db: db, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// ClearAll removes all seeded rows. Order matters for foreign keys.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	for _, table := range []string{"comments", "likes", "follows", "posts", "profiles"} {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

// Run executes a full seeding pass per opts.
func (s *Seeder) Run(opts Options) error {
	log.Printf("Seeding %d profiles and %d posts...", opts.NumProfiles, opts.NumPosts)

	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	profiles, err := s.SeedProfiles(opts.NumProfiles)
	if err != nil {
		return fmt.Errorf("seeding profiles: %w", err)
	}
	log.Printf("created %d profiles", len(profiles))

	posts, err := s.SeedPosts(profiles, opts.NumPosts, opts.MaxDays)
	if err != nil {
		return fmt.Errorf("seeding posts: %w", err)
	}
	log.Printf("created %d posts", len(posts))

	if err := s.SeedEngagement(profiles, posts); err != nil {
		return fmt.Errorf("seeding engagement: %w", err)
	}

	log.Println("Database seeding completed")
	return nil
}

// SeedProfiles creates n profiles with unique usernames.
func (s *Seeder) SeedProfiles(n int) ([]*models.Profile, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	profiles := make([]*models.Profile, 0, n)
	seen := make(map[string]struct{}, n)
	for len(profiles) < n {
		username := strings.ToLower(gofakeit.Username())
		username = sanitizeUsername(username)
		if _, dup := seen[username]; dup || len(username) < 3 {
			continue
		}
		seen[username] = struct{}{}

		profile := &models.Profile{
			Username:     username,
			Email:        fmt.Sprintf("%s@example.com", username),
			PasswordHash: string(hash),
			FullName:     gofakeit.Name(),
			Bio:          truncateRunes(gofakeit.HipsterSentence(8), 160),
			AvatarURL:    fmt.Sprintf("https://i.pravatar.cc/300?u=%s", username),
		}
		if err := s.db.Create(profile).Error; err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// SeedPosts creates n posts by random authors with timestamps spread over
// maxDays.
func (s *Seeder) SeedPosts(profiles []*models.Profile, n, maxDays int) ([]*models.Post, error) {
	if len(profiles) == 0 {
		return nil, nil
	}
	if maxDays <= 0 {
		maxDays = 30
	}

	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := profiles[s.rng.Intn(len(profiles))]
		post := &models.Post{
			Content:   truncateRunes(gofakeit.HipsterSentence(3+s.rng.Intn(20)), 280),
			AuthorID:  author.ID,
			CreatedAt: s.pastTime(maxDays),
		}
		if s.rng.Intn(4) == 0 {
			post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID())
		}
		if err := s.db.Create(post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// SeedEngagement adds likes, comments and follow edges between the seeded
// rows so feeds and profiles render with realistic counts.
func (s *Seeder) SeedEngagement(profiles []*models.Profile, posts []*models.Post) error {
	for _, post := range posts {
		for _, p := range s.sampleProfiles(profiles, s.rng.Intn(len(profiles)+1)/2) {
			like := &models.Like{UserID: p.ID, PostID: post.ID}
			if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error; err != nil {
				return err
			}
		}

		for i := 0; i < s.rng.Intn(4); i++ {
			commenter := profiles[s.rng.Intn(len(profiles))]
			comment := &models.Comment{
				Content:  truncateRunes(gofakeit.HipsterSentence(2+s.rng.Intn(10)), 280),
				PostID:   post.ID,
				AuthorID: commenter.ID,
			}
			if err := s.db.Create(comment).Error; err != nil {
				return err
			}
		}
	}

	for _, follower := range profiles {
		for _, followee := range s.sampleProfiles(profiles, s.rng.Intn(6)) {
			if followee.ID == follower.ID {
				continue
			}
			follow := &models.Follow{FollowerID: follower.ID, FollowedID: followee.ID}
			if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(follow).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) sampleProfiles(profiles []*models.Profile, n int) []*models.Profile {
	if n >= len(profiles) {
		n = len(profiles)
	}
	idx := s.rng.Perm(len(profiles))[:n]
	out := make([]*models.Profile, 0, n)
	for _, i := range idx {
		out = append(out, profiles[i])
	}
	return out
}

func (s *Seeder) pastTime(maxDays int) time.Time {
	back := time.Duration(s.rng.Intn(maxDays*24*60)) * time.Minute
	return time.Now().Add(-back)
}

// sanitizeUsername strips characters outside the allowed username alphabet.
func sanitizeUsername(in string) string {
	var b strings.Builder
	for _, r := range in {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		}
	}
	out := b.String()
	if len(out) > 20 {
		out = out[:20]
	}
	return out
}

func truncateRunes(in string, max int) string {
	if utf8.RuneCountInString(in) <= max {
		return in
	}
	runes := []rune(in)
	return string(runes[:max])
}
