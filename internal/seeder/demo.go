package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/waxlog/waxlog/internal/auth"
	"github.com/waxlog/waxlog/internal/model"
)

// SeedDemo creates a demo account and a few starter albums on an empty
// database. No-op when any user already exists.
func (s *Seeder) SeedDemo(ctx context.Context) error {
	seeded, err := s.repo.HasUsers(ctx)
	if err != nil {
		return err
	}
	if seeded {
		s.logger.Info("database already seeded")
		return nil
	}

	hash, err := auth.HashPassword("demo123")
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}
	demo := &model.User{
		ID:           uuid.NewString(),
		Email:        "demo@waxlog.io",
		Username:     "music_connoisseur",
		PasswordHash: hash,
		Bio:          "Dedicated crate digger. Exploring Japanese jazz fusion, 70s soul, and early synth-pop.",
	}
	if err := s.repo.InsertUser(ctx, demo); err != nil {
		return err
	}

	starters := []struct {
		title  string
		artist string
		year   int
		genres []string
	}{
		{"Currents", "Tame Impala", 2015, []string{"Psychedelic Pop", "Electronic"}},
		{"To Pimp A Butterfly", "Kendrick Lamar", 2015, []string{"Conscious Hip Hop", "Jazz Rap", "Funk"}},
		{"The New Abnormal", "The Strokes", 2020, []string{"Indie Rock"}},
	}
	for _, a := range starters {
		year := a.year
		album := &model.Album{
			ID:          uuid.NewString(),
			Title:       a.title,
			Artist:      a.artist,
			ReleaseYear: &year,
			Genres:      a.genres,
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.repo.InsertAlbumWithTracks(ctx, album, nil); err != nil {
			return err
		}
	}

	s.logger.Info("demo seed complete", slog.String("email", demo.Email))
	return nil
}

// EnsureAdmin makes sure the configured admin account exists with the admin
// flag set. An existing account matched by email or username is promoted;
// otherwise a new account is created.
func (s *Seeder) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	username := adminUsername(email)
	promoted, err := s.repo.PromoteAdmin(ctx, email, username)
	if err != nil {
		return err
	}
	if promoted {
		s.logger.Info("admin promoted", slog.String("email", email))
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := &model.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(email),
		Username:     username,
		PasswordHash: hash,
		AvatarURL:    "https://ui-avatars.com/api/?name=" + url.QueryEscape(username) + "&background=92c9a4&color=193322&size=256",
		IsAdmin:      true,
	}
	if err := s.repo.InsertUser(ctx, admin); err != nil {
		return err
	}

	s.logger.Info("admin created", slog.String("email", email))
	return nil
}

// adminUsername derives a username from the admin email's local part.
func adminUsername(email string) string {
	local := strings.SplitN(email, "@", 2)[0]
	var b strings.Builder
	for _, r := range strings.ToLower(local) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == '.':
			b.WriteRune('_')
		}
	}
	username := strings.Trim(b.String(), "_-")
	if username == "" {
		username = "admin"
	}
	return username
}
