package profile

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/sparkmeet/sparkmeet-api/internal/domain"
)

// avatarURLTTL bounds how long a presigned avatar link stays valid. Clients
// re-fetch the profile when a link goes stale.
const avatarURLTTL = time.Hour

type SaveRequest struct {
	Nickname   string `json:"nickname" validate:"required,max=32"`
	Gender     string `json:"gender" validate:"omitempty,oneof=man woman"`
	Birthday   string `json:"birthday" validate:"omitempty,datetime=2006-01-02"`
	City       string `json:"city" validate:"omitempty,max=64"`
	Income     string `json:"income" validate:"omitempty,max=32"`
	Education  string `json:"education" validate:"omitempty,max=32"`
	Profession string `json:"profession" validate:"omitempty,max=64"`
}

// Service covers post-login profile completion and avatar upload. The profile
// row stores the avatar's object key; responses carry presigned URLs so the
// bucket can stay private.
type Service interface {
	Save(ctx context.Context, userID string, req SaveRequest) error
	Get(ctx context.Context, userID string) (*domain.Profile, error)
	UpdateAvatar(ctx context.Context, userID, filename string, image []byte) (string, error)
}

type profileStore interface {
	Put(ctx context.Context, p *domain.Profile) error
	Get(ctx context.Context, userID string) (*domain.Profile, error)
	UpdateAvatar(ctx context.Context, userID, avatarKey string) error
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type faceDetector interface {
	Detect(ctx context.Context, image []byte) (bool, error)
}

type service struct {
	profiles profileStore
	objects  objectStore
	faces    faceDetector
}

type ServiceDeps struct {
	Profiles profileStore
	Objects  objectStore
	Faces    faceDetector
}

func NewService(deps ServiceDeps) Service {
	return &service{profiles: deps.Profiles, objects: deps.Objects, faces: deps.Faces}
}

func (s *service) Save(ctx context.Context, userID string, req SaveRequest) error {
	existing, err := s.profiles.Get(ctx, userID)
	p := &domain.Profile{UserID: userID}
	if err == nil {
		// Keep the avatar set through the upload endpoint.
		p.Avatar = existing.Avatar
		p.CreatedAt = existing.CreatedAt
	}
	p.Nickname = req.Nickname
	p.Gender = req.Gender
	p.Birthday = req.Birthday
	p.City = req.City
	p.Income = req.Income
	p.Education = req.Education
	p.Profession = req.Profession
	return s.profiles.Put(ctx, p)
}

// Get returns the profile with the stored avatar key swapped for a presigned
// URL the client can actually fetch.
func (s *service) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p.Avatar != "" {
		url, err := s.objects.PresignedURL(ctx, p.Avatar, avatarURLTTL)
		if err != nil {
			return nil, err
		}
		p.Avatar = url
	}
	return p, nil
}

// UpdateAvatar stores the image, records its object key on the profile, and
// returns a presigned URL for immediate display. Images without a detectable
// face are rejected. The replaced object, if any, is removed best-effort.
func (s *service) UpdateAvatar(ctx context.Context, userID, filename string, image []byte) (string, error) {
	ok, err := s.faces.Detect(ctx, image)
	if err != nil {
		return "", fmt.Errorf("face detection: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("no face detected in image: %w", domain.ErrBadRequest)
	}

	var oldKey string
	if existing, err := s.profiles.Get(ctx, userID); err == nil {
		oldKey = existing.Avatar
	}

	safeName := sanitizeFilename(filename)
	key := fmt.Sprintf("avatars/%s/%s", userID, safeName)
	if err := s.objects.Upload(ctx, key, bytes.NewReader(image), contentTypeFromName(safeName)); err != nil {
		return "", err
	}
	if err := s.profiles.UpdateAvatar(ctx, userID, key); err != nil {
		return "", err
	}
	if oldKey != "" && oldKey != key {
		if err := s.objects.Delete(ctx, oldKey); err != nil {
			slog.Warn("failed to delete replaced avatar", "key", oldKey, "err", err)
		}
	}
	return s.objects.PresignedURL(ctx, key, avatarURLTTL)
}

func sanitizeFilename(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	return strings.ReplaceAll(base, " ", "_")
}

func contentTypeFromName(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}
