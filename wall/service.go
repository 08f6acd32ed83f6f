package wall

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"graffiti/models"
	"graffiti/placement"
)

const defaultTopUsersLimit = 10

// Service is the photo record service, like toggler, and aggregators in one:
// the thin layer between the HTTP/bot front ends and the store.
type Service struct {
	store  Store
	place  placement.Policy
	admins map[int64]struct{}
	logger *zap.Logger
	now    func() time.Time
}

func NewService(store Store, place placement.Policy, adminIDs []int64, logger *zap.Logger) *Service {
	if place == nil {
		place = placement.Fixed{X: 100, Y: 100}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}

	return &Service{
		store:  store,
		place:  place,
		admins: admins,
		logger: logger,
		now:    time.Now,
	}
}

// SubmitPhoto persists a new photo with zero likes at a policy-chosen spot
// and returns it. Store failures propagate to the caller; the bot reports
// them to the user instead of retrying.
func (s *Service) SubmitPhoto(ctx context.Context, userID int64, username string, image []byte) (models.Photo, error) {
	id := uuid.NewString()
	x, y := s.place.Place(ctx, id)

	photo := models.Photo{
		ID:        id,
		UserID:    userID,
		Username:  username,
		ImageData: image,
		PositionX: x,
		PositionY: y,
		Likes:     0,
		LikedBy:   []int64{},
		CreatedAt: s.now().UTC(),
	}

	if err := s.store.InsertPhoto(ctx, photo); err != nil {
		return models.Photo{}, err
	}

	s.logger.Info("photo submitted",
		zap.String("photo_id", photo.ID),
		zap.Int64("user_id", userID),
		zap.Int("x", x),
		zap.Int("y", y))
	return photo, nil
}

// ListPhotos returns all photo metadata in store order. Binary payloads are
// omitted; records that store bytes get an image_url pointing at the binary
// endpoint, legacy records keep their stored URL.
func (s *Service) ListPhotos(ctx context.Context) ([]models.Photo, error) {
	photos, err := s.store.Photos(ctx)
	if err != nil {
		return nil, err
	}

	for i := range photos {
		if photos[i].ImageURL == "" {
			photos[i].ImageURL = "/api/photo/" + photos[i].ID
		}
		if photos[i].LikedBy == nil {
			photos[i].LikedBy = []int64{}
		}
	}
	return photos, nil
}

// PhotoImage returns the raw image bytes, or ErrNotFound for an absent id or
// a URL-only record.
func (s *Service) PhotoImage(ctx context.Context, id string) ([]byte, error) {
	return s.store.PhotoImage(ctx, id)
}

// DeletePhoto removes a photo. Only allow-listed admins may delete; the
// submitter gets no special rights.
func (s *Service) DeletePhoto(ctx context.Context, id string, requesterID int64) error {
	if !s.IsAdmin(requesterID) {
		return ErrAccessDenied
	}
	if err := s.store.DeletePhoto(ctx, id); err != nil {
		return err
	}
	s.logger.Info("photo deleted",
		zap.String("photo_id", id),
		zap.Int64("admin_id", requesterID))
	return nil
}

func (s *Service) IsAdmin(userID int64) bool {
	_, ok := s.admins[userID]
	return ok
}

// ToggleLike flips the liked state of a photo for one user and returns the
// resulting like count and whether the photo is now liked. Each branch is an
// atomic conditional update; a toggle that loses both branches to concurrent
// togglers is retried once.
func (s *Service) ToggleLike(ctx context.Context, id string, userID int64) (int64, bool, error) {
	for attempt := 0; attempt < 2; attempt++ {
		likes, applied, err := s.store.RemoveLike(ctx, id, userID)
		if err != nil {
			return 0, false, err
		}
		if applied {
			return likes, false, nil
		}

		likes, applied, err = s.store.AddLike(ctx, id, userID)
		if err != nil {
			return 0, false, err
		}
		if applied {
			return likes, true, nil
		}

		exists, err := s.store.PhotoExists(ctx, id)
		if err != nil {
			return 0, false, err
		}
		if !exists {
			return 0, false, ErrNotFound
		}
		// Both conditional updates missed: another toggle for the same
		// user won the race between our two branches. Go around again.
	}
	return 0, false, errors.New("like toggle lost every race, giving up")
}

// Stats computes the wall-wide counters fresh on every call.
func (s *Service) Stats(ctx context.Context) (models.Stats, error) {
	return s.store.Stats(ctx)
}

// TopUsers returns the leaderboard, at most limit entries sorted by total
// likes descending. Tie order is store-dependent.
func (s *Service) TopUsers(ctx context.Context, limit int) ([]models.TopUser, error) {
	if limit <= 0 {
		limit = defaultTopUsersLimit
	}
	users, err := s.store.TopUsers(ctx, limit)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.TopUser{}
	}
	return users, nil
}

// CountPhotos reports how many photos are on the wall.
func (s *Service) CountPhotos(ctx context.Context) (int64, error) {
	return s.store.CountPhotos(ctx)
}

// RegisterUser upserts a bot user on /start. first_seen is set once, on the
// first upsert.
func (s *Service) RegisterUser(ctx context.Context, u models.User) error {
	if u.FirstSeen.IsZero() {
		u.FirstSeen = s.now().UTC()
	}
	return s.store.UpsertUser(ctx, u)
}
