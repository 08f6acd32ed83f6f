package wall

import (
	"context"
	"errors"

	"graffiti/models"
)

var (
	// ErrNotFound means the referenced photo id is absent, or the record
	// carries no binary image.
	ErrNotFound = errors.New("photo not found")
	// ErrAccessDenied means the requester is not on the admin allow-list.
	ErrAccessDenied = errors.New("access denied")
)

// Store is the persistence surface of the wall. AddLike and RemoveLike must
// evaluate the liked_by membership check and the counter mutation as one
// atomic conditional update: AddLike applies only if userID is not yet a
// member, RemoveLike only if it is. Both report the resulting like count and
// whether the update applied.
type Store interface {
	InsertPhoto(ctx context.Context, p models.Photo) error
	// Photos returns all photos in store order with image bytes omitted.
	Photos(ctx context.Context) ([]models.Photo, error)
	PhotoImage(ctx context.Context, id string) ([]byte, error)
	DeletePhoto(ctx context.Context, id string) error

	AddLike(ctx context.Context, id string, userID int64) (likes int64, applied bool, err error)
	RemoveLike(ctx context.Context, id string, userID int64) (likes int64, applied bool, err error)
	PhotoExists(ctx context.Context, id string) (bool, error)

	CountPhotos(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (models.Stats, error)
	TopUsers(ctx context.Context, limit int) ([]models.TopUser, error)

	UpsertUser(ctx context.Context, u models.User) error
}
