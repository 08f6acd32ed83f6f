package placement

import (
	"context"
	"hash/fnv"

	"github.com/redis/go-redis/v9"
)

// Policy picks wall coordinates for a new photo. Implementations must not
// keep per-process state the wall depends on; the service layer round-trips
// everything else to the store.
type Policy interface {
	Place(ctx context.Context, photoID string) (x, y int)
}

// Fixed always returns the same spot. This is the original behavior, where
// every photo landed on 100,100.
type Fixed struct {
	X, Y int
}

func (f Fixed) Place(context.Context, string) (int, int) {
	return f.X, f.Y
}

// Wall geometry for the scatter policy. The web client renders photos at
// roughly 150px, so a 180px cell keeps neighbors from fully covering each
// other while the jitter keeps the grid from looking mechanical.
const (
	scatterColumns = 8
	scatterCell    = 180
	scatterMargin  = 40
	scatterJitter  = 48
)

const scatterSeqKey = "wall:placement:seq"

// Scatter walks a grid left-to-right, top-to-bottom, driven by a monotonic
// sequence that survives restarts: Redis INCR when available, otherwise a
// count supplied by the store. Jitter is derived from the photo id so a
// given photo always lands on the same spot.
type Scatter struct {
	rds      *redis.Client
	fallback func(ctx context.Context) (int64, error)
}

// NewScatter builds a scatter policy. rds may be nil; fallback should return
// the current number of photos on the wall and may be nil as well, in which
// case the sequence restarts from zero each boot.
func NewScatter(rds *redis.Client, fallback func(ctx context.Context) (int64, error)) *Scatter {
	return &Scatter{rds: rds, fallback: fallback}
}

func (s *Scatter) Place(ctx context.Context, photoID string) (int, int) {
	seq := s.next(ctx)

	col := int(seq % scatterColumns)
	row := int(seq / scatterColumns)

	jx, jy := jitter(photoID)
	x := scatterMargin + col*scatterCell + jx
	y := scatterMargin + row*scatterCell + jy
	return x, y
}

func (s *Scatter) next(ctx context.Context) int64 {
	if s.rds != nil {
		if v, err := s.rds.Incr(ctx, scatterSeqKey).Result(); err == nil {
			return v - 1
		}
	}
	if s.fallback != nil {
		if n, err := s.fallback(ctx); err == nil {
			return n
		}
	}
	return 0
}

func jitter(photoID string) (int, int) {
	h := fnv.New64a()
	h.Write([]byte(photoID))
	sum := h.Sum64()
	jx := int(sum % scatterJitter)
	jy := int((sum >> 16) % scatterJitter)
	return jx, jy
}
