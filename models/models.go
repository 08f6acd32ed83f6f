package models

import "time"

// User is a bot user, upserted on every /start.
type User struct {
	UserID    int64     `json:"user_id" bson:"user_id"`
	Username  string    `json:"username,omitempty" bson:"username,omitempty"`
	FullName  string    `json:"full_name" bson:"full_name"`
	FirstSeen time.Time `json:"first_seen" bson:"first_seen"`
}

// Photo is one record on the wall. ImageData holds the raw bytes for photos
// submitted through the bot; older records carry only ImageURL. Username is a
// snapshot of the submitter's display name at submission time and is not kept
// in sync with later renames.
type Photo struct {
	ID        string    `json:"_id" bson:"_id"`
	UserID    int64     `json:"user_id" bson:"user_id"`
	Username  string    `json:"username" bson:"username"`
	ImageData []byte    `json:"-" bson:"image_data,omitempty"`
	ImageURL  string    `json:"image_url,omitempty" bson:"image_url,omitempty"`
	PositionX int       `json:"position_x" bson:"position_x"`
	PositionY int       `json:"position_y" bson:"position_y"`
	Likes     int64     `json:"likes" bson:"likes"`
	LikedBy   []int64   `json:"liked_by" bson:"liked_by"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Stats are the wall-wide counters shown in the web app header.
// TotalUsers counts distinct photo submitters, not /start users.
type Stats struct {
	TotalPhotos int64 `json:"total_photos" bson:"total_photos"`
	TotalUsers  int64 `json:"total_users" bson:"total_users"`
	TotalLikes  int64 `json:"total_likes" bson:"total_likes"`
}

// TopUser is one leaderboard row. Username is the snapshot from an arbitrary
// photo in the group.
type TopUser struct {
	UserID      int64   `json:"user_id" bson:"_id"`
	Username    string  `json:"username" bson:"username"`
	TotalPhotos int64   `json:"total_photos" bson:"total_photos"`
	TotalLikes  int64   `json:"total_likes" bson:"total_likes"`
	AvgLikes    float64 `json:"avg_likes" bson:"avg_likes"`
}
