package wall

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"graffiti/models"
)

// MongoStore implements Store on the photos and users collections.
type MongoStore struct {
	photos *mongo.Collection
	users  *mongo.Collection
}

func NewMongoStore(photos, users *mongo.Collection) *MongoStore {
	return &MongoStore{photos: photos, users: users}
}

func (m *MongoStore) InsertPhoto(ctx context.Context, p models.Photo) error {
	if _, err := m.photos.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert photo: %w", err)
	}
	return nil
}

func (m *MongoStore) Photos(ctx context.Context) ([]models.Photo, error) {
	opts := options.Find().SetProjection(bson.M{"image_data": 0})
	cursor, err := m.photos.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find photos: %w", err)
	}
	defer cursor.Close(ctx)

	var photos []models.Photo
	if err := cursor.All(ctx, &photos); err != nil {
		return nil, fmt.Errorf("decode photos: %w", err)
	}
	return photos, nil
}

func (m *MongoStore) PhotoImage(ctx context.Context, id string) ([]byte, error) {
	opts := options.FindOne().SetProjection(bson.M{"image_data": 1})

	var doc struct {
		ImageData []byte `bson:"image_data"`
	}
	err := m.photos.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find photo image: %w", err)
	}
	if len(doc.ImageData) == 0 {
		// URL-variant record from before binary storage.
		return nil, ErrNotFound
	}
	return doc.ImageData, nil
}

func (m *MongoStore) DeletePhoto(ctx context.Context, id string) error {
	res, err := m.photos.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddLike applies the like only when userID is not yet in liked_by. The
// membership check lives in the update filter, so the check and the mutation
// are a single server-side operation and likes stays equal to len(liked_by)
// under concurrent togglers.
func (m *MongoStore) AddLike(ctx context.Context, id string, userID int64) (int64, bool, error) {
	filter := bson.M{"_id": id, "liked_by": bson.M{"$ne": userID}}
	update := bson.M{
		"$addToSet": bson.M{"liked_by": userID},
		"$inc":      bson.M{"likes": 1},
	}
	return m.applyLike(ctx, filter, update)
}

// RemoveLike is the mirror of AddLike: it applies only when userID is a
// member of liked_by.
func (m *MongoStore) RemoveLike(ctx context.Context, id string, userID int64) (int64, bool, error) {
	filter := bson.M{"_id": id, "liked_by": userID}
	update := bson.M{
		"$pull": bson.M{"liked_by": userID},
		"$inc":  bson.M{"likes": -1},
	}
	return m.applyLike(ctx, filter, update)
}

func (m *MongoStore) applyLike(ctx context.Context, filter, update bson.M) (int64, bool, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"likes": 1})

	var doc struct {
		Likes int64 `bson:"likes"`
	}
	err := m.photos.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("update likes: %w", err)
	}
	return doc.Likes, true, nil
}

func (m *MongoStore) PhotoExists(ctx context.Context, id string) (bool, error) {
	count, err := m.photos.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("count photo: %w", err)
	}
	return count > 0, nil
}

func (m *MongoStore) CountPhotos(ctx context.Context) (int64, error) {
	count, err := m.photos.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count photos: %w", err)
	}
	return count, nil
}

func (m *MongoStore) Stats(ctx context.Context) (models.Stats, error) {
	total, err := m.photos.CountDocuments(ctx, bson.M{})
	if err != nil {
		return models.Stats{}, fmt.Errorf("count photos: %w", err)
	}

	submitters, err := m.photos.Distinct(ctx, "user_id", bson.M{})
	if err != nil {
		return models.Stats{}, fmt.Errorf("distinct submitters: %w", err)
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$likes"},
		}}},
	}
	cursor, err := m.photos.Aggregate(ctx, pipeline)
	if err != nil {
		return models.Stats{}, fmt.Errorf("sum likes: %w", err)
	}
	defer cursor.Close(ctx)

	var sums []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &sums); err != nil {
		return models.Stats{}, fmt.Errorf("decode like sum: %w", err)
	}

	stats := models.Stats{
		TotalPhotos: total,
		TotalUsers:  int64(len(submitters)),
	}
	if len(sums) > 0 {
		stats.TotalLikes = sums[0].Total
	}
	return stats, nil
}

func (m *MongoStore) TopUsers(ctx context.Context, limit int) ([]models.TopUser, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{
			"_id":          "$user_id",
			"username":     bson.M{"$first": "$username"},
			"total_photos": bson.M{"$sum": 1},
			"total_likes":  bson.M{"$sum": "$likes"},
			"avg_likes":    bson.M{"$avg": "$likes"},
		}}},
		bson.D{{Key: "$sort", Value: bson.M{"total_likes": -1}}},
		bson.D{{Key: "$limit", Value: limit}},
	}

	cursor, err := m.photos.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate top users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.TopUser
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode top users: %w", err)
	}
	return users, nil
}

func (m *MongoStore) UpsertUser(ctx context.Context, u models.User) error {
	filter := bson.M{"user_id": u.UserID}
	update := bson.M{
		"$set": bson.M{
			"username":  u.Username,
			"full_name": u.FullName,
		},
		"$setOnInsert": bson.M{"first_seen": u.FirstSeen},
	}
	_, err := m.users.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}
