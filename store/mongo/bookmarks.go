package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/movienight/movienight/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type bookmarkStore struct {
	db       *mongo.Database
	col      *mongo.Collection
	identity store.Identity
}

// BookmarksStore returns the per-account bookmark store. Every operation is a
// no-op with an empty result while identity reports no signed-in user.
func BookmarksStore(db *mongo.Database, identity store.Identity) store.BookmarkStore {
	return &bookmarkStore{
		db:       db,
		col:      db.Collection(bookmarksCollection),
		identity: identity,
	}
}

type bookmarkDocument struct {
	UserID    string       `bson:"user_id"`
	MovieID   int64        `bson:"movie_id"`
	Status    store.Status `bson:"status"`
	CreatedAt time.Time    `bson:"created_at"`
	Movie     store.Movie  `bson:"movie"`
}

func (b *bookmarkStore) AddBookmark(ctx context.Context, bookmark *store.Bookmark) error {
	userID, err := b.user(ctx)
	if err != nil || userID == "" {
		return err
	}

	if err := bookmark.Validate(); err != nil {
		return err
	}

	movieID, err := bookmark.MovieID.Int64()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = b.movies().UpdateOne(
		ctx,
		bson.M{"movie_id": movieID},
		bson.M{"$set": store.Movie{
			ID:           movieID,
			Title:        bookmark.Title,
			Overview:     bookmark.Overview,
			PosterPath:   bookmark.PosterPath,
			BackdropPath: bookmark.BackdropPath,
			Type:         bookmark.Type,
			UpdatedAt:    now,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert movie: %w", err)
	}

	createdAt := bookmark.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	_, err = b.col.UpdateOne(
		ctx,
		bson.M{"user_id": userID, "movie_id": movieID},
		bson.M{
			"$set":         bson.M{"status": bookmark.Status, "updated_at": now},
			"$setOnInsert": bson.M{"created_at": createdAt},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert bookmark: %w", err)
	}

	return nil
}

func (b *bookmarkStore) ListBookmarks(ctx context.Context) ([]*store.Bookmark, error) {
	userID, err := b.user(ctx)
	if err != nil {
		return nil, err
	}

	bookmarks := make([]*store.Bookmark, 0)
	if userID == "" {
		return bookmarks, nil
	}

	cur, err := b.col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: store.Descending}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         moviesCollection,
			"localField":   "movie_id",
			"foreignField": "movie_id",
			"as":           "movie",
		}}},
		{{Key: "$unwind", Value: "$movie"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find bookmarks: %w", err)
	}

	docs := make([]*bookmarkDocument, 0)
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode to bookmarks: %w", err)
	}

	for _, doc := range docs {
		bookmarks = append(bookmarks, &store.Bookmark{
			MovieID:      store.NewMovieID(doc.MovieID),
			Title:        doc.Movie.Title,
			Overview:     doc.Movie.Overview,
			PosterPath:   doc.Movie.PosterPath,
			BackdropPath: doc.Movie.BackdropPath,
			Type:         doc.Movie.Type,
			Status:       doc.Status,
			CreatedAt:    doc.CreatedAt,
		})
	}

	return bookmarks, nil
}

func (b *bookmarkStore) DeleteBookmark(ctx context.Context, id store.MovieID) error {
	userID, err := b.user(ctx)
	if err != nil || userID == "" {
		return err
	}

	movieID, err := id.Int64()
	if err != nil {
		return err
	}

	if _, err := b.col.DeleteOne(ctx, bson.M{"user_id": userID, "movie_id": movieID}); err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}

	return nil
}

func (b *bookmarkStore) ClearBookmarks(ctx context.Context) error {
	userID, err := b.user(ctx)
	if err != nil || userID == "" {
		return err
	}

	if _, err := b.col.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("failed to clear bookmarks: %w", err)
	}

	return nil
}

func (b *bookmarkStore) BookmarkStatus(ctx context.Context, id store.MovieID) (store.Status, error) {
	userID, err := b.user(ctx)
	if err != nil {
		return "", err
	}

	if userID == "" {
		return "", store.ErrBookmarkNotFound
	}

	movieID, err := id.Int64()
	if err != nil {
		return "", err
	}

	var doc struct {
		Status store.Status `bson:"status"`
	}

	err = b.col.FindOne(
		ctx,
		bson.M{"user_id": userID, "movie_id": movieID},
		options.FindOne().SetProjection(bson.M{"status": 1}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", store.ErrBookmarkNotFound
	}

	if err != nil {
		return "", fmt.Errorf("failed to find bookmark: %w", err)
	}

	return doc.Status, nil
}

func (b *bookmarkStore) UpdateBookmarkStatus(ctx context.Context, id store.MovieID, status store.Status) error {
	userID, err := b.user(ctx)
	if err != nil || userID == "" {
		return err
	}

	if !status.Valid() {
		return fmt.Errorf("%w: %q", store.ErrInvalidStatus, status)
	}

	movieID, err := id.Int64()
	if err != nil {
		return err
	}

	_, err = b.col.UpdateOne(
		ctx,
		bson.M{"user_id": userID, "movie_id": movieID},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update bookmark status: %w", err)
	}

	return nil
}

func (b *bookmarkStore) user(ctx context.Context) (string, error) {
	userID, err := b.identity.UserID(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to resolve user: %w", err)
	}

	return userID, nil
}

func (b *bookmarkStore) movies() *mongo.Collection {
	return b.db.Collection(moviesCollection)
}
