package worksheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/worksheet-lab/pkg/lifecycle"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the MongoDB collection holding worksheet documents.
const Collection = "worksheets"

type mongoDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Title         string             `bson:"title"`
	Description   string             `bson:"description"`
	Category      string             `bson:"category"`
	Subject       string             `bson:"subject"`
	Tags          []string           `bson:"tags"`
	Grade         string             `bson:"grade"`
	AgeGroup      string             `bson:"ageGroup"`
	FileURL       string             `bson:"fileUrl"`
	FileName      string             `bson:"fileName"`
	OriginalName  string             `bson:"originalName"`
	ContentType   string             `bson:"contentType,omitempty"`
	SizeBytes     int64              `bson:"sizeBytes,omitempty"`
	PageCount     *int               `bson:"pageCount,omitempty"`
	ThumbnailURL  string             `bson:"thumbnailUrl,omitempty"`
	ThumbnailName string             `bson:"thumbnailName,omitempty"`
	UploadDate    time.Time          `bson:"uploadDate"`
}

func toMongoDocument(w *Worksheet) mongoDocument {
	return mongoDocument{
		Title:         w.Title,
		Description:   w.Description,
		Category:      w.Category,
		Subject:       w.Subject,
		Tags:          w.Tags,
		Grade:         w.Grade,
		AgeGroup:      w.AgeGroup,
		FileURL:       w.FileURL,
		FileName:      w.FileName,
		OriginalName:  w.OriginalName,
		ContentType:   w.ContentType,
		SizeBytes:     w.SizeBytes,
		PageCount:     w.PageCount,
		ThumbnailURL:  w.ThumbnailURL,
		ThumbnailName: w.ThumbnailName,
		UploadDate:    w.UploadDate,
	}
}

func (d mongoDocument) worksheet() Worksheet {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return Worksheet{
		ID:            d.ID.Hex(),
		Title:         d.Title,
		Description:   d.Description,
		Category:      d.Category,
		Subject:       d.Subject,
		Tags:          tags,
		Grade:         d.Grade,
		AgeGroup:      d.AgeGroup,
		FileURL:       d.FileURL,
		FileName:      d.FileName,
		OriginalName:  d.OriginalName,
		ContentType:   d.ContentType,
		SizeBytes:     d.SizeBytes,
		PageCount:     d.PageCount,
		ThumbnailURL:  d.ThumbnailURL,
		ThumbnailName: d.ThumbnailName,
		UploadDate:    d.UploadDate,
	}
}

type mongoStore struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewMongoStore creates a Store backed by the worksheets collection of db.
// The upload date index is created once startup begins.
func NewMongoStore(db *mongo.Database, lc *lifecycle.Coordinator, logger *slog.Logger) Store {
	s := &mongoStore{
		coll:   db.Collection(Collection),
		logger: logger.With("store", "mongo"),
	}

	lc.OnStartup(func() {
		ctx, cancel := context.WithTimeout(lc.Context(), 30*time.Second)
		defer cancel()

		if err := s.ensureIndexes(ctx); err != nil {
			s.logger.Warn("index creation failed", "error", err)
		}
	})

	return s
}

func (s *mongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "uploadDate", Value: -1}},
	})
	return err
}

func (s *mongoStore) Insert(ctx context.Context, w *Worksheet) (*Worksheet, error) {
	doc := toMongoDocument(w)

	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert worksheet: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert worksheet: unexpected id type %T", res.InsertedID)
	}
	doc.ID = oid

	out := doc.worksheet()
	return &out, nil
}

func (s *mongoStore) Find(ctx context.Context, id string) (*Worksheet, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc mongoDocument
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mapMongoError(err)
	}

	out := doc.worksheet()
	return &out, nil
}

func (s *mongoStore) List(ctx context.Context, filters Filters, limit int) ([]Worksheet, error) {
	opts := options.Find().SetSort(bson.D{{Key: "uploadDate", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := s.coll.Find(ctx, filters.BSON(), opts)
	if err != nil {
		return nil, fmt.Errorf("query worksheets: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode worksheets: %w", err)
	}

	out := make([]Worksheet, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.worksheet())
	}
	return out, nil
}

func (s *mongoStore) Update(ctx context.Context, id string, cmd EditCommand) (*Worksheet, error) {
	if cmd.Empty() {
		return s.Find(ctx, id)
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	set := bson.M{}
	if cmd.Title != nil {
		set["title"] = *cmd.Title
	}
	if cmd.Description != nil {
		set["description"] = *cmd.Description
	}
	if cmd.Category != nil {
		set["category"] = *cmd.Category
	}
	if cmd.Tags != nil {
		set["tags"] = ParseTags(*cmd.Tags)
	}
	if cmd.Grade != nil {
		set["grade"] = *cmd.Grade
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc mongoDocument
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		return nil, mapMongoError(err)
	}

	out := doc.worksheet()
	return &out, nil
}

func (s *mongoStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete worksheet: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func mapMongoError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
