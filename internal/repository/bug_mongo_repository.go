package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/bug-tracker/internal/domain"
)

const bugsCollection = "bugs"

type bugDocument struct {
	ID          string    `bson:"_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	Severity    string    `bson:"severity"`
	Priority    int       `bson:"priority"`
	Status      string    `bson:"status"`
	ReportedBy  string    `bson:"reportedBy"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

func (d bugDocument) toDomain() domain.Bug {
	return domain.Bug{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Severity:    domain.BugSeverity(d.Severity),
		Priority:    d.Priority,
		Status:      domain.BugStatus(d.Status),
		ReportedBy:  d.ReportedBy,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type mongoBugRepository struct {
	coll *mongo.Collection
}

// NewMongoBugRepository returns a document-store implementation.
func NewMongoBugRepository(db *mongo.Database) BugRepository {
	return &mongoBugRepository{coll: db.Collection(bugsCollection)}
}

func (r *mongoBugRepository) Create(ctx context.Context, bug *domain.Bug) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := bugDocument{
		ID:          uuid.NewString(),
		Title:       bug.Title,
		Description: bug.Description,
		Severity:    string(bug.Severity),
		Priority:    bug.Priority,
		Status:      string(bug.Status),
		ReportedBy:  bug.ReportedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return err
	}
	bug.ID = doc.ID
	bug.CreatedAt = doc.CreatedAt
	bug.UpdatedAt = doc.UpdatedAt
	return nil
}

func (r *mongoBugRepository) List(ctx context.Context, filter BugFilter) ([]domain.Bug, error) {
	query := bson.M{}
	if filter.Status != nil {
		query["status"] = string(*filter.Status)
	}
	if filter.Priority != nil {
		query["priority"] = *filter.Priority
	}

	direction := 1
	if filter.Sort == BugSortRecent {
		direction = -1
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: direction}})

	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var docs []bugDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	result := make([]domain.Bug, 0, len(docs))
	for _, d := range docs {
		result = append(result, d.toDomain())
	}
	return result, nil
}

func (r *mongoBugRepository) GetByID(ctx context.Context, id string) (*domain.Bug, error) {
	var doc bugDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBugNotFound
		}
		return nil, err
	}
	bug := doc.toDomain()
	return &bug, nil
}

func (r *mongoBugRepository) Update(ctx context.Context, id string, patch domain.BugPatch) (*domain.Bug, error) {
	set := bson.M{"updatedAt": time.Now().UTC().Truncate(time.Millisecond)}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Severity != nil {
		set["severity"] = string(*patch.Severity)
	}
	if patch.Priority != nil {
		set["priority"] = *patch.Priority
	}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
	}
	if patch.ReportedBy != nil {
		set["reportedBy"] = *patch.ReportedBy
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc bugDocument
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBugNotFound
		}
		return nil, err
	}
	bug := doc.toDomain()
	return &bug, nil
}

func (r *mongoBugRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrBugNotFound
	}
	return nil
}
