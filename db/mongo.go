package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"potluck/models"
)

type MongoRecipeStore struct {
	coll *mongo.Collection
}

func NewMongoRecipeStore(database *mongo.Database) *MongoRecipeStore {
	return &MongoRecipeStore{coll: database.Collection(RecipeCollectionName)}
}

func (s *MongoRecipeStore) FindByID(ctx context.Context, id string) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&recipe)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

func visibleFilter(userID string) bson.M {
	return bson.M{"$or": []bson.M{
		{"owner": userID},
		{"collaborators.userId": userID},
		{"isPublic": true},
	}}
}

func (s *MongoRecipeStore) FindVisibleTo(ctx context.Context, userID string, offset, limit int64) ([]models.Recipe, error) {
	cursor, err := s.coll.Find(ctx, visibleFilter(userID), OptionsFindLatest(offset, limit))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var recipes []models.Recipe
	if err := cursor.All(ctx, &recipes); err != nil {
		return nil, err
	}
	if recipes == nil {
		recipes = []models.Recipe{}
	}
	return recipes, nil
}

func (s *MongoRecipeStore) Insert(ctx context.Context, r *models.Recipe) error {
	if r.Version == 0 {
		r.Version = 1
	}
	_, err := s.coll.InsertOne(ctx, r)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (s *MongoRecipeStore) Save(ctx context.Context, r *models.Recipe) error {
	prev := r.Version
	next := *r
	next.Version = prev + 1

	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": r.ID, "version": prev}, &next)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		n, err := s.coll.CountDocuments(ctx, bson.M{"_id": r.ID})
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	r.Version = next.Version
	return nil
}

func (s *MongoRecipeStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type MongoUserStore struct {
	coll *mongo.Collection
}

func NewMongoUserStore(database *mongo.Database) *MongoUserStore {
	return &MongoUserStore{coll: database.Collection(UserCollectionName)}
}

func (s *MongoUserStore) Insert(ctx context.Context, u *models.User) error {
	u.Email = normalizeEmail(u.Email)
	_, err := s.coll.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (s *MongoUserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *MongoUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": normalizeEmail(email)})
}
