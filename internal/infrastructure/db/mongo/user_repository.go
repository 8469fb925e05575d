package mongo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/todolist/todo-api/internal/core/domain"
)

const collectionUsers = "users"

// UserRepository stores accounts in the users collection. Every write runs
// the user's BeforeSave hook first, so a modified password is hashed right
// before it reaches the database.
type UserRepository struct {
	coll   *mongo.Collection
	hasher domain.PasswordHasher

	indexMu sync.Mutex
	indexed bool
}

func NewUserRepository(db *mongo.Database, hasher domain.PasswordHasher) *UserRepository {
	return &UserRepository{coll: collection(db, collectionUsers), hasher: hasher}
}

// Create inserts a new account. The unique email and username indexes are
// created before the first insert, so duplicates are rejected even when the
// database was unreachable at startup.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if r.coll == nil {
		return ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := user.BeforeSave(r.hasher, time.Now()); err != nil {
		return err
	}
	if err := r.ensureIndexesOnce(ctx); err != nil {
		return err
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// Save replaces an existing user document.
func (r *UserRepository) Save(ctx context.Context, user *domain.User) error {
	if r.coll == nil {
		return ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := user.BeforeSave(r.hasher, time.Now()); err != nil {
		return err
	}

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("save user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	if r.coll == nil {
		return nil, ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var u domain.User
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// EnsureIndexes creates the unique email and username indexes.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	if r.coll == nil {
		return ErrNotConnected
	}
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *UserRepository) ensureIndexesOnce(ctx context.Context) error {
	r.indexMu.Lock()
	defer r.indexMu.Unlock()

	if r.indexed {
		return nil
	}
	if err := r.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure user indexes: %w", err)
	}
	r.indexed = true
	return nil
}
