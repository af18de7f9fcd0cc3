package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chessgame/internal/database"
	"chessgame/internal/models"
	"chessgame/internal/utils"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	EnsureIndexes(ctx context.Context) error
}

type userRepository struct {
	db database.Service
}

func NewUserRepository(db database.Service) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) collection() *mongo.Collection {
	return r.db.Database().Collection("users")
}

// EnsureIndexes creates the unique email index used to reject duplicate accounts.
func (r *userRepository) EnsureIndexes(ctx context.Context) (err error) {
	done := utils.ObserveQuery("ensureIndexes", "user")
	defer func() { done(err) }()

	_, err = r.collection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to create unique email index")
		return fmt.Errorf("failed to create email index: %w", err)
	}
	return nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) (_ *models.User, err error) {
	done := utils.ObserveQuery("create", "user")
	defer func() { done(err) }()

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = r.collection().InsertOne(ctx, user)
	if err != nil {
		log.Error().Err(err).Str("email", user.Email).Msg("Failed to insert user into database")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// FindByEmail returns ErrUserNotFound when no account uses email.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (_ *models.User, err error) {
	done := utils.ObserveQuery("findByEmail", "user")
	defer func() {
		// an unknown email is a normal outcome, not a failed query
		if errors.Is(err, ErrUserNotFound) {
			done(nil)
			return
		}
		done(err)
	}()

	var user models.User
	err = r.collection().FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &user, nil
}
