// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CloudPrep Contributors

// Package mongodb implements the auth repositories on MongoDB.
package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cloudprep/cloudprep/internal/auth"
)

// userDocument is the stored shape of a user record. The password field
// holds the argon2id digest, never the plaintext.
type userDocument struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	Password  string    `bson:"password"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// UserRepository implements auth.UserRepository using a MongoDB collection.
type UserRepository struct {
	coll *mongo.Collection
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(coll *mongo.Collection) *UserRepository {
	return &UserRepository{coll: coll}
}

// EnsureIndexes creates the unique email index. Email uniqueness is enforced
// here rather than by a check-then-insert in the service, so concurrent
// duplicate registrations collapse to a deterministic conflict.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return oops.Code("USER_INDEX_FAILED").
			With("collection", r.coll.Name()).
			Wrap(err)
	}
	return nil
}

// Create stores a new user.
func (r *UserRepository) Create(ctx context.Context, user *auth.User) error {
	doc := userDocument{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Password:  user.PasswordHash,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}

	_, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return oops.Code("USER_EMAIL_TAKEN").
				With("email", user.Email).
				Wrap(auth.ErrEmailTaken)
		}
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			Wrap(err)
	}
	return nil
}

// GetByEmail retrieves a user by exact email match.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	var doc userDocument
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, oops.Code("USER_NOT_FOUND").
				With("email", email).
				Wrap(auth.ErrNotFound)
		}
		return nil, oops.Code("USER_GET_FAILED").
			With("operation", "find user by email").
			Wrap(err)
	}

	return &auth.User{
		ID:           doc.ID,
		Name:         doc.Name,
		Email:        doc.Email,
		PasswordHash: doc.Password,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}, nil
}

// UpdatePassword replaces the password hash of the user with the given email.
func (r *UserRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{
			"password":   passwordHash,
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return oops.Code("USER_UPDATE_FAILED").
			With("operation", "update password").
			Wrap(err)
	}
	if res.MatchedCount == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("email", email).
			Wrap(auth.ErrNotFound)
	}
	return nil
}
