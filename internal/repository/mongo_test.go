package repository

import (
	"context"
	"testing"

	"github.com/isdelr/user-directory/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const usersNS = "userdir.users"

func userDoc(id, username, password string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "username", Value: username},
		{Key: "password", Value: password},
	}
}

func duplicateKeyResponse() bson.D {
	return mtest.CreateCommandErrorResponse(mtest.CommandError{
		Code:    11000,
		Name:    "DuplicateKey",
		Message: "E11000 duplicate key error collection: userdir.users index: username_unique",
	})
}

func TestMongoUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("ensure indexes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		assert.NoError(mt, NewMongoUserRepository(mt.DB).EnsureIndexes(ctx))
	})

	mt.Run("list", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch,
			userDoc("1", "alice", "h1"),
			userDoc("2", "bob", "h2"),
		))

		users, err := NewMongoUserRepository(mt.DB).List(ctx)
		require.NoError(mt, err)
		assert.Equal(mt, []models.User{
			{ID: "1", Username: "alice", Password: "h1"},
			{ID: "2", Username: "bob", Password: "h2"},
		}, users)
	})

	mt.Run("list empty", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch))

		users, err := NewMongoUserRepository(mt.DB).List(ctx)
		require.NoError(mt, err)
		assert.NotNil(mt, users)
		assert.Empty(mt, users)
	})

	mt.Run("create", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := NewMongoUserRepository(mt.DB).Create(ctx, &models.User{ID: "1", Username: "alice", Password: "h"})
		assert.NoError(mt, err)
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		err := NewMongoUserRepository(mt.DB).Create(ctx, &models.User{ID: "2", Username: "alice", Password: "h"})
		assert.ErrorIs(mt, err, ErrDuplicateKey)
	})

	mt.Run("find", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch, userDoc("1", "alice", "h1")))

		u, err := NewMongoUserRepository(mt.DB).FindByUsername(ctx, "alice")
		require.NoError(mt, err)
		assert.Equal(mt, "alice", u.Username)
		assert.Equal(mt, "h1", u.Password)
	})

	mt.Run("find missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch))

		_, err := NewMongoUserRepository(mt.DB).FindByUsername(ctx, "ghost")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("update", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: userDoc("1", "alicia", "h1")},
		))

		newName := "alicia"
		u, err := NewMongoUserRepository(mt.DB).Update(ctx, "alice", models.UserUpdate{Username: &newName})
		require.NoError(mt, err)
		assert.Equal(mt, models.User{ID: "1", Username: "alicia", Password: "h1"}, u)
	})

	mt.Run("update missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		hash := "h2"
		_, err := NewMongoUserRepository(mt.DB).Update(ctx, "ghost", models.UserUpdate{PasswordHash: &hash})
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("update duplicate", func(mt *mtest.T) {
		mt.AddMockResponses(duplicateKeyResponse())

		taken := "bob"
		_, err := NewMongoUserRepository(mt.DB).Update(ctx, "alice", models.UserUpdate{Username: &taken})
		assert.ErrorIs(mt, err, ErrDuplicateKey)
	})

	mt.Run("delete", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: userDoc("1", "alice", "h1")},
		))

		u, err := NewMongoUserRepository(mt.DB).Delete(ctx, "alice")
		require.NoError(mt, err)
		assert.Equal(mt, "alice", u.Username)
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		_, err := NewMongoUserRepository(mt.DB).Delete(ctx, "ghost")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("server error is not classified", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad value",
		}))

		_, err := NewMongoUserRepository(mt.DB).Delete(ctx, "alice")
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, ErrNotFound)
		assert.NotErrorIs(mt, err, ErrDuplicateKey)
	})
}
