package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGenerateAndParseJWT(t *testing.T) {
	id := primitive.NewObjectID()

	token, err := GenerateJWT(id, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, id.Hex(), claims.ID)
}

func TestParseJWT_Rejects(t *testing.T) {
	id := primitive.NewObjectID()

	expired, err := GenerateJWT(id, "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(expired, "secret")
	assert.Error(t, err)

	valid, err := GenerateJWT(id, "secret", time.Hour)
	require.NoError(t, err)
	_, err = ParseJWT(valid, "other-secret")
	assert.Error(t, err)
}

func TestGenerateJWT_EmptySecret(t *testing.T) {
	_, err := GenerateJWT(primitive.NewObjectID(), "", time.Hour)
	assert.Error(t, err)
}
