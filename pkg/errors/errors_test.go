package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrorCodes(t *testing.T) {
	assert.True(t, Is(NotFound("Chat", nil), "NOT_FOUND"))
	assert.True(t, Is(BadRequest("bad", nil), "VALIDATION_ERROR"))
	assert.True(t, Is(Forbidden("no", nil), "PERMISSION_DENIED"))
	assert.False(t, Is(nil, "NOT_FOUND"))

	err := NotFound("Chat", nil)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.Equal(t, "Chat not found", err.Message)
}

func TestFromFirestore(t *testing.T) {
	notFound := status.Error(codes.NotFound, "missing")
	assert.True(t, Is(FromFirestore("get chat", notFound), "NOT_FOUND"))

	unavailable := status.Error(codes.Unavailable, "down")
	assert.True(t, Is(FromFirestore("get chat", unavailable), "STORE_UNAVAILABLE"))

	deadline := status.Error(codes.DeadlineExceeded, "slow")
	assert.True(t, Is(FromFirestore("get chat", deadline), "STORE_UNAVAILABLE"))

	other := status.Error(codes.Internal, "boom")
	assert.True(t, Is(FromFirestore("get chat", other), "INTERNAL_ERROR"))
}
