package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetLogFields(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetLogFields(ctx))

	ctx = WithRequestID(ctx, "req-1")
	ctx = WithBroadcastID(ctx, "b-9")

	assert.Equal(t, []interface{}{"request_id", "req-1", "broadcast_id", "b-9"}, GetLogFields(ctx))
	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Empty(t, GetTraceID(ctx))
}
