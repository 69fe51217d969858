package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWithGitTimeout(t *testing.T) {
	ctx, cancel := withGitTimeout(context.Background(), 0)
	defer cancel()
	_, ok := ctx.Deadline()
	assert.False(t, ok, "zero timeout means no deadline")
	assert.NoError(t, ctx.Err())

	ctx, cancel = withGitTimeout(context.Background(), time.Minute)
	defer cancel()
	_, ok = ctx.Deadline()
	assert.True(t, ok)
}
