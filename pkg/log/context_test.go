package log

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestCtxReturnsStoredLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	ctx := WithLogger(context.Background(), logger)

	// Level methods must chain directly on the return.
	Ctx(ctx).Info().Str("k", "v").Msg("from context")

	assert.Contains(t, buf.String(), "from context")
	assert.Contains(t, buf.String(), `"k":"v"`)
}

func TestCtxFallsBackToGlobal(t *testing.T) {
	logger := Ctx(context.Background())

	assert.NotNil(t, logger)
	assert.Equal(t, L().GetLevel(), logger.GetLevel())
}
