package logctx

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromCtx(t *testing.T) {
	base := zap.NewNop().Sugar()

	assert.Same(t, base, FromCtx(context.Background(), base))

	scoped := zap.NewNop().Sugar().With("k", "v")
	ctx := WithLogger(context.Background(), scoped)
	assert.Same(t, scoped, FromCtx(ctx, base))
}

func TestFromCtx_EnrichesTraceID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core).Sugar()

	ctx := WithTraceID(context.Background(), "trace-1")
	FromCtx(ctx, base).Info("hello")

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "trace-1", entries[0].ContextMap()["trace_id"])
	assert.Equal(t, "trace-1", TraceID(ctx))
}

func TestFromGin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	base := zap.NewNop().Sugar()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)
	assert.Same(t, base, FromGin(c, base))

	scoped := base.With("trace_id", "x")
	c.Set(LoggerKey, scoped)
	assert.Same(t, scoped, FromGin(c, base))

	assert.Same(t, base, FromGin(nil, base))
}
