package gormlog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestShortCaller(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/home/ci/repo/internal/platform/db/postgres.go:38", "internal/platform/db/postgres.go:38"},
		{"/go/src/app/pkg/x/y.go:12", "pkg/x/y.go:12"},
		{"/a/b/c/d.go:1", "b/c/d.go:1"},
		{"/d.go:1", "d.go:1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, shortCaller(tt.in), tt.in)
	}
}

func TestTrace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := New(zap.New(core).Sugar(), WithSlowThreshold(time.Millisecond))
	sql := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(context.Background(), time.Now(), sql, gormlogger.ErrRecordNotFound)
	assert.Equal(t, 0, logs.Len())

	l.Trace(context.Background(), time.Now(), sql, errors.New("boom"))
	assert.Equal(t, 1, logs.FilterMessage("gorm_trace").Len())

	l.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	assert.Equal(t, 1, logs.FilterMessage("gorm_slow").Len())

	l.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now(), sql, errors.New("boom"))
	assert.Equal(t, 1, logs.FilterMessage("gorm_trace").Len())

	l.LogMode(gormlogger.Info).Trace(context.Background(), time.Now(), sql, nil)
	assert.Equal(t, 1, logs.FilterMessage("gorm").Len())
}
