package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level string) (*GormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), 0.1, level), logs
}

func TestGormLogger_Trace(t *testing.T) {
	sql := func() (string, int64) { return "SELECT 1", 1 }
	ctx := WithRequestID(context.Background(), "req-9")

	t.Run("error", func(t *testing.T) {
		l, logs := newObservedGormLogger("warn")
		l.Trace(ctx, time.Now(), sql, errors.New("boom"))
		entries := logs.FilterMessage("gorm query error").All()
		assert.Len(t, entries, 1)
		assert.Equal(t, "req-9", entries[0].ContextMap()["request_id"])
	})

	t.Run("record not found is quiet", func(t *testing.T) {
		l, logs := newObservedGormLogger("warn")
		l.Trace(ctx, time.Now(), sql, gorm.ErrRecordNotFound)
		assert.Zero(t, logs.Len())
	})

	t.Run("slow query", func(t *testing.T) {
		l, logs := newObservedGormLogger("warn")
		l.Trace(ctx, time.Now().Add(-time.Second), sql, nil)
		assert.Equal(t, 1, logs.FilterMessage("gorm slow query").Len())
	})

	t.Run("silent", func(t *testing.T) {
		l, logs := newObservedGormLogger("warn")
		l.LogMode(gormlogger.Silent).Trace(ctx, time.Now(), sql, errors.New("boom"))
		assert.Zero(t, logs.Len())
	})
}
