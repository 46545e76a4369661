package gormstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLoggerTraceLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	lg, err := newGormLogger(zap.New(core), "info")
	require.NoError(t, err)
	l := lg.(*zapGormLogger)
	ctx := context.Background()

	l.slowThreshold = time.Nanosecond
	l.Trace(ctx, time.Now().Add(-time.Millisecond), func() (string, int64) { return "SELECT 1", 1 }, nil)
	require.Equal(t, 1, logs.FilterMessage("gorm slow query").Len())

	l.slowThreshold = time.Hour
	l.Trace(ctx, time.Now().Add(-time.Millisecond), func() (string, int64) { return "SELECT 2", 1 }, nil)
	require.Equal(t, 1, logs.FilterMessage("gorm query").Len())

	l.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT 3", 0 }, errors.New("boom"))
	require.Equal(t, 1, logs.FilterMessage("gorm query error").Len())

	l.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT 4", 0 }, gorm.ErrRecordNotFound)
	require.Equal(t, 1, logs.FilterMessage("gorm query error").Len())
}

func TestGormLoggerSilent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	lg, err := newGormLogger(zap.New(core), "silent")
	require.NoError(t, err)

	lg.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 0 }, errors.New("boom"))
	lg.Error(context.Background(), "ignored %d", 1)
	require.Zero(t, logs.Len())

	loud := lg.LogMode(gormlogger.Info)
	loud.Info(context.Background(), "hello %s", "world")
	require.Equal(t, 1, logs.FilterMessage("hello world").Len())
}

func TestParseGormLogLevel_Invalid(t *testing.T) {
	level, err := parseGormLogLevel("verbose")
	require.Error(t, err)
	require.Equal(t, defaultGormLogLevel, level)
}
