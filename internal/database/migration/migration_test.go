package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerPrintf(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := NewLogger(zap.New(core), true)

	l.Printf("applied %d/u %s", 3, "init")

	assert.True(t, l.Verbose())
	if assert.Equal(t, 1, logs.Len()) {
		assert.Equal(t, "DB Migration: applied 3/u init", logs.All()[0].Message)
	}
}
