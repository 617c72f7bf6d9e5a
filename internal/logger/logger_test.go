package logger

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedLogger(buf *bytes.Buffer, level string) *ConsoleLogger {
	l := New(buf, level)
	l.now = func() time.Time { return time.Date(2024, 5, 1, 9, 8, 7, 0, time.UTC) }
	return l
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		emit       func(Logger)
		want       bool
	}{
		{name: "trace sees trace", configured: "trace", emit: func(l Logger) { l.Tracef("m") }, want: true},
		{name: "debug blocks trace", configured: "debug", emit: func(l Logger) { l.Tracef("m") }, want: false},
		{name: "info blocks debug", configured: "info", emit: func(l Logger) { l.Debugf("m") }, want: false},
		{name: "info sees info", configured: "info", emit: func(l Logger) { l.Infof("m") }, want: true},
		{name: "warn blocks info", configured: "warn", emit: func(l Logger) { l.Infof("m") }, want: false},
		{name: "warn sees error", configured: "warn", emit: func(l Logger) { l.Errorf("m") }, want: true},
		{name: "error blocks warn", configured: "error", emit: func(l Logger) { l.Warnf("m") }, want: false},
		{name: "unknown level defaults to info", configured: "verbose", emit: func(l Logger) { l.Debugf("m") }, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tt.emit(fixedLogger(buf, tt.configured))
			assert.Equal(t, tt.want, buf.Len() > 0)
		})
	}
}

func TestLineFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	fixedLogger(buf, "debug").Warnf("cache write failed for %s", "s-1")

	assert.Equal(t, "[09:08:07] [WARN] cache write failed for s-1\n", buf.String())
}

func TestNormalizeLevel(t *testing.T) {
	assert.Equal(t, "debug", NormalizeLevel("  DEBUG "))
	assert.Equal(t, "info", NormalizeLevel(""))
	assert.Equal(t, "info", NormalizeLevel("loud"))
}

func TestConcurrentWritesProduceWholeLines(t *testing.T) {
	buf := &bytes.Buffer{}
	l := fixedLogger(buf, "info")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			l.Infof("line %d", n)
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 20)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "[09:08:07] [INFO] line "), line)
	}
}

func TestNilWriterAndNop(t *testing.T) {
	assert.NotPanics(t, func() {
		New(nil, "trace").Errorf("dropped")
		Nop().Errorf("dropped")
	})
}
