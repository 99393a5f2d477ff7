package voxlight

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLoggerLevels(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewWriterLogger("light", false, &out, &errOut)

	l.Debugf("hidden %d", 1)
	assert.Empty(t, out.String())

	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
	l.Debugf("shown %d", 2)
	l.Infof("info")
	l.Warnf("warn")
	l.Errorf("boom: %v", "x")

	assert.Contains(t, out.String(), "[light] DEBUG: shown 2")
	assert.Contains(t, out.String(), "[light] INFO: info")
	assert.NotContains(t, out.String(), "WARN")
	assert.Contains(t, errOut.String(), "[light] WARN: warn")
	assert.Contains(t, errOut.String(), "[light] ERROR: boom: x")
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.SetDebug(true)
	assert.False(t, l.DebugEnabled())
	assert.NotPanics(t, func() {
		l.Debugf("x")
		l.Errorf("y")
	})
}
