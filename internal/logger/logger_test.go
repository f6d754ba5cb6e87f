package logger

import (
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestSetupLevels(t *testing.T) {
	defer log.SetLevel(log.WarnLevel)

	Setup(true, "error")
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	Setup(false, "info")
	assert.Equal(t, log.InfoLevel, log.GetLevel())

	Setup(false, "nonsense")
	assert.Equal(t, log.WarnLevel, log.GetLevel())

	Setup(false, "")
	assert.Equal(t, log.WarnLevel, log.GetLevel())
}

func TestNewFollowsGlobalLevel(t *testing.T) {
	defer log.SetLevel(log.WarnLevel)

	log.SetLevel(log.ErrorLevel)
	l := New("analysis")
	assert.Equal(t, log.ErrorLevel, l.GetLevel())
	assert.Equal(t, "analysis", l.GetPrefix())
}
