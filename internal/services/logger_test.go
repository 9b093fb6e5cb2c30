package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_KeyValues(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := NewZapLogger(zap.New(core))

	logger.Info("stream chat completed", "conversation_id", 7, "response_length", 12)
	logger.Warn("slow provider")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "stream chat completed", entries[0].Message)
	assert.EqualValues(t, 7, entries[0].ContextMap()["conversation_id"])
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
}

func TestNewLogger_TestEnvIsSilent(t *testing.T) {
	logger, err := NewLogger("gemchat", "test")
	require.NoError(t, err)
	logger.Error("nothing should be written")
}

func TestMaskUsername(t *testing.T) {
	cases := map[string]string{
		"":            "****",
		"ab":          "****",
		"abc":         "a****",
		"alexander":   "alex****",
		"pässwörtern": "päss****",
	}
	for in, want := range cases {
		assert.Equal(t, want, MaskUsername(in), in)
	}
}
