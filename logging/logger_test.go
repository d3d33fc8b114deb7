package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", &buf)

	log.WithField("mobile_app_id", 7).Info("published")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "published", entry["msg"])
	assert.Equal(t, float64(7), entry["mobile_app_id"])
	assert.Equal(t, "info", entry["level"])
}

func TestNewFallsBackToInfo(t *testing.T) {
	log := New("not-a-level", nil)
	assert.Equal(t, logrus.InfoLevel, log.Level)
}
