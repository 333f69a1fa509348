package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestSetupJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Setup("info", "json", &buf))
	t.Cleanup(func() { _ = Setup("info", "text", nil) })

	logrus.WithField("publisher", "demo").Info("saved")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "demo", line["publisher"])
	assert.Equal(t, "saved", line["msg"])
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	assert.Error(t, Setup("loud", "json", nil))
}

func TestContextEntry(t *testing.T) {
	entry := logrus.WithField("request_id", "abc")
	ctx := WithEntry(context.Background(), entry)

	assert.Same(t, entry, FromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()))
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, logger.Info, GormLevel("debug"))
	assert.Equal(t, logger.Warn, GormLevel("info"))
	assert.Equal(t, logger.Error, GormLevel("error"))
}
