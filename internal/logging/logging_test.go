package logging

import (
	"bytes"
	"os"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureOutput(t *testing.T) {
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetLevel(log.InfoLevel)
	})

	var buf bytes.Buffer
	require.NoError(t, ConfigureOutput(&buf, "warn"))
	assert.Equal(t, log.WarnLevel, log.GetLevel())

	log.Info("hidden")
	log.WithField("variant", 16).Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "variant=16")

	assert.Error(t, ConfigureOutput(&buf, "loud"))
}
