package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-talent-screener/internal/config"
)

func TestSetupLogger_DevAndProd(t *testing.T) {
	require.NotNil(t, SetupLogger(config.Config{AppEnv: "dev", OTELServiceName: "svc"}))
	require.NotNil(t, SetupLogger(config.Config{AppEnv: "prod", OTELServiceName: "svc"}))
}

func TestNewLogger_TagsServiceAndEnv(t *testing.T) {
	var buf bytes.Buffer
	lg := newLogger(&buf, config.Config{AppEnv: "prod", OTELServiceName: "screener"})

	lg.Info("hello", slog.String("session_id", "s1"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "screener", line["service"])
	assert.Equal(t, "prod", line["env"])
	assert.Equal(t, "s1", line["session_id"])
}

func TestNewLogger_DebugOnlyInDev(t *testing.T) {
	var prod, dev bytes.Buffer
	newLogger(&prod, config.Config{AppEnv: "prod"}).Debug("x")
	newLogger(&dev, config.Config{AppEnv: "dev"}).Debug("x")

	assert.Empty(t, prod.String())
	assert.NotEmpty(t, dev.String())
	assert.True(t, newLogger(&dev, config.Config{AppEnv: "dev"}).Enabled(context.Background(), slog.LevelDebug))
}
