package node

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitLoggingJSONComponents(t *testing.T) {
	var buf bytes.Buffer
	logs, err := InitLogging(LogOptions{Level: "info", Format: LogFormatJSON, Out: &buf})
	require.NoError(t, err)

	logs.Store.Info().Msg("opened")
	logs.Verify.Debug().Msg("filtered")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	require.Equal(t, "store", line["component"])
	require.Equal(t, "opened", line["message"])
}

func TestInitLoggingConsole(t *testing.T) {
	var buf bytes.Buffer
	logs, err := InitLogging(LogOptions{Level: "DEBUG", Out: &buf})
	require.NoError(t, err)
	logs.CLI.Debug().Str("k", "v").Msg("hello")
	require.Contains(t, buf.String(), "hello")
	require.Contains(t, buf.String(), "k=v")
}

func TestInitLoggingRejects(t *testing.T) {
	_, err := InitLogging(LogOptions{Level: "loud"})
	require.Error(t, err)
	_, err = InitLogging(LogOptions{Level: "info", Format: "xml"})
	require.Error(t, err)
}
