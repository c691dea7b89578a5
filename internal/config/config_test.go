package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRequiredFlags(t *testing.T) {
	cfg, err := Parse([]string{"-f", "cap.itch", "-s", "aapl", "-o", "out.csv"})
	require.NoError(t, err)
	require.Equal(t, "cap.itch", cfg.File)
	require.Equal(t, "AAPL", cfg.Symbol)
	require.Equal(t, "out.csv", cfg.Output)
	require.Equal(t, 10, cfg.Depth)
	require.False(t, cfg.Websocket)
}

func TestMissingRequiredFlagFails(t *testing.T) {
	_, err := Parse([]string{"-f", "cap.itch", "-o", "out.csv"})
	require.Error(t, err)
}

func TestWebsocketRequiresPort(t *testing.T) {
	_, err := Parse([]string{"-f", "cap.itch", "-s", "AAPL", "-o", "out.csv", "--websocket"})
	require.Error(t, err)

	cfg, err := Parse([]string{"-f", "cap.itch", "-s", "AAPL", "-o", "out.csv", "--websocket", "-p", "9000"})
	require.NoError(t, err)
	require.Equal(t, 9000, cfg.Port)
}

func TestSymbolLongerThanEightCharsFails(t *testing.T) {
	_, err := Parse([]string{"-f", "cap.itch", "-s", "TOOLONGSYM", "-o", "out.csv"})
	require.Error(t, err)
}

func TestKafkaBrokersSplit(t *testing.T) {
	cfg, err := Parse([]string{"-f", "cap.itch", "-s", "AAPL", "-o", "out.csv", "--kafka-brokers", "a:9092,b:9092"})
	require.NoError(t, err)
	require.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
}
