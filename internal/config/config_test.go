package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sampleConfig = `
llm:
  provider: openai
  base_url: https://api.example.com
  api_key: dummy
  model: gpt-4o
tools:
  name: finance-tools
  type: stdio
  command: ./mock
  args: ["--flag"]
  env:
    FOO: bar
finance_api:
  base_url: https://data.example.com
  token: secret
  timeout: 5s
server:
  host: 127.0.0.1
  port: "9090"
log:
  level: debug
`

func writeConfig(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))
	t.Chdir(dir)
}

func TestLoad(t *testing.T) {
	writeConfig(t, sampleConfig)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "gpt-4o", cfg.LLM.Model)
	require.Equal(t, "dummy", cfg.LLM.APIKey)

	require.Equal(t, ClientTypeStdio, cfg.Tools.Type)
	require.Equal(t, "./mock", cfg.Tools.Command)
	require.Equal(t, []string{"--flag"}, cfg.Tools.Args)
	require.Equal(t, "bar", cfg.Tools.Env["foo"])

	require.Equal(t, "https://data.example.com", cfg.FinanceAPI.BaseURL)
	require.Equal(t, 5*time.Second, cfg.FinanceAPI.Timeout)

	require.Equal(t, "127.0.0.1", cfg.Server.Host)
	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, 15*time.Second, cfg.FinanceAPI.Timeout)
	require.Equal(t, "info", cfg.Log.Level)
}
