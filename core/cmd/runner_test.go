package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/eventbot/core/config"
	coretelegram "github.com/m3rciful/eventbot/core/telegram"
)

type stubConfig struct{ core *coreconfig.Config }

func (s stubConfig) CoreConfig() *coreconfig.Config { return s.core }

type stubApp struct{ opts coretelegram.RunOptions }

func (s stubApp) TelegramRunOptions() (coretelegram.RunOptions, error) { return s.opts, nil }

func TestRunContextLoadsEnvFileAndRunsBotWithMetrics(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("EVENTBOT_RUNNER_DOTENV=loaded\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("EVENTBOT_RUNNER_DOTENV") })

	core := &coreconfig.Config{Metrics: coreconfig.MetricsConfig{Listen: "127.0.0.1:0", Path: "/metrics"}}
	var (
		loadedPath  string
		metricsUp   bool
		botStarted  bool
		dotenvAtLoad string
	)
	err := RunContext(context.Background(), Options{
		EnvFiles:          []string{envFile, filepath.Join(dir, "missing.env")},
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (ConfigCarrier, error) {
			loadedPath = path
			dotenvAtLoad = os.Getenv("EVENTBOT_RUNNER_DOTENV")
			return stubConfig{core: core}, nil
		},
		Bootstrap: func(ConfigCarrier) (TelegramApp, error) {
			return stubApp{}, nil
		},
		ShutdownLogger: func() error { return nil },
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			botStarted = true
			require.NotNil(t, opts.OnStart)
			return opts.OnStart(ctx, coretelegram.Runtime{})
		},
		ServeMetrics: func(ctx context.Context, addr, path string) error {
			metricsUp = addr == "127.0.0.1:0" && path == "/metrics"
			<-ctx.Done()
			return nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "config.yaml", loadedPath)
	assert.Equal(t, "loaded", dotenvAtLoad)
	assert.True(t, botStarted)
	assert.True(t, metricsUp)
}

func TestRunContextPropagatesBotError(t *testing.T) {
	boom := errors.New("token rejected")
	err := RunContext(context.Background(), Options{
		EnvFiles:       []string{},
		LoadConfig:     func(string) (ConfigCarrier, error) { return stubConfig{core: &coreconfig.Config{}}, nil },
		Bootstrap:      func(ConfigCarrier) (TelegramApp, error) { return stubApp{}, nil },
		ShutdownLogger: func() error { return nil },
		RunTelegram:    func(context.Context, coretelegram.RunOptions) error { return boom },
	})
	assert.ErrorIs(t, err, boom)
}

func TestRunContextRequiresCallbacks(t *testing.T) {
	assert.Error(t, RunContext(context.Background(), Options{}))
	err := RunContext(context.Background(), Options{
		EnvFiles:   []string{},
		LoadConfig: func(string) (ConfigCarrier, error) { return stubConfig{}, nil },
		Bootstrap:  func(ConfigCarrier) (TelegramApp, error) { return stubApp{}, nil },
	})
	assert.ErrorContains(t, err, "missing core configuration")
}
