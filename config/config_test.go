package config

import (
	"os"
	"path/filepath"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/rustyeddy/strategylab/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, "bloom", cfg.Strategy.Name)
	assert.Equal(t, 2.0, cfg.Account.PricePerPoint)
	assert.Equal(t, 5, cfg.Decision.Window)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid config", func(*Config) {}, ""},
		{"zero price per point", func(c *Config) { c.Account.PricePerPoint = 0 }, "account.price_per_point must be positive"},
		{"zero lot size", func(c *Config) { c.Account.LotSize = 0 }, "account.lot_size must be positive"},
		{"scaling without balance", func(c *Config) {
			c.Account.ScaleProfits = true
			c.Account.InitialBalance = 0
		}, "account.initial_balance must be positive"},
		{"unknown strategy", func(c *Config) { c.Strategy.Name = "orchid" }, "strategy.name must be"},
		{"normalize without target", func(c *Config) {
			c.Strategy.Bloom.Normalize = true
			c.Strategy.Bloom.AbsoluteProfitTarget = 0
		}, "absolute_profit_target"},
		{"sprout without multiplier", func(c *Config) {
			c.Strategy.Name = "sprout"
			c.Strategy.Sprout.ProfitMultiplier = 0
		}, "profit_multiplier"},
		{"bad start date", func(c *Config) { c.Simulation.StartDate = "2024-13-01" }, "simulation.start_date"},
		{"inverted dates", func(c *Config) { c.Simulation.EndDate = c.Simulation.StartDate }, "before end_date"},
		{"bad grid time", func(c *Config) { c.Grid.Start = "9h30" }, "grid.start"},
		{"zero grid step", func(c *Config) { c.Grid.StepMinutes = 0 }, "grid:"},
		{"missing db path", func(c *Config) { c.Data.DBPath = "" }, "data.db_path is required"},
		{"bad timezone", func(c *Config) { c.Data.Timezone = "Mars/Olympus" }, "data.timezone"},
		{"bad sweep window", func(c *Config) { c.Decision.SweepWindows = []int{5, 0} }, "sweep_windows"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Strategy.Bloom.BreakEvenStop = true
			cfg.Decision.SweepWindows = []int{3, 5, 10}
			path := filepath.Join(tmpDir, "test"+tt.ext)

			require.NoError(t, cfg.SaveToFile(path))

			_, err := os.Stat(path)
			require.NoError(t, err)

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("account: [1, 2"), 0644))
	_, err = LoadFromFile(path)
	assert.Error(t, err)
}

func TestLoadHandWrittenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sprout.yaml")
	doc := `
account:
  price_per_point: 5
  lot_size: 2
strategy:
  name: sprout
  sprout:
    profit_multiplier: 1.5
    minimum_reward: 8
    allowable_reward: 30
    minimum_risk: 4
grid:
  start: "10:00"
  end: "10:30:00"
  step_minutes: 15
  variance_from: 0.5
  variance_to: 0.5
  variance_step: 0.1
simulation:
  start_date: "2024-02-05"
  end_date: "2024-02-10"
data:
  db_path: bars.db
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	r, err := cfg.Range()
	require.NoError(t, err)
	assert.Equal(t, civil.Date{Year: 2024, Month: 2, Day: 5}, r.Start)

	strategies, err := cfg.Strategies()
	require.NoError(t, err)
	require.Len(t, strategies, 2)
	assert.Equal(t, "sprout", strategies[0].Name())
	assert.Equal(t, strategy.NewVariantKey(10, 0, 0.5), strategies[0].Params().Key())
	assert.Equal(t, strategy.NewVariantKey(10, 15, 0.5), strategies[1].Params().Key())
	assert.Equal(t, 2.0, strategies[1].Params().LotSize)
}

func TestStrategiesFromDefault(t *testing.T) {
	strategies, err := Default().Strategies()
	require.NoError(t, err)
	require.Len(t, strategies, 36)
	assert.Equal(t, "bloom", strategies[0].Name())
	assert.Equal(t, 25000.0, strategies[0].Params().InitialBalance)
}
