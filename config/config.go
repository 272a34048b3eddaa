package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rustyeddy/strategylab/market"
	"github.com/rustyeddy/strategylab/simulation"
	"github.com/rustyeddy/strategylab/strategy"
	"gopkg.in/yaml.v3"
)

// Config represents the complete backtest configuration
type Config struct {
	Account    AccountConfig    `json:"account" yaml:"account"`
	Strategy   StrategyConfig   `json:"strategy" yaml:"strategy"`
	Grid       GridConfig       `json:"grid" yaml:"grid"`
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
	Data       DataConfig       `json:"data" yaml:"data"`
	Decision   DecisionConfig   `json:"decision" yaml:"decision"`
	Logging    LoggingConfig    `json:"logging" yaml:"logging"`
}

// AccountConfig contains pricing and balance parameters
type AccountConfig struct {
	InitialBalance float64 `json:"initial_balance" yaml:"initial_balance"`
	PricePerPoint  float64 `json:"price_per_point" yaml:"price_per_point"`
	LotSize        float64 `json:"lot_size" yaml:"lot_size"`
	ScaleProfits   bool    `json:"scale_profits" yaml:"scale_profits"`
}

// StrategyConfig selects the strategy and its limits
type StrategyConfig struct {
	Name        string         `json:"name" yaml:"name"` // "bloom" or "sprout"
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	BuyLimit    strategy.Limit `json:"buy_limit" yaml:"buy_limit"`
	SellLimit   strategy.Limit `json:"sell_limit" yaml:"sell_limit"`
	Bloom       BloomConfig    `json:"bloom" yaml:"bloom"`
	Sprout      SproutConfig   `json:"sprout" yaml:"sprout"`
}

type BloomConfig struct {
	Normalize            bool    `json:"normalize" yaml:"normalize"`
	AbsoluteProfitTarget float64 `json:"absolute_profit_target" yaml:"absolute_profit_target"`
	BreakEvenStop        bool    `json:"break_even_stop" yaml:"break_even_stop"`
	BreakEvenOffset      float64 `json:"break_even_offset" yaml:"break_even_offset"`
}

type SproutConfig struct {
	ProfitMultiplier float64 `json:"profit_multiplier" yaml:"profit_multiplier"`
	MinimumReward    float64 `json:"minimum_reward" yaml:"minimum_reward"`
	AllowableReward  float64 `json:"allowable_reward" yaml:"allowable_reward"`
	MinimumRisk      float64 `json:"minimum_risk" yaml:"minimum_risk"`
	AllowableRisk    float64 `json:"allowable_risk" yaml:"allowable_risk"`
	MaxEntriesPerDay int     `json:"max_entries_per_day" yaml:"max_entries_per_day"`
}

// GridConfig spans the variants to simulate. Times are "HH:MM".
type GridConfig struct {
	Start        string  `json:"start" yaml:"start"`
	End          string  `json:"end" yaml:"end"`
	StepMinutes  int     `json:"step_minutes" yaml:"step_minutes"`
	VarianceFrom float64 `json:"variance_from" yaml:"variance_from"`
	VarianceTo   float64 `json:"variance_to" yaml:"variance_to"`
	VarianceStep float64 `json:"variance_step" yaml:"variance_step"`
}

// SimulationConfig contains the date range, inclusive start and exclusive
// end, both "YYYY-MM-DD"
type SimulationConfig struct {
	StartDate string `json:"start_date" yaml:"start_date"`
	EndDate   string `json:"end_date" yaml:"end_date"`
	Workers   int    `json:"workers,omitempty" yaml:"workers,omitempty"`
	PerDay    bool   `json:"per_day" yaml:"per_day"`
}

type DataConfig struct {
	DBPath   string `json:"db_path" yaml:"db_path"`
	Timezone string `json:"timezone,omitempty" yaml:"timezone,omitempty"` // IANA name, default UTC
}

type DecisionConfig struct {
	Window       int   `json:"window" yaml:"window"`
	SweepWindows []int `json:"sweep_windows,omitempty" yaml:"sweep_windows,omitempty"`
}

type LoggingConfig struct {
	Level string `json:"level" yaml:"level"`
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.PricePerPoint <= 0 {
		return fmt.Errorf("account.price_per_point must be positive")
	}
	if c.Account.LotSize <= 0 {
		return fmt.Errorf("account.lot_size must be positive")
	}
	if c.Account.ScaleProfits && c.Account.InitialBalance <= 0 {
		return fmt.Errorf("account.initial_balance must be positive when scale_profits is set")
	}
	switch c.Strategy.Name {
	case "bloom":
		if c.Strategy.Bloom.Normalize && c.Strategy.Bloom.AbsoluteProfitTarget <= 0 {
			return fmt.Errorf("strategy.bloom.absolute_profit_target must be positive when normalize is set")
		}
	case "sprout":
		if c.Strategy.Sprout.ProfitMultiplier <= 0 {
			return fmt.Errorf("strategy.sprout.profit_multiplier must be positive")
		}
		if c.Strategy.Sprout.AllowableReward > 0 && c.Strategy.Sprout.AllowableReward < c.Strategy.Sprout.MinimumReward {
			return fmt.Errorf("strategy.sprout.allowable_reward must not be below minimum_reward")
		}
	default:
		return fmt.Errorf("strategy.name must be 'bloom' or 'sprout'")
	}
	if _, err := c.Range(); err != nil {
		return err
	}
	if _, err := c.GridSpec(); err != nil {
		return err
	}
	if c.Data.DBPath == "" {
		return fmt.Errorf("data.db_path is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Decision.Window < 0 {
		return fmt.Errorf("decision.window must not be negative")
	}
	for _, w := range c.Decision.SweepWindows {
		if w <= 0 {
			return fmt.Errorf("decision.sweep_windows must be positive, got %d", w)
		}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}
	return nil
}

// Range parses the simulation dates.
func (c *Config) Range() (market.DateRange, error) {
	start, err := civil.ParseDate(c.Simulation.StartDate)
	if err != nil {
		return market.DateRange{}, fmt.Errorf("simulation.start_date: %w", err)
	}
	end, err := civil.ParseDate(c.Simulation.EndDate)
	if err != nil {
		return market.DateRange{}, fmt.Errorf("simulation.end_date: %w", err)
	}
	if !start.Before(end) {
		return market.DateRange{}, fmt.Errorf("simulation.start_date must be before end_date")
	}
	return market.DateRange{Start: start, End: end}, nil
}

// Location resolves data.timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Data.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Data.Timezone)
	if err != nil {
		return nil, fmt.Errorf("data.timezone: %w", err)
	}
	return loc, nil
}

// parseClock accepts "HH:MM" or "HH:MM:SS".
func parseClock(key, s string) (civil.Time, error) {
	if strings.Count(s, ":") == 1 {
		s += ":00"
	}
	t, err := civil.ParseTime(s)
	if err != nil {
		return civil.Time{}, fmt.Errorf("%s: %w", key, err)
	}
	return t, nil
}

// GridSpec converts the grid section.
func (c *Config) GridSpec() (simulation.Grid, error) {
	start, err := parseClock("grid.start", c.Grid.Start)
	if err != nil {
		return simulation.Grid{}, err
	}
	end, err := parseClock("grid.end", c.Grid.End)
	if err != nil {
		return simulation.Grid{}, err
	}
	g := simulation.Grid{
		Start:        start,
		End:          end,
		StepMinutes:  c.Grid.StepMinutes,
		VarianceFrom: c.Grid.VarianceFrom,
		VarianceTo:   c.Grid.VarianceTo,
		VarianceStep: c.Grid.VarianceStep,
	}
	if _, err := g.Keys(); err != nil {
		return simulation.Grid{}, fmt.Errorf("grid: %w", err)
	}
	return g, nil
}

// Params builds the parameter set shared by every variant.
func (c *Config) Params() strategy.Params {
	return strategy.Params{
		Description:    c.Strategy.Description,
		Variance:       1,
		LotSize:        c.Account.LotSize,
		BuyLimit:       c.Strategy.BuyLimit,
		SellLimit:      c.Strategy.SellLimit,
		PricePerPoint:  c.Account.PricePerPoint,
		InitialBalance: c.Account.InitialBalance,
		ScaleProfits:   c.Account.ScaleProfits,
	}
}

// Strategies builds one strategy per grid variant, in key order.
func (c *Config) Strategies() ([]strategy.Strategy, error) {
	g, err := c.GridSpec()
	if err != nil {
		return nil, err
	}
	keys, err := g.Keys()
	if err != nil {
		return nil, err
	}

	base := c.Params()
	out := make([]strategy.Strategy, 0, len(keys))
	for _, k := range keys {
		p := base.WithKey(k)
		switch c.Strategy.Name {
		case "bloom":
			b := c.Strategy.Bloom
			out = append(out, strategy.NewBloom(strategy.BloomParams{
				Params:               p,
				Normalize:            b.Normalize,
				AbsoluteProfitTarget: b.AbsoluteProfitTarget,
				BreakEvenStop:        b.BreakEvenStop,
				BreakEvenOffset:      b.BreakEvenOffset,
			}))
		case "sprout":
			s := c.Strategy.Sprout
			out = append(out, strategy.NewSprout(strategy.SproutParams{
				Params:           p,
				ProfitMultiplier: s.ProfitMultiplier,
				MinimumReward:    s.MinimumReward,
				AllowableReward:  s.AllowableReward,
				MinimumRisk:      s.MinimumRisk,
				AllowableRisk:    s.AllowableRisk,
				MaxEntriesPerDay: s.MaxEntriesPerDay,
			}))
		default:
			return nil, fmt.Errorf("unknown strategy: %s", c.Strategy.Name)
		}
	}
	return out, nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			InitialBalance: 25000,
			PricePerPoint:  2,
			LotSize:        1,
		},
		Strategy: StrategyConfig{
			Name:      "bloom",
			BuyLimit:  strategy.Limit{TakeProfit: 35, StopLoss: 25},
			SellLimit: strategy.Limit{TakeProfit: 35, StopLoss: 25},
			Bloom: BloomConfig{
				AbsoluteProfitTarget: 10,
				BreakEvenOffset:      15,
			},
			Sprout: SproutConfig{
				ProfitMultiplier: 2,
				MinimumReward:    10,
				AllowableReward:  40,
				MinimumRisk:      5,
				MaxEntriesPerDay: 3,
			},
		},
		Grid: GridConfig{
			Start:        "09:30",
			End:          "10:00",
			StepMinutes:  5,
			VarianceFrom: 1,
			VarianceTo:   1.25,
			VarianceStep: 0.05,
		},
		Simulation: SimulationConfig{
			StartDate: "2024-01-01",
			EndDate:   "2024-04-01",
		},
		Data: DataConfig{
			DBPath: "./bars.db",
		},
		Decision: DecisionConfig{
			Window: 5,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
