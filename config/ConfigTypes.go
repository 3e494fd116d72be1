package config

import (
	"errors"
	"fmt"
	"time"

	"CryptoSignalBot/internal/models"

	"go.uber.org/multierr"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Venue    VenueConfig    `mapstructure:"venue"`
	Symbols  []string       `mapstructure:"symbols"`
	Strategy StrategyConfig `mapstructure:"strategy"`
	Runner   RunnerConfig   `mapstructure:"runner"`
	Database DatabaseConfig `mapstructure:"database"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type AppConfig struct {
	Environment string `mapstructure:"environment"`
}

// VenueConfig selects and authenticates the market data venue. Name is
// "binance" for the native client, "stub" for the offline synthetic
// source, or a ccxt venue (alpaca, kraken, coinbase).
type VenueConfig struct {
	Name      string `mapstructure:"name"`
	APIKey    string `mapstructure:"api_key"`
	SecretKey string `mapstructure:"secret_key"`
	Testnet   bool   `mapstructure:"testnet"`
}

type StrategyConfig struct {
	SMAPeriod    int              `mapstructure:"sma_period"`
	EMAPeriods   []int            `mapstructure:"ema_periods"`
	Bollinger    BollingerConfig  `mapstructure:"bollinger"`
	RSI          RSIConfig        `mapstructure:"rsi"`
	MACD         MACDConfig       `mapstructure:"macd"`
	Screens      ScreenTimeframes `mapstructure:"screen_timeframes"`
	CandleCounts CandleCounts     `mapstructure:"candle_counts"`
}

type BollingerConfig struct {
	Period int     `mapstructure:"period"`
	NumStd float64 `mapstructure:"num_std"`
}

type RSIConfig struct {
	Period     int     `mapstructure:"period"`
	Oversold   float64 `mapstructure:"oversold"`
	Overbought float64 `mapstructure:"overbought"`
}

type MACDConfig struct {
	FastPeriod   int `mapstructure:"fast_period"`
	SlowPeriod   int `mapstructure:"slow_period"`
	SignalPeriod int `mapstructure:"signal_period"`
}

// ScreenTimeframes maps the three screens to their chart timeframes,
// from the trend screen down to the entry screen.
type ScreenTimeframes struct {
	Long   models.Timeframe `mapstructure:"long"`
	Medium models.Timeframe `mapstructure:"medium"`
	Short  models.Timeframe `mapstructure:"short"`
}

type CandleCounts struct {
	Long   int `mapstructure:"long"`
	Medium int `mapstructure:"medium"`
	Short  int `mapstructure:"short"`
}

// RunnerConfig times and bounds the evaluation loop. QuoteAssets is the
// allowlist used to discover symbols from the venue when the top-level
// symbols list is left empty.
type RunnerConfig struct {
	CycleInterval  time.Duration `mapstructure:"cycle_interval"`
	MaxParallel    int           `mapstructure:"max_parallel"`
	OrderBookDepth int           `mapstructure:"order_book_depth"`
	QuoteAssets    []string      `mapstructure:"quote_assets"`
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type TelegramConfig struct {
	Token  string `mapstructure:"token"`
	ChatID int64  `mapstructure:"chat_id"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

type LoggingConfig struct {
	Level            string   `mapstructure:"level"`
	Encoding         string   `mapstructure:"encoding"`
	Development      bool     `mapstructure:"development"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// EMAPeriods holds [entryFast, entrySlow, trendFast, trendSlow]; the
// accessors below name the slots. Validate enforces exactly four
// ascending entries before any of them is read.

func (s StrategyConfig) EntryFastPeriod() int { return s.emaPeriod(0) }
func (s StrategyConfig) EntrySlowPeriod() int { return s.emaPeriod(1) }
func (s StrategyConfig) TrendFastPeriod() int { return s.emaPeriod(2) }
func (s StrategyConfig) TrendSlowPeriod() int { return s.emaPeriod(3) }

func (s StrategyConfig) emaPeriod(i int) int {
	if i >= len(s.EMAPeriods) {
		return 0
	}
	return s.EMAPeriods[i]
}

// macdMinCandles is the shortest series MACD(fast, slow, signal) accepts.
func (s StrategyConfig) macdMinCandles() int {
	return s.MACD.SlowPeriod + s.MACD.SignalPeriod - 1
}

// normalize canonicalizes the screen timeframe spellings ("60m" becomes
// "1h"). Unknown spellings are left untouched for Validate to report.
func (c *Config) normalize() {
	for _, tf := range []*models.Timeframe{&c.Strategy.Screens.Long, &c.Strategy.Screens.Medium, &c.Strategy.Screens.Short} {
		if parsed, err := models.ParseTimeframe(string(*tf)); err == nil {
			*tf = parsed
		}
	}
}

// Validate reports every violation at once so a broken deploy surfaces
// all of its problems in a single run.
func (c *Config) Validate() error {
	var err error

	if c.Venue.Name == "" {
		err = multierr.Append(err, errors.New("venue.name must not be empty"))
	}
	// An empty symbols list switches the runner to venue discovery, which
	// needs at least one quote asset to filter on.
	if len(c.Symbols) == 0 && len(c.Runner.QuoteAssets) == 0 {
		err = multierr.Append(err, errors.New("runner.quote_assets must list at least one asset when symbols is empty"))
	}
	for _, sym := range c.Symbols {
		if sym == "" {
			err = multierr.Append(err, errors.New("symbols must not contain empty entries"))
			break
		}
	}

	err = multierr.Append(err, c.Strategy.validate())

	if c.Runner.CycleInterval < time.Second {
		err = multierr.Append(err, errors.New("runner.cycle_interval must be at least 1s"))
	}
	if c.Runner.MaxParallel < 1 {
		err = multierr.Append(err, errors.New("runner.max_parallel must be at least 1"))
	}
	if c.Runner.OrderBookDepth < 1 {
		err = multierr.Append(err, errors.New("runner.order_book_depth must be at least 1"))
	}

	if c.Database.Enabled {
		if c.Database.Host == "" {
			err = multierr.Append(err, errors.New("database.host must not be empty when database.enabled"))
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			err = multierr.Append(err, errors.New("database.port must be a valid port"))
		}
		if c.Database.User == "" {
			err = multierr.Append(err, errors.New("database.user must not be empty when database.enabled"))
		}
		if c.Database.DBName == "" {
			err = multierr.Append(err, errors.New("database.dbname must not be empty when database.enabled"))
		}
	}

	if c.Telegram.Token != "" && c.Telegram.ChatID == 0 {
		err = multierr.Append(err, errors.New("telegram.chat_id must be set when telegram.token is set"))
	}

	if c.Logging.Level == "" {
		err = multierr.Append(err, errors.New("logging.level must not be empty"))
	}
	if c.Logging.Encoding != "json" && c.Logging.Encoding != "console" {
		err = multierr.Append(err, errors.New("logging.encoding must be json or console"))
	}
	if len(c.Logging.OutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.output_paths must list at least one target"))
	}
	if len(c.Logging.ErrorOutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.error_output_paths must list at least one target"))
	}

	return err
}

func (s StrategyConfig) validate() error {
	var err error

	if s.SMAPeriod <= 0 {
		err = multierr.Append(err, errors.New("strategy.sma_period must be positive"))
	}

	if len(s.EMAPeriods) != 4 {
		err = multierr.Append(err, fmt.Errorf("strategy.ema_periods must contain exactly 4 periods, got %d", len(s.EMAPeriods)))
	} else {
		for i, p := range s.EMAPeriods {
			if p <= 0 {
				err = multierr.Append(err, fmt.Errorf("strategy.ema_periods[%d] must be positive", i))
			}
			if i > 0 && p <= s.EMAPeriods[i-1] {
				err = multierr.Append(err, errors.New("strategy.ema_periods must be strictly ascending"))
				break
			}
		}
	}

	if s.Bollinger.Period <= 0 {
		err = multierr.Append(err, errors.New("strategy.bollinger.period must be positive"))
	}
	if s.Bollinger.NumStd <= 0 {
		err = multierr.Append(err, errors.New("strategy.bollinger.num_std must be positive"))
	}

	if s.RSI.Period <= 0 {
		err = multierr.Append(err, errors.New("strategy.rsi.period must be positive"))
	}
	if s.RSI.Oversold <= 0 || s.RSI.Oversold >= s.RSI.Overbought || s.RSI.Overbought >= 100 {
		err = multierr.Append(err, errors.New("strategy.rsi thresholds must satisfy 0 < oversold < overbought < 100"))
	}

	if s.MACD.FastPeriod <= 0 || s.MACD.FastPeriod >= s.MACD.SlowPeriod {
		err = multierr.Append(err, errors.New("strategy.macd periods must satisfy 0 < fast < slow"))
	}
	if s.MACD.SignalPeriod <= 0 {
		err = multierr.Append(err, errors.New("strategy.macd.signal_period must be positive"))
	}

	screens := []struct {
		name string
		tf   models.Timeframe
	}{
		{"long", s.Screens.Long},
		{"medium", s.Screens.Medium},
		{"short", s.Screens.Short},
	}
	valid := true
	for _, screen := range screens {
		if !screen.tf.Valid() {
			err = multierr.Append(err, fmt.Errorf("strategy.screen_timeframes.%s: unknown timeframe %q", screen.name, screen.tf))
			valid = false
		}
	}
	if valid {
		if s.Screens.Long.Duration() <= s.Screens.Medium.Duration() || s.Screens.Medium.Duration() <= s.Screens.Short.Duration() {
			err = multierr.Append(err, errors.New("strategy.screen_timeframes must descend from long to short"))
		}
	}

	// Each screen needs enough closed candles for its slowest indicator
	// to produce a defined value at the tail.
	if len(s.EMAPeriods) == 4 {
		if min := maxInt(s.TrendSlowPeriod(), s.macdMinCandles()); s.CandleCounts.Long < min {
			err = multierr.Append(err, fmt.Errorf("strategy.candle_counts.long must be at least %d", min))
		}
		if min := s.EntrySlowPeriod() + 1; s.CandleCounts.Short < min {
			err = multierr.Append(err, fmt.Errorf("strategy.candle_counts.short must be at least %d", min))
		}
	}
	if min := maxInt(s.Bollinger.Period, s.RSI.Period+1); s.CandleCounts.Medium < min {
		err = multierr.Append(err, fmt.Errorf("strategy.candle_counts.medium must be at least %d", min))
	}

	return err
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
