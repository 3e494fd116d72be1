package config

import (
	"errors"
	"fmt"
	"strings"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "SIGNALBOT"

// Load reads the YAML config at path, layers SIGNALBOT_* environment
// variables on top and validates the result. An empty path falls back to
// config.yaml in the working directory; running without any file at all
// is fine, defaults and environment carry the whole configuration.
func Load(path string) (*Config, error) {
	// Local development keeps secrets in a .env file. Absence is not an
	// error.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindSecretEnvs(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.environment", "development")

	v.SetDefault("venue.name", "binance")
	v.SetDefault("venue.api_key", "")
	v.SetDefault("venue.secret_key", "")
	v.SetDefault("venue.testnet", false)

	v.SetDefault("symbols", []string{"BTCUSDT", "ETHUSDT"})

	v.SetDefault("strategy.sma_period", 20)
	v.SetDefault("strategy.ema_periods", []int{9, 21, 50, 200})
	v.SetDefault("strategy.bollinger.period", 20)
	v.SetDefault("strategy.bollinger.num_std", 2.0)
	v.SetDefault("strategy.rsi.period", 14)
	v.SetDefault("strategy.rsi.oversold", 30.0)
	v.SetDefault("strategy.rsi.overbought", 70.0)
	v.SetDefault("strategy.macd.fast_period", 12)
	v.SetDefault("strategy.macd.slow_period", 26)
	v.SetDefault("strategy.macd.signal_period", 9)
	v.SetDefault("strategy.screen_timeframes.long", "4h")
	v.SetDefault("strategy.screen_timeframes.medium", "1h")
	v.SetDefault("strategy.screen_timeframes.short", "15m")
	v.SetDefault("strategy.candle_counts.long", 250)
	v.SetDefault("strategy.candle_counts.medium", 50)
	v.SetDefault("strategy.candle_counts.short", 50)

	v.SetDefault("runner.cycle_interval", "15m")
	v.SetDefault("runner.max_parallel", 4)
	v.SetDefault("runner.order_book_depth", 10)
	v.SetDefault("runner.quote_assets", []string{"USDT"})

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "cryptosignals")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.chat_id", 0)

	v.SetDefault("metrics.addr", ":9090")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.encoding", "console")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.output_paths", []string{"stdout"})
	v.SetDefault("logging.error_output_paths", []string{"stderr"})
}

// bindSecretEnvs accepts the unprefixed variable names deployments
// already use for credentials, alongside the canonical SIGNALBOT_* ones.
func bindSecretEnvs(v *viper.Viper) {
	_ = v.BindEnv("venue.api_key", "SIGNALBOT_VENUE_API_KEY", "EXCHANGE_API_KEY")
	_ = v.BindEnv("venue.secret_key", "SIGNALBOT_VENUE_SECRET_KEY", "EXCHANGE_SECRET_KEY")
	_ = v.BindEnv("database.password", "SIGNALBOT_DATABASE_PASSWORD", "DB_PASSWORD")
	_ = v.BindEnv("telegram.token", "SIGNALBOT_TELEGRAM_TOKEN", "TELEGRAM_BOT_TOKEN")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
