package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Server       ServerConfig       `mapstructure:"server"`
	Log          LogConfig          `mapstructure:"log"`
	DB           DBConfig           `mapstructure:"db"`
	Chain        ChainClientConfig  `mapstructure:"chain"`
	Prediction   []ChainConfig      `mapstructure:"prediction"`
	Lottery      LotteryConfig      `mapstructure:"lottery"`
	Sync         SyncConfig         `mapstructure:"sync"`
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator"`
	PriceFeed    PriceFeedConfig    `mapstructure:"price_feed"`
	TicketBot    TicketBotConfig    `mapstructure:"ticket_bot"`
	ChainInit    ChainInitConfig    `mapstructure:"chain_init"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

// DBConfig holds the store connection settings. Session time zone belongs in
// the DSN (`TimeZone=UTC`) so it applies to every pooled connection.
type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// ChainClientConfig covers transport-level settings shared by every GraphQL
// call against the chain runtime.
type ChainClientConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// ChainConfig names one prediction application endpoint. The chain ID and the
// websocket URL are derived from the endpoint URL.
type ChainConfig struct {
	Name     string `mapstructure:"name"`
	Endpoint string `mapstructure:"endpoint"`
}

type LotteryConfig struct {
	Endpoint string `mapstructure:"endpoint"`
}

type SyncConfig struct {
	SafetyInterval string `mapstructure:"safety_interval"`
	KeepRounds     int    `mapstructure:"keep_rounds"`
}

type OrchestratorConfig struct {
	CycleInterval time.Duration `mapstructure:"cycle_interval"`
	WaitTimeout   time.Duration `mapstructure:"wait_timeout"`
	DrawInterval  time.Duration `mapstructure:"draw_interval"`
	MutationDelay time.Duration `mapstructure:"mutation_delay"`
}

type PriceFeedConfig struct {
	BaseURL        string             `mapstructure:"base_url"`
	Timeout        time.Duration      `mapstructure:"timeout"`
	Symbols        map[string]string  `mapstructure:"symbols"`
	FallbackPrices map[string]float64 `mapstructure:"fallback_prices"`
}

type TicketBotConfig struct {
	Endpoint     string `mapstructure:"endpoint"`
	Owner        string `mapstructure:"owner"`
	TargetChain  string `mapstructure:"target_chain"`
	TargetOwner  string `mapstructure:"target_owner"`
	TicketAmount string `mapstructure:"ticket_amount"`
}

type ChainInitConfig struct {
	LeaderboardChains map[string]string `mapstructure:"leaderboard_chains"`
	MicrobetAppID     string            `mapstructure:"microbet_app_id"`
	SeedClosingPrice  string            `mapstructure:"seed_closing_price"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("chain.timeout", "10s")
	v.SetDefault("sync.safety_interval", "@every 60s")
	v.SetDefault("sync.keep_rounds", 10)
	v.SetDefault("orchestrator.cycle_interval", "5m")
	v.SetDefault("orchestrator.wait_timeout", "60s")
	v.SetDefault("orchestrator.draw_interval", "10s")
	v.SetDefault("orchestrator.mutation_delay", "400ms")
	v.SetDefault("price_feed.base_url", "https://api.binance.com/api/v3")
	v.SetDefault("price_feed.timeout", "10s")
	v.SetDefault("price_feed.symbols", map[string]string{
		"btc": "BTCUSDT",
		"eth": "ETHUSDT",
	})
	v.SetDefault("price_feed.fallback_prices", map[string]float64{
		"btc": 67000,
		"eth": 3400,
	})
	v.SetDefault("ticket_bot.ticket_amount", "4.")
	v.SetDefault("chain_init.seed_closing_price", "1")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
