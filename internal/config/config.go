package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config 全局配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Business BusinessConfig `mapstructure:"business"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type MySQLConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers []string         `mapstructure:"brokers"`
	Topic   KafkaTopicConfig `mapstructure:"topic"`
}

type KafkaTopicConfig struct {
	LedgerEvents string `mapstructure:"ledger_events"`
}

type AuthConfig struct {
	TellerCode string `mapstructure:"teller_code"` // 柜员共享口令
	JWTSecret  string `mapstructure:"jwt_secret"`  // 客户 Bearer 令牌签名密钥
}

type BusinessConfig struct {
	// 限额账户的单笔/当日转出上限（韩元）
	LimitTxnMax   int64 `mapstructure:"limit_txn_max"`
	LimitDailyMax int64 `mapstructure:"limit_daily_max"`
	MaxRetryCount int   `mapstructure:"max_retry_count"`
}

var GlobalConfig *Config

// LoadConfig 加载配置文件
func LoadConfig(configPath string) *Config {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("读取配置文件失败: %v", err)
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	applyDefaults(config)

	GlobalConfig = config
	return config
}

// applyDefaults 补齐关键业务默认值，配置缺省时沿用既定柜台规则
func applyDefaults(cfg *Config) {
	if cfg.Auth.TellerCode == "" {
		cfg.Auth.TellerCode = "0612"
	}
	if cfg.Business.LimitTxnMax == 0 {
		cfg.Business.LimitTxnMax = 300000
	}
	if cfg.Business.LimitDailyMax == 0 {
		cfg.Business.LimitDailyMax = 1000000
	}
	if cfg.Business.MaxRetryCount == 0 {
		cfg.Business.MaxRetryCount = 3
	}
}
