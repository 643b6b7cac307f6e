package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const defaultPath = "./configs/config.local.yaml"

type HTTP struct {
	Host              string
	Port              int
	ReadTimeoutSec    int
	WriteTimeoutSec   int
	IdleTimeoutSec    int
	RequestTimeoutSec int
	RateLimitRPS      float64
	RateLimitBurst    int
	GlobalRPS         float64
	GlobalBurst       int
	MaxConcurrent     int64
	MaxBodyMB         int64
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

type Rotate struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level  string
	JSON   bool
	Rotate Rotate
}

type JWT struct {
	Secret     string
	Issuer     string
	TTLMin     int `mapstructure:"ttlmin"`
	CookieName string
}

type CORS struct {
	AllowOrigins []string
}

type Mongo struct {
	Driver     string // mongo | memory
	URI        string
	Database   string
	TimeoutSec int
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type Config struct {
	App   App
	Log   Log
	JWT   JWT
	CORS  CORS
	Mongo Mongo
	Redis Redis `mapstructure:"redis"`
}

// Production switches cookie attributes and log encoding.
func (c *Config) Production() bool { return strings.EqualFold(c.App.Env, "production") }

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "marketplace-admin")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 5000)
	v.SetDefault("app.http.readtimeoutsec", 10)
	v.SetDefault("app.http.writetimeoutsec", 15)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.http.requesttimeoutsec", 10)
	v.SetDefault("app.http.ratelimitrps", 50)
	v.SetDefault("app.http.ratelimitburst", 100)
	v.SetDefault("app.http.globalrps", 0)
	v.SetDefault("app.http.globalburst", 0)
	v.SetDefault("app.http.maxconcurrent", 300)
	v.SetDefault("app.http.maxbodymb", 4)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	v.SetDefault("jwt.issuer", "marketplace-admin")
	v.SetDefault("jwt.ttlmin", 24*60)
	v.SetDefault("jwt.cookiename", "token")

	v.SetDefault("cors.alloworigins", []string{"http://localhost:5173"})

	v.SetDefault("mongo.driver", "")
	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "captake")
	v.SetDefault("mongo.timeoutsec", 10)

	// keys without a meaningful default still need registering so that
	// AutomaticEnv picks them up during Unmarshal
	v.SetDefault("jwt.secret", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
}

// Load reads the YAML file at path (or CONFIG_PATH, or the local default) and
// overlays APP_* environment variables. A missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = defaultPath
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	if c.Mongo.Driver == "" {
		c.Mongo.Driver = "memory"
		if c.Mongo.URI != "" {
			c.Mongo.Driver = "mongo"
		}
	}
	return &c, nil
}
