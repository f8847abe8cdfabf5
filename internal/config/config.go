package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env              string            `yaml:"env" env-default:"local"`
	DSN              string            `yaml:"dsn" env-required:"true"`
	TokenSecret      string            `yaml:"token_secret" env:"TOKEN_SECRET" env-required:"true"`
	HTTP             HTTPConfig        `yaml:"http"`
	FileStorage      FileStorageConfig `yaml:"file_storage"`
	Redis            RedisConf         `yaml:"redis"`
	SEO              SEOConfig         `yaml:"seo"`
	SessionKey       string            `yaml:"session_key" env:"SESSION_KEY" env-default:"pagecraft-editor"`
	TemplateCacheTTL time.Duration     `yaml:"template_cache_ttl" env-default:"5m"`
}

type HTTPConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port" env-default:"8080"`
}

type FileStorageConfig struct {
	BaseDir string `yaml:"base_dir" env-default:"./uploads"`
	BaseURL string `yaml:"base_url" env-default:"http://localhost:8080/uploads"`
	// MaxSize is advisory: oversized uploads are rejected with 413 so the
	// editor can show feedback, real limits live on the reverse proxy.
	MaxSize int64 `yaml:"max_size" env-default:"5242880"`
}

type RedisConf struct {
	RedisAddr     string `yaml:"redis_addr" env-default:"localhost:6379"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

// SEOConfig points at the external AI analysis collaborator.
type SEOConfig struct {
	BaseURL  string        `yaml:"base_url"`
	APIKey   string        `yaml:"api_key" env:"SEO_API_KEY"`
	Timeout  time.Duration `yaml:"timeout" env-default:"30s"`
	CacheTTL time.Duration `yaml:"cache_ttl" env-default:"10m"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}

	return MustLoadPath(path)
}

func MustLoadPath(configPath string) *Config {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	// --config="path/to/config.yaml"
	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
