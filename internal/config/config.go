package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Env string `mapstructure:"env"`
	} `mapstructure:"app"`
	Server struct {
		Address        string        `mapstructure:"address"`
		RequestTimeout time.Duration `mapstructure:"request_timeout"`
	} `mapstructure:"server"`
	CORS struct {
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"cors"`
	Store struct {
		// Driver is "mongo" or "memory".
		Driver  string `mapstructure:"driver"`
		DataDir string `mapstructure:"data_dir"`
	} `mapstructure:"store"`
	Mongo struct {
		URI        string `mapstructure:"uri"`
		Database   string `mapstructure:"database"`
		ForceTLS12 bool   `mapstructure:"force_tls12"`
	} `mapstructure:"mongo"`
	Auth struct {
		// Provider is "jwt" or "firebase".
		Provider  string `mapstructure:"provider"`
		JWTSecret string `mapstructure:"jwt_secret"`
	} `mapstructure:"auth"`
	Firebase struct {
		ProjectID       string `mapstructure:"project_id"`
		CredentialsJSON string `mapstructure:"credentials_json"`
	} `mapstructure:"firebase"`
	Lock struct {
		// Driver is "none", "memory" or "redis".
		Driver string        `mapstructure:"driver"`
		TTL    time.Duration `mapstructure:"ttl"`
	} `mapstructure:"lock"`
	Redis struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		Topic   string   `mapstructure:"topic"`
	} `mapstructure:"kafka"`
}

// Load reads .env and config.yaml from dir (both optional) and applies environment overrides.
func Load(dir string) (*Config, error) {
	if err := godotenv.Load(dir + "/.env"); err != nil {
		log.Println("note: .env file not found, using environment only")
	}

	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("app.env", "APP_ENV")
	_ = v.BindEnv("server.address", "SERVER_ADDRESS")
	_ = v.BindEnv("server.request_timeout", "REQUEST_TIMEOUT")
	_ = v.BindEnv("cors.allowed_origins", "CORS_ALLOWED_ORIGINS")
	_ = v.BindEnv("store.driver", "STORE_DRIVER")
	_ = v.BindEnv("store.data_dir", "DATA_DIR")
	_ = v.BindEnv("mongo.uri", "MONGO_URI")
	_ = v.BindEnv("mongo.database", "MONGO_DB")
	_ = v.BindEnv("mongo.force_tls12", "MONGO_FORCE_TLS12")
	_ = v.BindEnv("auth.provider", "AUTH_PROVIDER")
	_ = v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	_ = v.BindEnv("firebase.project_id", "FIREBASE_PROJECT_ID")
	_ = v.BindEnv("firebase.credentials_json", "FIREBASE_CREDENTIALS_JSON")
	_ = v.BindEnv("lock.driver", "LOCK_DRIVER")
	_ = v.BindEnv("lock.ttl", "LOCK_TTL")
	_ = v.BindEnv("redis.url", "REDIS_URL")
	_ = v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	_ = v.BindEnv("kafka.topic", "KAFKA_TOPIC")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.request_timeout", 10*time.Second)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("store.driver", "mongo")
	v.SetDefault("store.data_dir", "")
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "devlink")
	v.SetDefault("mongo.force_tls12", false)
	v.SetDefault("auth.provider", "jwt")
	v.SetDefault("auth.jwt_secret", "your-secret-key-change-in-production")
	v.SetDefault("lock.driver", "memory")
	v.SetDefault("lock.ttl", 5*time.Second)
	v.SetDefault("kafka.topic", "profile.events")
}
