package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port               int      `mapstructure:"port"`
		CorsAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
		CorsAllowedMethods []string `mapstructure:"cors_allowed_methods"`
		CorsAllowedHeaders []string `mapstructure:"cors_allowed_headers"`
	} `mapstructure:"server"`

	Database struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`

	JWT struct {
		Secret          string `mapstructure:"secret"`
		ExpirationHours int    `mapstructure:"expiration_hours"`
		Issuer          string `mapstructure:"issuer"`
	} `mapstructure:"jwt"`

	WhatsApp struct {
		VerifyToken       string `mapstructure:"verify_token"`
		MaytapiProductID  string `mapstructure:"maytapi_product_id"`
		MaytapiToken      string `mapstructure:"maytapi_token"`
		MaytapiPhoneID    string `mapstructure:"maytapi_phone_id"`
		MetaToken         string `mapstructure:"meta_token"`
		MetaPhoneNumberID string `mapstructure:"meta_phone_number_id"`
		WebhookBaseURL    string `mapstructure:"webhook_base_url"`
	} `mapstructure:"whatsapp"`

	R2 struct {
		Enabled   bool   `mapstructure:"enabled"`
		Endpoint  string `mapstructure:"endpoint"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
		Bucket    string `mapstructure:"bucket"`
		Region    string `mapstructure:"region"`
	} `mapstructure:"r2"`
}

func Load() *Config {
	// Load .env file if exists (ignore error in production)
	godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile("configs/config.yaml")

	// Auto bind environment variables
	v.AutomaticEnv()

	// Set sensible defaults (binary works without config file)
	v.SetDefault("server.port", 8080)
	v.SetDefault("jwt.expiration_hours", 24)
	v.SetDefault("jwt.issuer", "lead-backend")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "leads_db")
	v.SetDefault("r2.region", "auto")

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		log.Printf("[Config] No config file found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("config unmarshal error: %v", err)
	}

	// Override database settings from DB_* environment variables
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Database.Port = n
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.Database.User = user
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		cfg.Database.Password = pass
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Database.Name = name
	}

	// Override JWT secret from environment if not set
	if cfg.JWT.Secret == "" || cfg.JWT.Secret == "${JWT_SECRET}" {
		cfg.JWT.Secret = os.Getenv("JWT_SECRET")
		if cfg.JWT.Secret == "" {
			log.Fatal("JWT_SECRET not found in environment or config file")
		}
	}

	// WhatsApp provider credentials come from the environment
	if token := os.Getenv("WHATSAPP_VERIFY_TOKEN"); token != "" {
		cfg.WhatsApp.VerifyToken = token
	}
	if productID := os.Getenv("MAYTAPI_PRODUCT_ID"); productID != "" {
		cfg.WhatsApp.MaytapiProductID = productID
	}
	if token := os.Getenv("MAYTAPI_TOKEN"); token != "" {
		cfg.WhatsApp.MaytapiToken = token
	}
	if phoneID := os.Getenv("MAYTAPI_PHONE_ID"); phoneID != "" {
		cfg.WhatsApp.MaytapiPhoneID = phoneID
	}
	if token := os.Getenv("META_WHATSAPP_TOKEN"); token != "" {
		cfg.WhatsApp.MetaToken = token
	}
	if phoneNumberID := os.Getenv("META_PHONE_NUMBER_ID"); phoneNumberID != "" {
		cfg.WhatsApp.MetaPhoneNumberID = phoneNumberID
	}
	if baseURL := os.Getenv("WEBHOOK_BASE_URL"); baseURL != "" {
		cfg.WhatsApp.WebhookBaseURL = baseURL
	}

	// R2 export archive is optional, enabled when credentials are present
	if endpoint := os.Getenv("R2_ENDPOINT"); endpoint != "" {
		cfg.R2.Endpoint = endpoint
	}
	if key := os.Getenv("R2_ACCESS_KEY"); key != "" {
		cfg.R2.AccessKey = key
	}
	if secret := os.Getenv("R2_SECRET_KEY"); secret != "" {
		cfg.R2.SecretKey = secret
	}
	if bucket := os.Getenv("R2_BUCKET"); bucket != "" {
		cfg.R2.Bucket = bucket
	}
	if cfg.R2.Endpoint != "" && cfg.R2.AccessKey != "" && cfg.R2.SecretKey != "" && cfg.R2.Bucket != "" {
		cfg.R2.Enabled = true
	}

	return &cfg
}
