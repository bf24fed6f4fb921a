package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort string `env:"HTTP_PORT" envDefault:"5000"`

	FBPageToken   string `env:"FB_PAGE_TOKEN,required"`
	FBVerifyToken string `env:"FB_VERIFY_TOKEN,required"`
	FBAppSecret   string `env:"FB_APP_SECRET,required"`
	FBGraphURL    string `env:"FB_GRAPH_URL" envDefault:"https://graph.facebook.com/v3.2"`

	NLUAccessToken string `env:"NLU_CLIENT_ACCESS_TOKEN,required"`
	NLUBaseURL     string `env:"NLU_BASE_URL" envDefault:"https://api.api.ai/v1"`
	NLULang        string `env:"NLU_LANG" envDefault:"en"`

	ServerURL string `env:"SERVER_URL,required"`

	WeatherAPIKey  string `env:"WEATHER_API_KEY,required"`
	WeatherBaseURL string `env:"WEATHER_BASE_URL" envDefault:"https://api.openweathermap.org/data/2.5"`

	ReplyIntervalMS    int `env:"REPLY_INTERVAL_MS" envDefault:"1100"`
	FAQFollowupDelayMS int `env:"FAQ_FOLLOWUP_DELAY_MS" envDefault:"3000"`

	DatabaseURL string `env:"DATABASE_URL,required"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"false"`
	EmailTo      string `env:"EMAIL_TO"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	AdminEmail          string `env:"ADMIN_EMAIL"`
	AdminPasswordHash   string `env:"ADMIN_PASSWORD_HASH"`
	JWTSecret           string `env:"JWT_SECRET"`
	JWTAccessTTLMinutes int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"60"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
