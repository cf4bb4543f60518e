package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every environment-driven setting. Loaded once in main and
// passed by reference to whatever needs it.
type Config struct {
	Port      string
	MongoURI  string
	RedisAddr string
	JwtSecret []byte

	// AppURL is the public base URL used to build confirmation links.
	AppURL string

	// AdminEmails is the allow-list for the admin panel.
	AdminEmails []string

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	MailFrom string

	// OAuth holds per-provider client credentials, keyed by provider name
	// (google, twitter, facebook). Providers without credentials are
	// disabled.
	OAuth map[string]OAuthCreds

	// PendingTTL is how long a pending registration's confirmation token
	// stays valid.
	PendingTTL time.Duration
}

type OAuthCreds struct {
	ClientID     string
	ClientSecret string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	cfg := &Config{
		Port:       getenv("PORT", "8080"),
		MongoURI:   getenv("MONGO_URI", "mongodb://localhost:27017"),
		RedisAddr:  getenv("REDIS_ADDR", "localhost:6379"),
		JwtSecret:  []byte(getenv("JWT_SECRET", "")),
		AppURL:     getenv("APP_URL", "http://localhost:8080"),
		SMTPHost:   os.Getenv("SMTP_HOST"),
		SMTPPort:   getenv("SMTP_PORT", "587"),
		SMTPUser:   os.Getenv("SMTP_USER"),
		SMTPPass:   os.Getenv("SMTP_PASS"),
		MailFrom:   getenv("MAIL_FROM", "noreply@example.com"),
		OAuth:      make(map[string]OAuthCreds),
		PendingTTL: 24 * time.Hour,
	}

	for _, provider := range []string{"google", "twitter", "facebook"} {
		prefix := "OAUTH_" + strings.ToUpper(provider)
		id := os.Getenv(prefix + "_CLIENT_ID")
		if id == "" {
			continue
		}
		cfg.OAuth[provider] = OAuthCreds{
			ClientID:     id,
			ClientSecret: os.Getenv(prefix + "_CLIENT_SECRET"),
		}
	}

	if len(cfg.JwtSecret) == 0 {
		log.Fatal("JWT_SECRET must be set")
	}

	if ttl := os.Getenv("PENDING_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			log.Fatalf("invalid PENDING_TTL %q: %v", ttl, err)
		}
		cfg.PendingTTL = d
	}

	if emails := os.Getenv("ADMIN_EMAILS"); emails != "" {
		for _, e := range strings.Split(emails, ",") {
			if e = strings.TrimSpace(e); e != "" {
				cfg.AdminEmails = append(cfg.AdminEmails, strings.ToLower(e))
			}
		}
	}

	if cfg.Port[0] != ':' {
		cfg.Port = ":" + cfg.Port
	}

	return cfg
}

// IsAdmin reports whether email is on the admin allow-list.
func (c *Config) IsAdmin(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, a := range c.AdminEmails {
		if a == email {
			return true
		}
	}
	return false
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
