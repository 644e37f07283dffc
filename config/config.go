package config

import "time"

type Config struct {
	Web    Web
	DB     DB
	Cors   Cors
	Auth   Auth
	Email  Email
	Paypal Paypal
	Stripe Stripe
	Oauth  Oauth
	Rate   Rate
	Upload Upload
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:8000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type DB struct {
	User       string `conf:"default:postgres"`
	Password   string `conf:"default:postgres,mask"`
	Host       string `conf:"default:localhost:5432"`
	Name       string `conf:"default:learnhub"`
	DisableTLS bool   `conf:"default:true"`
}

type Cors struct {
	Origin string
}

type Auth struct {
	ActivationRequired bool `conf:"default:false"`
}

type Email struct {
	Address       string
	Password      string `conf:",mask"`
	Host          string
	Port          string `conf:"default:587"`
	ActivationURL string
	RecoveryURL   string
	TokenTimeout  time.Duration `conf:"default:15m"`
}

type Paypal struct {
	ClientID string
	Secret   string `conf:",mask"`
	URL      string `conf:"default:https://api.sandbox.paypal.com"`
}

type Stripe struct {
	APISecret     string `conf:",mask"`
	WebhookSecret string `conf:",mask"`
	SuccessURL    string
	CancelURL     string
}

type Oauth struct {
	DiscoveryTimeout time.Duration `conf:"default:30s"`
	LoginRedirectURL string
	Google           Provider
}

type Provider struct {
	Client      string
	Secret      string `conf:",mask"`
	URL         string `conf:"default:https://accounts.google.com"`
	RedirectURL string
}

type Rate struct {
	LimitRPS      float64 `conf:"default:1"`
	Burst         int     `conf:"default:5"`
	ExpiryMinutes int     `conf:"default:10"`
}

type Upload struct {
	Dir     string `conf:"default:uploads"`
	MaxSize int64  `conf:"default:8388608"`
}
