package config

import (
	"time"

	"github.com/klasemy/course-store/database"
)

type Config struct {
	Web   Web
	Cors  Cors
	DB    database.Config
	Auth  Auth
	Email Email
	Rate  Rate
	Oauth Oauth
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:3000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type Cors struct {
	Origin string
}

// Auth carries the identity of the store administrator. Accounts whose
// email matches AdminEmail resolve to the admin role even when no
// profile row exists for them.
type Auth struct {
	AdminEmail string `conf:"default:admin@example.com"`
}

// Email configures the receipt relay. Leaving Host or Address empty
// disables the relay entirely: receipts are then written under
// ReceiptDir instead of being mailed out.
type Email struct {
	Address    string
	Password   string `conf:"mask"`
	Host       string
	Port       string `conf:"default:587"`
	ReceiptDir string `conf:"default:receipts"`
}

type Rate struct {
	Burst    int           `conf:"default:10"`
	Expiry   int           `conf:"default:60"`
	Interval time.Duration `conf:"default:200ms"`
}

type Oauth struct {
	DiscoveryTimeout time.Duration `conf:"default:30s"`
	LoginRedirectURL string        `conf:"default:http://localhost:3000"`
	Google           Google
}

type Google struct {
	Client      string
	Secret      string `conf:"mask"`
	URL         string `conf:"default:https://accounts.google.com"`
	RedirectURL string `conf:"default:http://localhost:3000/auth/oauth-callback/google"`
}
