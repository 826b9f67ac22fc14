package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode   `env:"MODE" envDefault:"offline" validate:"oneof=offline online"`
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	DBDriver string `env:"DB_DRIVER" envDefault:"sqlite" validate:"oneof=sqlite postgres"`
	DBDSN    string `env:"DB_DSN"`

	// Where normative tables come from: embedded|dir|db.
	NormsSource string `env:"NORMS_SOURCE" envDefault:"embedded" validate:"oneof=embedded dir db"`
	NormsDir    string `env:"NORMS_DIR" envDefault:"./tables"`

	EnableLocalAuth bool   `env:"ENABLE_LOCAL_AUTH" envDefault:"true"`
	AuthHMACSecret  string `env:"AUTH_HMAC_SECRET" envDefault:"supersecret-dev-key"`

	AdminUser     string `env:"ADMIN_USER" envDefault:"admin"`
	AdminPassHash string `env:"ADMIN_PASS_HASH" envDefault:"$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"` // bcrypt

	ClinicianUser     string `env:"CLINICIAN_USER"`
	ClinicianPassHash string `env:"CLINICIAN_PASS_HASH"`

	CORSOriginsOnline  []string `env:"CORS_ORIGINS_ONLINE" envDefault:"https://norms.mindengage.ai" envSeparator:","`
	CORSOriginsOffline []string `env:"CORS_ORIGINS_OFFLINE" envDefault:"http://localhost:3000,http://localhost:3010" envSeparator:","`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn warning error fatal"`
	LogJSON  bool   `env:"LOG_JSON" envDefault:"false"`

	OverallConvention string `env:"OVERALL_CONVENTION" envDefault:"core7" validate:"oneof=core7 all10"`
}

var validate = validator.New()

// FromEnv parses the process environment and checks enumerated values.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	cfg.CORSOriginsOnline = trimmed(cfg.CORSOriginsOnline)
	cfg.CORSOriginsOffline = trimmed(cfg.CORSOriginsOffline)
	return cfg, nil
}

// CORSOrigins returns the allowed origins for the configured mode.
func (c Config) CORSOrigins() []string {
	if c.Mode == ModeOnline {
		return c.CORSOriginsOnline
	}
	return c.CORSOriginsOffline
}
