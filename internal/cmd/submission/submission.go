// Package submission parses submission engine flags and starts the
// service.
package submission

import (
	"context"
	"flag"
	"fmt"

	entrypoint "github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/platform/cmd"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/api/rest"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/app"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/profile"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/gateway"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/gateway/esg"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/gateway/localsign"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/gateway/loopback"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/storage/sqlite"
)

// Config holds submission engine configuration.
type Config struct {
	Port       int    `env:"CLINICALSAGE_SUBMISSION_PORT" envDefault:"8084"`
	Addr       string `env:"CLINICALSAGE_SUBMISSION_ADDR"`
	DBPath     string `env:"CLINICALSAGE_SUBMISSION_DB_PATH" envDefault:"submission.db"`
	ProfileDir string `env:"CLINICALSAGE_SUBMISSION_PROFILE_DIR"`
	// GatewayURL selects the real transmission gateway; empty runs the
	// in-process loopback gateway for development.
	GatewayURL   string `env:"CLINICALSAGE_SUBMISSION_GATEWAY_URL"`
	SigningKeyID string `env:"CLINICALSAGE_SUBMISSION_SIGNING_KEY_ID" envDefault:"local"`
	SigningKey   string `env:"CLINICALSAGE_SUBMISSION_SIGNING_KEY" envDefault:"dev-signing-key"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The submission engine port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The submission engine listen address (overrides -port)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the SQLite database file")
	fs.StringVar(&cfg.ProfileDir, "profiles", cfg.ProfileDir, "Directory of regional profile overrides")
	fs.StringVar(&cfg.GatewayURL, "gateway", cfg.GatewayURL, "Transmission gateway base URL (empty uses the loopback gateway)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the submission engine service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSubmission, func(ctx context.Context) error {
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		registry, err := profile.LoadRegistry(cfg.ProfileDir)
		if err != nil {
			return err
		}
		signer, err := localsign.New(cfg.SigningKeyID, []byte(cfg.SigningKey))
		if err != nil {
			return err
		}

		var transmitter gateway.Transmitter
		if cfg.GatewayURL != "" {
			transmitter, err = esg.New(cfg.GatewayURL)
			if err != nil {
				return err
			}
		} else {
			transmitter = loopback.New()
		}

		service := app.NewService(store, registry, signer, transmitter)
		addr := cfg.Addr
		if addr == "" {
			addr = fmt.Sprintf(":%d", cfg.Port)
		}
		return rest.NewServer(addr, service).Run(ctx)
	})
}
