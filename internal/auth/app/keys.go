package app

import (
	"fmt"
	"os"

	"github.com/franpulido/ticketlog/pkg/jwtx"
)

// loadCodec builds the token codec from the configured PEM key, or with an
// ephemeral key when none is configured. Ephemeral keys invalidate every
// outstanding token on restart, which is acceptable for dev and wrong for
// anything else, so it gets a loud log line in Run.
func loadCodec(cfg Config) (*jwtx.Codec, bool, error) {
	if cfg.SigningKeyFile == "" {
		codec, err := jwtx.NewEphemeralCodec(cfg.Issuer)
		if err != nil {
			return nil, false, fmt.Errorf("generate ephemeral signing key: %w", err)
		}
		applyTTLs(codec, cfg)
		return codec, true, nil
	}

	pem, err := os.ReadFile(cfg.SigningKeyFile)
	if err != nil {
		return nil, false, fmt.Errorf("read signing key %s: %w", cfg.SigningKeyFile, err)
	}
	codec, err := jwtx.NewCodec(pem, cfg.Issuer)
	if err != nil {
		return nil, false, fmt.Errorf("parse signing key %s: %w", cfg.SigningKeyFile, err)
	}
	applyTTLs(codec, cfg)
	return codec, false, nil
}

func applyTTLs(codec *jwtx.Codec, cfg Config) {
	if cfg.ProvisionalTTL > 0 {
		codec.ProvisionalTTL = cfg.ProvisionalTTL
	}
	if cfg.FullTTL > 0 {
		codec.FullTTL = cfg.FullTTL
	}
}
