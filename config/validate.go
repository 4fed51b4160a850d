package config

import (
	"errors"

	"poi-gateway/validation"
)

// Validate checa os campos e as combinações que dependem umas das outras.
// Redis ausente não é erro: o contador entra em fail-open (ver cmd/gateway).
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}
	if c.Login.ThrottleRPS > 0 && c.Login.ThrottleBurst == 0 {
		return errors.New("login.throttle_burst must be > 0 when login.throttle_rps is set")
	}
	return nil
}
