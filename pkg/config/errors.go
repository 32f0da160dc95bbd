package config

import "errors"

var (
	ErrParsingConfig = errors.New("config: failed to parse environment into config")
	ErrReadEnvFile   = errors.New("config: failed to read env file")
)
