package utils

import "go.uber.org/zap"

// NewLogger builds the process-wide logger. Debug selects the development
// config (console encoder, debug level); otherwise the production JSON config
// at info level is used.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
