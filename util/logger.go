package util

import "go.uber.org/zap"

func NewLogger(env string) (*zap.Logger, error) {
	if env == EnvDevelopment {
		return zap.NewDevelopment()
	}

	return zap.NewProduction()
}
