package logger

import (
	"go-negotiation/internal/config"

	"go.uber.org/zap"
)

// NewLogger builds the application logger. Production uses the JSON encoder,
// everything else the human-readable development encoder.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.IsProduction() {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	zapConfig.EncoderConfig.FunctionKey = "func"
	zapConfig.InitialFields = map[string]interface{}{
		"app": cfg.AppId,
	}

	logger, err := zapConfig.Build(zap.AddCaller())
	if err != nil {
		return nil, err
	}
	return logger, nil
}
