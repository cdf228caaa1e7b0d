package utils

import (
	"log"
	"os"
)

// LoggerConfig controls the output stream and format of the shared logger.
type LoggerConfig struct {
	Output *os.File
	UTC    bool
}

// InitLogger builds the application logger.
func InitLogger(config ...LoggerConfig) *log.Logger {
	var cfg LoggerConfig
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	flags := log.LstdFlags
	if cfg.UTC {
		flags |= log.LUTC
	}

	return log.New(cfg.Output, "[LostFound] ", flags)
}
