package app

import (
	"os"
	"strings"

	"servicebot/internal/config"

	log "github.com/sirupsen/logrus"
)

// ConfigureLogging applies log.level and log.format to the global logrus logger.
func ConfigureLogging(cfg *config.Config) error {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)

	if strings.EqualFold(cfg.Log.Format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}
