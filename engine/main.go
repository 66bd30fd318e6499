package main

import (
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/eduniti/guidance/engine/api"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "", "Path to YAML configuration file")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logger.WithField("level", *logLevel).Warn("Unknown log level, defaulting to info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if err := api.RunAPIServer(*configPath, logger); err != nil {
		logger.WithError(err).Error("Server exited with error")
		os.Exit(1)
	}
}
