package utils

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the shared application logger.
var Logger = logrus.New()

// InitLogger configures the shared logger for stdout text output.
func InitLogger() {
	Logger.SetOutput(os.Stdout)
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	Logger.SetLevel(logrus.InfoLevel)
}
