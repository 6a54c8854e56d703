package utils

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Log is the process-wide structured logger.
var Log = logrus.New()

func init() {
	Log.SetOutput(os.Stdout)
	Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// ConfigureLogger applies the level and format ("json" or "text") from config.
func ConfigureLogger(level, format string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	if format == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
		return
	}
	Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// LoggerFor returns an entry carrying the request ID and, when present, the
// session user.
func LoggerFor(c *gin.Context) *logrus.Entry {
	entry := Log.WithField("request_id", RequestID(c))
	if s, ok := SessionFrom(c); ok {
		entry = entry.WithFields(logrus.Fields{
			"user_id":   s.UserID.String(),
			"tenant_id": s.TenantID.String(),
			"role":      s.Role,
		})
	}
	return entry
}
