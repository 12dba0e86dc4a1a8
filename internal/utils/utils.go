package utils

import (
	"strings"

	"github.com/sirupsen/logrus"
	log "github.com/sirupsen/logrus"
)

var Log = logrus.New()

func SetLogLevel(level string) {
	// We are not using logrus' trace and panic levels
	switch strings.ToLower(level) {
	case "debug":
		Log.SetLevel(log.DebugLevel)
	case "info":
		Log.SetLevel(log.InfoLevel)
	case "warning", "warn":
		Log.SetLevel(log.WarnLevel)
	case "error":
		Log.SetLevel(log.ErrorLevel)
	case "fatal":
		Log.SetLevel(log.FatalLevel)
	default:
		log.Fatal("Bad error level string")
	}
}

// ExpandHome resolves a leading "~/" against the user's home directory.
func ExpandHome(path string, home func() (string, error)) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	dir, err := home()
	if err != nil {
		return "", err
	}
	return dir + path[1:], nil
}
