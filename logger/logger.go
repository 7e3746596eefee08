package logger

import (
	"github.com/hashicorp/go-hclog"
	log "github.com/sirupsen/logrus"
)

const name = "module-core-modbus-master"

// SetLogger sets the hclog default used by the plugin plumbing and the logrus level used by the module.
func SetLogger(level log.Level) {
	hclog.SetDefault(hclog.New(&hclog.LoggerOptions{
		Name:  name,
		Level: hclogLevel(level),
	}))
	log.SetLevel(level)
}

func hclogLevel(level log.Level) hclog.Level {
	switch level {
	case log.TraceLevel:
		return hclog.Trace
	case log.DebugLevel:
		return hclog.Debug
	case log.InfoLevel:
		return hclog.Info
	case log.WarnLevel:
		return hclog.Warn
	}
	return hclog.Error
}
