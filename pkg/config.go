package pkg

import (
	"strings"
	"time"

	"github.com/NubeIO/module-core-modbus-master/logger"
	"github.com/NubeIO/module-core-modbus-master/pollqueue"
	"github.com/NubeIO/module-core-modbus-master/utils"
	"github.com/go-yaml/yaml"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	LogLevel           string        `yaml:"log_level"`
	PollQueueLogLevel  string        `yaml:"poll_queue_log_level"`
	EnableStatistics   bool          `yaml:"enable_statistics"`
	StatisticsInterval time.Duration `yaml:"statistics_interval"`
	InboxSize          int           `yaml:"inbox_size"`
}

func (m *Module) DefaultConfig() *Config {
	return &Config{
		LogLevel:           "ERROR",
		PollQueueLogLevel:  "ERROR",
		StatisticsInterval: 5 * time.Minute,
		InboxSize:          64,
	}
}

func (m *Module) GetConfig() interface{} {
	return m.config
}

func (m *Module) ValidateAndSetConfig(config []byte) ([]byte, error) {
	newConfig := m.DefaultConfig()
	_ = yaml.Unmarshal(config, newConfig)

	// POLLING is our own level between ERROR and DEBUG, logrus prints it at info
	var logLevel log.Level
	if utils.InEqualIgnoreCase(newConfig.LogLevel, "POLLING") {
		logLevel = log.InfoLevel
		newConfig.LogLevel = "POLLING"
	} else {
		var err error
		logLevel, err = log.ParseLevel(newConfig.LogLevel)
		if err != nil {
			logLevel = log.ErrorLevel
		}
		newConfig.LogLevel = strings.ToUpper(logLevel.String())
	}
	logger.SetLogger(logLevel)

	if !utils.InEqualIgnoreCase(newConfig.PollQueueLogLevel, "ERROR", "POLLING", "DEBUG") {
		newConfig.PollQueueLogLevel = "ERROR"
	}
	newConfig.PollQueueLogLevel = strings.ToUpper(newConfig.PollQueueLogLevel)
	if newConfig.StatisticsInterval < 0 {
		newConfig.StatisticsInterval = 0
	}
	if newConfig.InboxSize <= 0 {
		newConfig.InboxSize = 64
	}

	newConfValid, err := yaml.Marshal(newConfig)
	if err != nil {
		return nil, err
	}
	m.config = newConfig

	log.Info("config is set")
	return newConfValid, nil
}

func (m *Module) pollQueueConfig() *pollqueue.Config {
	return &pollqueue.Config{
		EnableStatistics: m.config.EnableStatistics,
		LogLevel:         m.config.PollQueueLogLevel,
	}
}
