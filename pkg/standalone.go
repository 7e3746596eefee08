package pkg

import (
	"fmt"
	"os"

	"github.com/NubeIO/module-core-modbus-master/schema"
	"github.com/go-yaml/yaml"
	log "github.com/sirupsen/logrus"
)

// GatewayFile is the standalone configuration: module config, gateway params and the channel catalog.
type GatewayFile struct {
	Config   map[string]interface{} `yaml:"config"`
	Params   schema.Params          `yaml:"params"`
	Channels []schema.ChannelRecord `yaml:"channels"`
}

func LoadGatewayFile(path string) (*GatewayFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	gf := &GatewayFile{}
	if err := yaml.Unmarshal(b, gf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return gf, nil
}

// ConfigBytes re-encodes the config section for ValidateAndSetConfig.
func (gf *GatewayFile) ConfigBytes() ([]byte, error) {
	if gf.Config == nil {
		return nil, nil
	}
	return yaml.Marshal(gf.Config)
}

// LogHost serves a GatewayFile and logs everything the module sends.
type LogHost struct {
	File *GatewayFile
}

func (h *LogHost) Params() (schema.Params, error) {
	return h.File.Params, nil
}

func (h *LogHost) Channels() ([]schema.ChannelRecord, error) {
	return h.File.Channels, nil
}

func (h *LogHost) SendData(updates []schema.Update) error {
	for _, u := range updates {
		entry := log.WithFields(log.Fields{"id": u.ID, "chstatus": u.Status})
		if u.Value != nil {
			entry = entry.WithField("value", *u.Value)
		}
		entry.Info("data")
	}
	return nil
}

func (h *LogHost) SendResponse(reply schema.Reply) error {
	log.WithFields(log.Fields{
		"command": reply.Command.Command,
		"result":  reply.Result,
		"ok":      reply.OK,
		"payload": reply.Payload,
	}).Info("response")
	return nil
}

func (h *LogHost) SendWorkingState() error {
	log.Info("working")
	return nil
}
