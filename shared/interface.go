package shared

import (
	"net/rpc"

	"github.com/NubeIO/module-core-modbus-master/schema"
	"github.com/hashicorp/go-plugin"
)

const PluginName = "modbus-master"

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "MODBUS_MASTER_PLUGIN",
	MagicCookieValue: "modbus-master",
}

// Host is implemented by the process that owns the channel catalog.
type Host interface {
	Params() (schema.Params, error)
	Channels() ([]schema.ChannelRecord, error)
	SendData(updates []schema.Update) error
	SendResponse(reply schema.Reply) error
	SendWorkingState() error
}

// Gateway is the plugin side.
type Gateway interface {
	ValidateAndSetConfig(config []byte) ([]byte, error)
	Start(host Host) error
	Act(items []schema.ChannelRecord) error
	Command(cmd schema.Command) error
	ChannelsChanged() error
	Stop() error
}

type GatewayPlugin struct {
	Impl Gateway
}

func (p *GatewayPlugin) Server(b *plugin.MuxBroker) (interface{}, error) {
	return &GatewayRPCServer{Impl: p.Impl, broker: b}, nil
}

func (p *GatewayPlugin) Client(b *plugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &GatewayRPC{client: c, broker: b}, nil
}
