package shared

import (
	"encoding/json"
	"net/rpc"

	"github.com/NubeIO/module-core-modbus-master/schema"
	"github.com/hashicorp/go-plugin"
)

// ReplyArgs carries a reply over net/rpc. The payload is free form, so the reply travels as JSON.
type ReplyArgs struct {
	Data []byte
	OK   bool
}

// GatewayRPC is the host side client of a plugin.
type GatewayRPC struct {
	client *rpc.Client
	broker *plugin.MuxBroker
}

func (g *GatewayRPC) ValidateAndSetConfig(config []byte) ([]byte, error) {
	var resp []byte
	err := g.client.Call("Plugin.ValidateAndSetConfig", config, &resp)
	return resp, err
}

// Start serves host on a broker stream and hands its id to the plugin.
func (g *GatewayRPC) Start(host Host) error {
	id := g.broker.NextId()
	go g.broker.AcceptAndServe(id, &HostRPCServer{Impl: host})
	var resp interface{}
	return g.client.Call("Plugin.Start", id, &resp)
}

func (g *GatewayRPC) Act(items []schema.ChannelRecord) error {
	var resp interface{}
	return g.client.Call("Plugin.Act", items, &resp)
}

func (g *GatewayRPC) Command(cmd schema.Command) error {
	var resp interface{}
	return g.client.Call("Plugin.Command", cmd, &resp)
}

func (g *GatewayRPC) ChannelsChanged() error {
	var resp interface{}
	return g.client.Call("Plugin.ChannelsChanged", new(interface{}), &resp)
}

func (g *GatewayRPC) Stop() error {
	var resp interface{}
	return g.client.Call("Plugin.Stop", new(interface{}), &resp)
}

type GatewayRPCServer struct {
	Impl   Gateway
	broker *plugin.MuxBroker
}

func (s *GatewayRPCServer) ValidateAndSetConfig(args []byte, resp *[]byte) error {
	out, err := s.Impl.ValidateAndSetConfig(args)
	*resp = out
	return err
}

func (s *GatewayRPCServer) Start(id uint32, resp *interface{}) error {
	conn, err := s.broker.Dial(id)
	if err != nil {
		return err
	}
	return s.Impl.Start(&HostRPC{client: rpc.NewClient(conn)})
}

func (s *GatewayRPCServer) Act(args []schema.ChannelRecord, resp *interface{}) error {
	return s.Impl.Act(args)
}

func (s *GatewayRPCServer) Command(args schema.Command, resp *interface{}) error {
	return s.Impl.Command(args)
}

func (s *GatewayRPCServer) ChannelsChanged(args interface{}, resp *interface{}) error {
	return s.Impl.ChannelsChanged()
}

func (s *GatewayRPCServer) Stop(args interface{}, resp *interface{}) error {
	return s.Impl.Stop()
}

// HostRPC is the plugin side view of the host, reached through the broker.
type HostRPC struct {
	client *rpc.Client
}

func (h *HostRPC) Params() (schema.Params, error) {
	var resp schema.Params
	err := h.client.Call("Plugin.Params", new(interface{}), &resp)
	return resp, err
}

func (h *HostRPC) Channels() ([]schema.ChannelRecord, error) {
	var resp []schema.ChannelRecord
	err := h.client.Call("Plugin.Channels", new(interface{}), &resp)
	return resp, err
}

func (h *HostRPC) SendData(updates []schema.Update) error {
	var resp interface{}
	return h.client.Call("Plugin.SendData", updates, &resp)
}

func (h *HostRPC) SendResponse(reply schema.Reply) error {
	b, err := json.Marshal(reply)
	if err != nil {
		return err
	}
	var resp interface{}
	return h.client.Call("Plugin.SendResponse", ReplyArgs{Data: b, OK: reply.OK}, &resp)
}

func (h *HostRPC) SendWorkingState() error {
	var resp interface{}
	return h.client.Call("Plugin.SendWorkingState", new(interface{}), &resp)
}

type HostRPCServer struct {
	Impl Host
}

func (s *HostRPCServer) Params(args interface{}, resp *schema.Params) error {
	p, err := s.Impl.Params()
	*resp = p
	return err
}

func (s *HostRPCServer) Channels(args interface{}, resp *[]schema.ChannelRecord) error {
	chs, err := s.Impl.Channels()
	*resp = chs
	return err
}

func (s *HostRPCServer) SendData(args []schema.Update, resp *interface{}) error {
	return s.Impl.SendData(args)
}

func (s *HostRPCServer) SendResponse(args ReplyArgs, resp *interface{}) error {
	var reply schema.Reply
	if err := json.Unmarshal(args.Data, &reply); err != nil {
		return err
	}
	reply.OK = args.OK
	return s.Impl.SendResponse(reply)
}

func (s *HostRPCServer) SendWorkingState(args interface{}, resp *interface{}) error {
	return s.Impl.SendWorkingState()
}
