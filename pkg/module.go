package pkg

import (
	"context"
	"sync"
	"time"

	"github.com/NubeIO/module-core-modbus-master/health"
	"github.com/NubeIO/module-core-modbus-master/pollqueue"
	"github.com/NubeIO/module-core-modbus-master/schema"
	"github.com/NubeIO/module-core-modbus-master/shared"
	"github.com/patrickmn/go-cache"
)

// Module is the gateway engine. After Start every field below is owned by the loop goroutine.
type Module struct {
	config      *Config
	params      schema.Params
	host        shared.Host
	catalog     map[string]*schema.Channel
	order       []string
	titles      map[string]string
	pollManager *pollqueue.NetworkPollManager
	conns       *connections
	health      *health.Tracker
	store       *cache.Cache
	dial        Dialer
	pending     map[uint64]schema.Command
	pollCounter int64
	statsTick   <-chan time.Time

	mu     sync.Mutex
	inbox  chan message
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

type Option func(*Module)

// WithDialer replaces the modbus dialer, mainly for tests.
func WithDialer(d Dialer) Option {
	return func(m *Module) {
		m.dial = d
	}
}

func NewModule(opts ...Option) *Module {
	m := &Module{
		dial:    DialModbus,
		catalog: map[string]*schema.Channel{},
		titles:  map[string]string{},
		health:  health.NewTracker(nil),
		store:   cache.New(cache.NoExpiration, 0),
		pending: map[uint64]schema.Command{},
		done:    make(chan struct{}),
	}
	m.config = m.DefaultConfig()
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Module) newPollManager() {
	m.pollManager = pollqueue.NewPollManager(m.pollQueueConfig(), shared.PluginName)
}

var _ shared.Gateway = (*Module)(nil)
