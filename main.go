package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/NubeIO/module-core-modbus-master/logger"
	"github.com/NubeIO/module-core-modbus-master/pkg"
	"github.com/NubeIO/module-core-modbus-master/shared"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
	log "github.com/sirupsen/logrus"
)

func ServePlugin(m *pkg.Module) error {
	served := make(chan struct{})
	go func() {
		plugin.Serve(&plugin.ServeConfig{
			HandshakeConfig: shared.HandshakeConfig,
			Plugins:         plugin.PluginSet{shared.PluginName: &shared.GatewayPlugin{Impl: m}},
			Logger:          hclog.Default(),
		})
		close(served)
	}()
	select {
	case <-m.Done():
		return m.Err()
	case <-served:
		return nil
	}
}

func RunStandalone(m *pkg.Module, path string) error {
	gf, err := pkg.LoadGatewayFile(path)
	if err != nil {
		return err
	}
	conf, err := gf.ConfigBytes()
	if err != nil {
		return err
	}
	if _, err := m.ValidateAndSetConfig(conf); err != nil {
		return err
	}
	if err := m.Start(&pkg.LogHost{File: gf}); err != nil {
		return err
	}
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sig:
		_ = m.Stop()
		<-m.Done()
	case <-m.Done():
	}
	return m.Err()
}

func main() {
	configPath := flag.String("config", "", "run standalone from a gateway yaml file")
	flag.Parse()

	logger.SetLogger(log.InfoLevel)
	m := pkg.NewModule()

	var err error
	if *configPath != "" {
		err = RunStandalone(m, *configPath)
	} else {
		err = ServePlugin(m)
	}
	if err != nil {
		log.Errorf("modbus master: %v", err)
	}
	os.Exit(pkg.ExitCode(err))
}
