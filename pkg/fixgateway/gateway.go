package fixgateway

import (
	"bytes"
	"fmt"
	"os"

	"github.com/quickfixgo/quickfix"
	"github.com/quickfixgo/quickfix/log/file"

	"github.com/joripage/exchange-core/pkg/exchange"
)

type Config struct {
	ConfigFilepath string
}

// Gateway hosts a FIX 4.4 acceptor in front of the exchange.
type Gateway struct {
	cfg      *Config
	exchange *exchange.Exchange
	app      *Application
	acceptor *quickfix.Acceptor
}

func NewGateway(cfg *Config, ex *exchange.Exchange) *Gateway {
	return &Gateway{
		cfg:      cfg,
		exchange: ex,
	}
}

func (g *Gateway) Start() error {
	settingsBytes, err := os.ReadFile(g.cfg.ConfigFilepath)
	if err != nil {
		return fmt.Errorf("error opening %v: %w", g.cfg.ConfigFilepath, err)
	}

	appSettings, err := quickfix.ParseSettings(bytes.NewReader(settingsBytes))
	if err != nil {
		return fmt.Errorf("error parsing fix settings: %w", err)
	}

	g.app = newApplication(g.exchange)

	logFactory, err := file.NewLogFactory(appSettings)
	if err != nil {
		return fmt.Errorf("unable to create log factory: %w", err)
	}

	g.acceptor, err = quickfix.NewAcceptor(g.app, quickfix.NewMemoryStoreFactory(), appSettings, logFactory)
	if err != nil {
		return fmt.Errorf("unable to create acceptor: %w", err)
	}

	return g.acceptor.Start()
}

func (g *Gateway) Stop() {
	if g.acceptor != nil {
		g.acceptor.Stop()
	}
	if g.app != nil {
		close(g.app.dispatcher)
	}
}
