package serve

import (
	"time"

	"github.com/TarasTrach/NexusBot/aggregate"
	"github.com/TarasTrach/NexusBot/config"
	"github.com/TarasTrach/NexusBot/provider/p2p"
)

// defaultAdapters returns the P2P exchange adapters, in merge order
func defaultAdapters(cfg *config.Market) []aggregate.Adapter {
	timeout := time.Duration(cfg.AdapterTimeoutSec) * time.Second

	adapters := []aggregate.Adapter{
		p2p.NewBinanceProvider(p2p.BinanceURL, timeout),
		p2p.NewOKXProvider(p2p.OKXURL, timeout),
		p2p.NewBybitProvider(p2p.BybitURL, timeout),
	}

	if cfg.Kucoin {
		adapters = append(adapters, p2p.NewKucoinProvider(p2p.KucoinURL, timeout))
	}

	return adapters
}
