package serve

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/TarasTrach/NexusBot/aggregate"
	"github.com/TarasTrach/NexusBot/arbitrage"
	"github.com/TarasTrach/NexusBot/bot"
	"github.com/TarasTrach/NexusBot/chat/telegram"
	"github.com/TarasTrach/NexusBot/cmd/env"
	"github.com/TarasTrach/NexusBot/config"
	"github.com/TarasTrach/NexusBot/feecache"
	"github.com/TarasTrach/NexusBot/live"
	"github.com/TarasTrach/NexusBot/provider/reference"
	"github.com/TarasTrach/NexusBot/server"
	"github.com/TarasTrach/NexusBot/session"
	"github.com/TarasTrach/NexusBot/settings"
	"github.com/TarasTrach/NexusBot/storage"
)

// run wires the NexusBot services over the given store,
// and runs them until the context is cancelled
func run(
	ctx context.Context,
	cfg *config.Config,
	store storage.Storage,
	logger *slog.Logger,
) error {
	token := os.Getenv(env.Prefix + env.BotTokenSuffix)
	if token == "" {
		return fmt.Errorf("missing %s", env.Prefix+env.BotTokenSuffix)
	}

	// Create the aggregator
	aggregator := aggregate.New(
		aggregate.WithLogger(logger),
		aggregate.WithAdapterTimeout(time.Duration(cfg.Market.AdapterTimeoutSec)*time.Second),
	)

	for _, adapter := range defaultAdapters(cfg.Market) {
		if err := aggregator.Register(adapter); err != nil {
			return fmt.Errorf("unable to register adapter: %w", err)
		}
	}

	service := arbitrage.New(
		aggregator,
		arbitrageConfig(cfg),
		arbitrage.WithLogger(logger),
	)

	// Create the settings and fee quote layer
	stored := settings.New(store)
	cache := feecache.New(
		store,
		feecache.WithLogger(logger),
		feecache.WithTTL(time.Duration(cfg.Fees.TTLMin)*time.Minute),
	)
	quoter := arbitrage.NewFeeQuoter(cache, service, stored)

	// Create the chat side
	client := telegram.NewClient(token, telegram.WithLogger(logger))
	scheduler := live.New(client, live.WithLogger(logger))
	sessions := session.NewRegistry(client, stored, session.WithLogger(logger))

	botOpts := []bot.Option{
		bot.WithLogger(logger),
		bot.WithAdminChatID(cfg.Bot.AdminChatID),
		bot.WithCommandCooldown(time.Duration(cfg.Bot.CommandCooldownSec) * time.Second),
	}

	if cfg.Reference.URL != "" {
		botOpts = append(
			botOpts,
			bot.WithReference(reference.NewProvider(
				cfg.Reference.URL,
				cfg.Reference.Selector,
				time.Duration(cfg.Market.AdapterTimeoutSec)*time.Second,
			)),
		)
	}

	router := bot.New(client, sessions, scheduler, service, quoter, stored, botOpts...)

	if err := client.SetCommands(ctx, botCommands()); err != nil {
		logger.Warn("unable to set the bot commands", "err", err)
	}

	poller := telegram.NewPoller(client, router)

	// Create the server instance
	s, err := server.New(
		service,
		quoter,
		server.WithLogger(logger),
		server.WithConfig(cfg.Server),
	)
	if err != nil {
		return fmt.Errorf("unable to create server, %w", err)
	}

	runCtx, cancelFn := signal.NotifyContext(
		ctx,
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancelFn()

	group, gCtx := errgroup.WithContext(runCtx)

	// Start the HTTP server
	group.Go(func() error {
		return s.Serve(gCtx)
	})

	// Start the live view loop
	group.Go(func() error {
		return scheduler.Start(gCtx)
	})

	// Start the chat update loop
	group.Go(func() error {
		return poller.Start(gCtx)
	})

	err = group.Wait()

	// Let in-flight command work drain
	router.Wait()

	return err
}

// arbitrageConfig maps the file configuration onto the arbitrage service
func arbitrageConfig(cfg *config.Config) arbitrage.Config {
	c := arbitrage.DefaultConfig()

	c.Exchange.Interval = time.Duration(cfg.Market.ExchangeIntervalSec) * time.Second
	c.Exchange.PageSize = cfg.Market.PageSize
	c.Exchange.TopN = cfg.Market.ExchangeTopN
	c.Exchange.LiquidityThreshold = cfg.Market.LiquidityThreshold

	c.Market.Interval = time.Duration(cfg.Market.MarketIntervalSec) * time.Second
	c.Market.PageSize = cfg.Market.PageSize
	c.Market.TopN = cfg.Market.MarketTopN
	c.Market.Highlight = cfg.Market.Highlight
	c.Market.Blocklist = cfg.Market.Blocklist
	c.Market.PaymentMethods = cfg.Market.PaymentMethods

	c.Fee.PaymentMethods = cfg.Fees.PaymentMethods

	return c
}

func botCommands() []telegram.BotCommand {
	commands := bot.Commands()

	menu := make([]telegram.BotCommand, 0, len(commands))
	for _, command := range commands {
		menu = append(menu, telegram.BotCommand{
			Command:     strings.TrimPrefix(command.Name, "/"),
			Description: command.Description,
		})
	}

	return menu
}
