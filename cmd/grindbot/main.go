package main

import (
	"context"
	"flag"
	"fmt"
	stdlog "log"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	sloggger "github.com/varkas/grindbot/cmd/grindbot/log"
	"github.com/varkas/grindbot/internal/bot"
	"github.com/varkas/grindbot/internal/config"
	"github.com/varkas/grindbot/internal/event"
	"github.com/varkas/grindbot/internal/game"
	"github.com/varkas/grindbot/internal/game/bridge"
	"github.com/varkas/grindbot/internal/pather"
	"github.com/varkas/grindbot/internal/remote/discord"
	"github.com/varkas/grindbot/internal/remote/telegram"
	"github.com/varkas/grindbot/internal/server"
	"github.com/varkas/grindbot/internal/store"
	"golang.org/x/sync/errgroup"
)

// wrapWithRecover wraps a function with panic recovery logic
func wrapWithRecover(logger *slog.Logger, f func() error) func() error {
	return func() error {
		defer func() {
			if r := recover(); r != nil {
				errMsg := fmt.Sprintf("panic recovered: %v\nStacktrace: %s", r, debug.Stack())
				logger.Error(errMsg)
				sloggger.FlushLog()
			}
		}()
		return f()
	}
}

func clientVersion(s string) (game.ClientVersion, error) {
	switch s {
	case "vanilla":
		return game.VersionVanilla, nil
	case "tbc":
		return game.VersionTBC, nil
	case "wotlk":
		return game.VersionWotLK, nil
	}
	return 0, fmt.Errorf("unknown client version %q", s)
}

func main() {
	var (
		configPath    = flag.String("config", "config/config.yaml", "path to the shared settings file")
		characterPath = flag.String("character", "config/character.yaml", "path to the character settings file")
		dataPath      = flag.String("data", "data/world.json", "path to the world data file")
		bridgeAddr    = flag.String("bridge", "127.0.0.1:9050", "address of the in-process game bridge")
		characterName = flag.String("name", "grindbot", "character name, used to tag events and logs")
		version       = flag.String("version", "vanilla", "client generation: vanilla, tbc or wotlk")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		stdlog.Fatalf("Error loading configuration: %s", err.Error())
	}

	charCfg, err := config.LoadCharacter(*characterPath)
	if err != nil {
		stdlog.Fatalf("Error loading character configuration: %s", err.Error())
	}

	ver, err := clientVersion(*version)
	if err != nil {
		stdlog.Fatalf("Error parsing client version: %s", err.Error())
	}

	logger, err := sloggger.NewLogger(cfg.Debug.Log, cfg.LogSaveDirectory, *characterName)
	if err != nil {
		stdlog.Fatalf("Error starting logger: %s", err.Error())
	}
	defer sloggger.FlushAndClose()

	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Sprintf("fatal error detected, grindbot will close with the following error: %v\n Stacktrace: %s", r, debug.Stack()))
			sloggger.FlushAndClose()
		}
	}()

	data, err := store.NewFileStore(*dataPath)
	if err != nil {
		stdlog.Fatalf("Error loading world data: %s", err.Error())
	}

	conn, err := bridge.Dial(*bridgeAddr, ver)
	if err != nil {
		stdlog.Fatalf("Error connecting to the game bridge at %s: %s", *bridgeAddr, err.Error())
	}
	defer conn.Close()

	hotspot, err := data.HotspotByID(charCfg.GrindingHotspotID)
	if err != nil {
		stdlog.Fatalf("Error resolving grinding hotspot %d: %s", charCfg.GrindingHotspotID, err.Error())
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	eventListener := event.NewListener(logger)

	botCtx := &bot.Ctx{
		Logger:  logger.With(slog.String("supervisor", *characterName)),
		Client:  conn,
		Profile: game.ProfileFor(ver),
		Manager: game.NewManager(conn),
		Session: game.NewSession(),
		Timers:  bot.NewTimers(time.Now),
		Pather:  pather.NewPathFinder(conn),
		Data:    data,
		Cfg:     charCfg,
		Events:  eventListener,
		Rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
		Clock:   time.Now,
		Name:    *characterName,
		Hotspot: hotspot,
	}

	engine := bot.NewEngine(botCtx, baseState(charCfg, data, logger))

	if cfg.Discord.Enabled {
		discordBot, err := discord.NewBot(cfg, engine, cancel)
		if err != nil {
			logger.Error("Discord could not been initialized", slog.Any("error", err))
			return
		}

		eventListener.Register(discordBot.Handle)
		if !cfg.Discord.UseWebhook {
			g.Go(wrapWithRecover(logger, func() error {
				return discordBot.Start(ctx)
			}))
		}
	}

	if cfg.Telegram.Enabled {
		telegramBot, err := telegram.NewBot(cfg.Telegram.Token, cfg.Telegram.ChatID, engine, logger)
		if err != nil {
			logger.Error("Telegram could not been initialized", slog.Any("error", err))
			return
		}

		eventListener.Register(telegramBot.Handle)
		g.Go(wrapWithRecover(logger, func() error {
			return telegramBot.Start(ctx)
		}))
	}

	if cfg.Web.Enabled {
		srv := server.New(logger, engine, cfg.Web.Host, cfg.Web.Port)
		g.Go(wrapWithRecover(logger, func() error {
			defer cancel()
			return srv.Listen(ctx)
		}))
	}

	g.Go(wrapWithRecover(logger, func() error {
		defer cancel()
		return eventListener.Listen(ctx)
	}))

	g.Go(wrapWithRecover(logger, func() error {
		defer cancel()
		return engine.Run(ctx)
	}))

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("grindbot shutting down...")
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Error running grindbot", slog.Any("error", err))
	}

	sloggger.FlushAndClose()
}

// baseState builds the factory for the bottom of the state stack. A pending
// travel path is walked first, then the character stays on the grind loop.
func baseState(charCfg *config.CharacterCfg, data store.WorldData, logger *slog.Logger) func(ctx *bot.Ctx) bot.State {
	traveled := false
	return func(ctx *bot.Ctx) bot.State {
		if charCfg.CurrentTravelPath != "" && !traveled {
			path, err := data.TravelPathByName(charCfg.CurrentTravelPath)
			if err != nil {
				logger.Warn("travel path not found, grinding instead",
					slog.String("path", charCfg.CurrentTravelPath),
					slog.Any("error", err),
				)
			} else {
				traveled = true
				return bot.NewTravelState(path.Waypoints, 0, func(ctx *bot.Ctx) {
					ctx.Cfg.CurrentTravelPath = ""
				})
			}
		}
		return bot.NewGrindState()
	}
}
