package main

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/dinari-africa/dinari-ledger/internal/config"
	"github.com/dinari-africa/dinari-ledger/internal/http_api"
	"github.com/dinari-africa/dinari-ledger/internal/journal"
	"github.com/dinari-africa/dinari-ledger/internal/ledger"
	"github.com/dinari-africa/dinari-ledger/internal/models"
	"github.com/dinari-africa/dinari-ledger/internal/notifier"
	"github.com/dinari-africa/dinari-ledger/internal/repository"
	"github.com/dinari-africa/dinari-ledger/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "dinari-ledger",
		Usage: "Dinari is a compliance-aware fungible token ledger",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "postgres-user", Aliases: []string{"u"}, Usage: "Postgres user"},
			&cli.StringFlag{Name: "postgres-password", Aliases: []string{"p"}, Usage: "Postgres password"},
			&cli.StringFlag{Name: "postgres-host", Aliases: []string{"t"}, Usage: "Postgres host"},
			&cli.IntFlag{Name: "postgres-port", Aliases: []string{"P"}, Usage: "Postgres port"},
			&cli.StringFlag{Name: "postgres-db", Aliases: []string{"d"}, Usage: "Postgres database name"},
			&cli.IntFlag{Name: "api-port", Aliases: []string{"a"}, Usage: "API port"},
			&cli.StringFlag{Name: "deployer-address", Aliases: []string{"g"}, Usage: "Genesis deployer address"},
			&cli.StringFlag{Name: "initial-supply", Aliases: []string{"s"}, Usage: "Initial supply in base units"},
			&cli.StringFlag{Name: "alert-threshold", Aliases: []string{"m"}, Usage: "Minimal transfer amount for operator alerts, base units"},
			&cli.BoolFlag{Name: "development", Aliases: []string{"D"}, Usage: "Development mode"},
		},
		Action: func(c *cli.Context) error {
			return run(c)
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	// Load configuration from environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	// Override with flags if set
	if c.IsSet("postgres-user") {
		cfg.PostgresUser = c.String("postgres-user")
	}
	if c.IsSet("postgres-password") {
		cfg.PostgresPassword = c.String("postgres-password")
	}
	if c.IsSet("postgres-host") {
		cfg.PostgresHost = c.String("postgres-host")
	}
	if c.IsSet("postgres-port") {
		cfg.PostgresPort = c.Int("postgres-port")
	}
	if c.IsSet("postgres-db") {
		cfg.PostgresDB = c.String("postgres-db")
	}
	if c.IsSet("api-port") {
		cfg.APIPort = c.Int("api-port")
	}
	if c.IsSet("deployer-address") {
		cfg.DeployerAddress = c.String("deployer-address")
	}
	if c.IsSet("initial-supply") {
		supply, ok := new(big.Int).SetString(c.String("initial-supply"), 10)
		if ok {
			cfg.InitialSupply = supply
		}
	}
	if c.IsSet("alert-threshold") {
		threshold, ok := new(big.Int).SetString(c.String("alert-threshold"), 10)
		if ok {
			cfg.AlertThreshold = threshold
		}
	}
	if c.IsSet("development") {
		cfg.Development = c.Bool("development")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %v", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Development)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}
	defer log.Sync()

	// Initialize database
	db, err := repository.NewPostgresDB(cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresHost, cfg.PostgresPort, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize the event journal and its subscribers
	eventJournal := journal.New(db, log, cfg.JournalBuffer)
	hub := http_api.NewEventHub(log)
	eventJournal.Subscribe(hub)

	if alerts := buildNotifier(cfg, log); alerts != nil {
		eventJournal.Subscribe(alerts)
	}

	// Initialize the ledger engine from genesis
	engine, err := ledger.New(&models.Genesis{
		Token: models.Token{
			Name:     cfg.TokenName,
			Symbol:   cfg.TokenSymbol,
			Decimals: 18,
		},
		Deployer:      cfg.DeployerAddress,
		InitialSupply: cfg.InitialSupply,
		InitialRates:  cfg.InitialRates(),
	}, eventJournal, log)
	if err != nil {
		return fmt.Errorf("failed to initialize ledger: %v", err)
	}

	apiServer := http_api.NewHTTPServer(engine, db, hub, cfg.APIPort, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go eventJournal.Run(ctx)
	go apiServer.Start()

	<-ctx.Done()
	return apiServer.Shutdown()
}

// buildNotifier wires operator alert channels from config. Returns nil when
// no channel is configured.
func buildNotifier(cfg *config.Config, log *logger.Logger) *notifier.Notifier {
	var telegram *notifier.TelegramNotifier
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		var err error
		telegram, err = notifier.NewTelegramNotifier(log, cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			log.Error("Failed to initialize Telegram notifier: ", err)
		}
	}

	var email *notifier.EmailNotifier
	if cfg.OperatorEmail != "" && cfg.SMTPUser != "" {
		email = notifier.NewEmailNotifier(log, cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPSender, cfg.OperatorEmail)
	}

	if telegram == nil && email == nil {
		return nil
	}
	return notifier.NewNotifier(log, cfg.AlertThreshold, telegram, email)
}
