package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/2beens/weeklyreps/internal"
	"github.com/2beens/weeklyreps/internal/config"
	"github.com/2beens/weeklyreps/internal/logging"
	"github.com/2beens/weeklyreps/pkg"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	fmt.Println("starting ...")

	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	// secrets may come from a local .env file, real env vars win
	if err := godotenv.Load(); err != nil {
		fmt.Println("no .env file loaded")
	}

	log.Warnf("---->> running in [%s] environment", *env)

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	sentryDSN := os.Getenv("SENTRY_DSN")
	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    cfg.LogFormatJSON,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        sentryDSN,
		SentryServerName: "weeklyreps-service",
	})

	log.Debugf("using port: %d", cfg.Port)
	log.Debugf("using server logs path: [%s]", cfg.LogsPath)
	log.Debugf("using storage: [%s]", cfg.Storage)

	versionInfo, err := tryGetLastCommitHash()
	if err != nil {
		log.Tracef("failed to get last commit hash / version info: %s", err)
	} else {
		log.Tracef("running version: %s", versionInfo)
	}

	var sheetsCredentials []byte
	if cfg.Storage == config.StorageSheets {
		credentialsPath := os.Getenv("WEEKLYREPS_SHEETS_CREDENTIALS")
		if credentialsPath == "" {
			log.Fatalf("sheets storage selected, but credentials not set. use WEEKLYREPS_SHEETS_CREDENTIALS")
		}
		sheetsCredentials, err = os.ReadFile(credentialsPath)
		if err != nil {
			log.Fatalf("read sheets credentials [%s]: %s", credentialsPath, err)
		}
	}

	redisPassword := os.Getenv("WEEKLYREPS_REDIS_PASS")
	if redisPassword == "" && cfg.RedisHost != "" {
		log.Warnln("redis password not set. use WEEKLYREPS_REDIS_PASS")
	}

	postgresPassword := os.Getenv("WEEKLYREPS_POSTGRES_PASS")

	submitSecretHash := os.Getenv("WEEKLYREPS_SUBMIT_SECRET_HASH")
	if submitSecretHash == "" {
		log.Warnln("submit secret hash not set, anyone can log reps. use WEEKLYREPS_SUBMIT_SECRET_HASH")
	}

	honeycombEnabled := os.Getenv("HONEYCOMB_ENABLED") == "true"
	if honeycombEnabled {
		if honeycombApiKey := os.Getenv("HONEYCOMB_API_KEY"); honeycombApiKey == "" {
			log.Warnln("HONEYCOMB_API_KEY env var not set")
		}
	} else {
		log.Debugln("honeycomb tracing disabled")
	}

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())

	server, err := internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:                  cfg,
			VersionInfo:             versionInfo,
			RedisPassword:           redisPassword,
			PostgresPassword:        postgresPassword,
			SheetsCredentialsJSON:   sheetsCredentials,
			SubmitSecretHash:        submitSecretHash,
			HoneycombTracingEnabled: honeycombEnabled,
			// local development starts with a couple of records to look at
			SeedSamples: cfg.Environment == "dev" || cfg.Environment == "development",
		},
	)
	if err != nil {
		log.Fatalf("new server: %s", err)
	}

	server.Serve(cfg.Host, cfg.Port)

	receivedSig := <-chOsInterrupt
	log.Warnf("signal [%s] received, killing everything ...", receivedSig)
	cancel()

	server.GracefulShutdown()
}

// tryGetLastCommitHash will try to get the last commit hash
// assumes that the built main executable is in project root
func tryGetLastCommitHash() (string, error) {
	cmd := exec.Command("/usr/bin/git", "rev-parse", "HEAD")
	stdout, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(pkg.BytesToString(stdout)), nil
}
