package main

import (
	"context"
	"log"
	"time"

	"notary-backend/internal/app"
	"notary-backend/internal/config"
	"notary-backend/internal/ledger"
	"notary-backend/internal/pending"
	"notary-backend/internal/ports/http"
	"notary-backend/internal/repository/mongodb"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	logger, err := getLogger()
	if err != nil {
		log.Fatalln("setting up the logger failed: ", err)
		return
	}
	defer logger.Sync()

	logger.Info("application started")

	db, err := mongodb.NewConnection(logger, config.GetDbConnectionURI())
	if err != nil {
		logger.Fatal("failed to connect to the database: " + err.Error())
	}
	defer db.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), config.GetRequestTimeout())
	if err := db.EnsureIndexes(ctx); err != nil {
		logger.Fatal("failed to ensure the database indexes: " + err.Error())
	}
	cancel()

	ledgerClient, err := ledger.NewClient(logger, config.GetRPCURL(), config.GetLedgerTimeout())
	if err != nil {
		logger.Fatal("failed to connect to the ledger node: " + err.Error())
	}
	defer ledgerClient.Close()

	pendingStore := pending.NewStore(config.GetPendingTTL())
	defer pendingStore.Close()

	application := app.NewApp(logger, db, ledgerClient, pendingStore)

	if email := config.GetBootstrapOwnerEmail(); email != "" {
		ctx, cancel := context.WithTimeout(context.Background(), config.GetRequestTimeout())
		err := application.EnsureOwner(ctx, config.GetBootstrapOrgName(), email, config.GetBootstrapOwnerPassword())
		cancel()
		if err != nil {
			logger.Fatal("failed to bootstrap the owner user: " + err.Error())
		}
	}

	ser := http.NewServer(logger, application, config.GetPort(), []byte(config.GetSessionSecret()))
	if err := ser.Run(); err != nil {
		logger.Error("failed to run the server: " + err.Error())
	}

	logger.Info("application finished")
}

func getLogger() (*zap.Logger, error) {
	options := []zap.Option{
		zap.AddCaller(),
		zap.AddStacktrace(zap.FatalLevel),
	}

	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
	config.Development = true
	config.Level.SetLevel(zap.DebugLevel)

	logger, err := config.Build()
	return logger.WithOptions(options...), err
}
