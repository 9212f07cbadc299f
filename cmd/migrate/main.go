// Comando migrate: aplica o revierte el esquema de stock_records y ledger_entries.
//
// Uso:
//
//	go run ./cmd/migrate up       # aplica las migraciones pendientes
//	go run ./cmd/migrate down     # revierte todas
//	go run ./cmd/migrate version  # muestra la versión aplicada
package main

import (
	"fmt"
	"os"

	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func main() {
	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, AppName: "migrate"})

	m, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("migrador")
	}
	defer m.Close()

	switch cmd {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "version":
		var (
			v     uint
			dirty bool
		)
		v, dirty, err = m.Version()
		if err == nil {
			fmt.Printf("version=%d dirty=%t\n", v, dirty)
		}
	default:
		fmt.Fprintf(os.Stderr, "comando desconocido %q (up | down | version)\n", cmd)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Str("cmd", cmd).Msg("migración fallida")
	}
}
