package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/das-elb/email-agent-go/internal/adapter/database"
	"github.com/das-elb/email-agent-go/internal/domain/model"
)

func main() {
	var (
		email    string
		name     string
		company  string
		tier     string
		notes    string
		dbDriver string
		dbDSN    string
		verbose  bool
	)

	flag.StringVar(&email, "email", "", "Email do hóspede VIP")
	flag.StringVar(&name, "name", "", "Nome do hóspede")
	flag.StringVar(&company, "company", "", "Empresa")
	flag.StringVar(&tier, "tier", "gold", "Categoria (gold, platinum, press, corporate)")
	flag.StringVar(&notes, "notes", "", "Observações")
	flag.StringVar(&dbDriver, "driver", "sqlite", "Driver do banco de dados (sqlite, mysql, postgres)")
	flag.StringVar(&dbDSN, "dsn", "./daselb_agent.db", "DSN do banco de dados")
	flag.BoolVar(&verbose, "verbose", false, "Mostrar logs detalhados")
	flag.Parse()

	if email == "" {
		fmt.Println("Erro: email não pode ser vazio.")
		flag.Usage()
		os.Exit(1)
	}

	cfg := zap.NewProductionConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
		cfg.OutputPaths = []string{"stderr"}
	}

	logger, err := cfg.Build()
	if err != nil {
		fmt.Printf("Erro ao inicializar logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	dbConfig := database.Config{
		Driver:          dbDriver,
		DSN:             dbDSN,
		MaxIdleConns:    5,
		MaxOpenConns:    10,
		ConnMaxLifetime: 5 * time.Minute,
		LogLevel:        database.LogLevelError,
		SlowThreshold:   200 * time.Millisecond,
		SkipMigrations:  true,
	}

	ctx := context.Background()
	db, err := database.NewDatabase(ctx, dbConfig, logger)
	if err != nil {
		fmt.Printf("Erro ao conectar ao banco de dados: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if !db.DB().Migrator().HasTable(&model.VIPGuest{}) {
		if err := db.DB().AutoMigrate(&model.VIPGuest{}); err != nil {
			fmt.Printf("Erro ao criar tabela de VIPs: %v\n", err)
			os.Exit(1)
		}
	}

	repo := database.NewVIPRepository(db.DB())
	guest := &model.VIPGuest{
		Email:   email,
		Name:    name,
		Company: company,
		Tier:    tier,
		Notes:   notes,
	}
	if err := repo.Add(ctx, guest); err != nil {
		fmt.Printf("Erro ao cadastrar VIP: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("VIP cadastrado: %s (%s)\n", guest.Email, guest.Tier)
}
