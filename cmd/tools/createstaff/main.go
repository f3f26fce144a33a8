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
		username string
		password string
		email    string
		role     string
		dbDriver string
		dbDSN    string
		verbose  bool
	)

	flag.StringVar(&username, "username", "", "Nome de usuário")
	flag.StringVar(&password, "password", "", "Senha")
	flag.StringVar(&email, "email", "", "Email")
	flag.StringVar(&role, "role", "staff", "Papel (staff, manager, admin)")
	flag.StringVar(&dbDriver, "driver", "sqlite", "Driver do banco de dados (sqlite, mysql, postgres)")
	flag.StringVar(&dbDSN, "dsn", "./daselb_agent.db", "DSN do banco de dados")
	flag.BoolVar(&verbose, "verbose", false, "Mostrar logs detalhados")
	flag.Parse()

	if username == "" || password == "" || email == "" {
		fmt.Println("Erro: username, password e email não podem ser vazios.")
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
		SkipMigrations:  true, // Pular migrações para esta ferramenta
	}

	ctx := context.Background()
	db, err := database.NewDatabase(ctx, dbConfig, logger)
	if err != nil {
		fmt.Printf("Erro ao conectar ao banco de dados: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if !db.DB().Migrator().HasTable(&model.UserEntity{}) {
		if err := db.DB().AutoMigrate(&model.UserEntity{}); err != nil {
			fmt.Printf("Erro ao criar tabela de usuários: %v\n", err)
			os.Exit(1)
		}
	}

	repo := database.NewUserRepository(db.DB())
	user, err := repo.CreateUser(ctx, username, password, email, role)
	if err != nil {
		fmt.Printf("Erro ao criar usuário: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nUsuário criado com sucesso")
	fmt.Printf("  ID:       %s\n", user.ID)
	fmt.Printf("  Username: %s\n", user.Username)
	fmt.Printf("  Email:    %s\n", user.Email)
	fmt.Printf("  Role:     %s\n\n", user.Role)
}
