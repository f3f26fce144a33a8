package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func writeMigration(t *testing.T, dir, filename, sql string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(sql), 0644))
}

func testDBConfig(t *testing.T, migrationDir string) Config {
	return Config{
		Driver:       "sqlite",
		DSN:          filepath.Join(t.TempDir(), "test.db"),
		LogLevel:     LogLevelSilent,
		MigrationDir: migrationDir,
	}
}

func TestNewDatabase_MigracoesAplicadasAntesDeSubir(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "20240101120000_indices.sql",
		"CREATE INDEX IF NOT EXISTS idx_email_records_thread ON email_records(thread_id);")

	db, err := NewDatabase(context.Background(), testDBConfig(t, dir), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer db.Close()

	// AutoMigrate criou as tabelas do domínio
	assert.True(t, db.DB().Migrator().HasTable("email_records"))
	assert.True(t, db.DB().Migrator().HasTable("vip_guests"))

	// A migração SQL foi registrada como aplicada
	var count int64
	require.NoError(t, db.DB().Table("migrations").Where("version = ?", int64(20240101120000)).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestNewDatabase_FalhaDeMigracaoImpedeInicializacao(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "20240101120000_quebrada.sql", "CREATE TABELA invalida;")

	db, err := NewDatabase(context.Background(), testDBConfig(t, dir), zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "falha ao aplicar migrações")
}

func TestNewDatabase_SkipMigrationsSobeSemAplicar(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "20240101120000_quebrada.sql", "CREATE TABELA invalida;")

	cfg := testDBConfig(t, dir)
	cfg.SkipMigrations = true

	db, err := NewDatabase(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer db.Close()

	// Nem o AutoMigrate nem as migrações SQL rodaram
	assert.False(t, db.DB().Migrator().HasTable("email_records"))
}

func TestNewDatabase_DiretorioDeMigracoesAusente(t *testing.T) {
	cfg := testDBConfig(t, filepath.Join(t.TempDir(), "nao-existe"))

	db, err := NewDatabase(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer db.Close()
}

func TestNewDatabase_DriverNaoSuportado(t *testing.T) {
	cfg := testDBConfig(t, "")
	cfg.Driver = "oracle"

	db, err := NewDatabase(context.Background(), cfg, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Nil(t, db)
}
