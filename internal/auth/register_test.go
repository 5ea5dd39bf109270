package auth

import (
	"context"
	"testing"

	"github.com/printforge/printshop-backend/pkg/config"
	"github.com/printforge/printshop-backend/pkg/db"
	pkgerrors "github.com/printforge/printshop-backend/pkg/errors"
	"github.com/printforge/printshop-backend/pkg/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRegisterTestDB(t *testing.T) *db.Client {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  name TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(ddl).Error)
	return db.NewWithConn(conn)
}

func buildRegisterService(t *testing.T, client *db.Client, env string) RegisterService {
	t.Helper()

	svc, err := NewRegisterService(RegisterServiceParams{
		DB:             client,
		AppConfig:      config.AppConfig{Env: env},
		PasswordConfig: config.PasswordConfig{},
	})
	require.NoError(t, err)
	return svc
}

func TestRegister_createsOperator(t *testing.T) {
	client := setupRegisterTestDB(t)
	svc := buildRegisterService(t, client, config.AppEnvDev)

	created, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Shop Owner",
		Email:    "  Owner@PrintForge.dev ",
		Password: "operator-secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "owner@printforge.dev", created.Email)
	assert.Equal(t, "Shop Owner", created.Name)

	var stored struct {
		Email        string
		PasswordHash string
	}
	require.NoError(t, client.DB().Table("users").Where("email = ?", "owner@printforge.dev").Take(&stored).Error)

	valid, err := security.VerifyPassword("operator-secret", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestRegister_duplicateEmail(t *testing.T) {
	client := setupRegisterTestDB(t)
	svc := buildRegisterService(t, client, config.AppEnvDev)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "First",
		Email:    "owner@printforge.dev",
		Password: "operator-secret",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterRequest{
		Name:     "Second",
		Email:    "OWNER@printforge.dev",
		Password: "another-secret",
	})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestRegister_blockedInProduction(t *testing.T) {
	client := setupRegisterTestDB(t)
	svc := buildRegisterService(t, client, config.AppEnvProd)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Shop Owner",
		Email:    "owner@printforge.dev",
		Password: "operator-secret",
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}
