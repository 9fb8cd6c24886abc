//go:build integration
// +build integration

package integration

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"quore/app/services/credentialstore"
	"quore/app/services/credentialtype"
	"quore/domain/credential"
	"quore/internal/crypto"
	gormrepo "quore/internal/repository/gorm"
)

const (
	testUser     = "testuser"
	testPassword = "testpass"
	testDatabase = "testdb"
	testKeyHex   = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
)

func setupPostgres(t *testing.T) string {
	ctx := context.Background()

	container, err := pgcontainer.Run(ctx,
		"postgres:16-alpine",
		pgcontainer.WithDatabase(testDatabase),
		pgcontainer.WithUsername(testUser),
		pgcontainer.WithPassword(testPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port.Int(), testUser, testPassword, testDatabase)
}

// TestCredentialEncryptionAtRest verifies that nothing readable about a
// credential's secret fields ever reaches the database, checked against
// a real postgres with a raw driver rather than through the ORM.
func TestCredentialEncryptionAtRest(t *testing.T) {
	connStr := setupPostgres(t)
	ctx := context.Background()

	db, err := gorm.Open(gormpg.Open(connStr), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&credential.Credential{}))

	box, err := crypto.NewBox(testKeyHex)
	require.NoError(t, err)
	store := credentialstore.New(gormrepo.NewCredentialRepository(db), credentialtype.NewRegistry(), box)

	secret := "ghp_supersecret_token_value"
	cred, err := store.Create(ctx, "wks_1", "deploy-token", credential.TypeGitHubPAT,
		map[string]any{"token": secret}, "usr_1")
	require.NoError(t, err)

	raw, err := sql.Open("postgres", connStr)
	require.NoError(t, err)
	defer raw.Close()

	var blob []byte
	err = raw.QueryRowContext(ctx, "SELECT encrypted_blob FROM credentials WHERE id = $1", cred.ID).Scan(&blob)
	require.NoError(t, err)
	assert.NotContains(t, string(blob), secret)
	assert.NotContains(t, string(blob), "token")

	fields, err := store.DecryptedFields(ctx, cred.ID)
	require.NoError(t, err)
	assert.Equal(t, secret, fields["token"])

	found, err := store.Delete(ctx, cred.ID)
	require.NoError(t, err)
	require.True(t, found)

	var count int
	require.NoError(t, raw.QueryRowContext(ctx, "SELECT COUNT(*) FROM credentials WHERE id = $1", cred.ID).Scan(&count))
	assert.Zero(t, count, "credential rows must be hard-deleted")
}

// TestSearchOperatorsOnPostgres exercises the filter operators against
// the postgres dialect, since ilike handling differs from sqlite.
func TestSearchOperatorsOnPostgres(t *testing.T) {
	connStr := setupPostgres(t)
	ctx := context.Background()

	db, err := gorm.Open(gormpg.Open(connStr), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&credential.Credential{}))

	box, err := crypto.NewBox(testKeyHex)
	require.NoError(t, err)
	store := credentialstore.New(gormrepo.NewCredentialRepository(db), credentialtype.NewRegistry(), box)

	for _, name := range []string{"Prod Deploy", "staging deploy", "unrelated"} {
		_, err := store.Create(ctx, "wks_1", name, credential.TypeBearerAuth,
			map[string]any{"token": "tok"}, "usr_1")
		require.NoError(t, err)
	}

	results, err := store.Search(ctx, "wks_1", []credential.Condition{
		{Field: "name", Op: credential.OpILike, Value: "%deploy%"},
	})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = store.Search(ctx, "wks_1", []credential.Condition{
		{Field: "name", Op: credential.OpIn, Value: []string{"unrelated", "missing"}},
	})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}
