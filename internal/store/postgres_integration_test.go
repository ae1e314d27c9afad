//go:build integration

package store

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/inucreativehrd21/FINAL-SERVER/internal/model"
)

var pgStore *Store

// TestMain starts a PostgreSQL container shared by the integration tests.
func TestMain(m *testing.M) {
	os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "chatbot",
				"POSTGRES_PASSWORD": "chatbot",
				"POSTGRES_DB":       "chatbot",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("start postgres container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		log.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		log.Fatalf("container port: %v", err)
	}

	dsn := fmt.Sprintf("postgres://chatbot:chatbot@%s:%s/chatbot?sslmode=disable", host, port.Port())
	pgStore, err = Open(ctx, Config{Driver: "postgres", URL: dsn})
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	if _, err := pgStore.Migrate(ctx); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	code := m.Run()

	_ = pgStore.Close()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func TestPostgres_TurnLifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	sess := &model.Session{UserID: 42, Title: "pg", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, pgStore.CreateSession(ctx, sess))

	uid := int64(42)
	q := &model.Turn{SessionID: sess.ID, UserID: &uid, Role: model.RoleUser, Content: "how do I rebase?", CreatedAt: now}
	require.NoError(t, pgStore.CreateTurn(ctx, q))
	a := &model.Turn{
		SessionID: sess.ID, UserID: &uid, Role: model.RoleAssistant, Content: "use git rebase",
		Metadata: map[string]any{"response_time": 2.0}, Category: model.CategoryGit, CreatedAt: now.Add(time.Second),
	}
	require.NoError(t, pgStore.CreateTurn(ctx, a))
	require.NoError(t, pgStore.TouchSession(ctx, sess.ID, now.Add(time.Second)))

	window, err := pgStore.EarliestTurns(ctx, sess.ID, a.ID, 10)
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, "how do I rebase?", window[0].Content)

	require.NoError(t, pgStore.UpdateFeedback(ctx, a.ID, 42, true, "thanks"))

	page, err := pgStore.ListAnswered(ctx, 42, model.HistoryQuery{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "how do I rebase?", page.Results[0].Question)

	turns, err := pgStore.AssistantTurnsSince(ctx, 42, now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, turns, 1)

	require.NoError(t, pgStore.DeleteSession(ctx, sess.ID, 42))
	_, err = pgStore.GetSession(ctx, sess.ID, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}
