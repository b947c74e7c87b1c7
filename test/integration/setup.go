package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	handler "github.com/pollbox/pollbox/internal/adapters/handler/http"
	repo "github.com/pollbox/pollbox/internal/adapters/repository/postgres"
	"github.com/pollbox/pollbox/internal/core/domain"
	"github.com/pollbox/pollbox/internal/core/ports"
	"github.com/pollbox/pollbox/internal/core/services"
	"github.com/pollbox/pollbox/internal/notify"
)

const testJWTSecret = "test-secret"

type TestApp struct {
	DB          *sql.DB
	Server      *httptest.Server
	Client      *http.Client
	Broadcaster *notify.Broadcaster
	DBContainer testcontainers.Container
}

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func applyMigrations(db *sql.DB) error {
	dirPath := "../../internal/adapters/repository/postgres/migrations"

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dirPath, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func setupTestApp(t *testing.T) *TestApp {
	t.Helper()
	ctx := context.Background()

	dbContainer, dbURL, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)

	require.NoError(t, applyMigrations(db))

	broadcaster := notify.NewBroadcaster()

	pollRepo := repo.NewPollRepository(db)
	voteRepo := repo.NewVoteRepository(db)
	userRepo := repo.NewUserRepository(db)
	authRepo := repo.NewAuthRepository(db)

	pollService := services.NewPollService(pollRepo, broadcaster)
	voteService := services.NewVoteService(pollRepo, voteRepo, broadcaster)
	userService := services.NewUserService(userRepo)
	authService := services.NewAuthService(userRepo, authRepo, stubVerifier{}, testJWTSecret, "test-client")

	router := handler.NewHandler(handler.Handlers{
		Polls:  handler.NewPollHandler(pollService),
		Votes:  handler.NewVoteHandler(voteService),
		Events: handler.NewEventsHandler(broadcaster),
		Auth:   handler.NewAuthHandler(authService, "/", "", http.SameSiteLaxMode),
		Users:  handler.NewUserHandler(userService),
	}, []byte(testJWTSecret), []string{"*"})

	server := httptest.NewServer(router)

	return &TestApp{
		DB:          db,
		Server:      server,
		Client:      server.Client(),
		Broadcaster: broadcaster,
		DBContainer: dbContainer,
	}
}

func (app *TestApp) Teardown(t *testing.T) {
	app.Server.Close()
	app.Broadcaster.Close()
	app.DB.Close()
	if err := app.DBContainer.Terminate(context.Background()); err != nil {
		t.Logf("failed to terminate container: %v", err)
	}
}

// stubVerifier accepts any credential of the form "email|name".
type stubVerifier struct{}

func (stubVerifier) Verify(ctx context.Context, token string, clientID string) (*ports.TokenPayload, error) {
	email, name, ok := strings.Cut(token, "|")
	if !ok {
		return nil, fmt.Errorf("malformed credential")
	}
	return &ports.TokenPayload{Email: email, Name: name}, nil
}

func (app *TestApp) createUserAndToken(t *testing.T) string {
	t.Helper()

	userID := uuid.New()
	email := fmt.Sprintf("user-%s@example.com", userID)
	name := fmt.Sprintf("User %s", userID)
	_, err := app.DB.Exec("INSERT INTO users (id, email, name) VALUES ($1, $2, $3)", userID, email, name)
	require.NoError(t, err)

	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"email": email,
		"exp":   time.Now().Add(15 * time.Minute).Unix(),
		"iat":   time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signedToken
}

func (app *TestApp) createPoll(t *testing.T, token string, title string, options []string, multi bool) domain.Poll {
	t.Helper()

	body, _ := json.Marshal(map[string]interface{}{
		"title":                  title,
		"description":            "integration test poll",
		"options":                options,
		"allow_multiple_choices": multi,
	})

	req, err := http.NewRequest("POST", app.Server.URL+"/api/polls", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})

	resp, err := app.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var poll domain.Poll
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&poll))
	return poll
}

func (app *TestApp) castVote(t *testing.T, token string, pollID, optionID uuid.UUID) *http.Response {
	t.Helper()

	body, _ := json.Marshal(map[string]interface{}{"option_id": optionID})
	req, err := http.NewRequest("POST", fmt.Sprintf("%s/api/polls/%s/votes", app.Server.URL, pollID), bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})

	resp, err := app.Client.Do(req)
	require.NoError(t, err)
	return resp
}

func (app *TestApp) pollCounts(t *testing.T, pollID uuid.UUID) (total int64, byOption map[uuid.UUID]int64) {
	t.Helper()

	require.NoError(t, app.DB.QueryRow("SELECT total_votes FROM polls WHERE id = $1", pollID).Scan(&total))

	byOption = make(map[uuid.UUID]int64)
	rows, err := app.DB.Query("SELECT id, vote_count FROM poll_options WHERE poll_id = $1", pollID)
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var id uuid.UUID
		var count int64
		require.NoError(t, rows.Scan(&id, &count))
		byOption[id] = count
	}
	require.NoError(t, rows.Err())
	return total, byOption
}

// requireTalliesMatchVotes asserts the cached counters equal the live vote
// rows, the invariant the repository transaction maintains.
func (app *TestApp) requireTalliesMatchVotes(t *testing.T, pollID uuid.UUID) {
	t.Helper()

	total, byOption := app.pollCounts(t, pollID)

	var liveTotal int64
	require.NoError(t, app.DB.QueryRow("SELECT COUNT(*) FROM votes WHERE poll_id = $1", pollID).Scan(&liveTotal))
	require.Equal(t, liveTotal, total, "polls.total_votes must equal live vote rows")

	var sum int64
	for optID, count := range byOption {
		var liveCount int64
		require.NoError(t, app.DB.QueryRow("SELECT COUNT(*) FROM votes WHERE option_id = $1", optID).Scan(&liveCount))
		require.Equal(t, liveCount, count, "poll_options.vote_count must equal live vote rows")
		sum += count
	}
	require.Equal(t, total, sum, "poll total must equal sum of option counts")
}
