package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun/migrate"
	"quiz-room-service/internal/app"
	"quiz-room-service/internal/domain"
	pgstore "quiz-room-service/internal/infra/postgres"
	pgmigrations "quiz-room-service/internal/infra/postgres/migrations"
	infraredis "quiz-room-service/internal/infra/redis"
)

func TestRoomLifecycleEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateSchema(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgstore.NewQuizLoader(pool)
	if err := loader.SaveQuiz(ctx, sampleQuiz()); err != nil {
		t.Fatalf("seed quiz: %v", err)
	}

	db := pgstore.OpenBun(pgURL)
	defer db.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	quizRepo := infraredis.NewQuizRepository(redisClient, loader, 5*time.Minute)
	store := infraredis.NewRoomStore(redisClient, time.Minute)
	history := pgstore.NewHistoryRepository(db)
	rooms := app.NewRoomManager(store, quizRepo, history)

	room, err := rooms.CreateRoom(ctx, "quiz-1", "org")
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if n, err := redisClient.Exists(ctx, "quizroom:room:"+room.ID()).Result(); err != nil || n != 1 {
		t.Fatalf("expected room code reserved in redis, got n=%d err=%v", n, err)
	}

	if !rooms.ClaimUsername(room, "s1", "Alice") || !rooms.ClaimUsername(room, "s2", "Bob") {
		t.Fatalf("expected both names to be accepted")
	}
	if _, err := rooms.AddPointsToPlayer(room, "s2", 40); err != nil {
		t.Fatalf("add points: %v", err)
	}
	if _, err := rooms.RecordSubmission(room, "s1"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	sub, err := rooms.RecordSubmission(room, "s2")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !sub.AllSubmitted {
		t.Fatalf("expected all submissions after both players answered")
	}

	if err := rooms.SaveResults(ctx, room, json.RawMessage(`[{"name":"Bob","points":40}]`)); err != nil {
		t.Fatalf("save results: %v", err)
	}
	entries, err := history.List(ctx)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(entries) != 1 || entries[0].BestScore != 40 || entries[0].QuizTitle != "Arithmetic" {
		t.Fatalf("unexpected history %+v", entries)
	}

	if res := rooms.EndGame(room, true); !res.Deleted {
		t.Fatalf("expected aborted room to be deleted")
	}
	if n, _ := redisClient.Exists(ctx, "quizroom:room:"+room.ID()).Result(); n != 0 {
		t.Fatalf("expected room code released in redis")
	}

	if err := history.Clear(ctx); err != nil {
		t.Fatalf("clear history: %v", err)
	}
	if entries, _ := history.List(ctx); len(entries) != 0 {
		t.Fatalf("expected empty history, got %d entries", len(entries))
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateSchema(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	db := pgstore.OpenBun(dsn)
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    "quiz-1",
		Title: "Arithmetic",
		Questions: []domain.Question{
			{
				Type:   domain.QuestionQCM,
				Text:   "What is 2 + 2?",
				Points: 10,
				Choices: []domain.Choice{
					{Text: "3"},
					{Text: "4", IsCorrect: true},
				},
			},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
