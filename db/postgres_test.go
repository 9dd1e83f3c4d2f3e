package db

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgres(t *testing.T) *Database {
	if testing.Short() {
		t.Skip("postgres container skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	// suppress logging
	testcontainers.Logger = log.New(io.Discard, "", 0)

	ctx := context.Background()
	postgres, err := testcontainers.GenericContainer(
		ctx,
		testcontainers.GenericContainerRequest{
			Started: true,
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "postgres:16-alpine",
				ExposedPorts: []string{"5432/tcp"},
				Env: map[string]string{
					"POSTGRES_USER":     "wcu",
					"POSTGRES_PASSWORD": "wcu",
					"POSTGRES_DB":       "courses",
				},
				WaitingFor: wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(time.Minute),
			},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := postgres.Terminate(context.Background()); err != nil {
			t.Fatal(err)
		}
	})

	host, err := postgres.Host(ctx)
	require.NoError(t, err)
	port, err := postgres.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	database, err := Connect(ctx, fmt.Sprintf("postgres://wcu:wcu@%v:%v/courses?sslmode=disable", host, port.Port()))
	require.NoError(t, err)
	t.Cleanup(database.Close)

	require.NoError(t, database.CreateTables(ctx))
	return database
}

func TestPostgresRoundTrip(t *testing.T) {
	database := setupPostgres(t)
	ctx := context.Background()

	// tables are created idempotently
	require.NoError(t, database.CreateTables(ctx))

	require.NoError(t, database.InsertSubjects(ctx, []string{"MAT", "BIO", "MAT"}))
	subjects, err := database.ListSubjects(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"BIO", "MAT"}, subjects)

	courses := []Course{
		{Title: "Intro to Biology", Code: NewCourseCode("BIO", 110), Description: "Basic\x00 concepts.", Credits: 3},
		{
			Title:           "Genetics",
			Code:            NewCourseCode("BIO", 210),
			Description:     "No Description",
			Credits:         4,
			PreRequirements: []string{"BIO 110"},
			OfferedTerms:    []string{"Fall"},
		},
	}
	require.NoError(t, database.InsertCourses(ctx, courses))

	// inserting again updates the row in place
	courses[1].Title = "Genetics I"
	require.NoError(t, database.InsertCourses(ctx, courses))

	var count int
	require.NoError(t, database.Pool.QueryRow(ctx, `SELECT count(*) FROM courses`).Scan(&count))
	require.Equal(t, 2, count)

	var (
		title        string
		description  string
		requisites   []string
		genEds       []string
		offeredTerms []string
	)
	err = database.Pool.QueryRow(
		ctx,
		`SELECT title, description, pre_requirements, gen_ed_fulfillments, offered_terms FROM courses WHERE node_id = $1`,
		ValueNodeId(courses[1].Code),
	).Scan(&title, &description, &requisites, &genEds, &offeredTerms)
	require.NoError(t, err)
	require.Equal(t, "Genetics I", title)
	require.Equal(t, "No Description", description)
	require.Equal(t, []string{"BIO 110"}, requisites)
	require.Empty(t, genEds)
	require.Equal(t, []string{"Fall"}, offeredTerms)

	err = database.Pool.QueryRow(ctx, `SELECT description FROM courses WHERE node_id = $1`, "BIO#110").Scan(&description)
	require.NoError(t, err)
	require.Equal(t, "Basic concepts.", description)

	relations := []Relation{
		{SourceId: "BIO#110", TargetId: "BIO#210"},
		{SourceId: "BIO#110", TargetId: "BIO#210"},
		{SourceId: "Placement exam", TargetId: "BIO#210"},
	}
	require.NoError(t, database.InsertRelations(ctx, relations))
	require.NoError(t, database.Pool.QueryRow(ctx, `SELECT count(*) FROM relations`).Scan(&count))
	require.Equal(t, 2, count)
}

func TestPostgresEmptyInserts(t *testing.T) {
	database := setupPostgres(t)
	ctx := context.Background()

	require.NoError(t, database.InsertSubjects(ctx, nil))
	require.NoError(t, database.InsertCourses(ctx, nil))
	require.NoError(t, database.InsertRelations(ctx, nil))

	subjects, err := database.ListSubjects(ctx)
	require.NoError(t, err)
	require.Empty(t, subjects)
}
