package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"tournament-gateway/internal/apperr"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type testDoc struct {
	ID           string `json:"id"`
	TournamentID string `json:"tournamentId"`
	TeamID       string `json:"teamId"`
	Status       string `json:"status"`
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, RunMigrations(db, zerolog.Nop()))
	return db
}

func TestCollectionCreateAndFindByID(t *testing.T) {
	db := newTestDB(t)
	col := NewCollection[testDoc](db, "testDocs", zerolog.Nop())
	ctx := context.Background()

	doc := testDoc{ID: "a1", TournamentID: "t1", TeamID: "alpha", Status: "active"}
	created, err := col.Create(ctx, doc.ID, doc)
	require.NoError(t, err)
	require.Equal(t, doc, *created)

	found, err := col.FindByID(ctx, "a1")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, doc, *found)
}

func TestCollectionFindByIDMissingIsNotAnError(t *testing.T) {
	db := newTestDB(t)
	col := NewCollection[testDoc](db, "testDocs", zerolog.Nop())

	found, err := col.FindByID(context.Background(), "nope")
	require.NoError(t, err)
	require.Nil(t, found)
}

func TestCollectionFindManyWithFilter(t *testing.T) {
	db := newTestDB(t)
	col := NewCollection[testDoc](db, "testDocs", zerolog.Nop())
	ctx := context.Background()

	docs := []testDoc{
		{ID: "a", TournamentID: "t1", TeamID: "alpha", Status: "active"},
		{ID: "b", TournamentID: "t1", TeamID: "beta", Status: "active"},
		{ID: "c", TournamentID: "t2", TeamID: "alpha", Status: "active"},
		{ID: "d", TournamentID: "t1", TeamID: "gamma", Status: "invalid"},
	}
	for _, d := range docs {
		_, err := col.Create(ctx, d.ID, d)
		require.NoError(t, err)
	}

	got, err := col.FindMany(ctx, Filter{"tournamentId": "t1"})
	require.NoError(t, err)
	require.Len(t, got, 3)

	got, err = col.FindMany(ctx, Filter{"tournamentId": "t1", "status": "active"})
	require.NoError(t, err)
	require.Len(t, got, 2)

	// slice value means IN: the combined two-team query used by the fan-out
	got, err = col.FindMany(ctx, Filter{"tournamentId": "t1", "teamId": []string{"alpha", "beta"}})
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestCollectionFindManyPreservesCreationOrder(t *testing.T) {
	db := newTestDB(t)
	col := NewCollection[testDoc](db, "testDocs", zerolog.Nop())
	ctx := context.Background()

	for _, id := range []string{"z9", "m5", "a1"} {
		_, err := col.Create(ctx, id, testDoc{ID: id, TournamentID: "t1"})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	got, err := col.FindMany(ctx, Filter{"tournamentId": "t1"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "z9", got[0].ID)
	require.Equal(t, "m5", got[1].ID)
	require.Equal(t, "a1", got[2].ID)
}

func TestCollectionFindOne(t *testing.T) {
	db := newTestDB(t)
	col := NewCollection[testDoc](db, "testDocs", zerolog.Nop())
	ctx := context.Background()

	_, err := col.Create(ctx, "a", testDoc{ID: "a", TournamentID: "t1", TeamID: "alpha"})
	require.NoError(t, err)

	found, err := col.FindOne(ctx, Filter{"teamId": "alpha"})
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, "a", found.ID)

	missing, err := col.FindOne(ctx, Filter{"teamId": "nobody"})
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestCollectionUpdate(t *testing.T) {
	db := newTestDB(t)
	col := NewCollection[testDoc](db, "testDocs", zerolog.Nop())
	ctx := context.Background()

	doc := testDoc{ID: "a", TournamentID: "t1", Status: "active"}
	_, err := col.Create(ctx, "a", doc)
	require.NoError(t, err)

	doc.Status = "invalid"
	updated, err := col.Update(ctx, "a", doc)
	require.NoError(t, err)
	require.Equal(t, "invalid", updated.Status)

	found, err := col.FindByID(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "invalid", found.Status)
}

func TestCollectionUpdateMissing(t *testing.T) {
	db := newTestDB(t)
	col := NewCollection[testDoc](db, "testDocs", zerolog.Nop())

	_, err := col.Update(context.Background(), "nope", testDoc{ID: "nope"})
	require.Error(t, err)
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestCollectionDelete(t *testing.T) {
	db := newTestDB(t)
	col := NewCollection[testDoc](db, "testDocs", zerolog.Nop())
	ctx := context.Background()

	_, err := col.Create(ctx, "a", testDoc{ID: "a"})
	require.NoError(t, err)

	deleted, err := col.Delete(ctx, "a")
	require.NoError(t, err)
	require.True(t, deleted)

	// missing records report false, never an error
	deleted, err = col.Delete(ctx, "a")
	require.NoError(t, err)
	require.False(t, deleted)
}

func TestCollectionsAreIsolated(t *testing.T) {
	db := newTestDB(t)
	first := NewCollection[testDoc](db, "first", zerolog.Nop())
	second := NewCollection[testDoc](db, "second", zerolog.Nop())
	ctx := context.Background()

	_, err := first.Create(ctx, "a", testDoc{ID: "a", TournamentID: "t1"})
	require.NoError(t, err)

	found, err := second.FindByID(ctx, "a")
	require.NoError(t, err)
	require.Nil(t, found)

	got, err := second.FindMany(ctx, Filter{})
	require.NoError(t, err)
	require.Empty(t, got)
}
