package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectIndexSearch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"name"}).
		AddRow("a1/u1/campaigns.csv").
		AddRow("a1/u2/campaigns.csv")

	mock.ExpectQuery("SELECT name").
		WithArgs("uploads", "%/campaigns.csv").
		WillReturnRows(rows)

	hits, err := NewObjectIndex(db).Search(context.Background(), "uploads", "%/campaigns.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"a1/u1/campaigns.csv", "a1/u2/campaigns.csv"}, hits)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestObjectIndexSearchNoHits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT name").
		WithArgs("uploads", "%/missing.csv").
		WillReturnRows(sqlmock.NewRows([]string{"name"}))

	hits, err := NewObjectIndex(db).Search(context.Background(), "uploads", "%/missing.csv")
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.NoError(t, mock.ExpectationsWereMet())
}
