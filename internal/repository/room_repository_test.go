package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/classroom-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func roomRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "capacity", "has_computers", "software", "description", "block", "image_filename", "excel_filename", "created_at", "updated_at"}).
		AddRow("r1", "Lab 101", 30, true, "Office, AutoCAD", "Computer lab", "A", "", "", now, now)
}

func TestListRoomsDefaults(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + roomColumns + " FROM rooms WHERE 1=1 ORDER BY name ASC LIMIT 50 OFFSET 0")).
		WillReturnRows(roomRows(now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM rooms WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rooms, total, err := repo.List(context.Background(), models.RoomFilter{})
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRoomsFiltered(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	hasComputers := true
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+roomColumns+" FROM rooms WHERE 1=1 AND block = $1 AND has_computers = $2 AND capacity >= $3 ORDER BY capacity DESC LIMIT 10 OFFSET 10")).
		WithArgs("A", true, 20).
		WillReturnRows(roomRows(now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM rooms WHERE 1=1 AND block = $1 AND has_computers = $2 AND capacity >= $3")).
		WithArgs("A", true, 20).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	rooms, total, err := repo.List(context.Background(), models.RoomFilter{
		Block:        "A",
		HasComputers: &hasComputers,
		MinCapacity:  20,
		Page:         2,
		PageSize:     10,
		SortBy:       "capacity",
		SortOrder:    "desc",
	})
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
	assert.Equal(t, 11, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAllRooms(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	now := time.Now()
	rows := roomRows(now).AddRow("r2", "Lab 102", 25, false, "", "Lecture room", "B", "", "", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + roomColumns + " FROM rooms ORDER BY name ASC")).
		WillReturnRows(rows)

	rooms, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, rooms, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRoomGeneratesID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectExec("INSERT INTO rooms").WillReturnResult(sqlmock.NewResult(1, 1))

	room := &models.Room{Name: "Lab 101", Capacity: 30, Block: "A"}
	require.NoError(t, repo.Create(context.Background(), room))
	assert.NotEmpty(t, room.ID)
	assert.False(t, room.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRoom(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM rooms WHERE id = $1")).
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "r1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
