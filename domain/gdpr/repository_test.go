package gdpr

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	apperrors "github.com/hudsondigital/hds-platform/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockRepository(t *testing.T) (GDPRRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewGDPRRepository(db), mock
}

func expectDelete(mock sqlmock.Sqlmock, table string, rows int64) {
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "` + table + `"`)).
		WillReturnResult(sqlmock.NewResult(0, rows))
}

func expectPseudonymize(mock sqlmock.Sqlmock) {
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "gdpr_requests"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func TestGDPRRepository_Erase(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "leads"`)).
		WithArgs("sam@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	expectDelete(mock, "lead_notes", 2)
	expectDelete(mock, "lead_activities", 5)
	expectDelete(mock, "contacts", 2)
	expectDelete(mock, "leads", 1)
	expectDelete(mock, "newsletter_subscribers", 1)
	expectDelete(mock, "sequence_enrollments", 2)
	expectDelete(mock, "consent_records", 0)
	expectDelete(mock, "analytics_events", 4)
	expectPseudonymize(mock)
	mock.ExpectCommit()

	deleted, err := repo.Erase(context.Background(), "sam@example.com")
	require.NoError(t, err)

	assert.Equal(t, map[string]int64{
		TableLeadNotes:             2,
		TableLeadActivities:        5,
		TableContacts:              2,
		TableLeads:                 1,
		TableNewsletterSubscribers: 1,
		TableSequenceEnrollments:   2,
		TableConsentRecords:        0,
		TableAnalyticsEvents:       4,
	}, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGDPRRepository_Erase_NoLeadSkipsChildTables(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "leads"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	for _, table := range []string{"contacts", "leads", "newsletter_subscribers", "sequence_enrollments", "consent_records", "analytics_events"} {
		expectDelete(mock, table, 0)
	}
	expectPseudonymize(mock)
	mock.ExpectCommit()

	deleted, err := repo.Erase(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.NotContains(t, deleted, TableLeadNotes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPseudonymizeEmail(t *testing.T) {
	a := PseudonymizeEmail("sam@example.com")
	assert.Equal(t, a, PseudonymizeEmail("sam@example.com"))
	assert.NotEqual(t, a, PseudonymizeEmail("kim@example.com"))
	assert.NotContains(t, a, "sam")
	assert.Regexp(t, `^erased-[0-9a-f]{24}@erased\.invalid$`, a)
}

func TestGDPRRepository_Erase_RollsBackOnFailure(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "leads"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	expectDelete(mock, "contacts", 1)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "leads"`)).WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	deleted, err := repo.Erase(context.Background(), "sam@example.com")
	assert.Nil(t, deleted)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeDatabaseError))
	assert.NoError(t, mock.ExpectationsWereMet())
}
