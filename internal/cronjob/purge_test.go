package cronjob

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	deleted []string
	fail    map[string]bool
}

func (f *fakeObjects) Delete(_ context.Context, key string) error {
	if f.fail[key] {
		return errors.New("access denied")
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func TestPurger_Run(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC)
	cutoff := now.Add(-720 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("join projects c on c.id = d.project_id")).
		WithArgs(cutoff).
		WillReturnRows(pgxmock.NewRows([]string{"file_key"}).AddRow("drawings/a/1/plan.pdf").AddRow("drawings/a/2/elev.pdf"))
	mock.ExpectExec(regexp.QuoteMeta("delete from projects")).
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectQuery(regexp.QuoteMeta("join residential_projects c on c.id = d.residential_project_id")).
		WithArgs(cutoff).
		WillReturnRows(pgxmock.NewRows([]string{"file_key"}))
	mock.ExpectExec(regexp.QuoteMeta("delete from residential_projects")).
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	files := &fakeObjects{fail: map[string]bool{"drawings/a/2/elev.pdf": true}}
	p := NewPurger(mock, files, 720*time.Hour)
	p.now = func() time.Time { return now }

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PurgeResult{Projects: 2, ResidentialProjects: 1, Objects: 1}, res)
	assert.Equal(t, []string{"drawings/a/1/plan.pdf"}, files.deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurger_RollsBackOnError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("select d.file_key")).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"file_key"}).AddRow("drawings/a/1/plan.pdf"))
	mock.ExpectExec(regexp.QuoteMeta("delete from projects")).
		WithArgs(pgxmock.AnyArg()).
		WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	files := &fakeObjects{}
	p := NewPurger(mock, files, time.Hour)
	p.now = func() time.Time { return now }

	_, err = p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "purge projects")
	assert.Empty(t, files.deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduler_RejectsBadSpec(t *testing.T) {
	s := NewScheduler(time.Minute)
	err := s.AddPurge("0 3 * * *", NewPurger(nil, nil, time.Hour))
	require.Error(t, err)

	require.NoError(t, s.AddPurge("0 0 3 * * *", NewPurger(nil, nil, time.Hour)))
	require.NoError(t, s.Add("sweep", "@every 5m", func(context.Context) error { return nil }))
	assert.Len(t, s.cron.Entries(), 2)

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

func TestScheduler_RunBoundsJobContext(t *testing.T) {
	s := NewScheduler(50 * time.Millisecond)

	var deadline time.Time
	var hasDeadline bool
	s.run("slow", func(ctx context.Context) error {
		deadline, hasDeadline = ctx.Deadline()
		<-ctx.Done()
		return ctx.Err()
	})
	require.True(t, hasDeadline)
	assert.WithinDuration(t, time.Now(), deadline, time.Second)
}

func TestScheduler_StopCancelsJobContext(t *testing.T) {
	s := NewScheduler(time.Hour)
	stopped, cancel := context.WithCancel(context.Background())
	cancel()
	s.Stop(stopped)

	var runErr error
	s.run("late", func(ctx context.Context) error {
		runErr = ctx.Err()
		return runErr
	})
	assert.ErrorIs(t, runErr, context.Canceled)
}
