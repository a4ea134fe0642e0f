package limiter

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakeRow struct{ scan func(dest ...any) error }

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

type fakePool struct {
	qrErr        error
	blockedUntil time.Time
	failures     int

	execSQL []string
	execErr error
}

func (f *fakePool) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.execSQL = append(f.execSQL, sql)
	return pgconn.CommandTag{}, f.execErr
}

func (f *fakePool) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	switch {
	case strings.Contains(sql, "SELECT blocked_until"):
		return fakeRow{scan: func(dest ...any) error {
			if f.qrErr != nil {
				return f.qrErr
			}
			*(dest[0].(*time.Time)) = f.blockedUntil
			return nil
		}}
	case strings.Contains(sql, "RETURNING failures"):
		return fakeRow{scan: func(dest ...any) error {
			if f.qrErr != nil {
				return f.qrErr
			}
			*(dest[0].(*int)) = f.failures
			return nil
		}}
	default:
		return fakeRow{scan: func(...any) error { return errors.New("unexpected query") }}
	}
}

var testPolicy = Policy{Window: 15 * time.Minute, MaxFails: 3, BlockFor: 10 * time.Minute}

func newTestPG(fp *fakePool, now time.Time) *PG {
	l := NewPG(fp, testPolicy)
	l.now = func() time.Time { return now }
	return l
}

func TestPGAllow_NoRow(t *testing.T) {
	l := newTestPG(&fakePool{qrErr: pgx.ErrNoRows}, time.Now())

	ok, wait, err := l.Allow(context.Background(), "u", []byte("h"))
	if err != nil || !ok || wait != 0 {
		t.Fatalf("want allowed, got ok=%v wait=%v err=%v", ok, wait, err)
	}
}

func TestPGAllow_Blocked(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newTestPG(&fakePool{blockedUntil: now.Add(time.Minute)}, now)

	ok, wait, err := l.Allow(context.Background(), "u", []byte("h"))
	if err != nil || ok || wait != time.Minute {
		t.Fatalf("want blocked for 1m, got ok=%v wait=%v err=%v", ok, wait, err)
	}
}

func TestPGAllow_BlockExpired(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newTestPG(&fakePool{blockedUntil: now.Add(-time.Second)}, now)

	ok, _, err := l.Allow(context.Background(), "u", []byte("h"))
	if err != nil || !ok {
		t.Fatalf("want allowed, got ok=%v err=%v", ok, err)
	}
}

func TestPGAllow_Error(t *testing.T) {
	boom := errors.New("boom")
	l := newTestPG(&fakePool{qrErr: boom}, time.Now())

	if _, _, err := l.Allow(context.Background(), "u", []byte("h")); !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
}

func TestPGFailure_BelowThreshold(t *testing.T) {
	fp := &fakePool{failures: 2}
	l := newTestPG(fp, time.Now())

	blocked, _, err := l.Failure(context.Background(), "u", []byte("h"))
	if err != nil || blocked {
		t.Fatalf("want not blocked, got blocked=%v err=%v", blocked, err)
	}
	if len(fp.execSQL) != 0 {
		t.Fatalf("unexpected exec: %v", fp.execSQL)
	}
}

func TestPGFailure_ReachesThreshold(t *testing.T) {
	fp := &fakePool{failures: 3}
	l := newTestPG(fp, time.Now())

	blocked, wait, err := l.Failure(context.Background(), "u", []byte("h"))
	if err != nil || !blocked || wait != testPolicy.BlockFor {
		t.Fatalf("want blocked, got blocked=%v wait=%v err=%v", blocked, wait, err)
	}
	if len(fp.execSQL) != 1 || !strings.Contains(fp.execSQL[0], "SET blocked_until") {
		t.Fatalf("want block update, got %v", fp.execSQL)
	}
}

func TestPGSuccess_Deletes(t *testing.T) {
	fp := &fakePool{}
	l := newTestPG(fp, time.Now())

	if err := l.Success(context.Background(), "u", []byte("h")); err != nil {
		t.Fatal(err)
	}
	if len(fp.execSQL) != 1 || !strings.Contains(fp.execSQL[0], "DELETE FROM login_attempts") {
		t.Fatalf("want delete, got %v", fp.execSQL)
	}
}
