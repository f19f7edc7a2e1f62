package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openKV(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE kv (key TEXT PRIMARY KEY, value BLOB NOT NULL)`)
	require.NoError(t, err)
	return db
}

func put(q Querier, key, value string) error {
	_, err := q.ExecContext(context.Background(),
		`INSERT INTO kv(key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	return err
}

func keys(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query(`SELECT key FROM kv ORDER BY key`)
	require.NoError(t, err)
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var k string
		require.NoError(t, rows.Scan(&k))
		out = append(out, k)
	}
	require.NoError(t, rows.Err())
	return out
}

func TestInTx(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name    string
		fn      func(Querier) error
		wantErr error
		panics  bool
		want    []string
	}{
		{
			name: "commits every write",
			fn: func(q Querier) error {
				if err := put(q, "currentUser", "{}"); err != nil {
					return err
				}
				return put(q, "usuarios_mock", "[]")
			},
			want: []string{"currentUser", "usuarios_mock"},
		},
		{
			name: "error rolls back earlier writes",
			fn: func(q Querier) error {
				if err := put(q, "currentUser", "{}"); err != nil {
					return err
				}
				return boom
			},
			wantErr: boom,
			want:    []string{},
		},
		{
			name: "panic rolls back and propagates",
			fn: func(q Querier) error {
				_ = put(q, "currentUser", "{}")
				panic("storage bug")
			},
			panics: true,
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openKV(t)
			run := func() error { return InTx(context.Background(), db, tt.fn) }

			if tt.panics {
				require.Panics(t, func() { _ = run() })
			} else {
				err := run()
				if tt.wantErr != nil {
					require.ErrorIs(t, err, tt.wantErr)
				} else {
					require.NoError(t, err)
				}
			}
			assert.Equal(t, tt.want, keys(t, db))
		})
	}
}

func TestInTx_BeginFails(t *testing.T) {
	db := openKV(t)
	require.NoError(t, db.Close())

	called := false
	err := InTx(context.Background(), db, func(Querier) error {
		called = true
		return nil
	})
	require.ErrorContains(t, err, "begin tx")
	assert.False(t, called)
}
