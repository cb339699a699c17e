package storages

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/reusee/tvk/ledgers"
	"github.com/reusee/tvk/logs"
	_ "modernc.org/sqlite"
)

// Journal appends ledger events to a sqlite database, one session per opening.
type Journal struct {
	db      *sql.DB
	logger  logs.Logger
	session string
	err     error
}

const schema = `
create table if not exists sessions (
	id text primary key,
	started integer not null
);
create table if not exists events (
	seq integer primary key autoincrement,
	session text not null references sessions(id),
	kind text not null,
	name text not null,
	undo blob,
	redo blob,
	irreversible integer not null default 0,
	cursor integer not null,
	at integer not null
);
create index if not exists events_session on events(session, seq);
`

func OpenJournal(ctx context.Context, path string, logger logs.Logger) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// one writer
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "pragma busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	j := &Journal{
		db:      db,
		logger:  logger,
		session: rand.Text(),
	}
	if err := withTx(ctx, db, func(tx Tx) error {
		_, err := tx.Exec(ctx, "insert into sessions (id, started) values (?, ?)",
			j.session, time.Now().UnixNano())
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("start session: %w", err)
	}
	logger.Info("journal",
		"path", path,
		"session", j.session,
	)
	return j, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) Session() string {
	return j.session
}

// Err returns the first failure to record an event.
func (j *Journal) Err() error {
	return j.err
}

var _ ledgers.Observer = new(Journal).Observe

// Observe records ev. Failures are logged and kept for Err, the ledger itself is not affected.
func (j *Journal) Observe(ev ledgers.Event) {
	if err := j.append(context.Background(), ev); err != nil {
		j.logger.Error("journal append",
			"error", err,
			"kind", ev.Kind.String(),
			"function", ev.Record.Name,
		)
		if j.err == nil {
			j.err = err
		}
	}
}

func (j *Journal) append(ctx context.Context, ev ledgers.Event) error {
	undo, err := encodeParams(ev.Record.Undo)
	if err != nil {
		return err
	}
	redo, err := encodeParams(ev.Record.Redo)
	if err != nil {
		return err
	}
	return withTx(ctx, j.db, func(tx Tx) error {
		_, err := tx.Exec(ctx, `insert into events
			(session, kind, name, undo, redo, irreversible, cursor, at)
			values (?, ?, ?, ?, ?, ?, ?, ?)`,
			j.session,
			ev.Kind.String(),
			ev.Record.Name,
			undo,
			redo,
			ev.Record.Irreversible,
			ev.Cursor,
			time.Now().UnixNano(),
		)
		return err
	})
}

type Session struct {
	ID      string
	Started time.Time
	Events  int
}

// Sessions lists sessions, oldest first.
func (j *Journal) Sessions(ctx context.Context) (ret []Session, err error) {
	err = withTx(ctx, j.db, func(tx Tx) error {
		rows, err := tx.Query(ctx, `select s.id, s.started, count(e.seq)
			from sessions s left join events e on e.session = s.id
			group by s.id
			order by s.started, s.rowid`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var s Session
			var started int64
			if err := rows.Scan(&s.ID, &started, &s.Events); err != nil {
				return err
			}
			s.Started = time.Unix(0, started)
			ret = append(ret, s)
		}
		return rows.Err()
	})
	return
}

// LastSession returns the most recent session before the current one that recorded anything.
func (j *Journal) LastSession(ctx context.Context) (string, error) {
	sessions, err := j.Sessions(ctx)
	if err != nil {
		return "", err
	}
	for i := len(sessions) - 1; i >= 0; i-- {
		if sessions[i].ID != j.session && sessions[i].Events > 0 {
			return sessions[i].ID, nil
		}
	}
	return "", ErrNoSession
}

var ErrNoSession = errors.New("no recorded session")

type Entry struct {
	Seq          int64
	Kind         ledgers.EventKind
	Name         string
	Undo         []any
	Redo         []any
	Irreversible bool
	Cursor       int
	At           time.Time
	// Opaque lists redo parameters that could not be stored
	Opaque []int
}

func (j *Journal) Events(ctx context.Context, session string) (ret []Entry, err error) {
	err = withTx(ctx, j.db, func(tx Tx) error {
		rows, err := tx.Query(ctx, `select seq, kind, name, undo, redo, irreversible, cursor, at
			from events where session = ? order by seq`, session)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var e Entry
			var kind string
			var undo, redo []byte
			var at int64
			if err := rows.Scan(&e.Seq, &kind, &e.Name, &undo, &redo, &e.Irreversible, &e.Cursor, &at); err != nil {
				return err
			}
			var ok bool
			e.Kind, ok = ledgers.ParseEventKind(kind)
			if !ok {
				return fmt.Errorf("event %d: unknown kind %q", e.Seq, kind)
			}
			if e.Undo, _, err = decodeParams(undo); err != nil {
				return fmt.Errorf("event %d: %w", e.Seq, err)
			}
			if e.Redo, e.Opaque, err = decodeParams(redo); err != nil {
				return fmt.Errorf("event %d: %w", e.Seq, err)
			}
			e.At = time.Unix(0, at)
			ret = append(ret, e)
		}
		return rows.Err()
	})
	return
}

// Target is what a session replays into.
type Target interface {
	Invoke(name string, args ...any) (any, error)
	Undo() error
	Redo() error
	Clear()
}

// Replay re-executes session against target in order.
func (j *Journal) Replay(ctx context.Context, session string, target Target) error {
	entries, err := j.Events(ctx, session)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch e.Kind {
		case ledgers.EventLogged, ledgers.EventNoted:
			if len(e.Opaque) > 0 {
				return fmt.Errorf("replay event %d: parameter %d of %s was not journaled", e.Seq, e.Opaque[0]+1, e.Name)
			}
			_, err = target.Invoke(e.Name, e.Redo...)
		case ledgers.EventUndone:
			err = target.Undo()
		case ledgers.EventRedone:
			err = target.Redo()
		case ledgers.EventCleared:
			target.Clear()
		}
		if err != nil {
			return fmt.Errorf("replay event %d (%s %s): %w", e.Seq, e.Kind, e.Name, err)
		}
	}
	j.logger.Info("replayed",
		"session", session,
		"events", len(entries),
	)
	return nil
}
