// Package store is the session-scoped key/value state shared between the
// reader, the quiz and the CLI: the last fileId, cached quiz questions and
// reading statistics.
package store

import (
	"errors"
	"fmt"
	"log"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/leonardotrapani/readalong/internal/api"
)

var ErrNotFound = errors.New("store: not found")

const (
	keyLastFileID     = "lastFileId"
	prefixQuizCache   = "quizCache:"
	prefixReadingStat = "readingStats:"
)

// QuizCache is the last generated question set for a file.
type QuizCache struct {
	FileID    string         `msgpack:"fileId"`
	Questions []api.Question `msgpack:"questions"`
	FetchedAt time.Time      `msgpack:"ts"`
}

// ReadingStats summarizes one reading session.
type ReadingStats struct {
	FileID      string    `msgpack:"fileId"`
	SessionID   string    `msgpack:"sessionId"`
	Sentences   int       `msgpack:"sentences"`
	Passed      int       `msgpack:"passed"`
	Failed      int       `msgpack:"failed"`
	Attempts    int       `msgpack:"attempts"`
	StartedAt   time.Time `msgpack:"startTs"`
	CompletedAt time.Time `msgpack:"completedAt,omitempty"`
}

func (s ReadingStats) Complete() bool {
	return !s.CompletedAt.IsZero()
}

type Options struct {
	// Dir holds badger data files. Empty keeps everything in memory so state
	// lives only as long as the process.
	Dir string
	// QuizTTL expires cached questions. Zero keeps them for the session.
	QuizTTL time.Duration
	Logger  badger.Logger
}

type Store struct {
	db      *badger.DB
	quizTTL time.Duration
}

func Open(opts Options) (*Store, error) {
	dbOpts := badger.DefaultOptions(opts.Dir)
	if opts.Dir == "" {
		dbOpts = dbOpts.WithInMemory(true)
	}
	if opts.Logger != nil {
		dbOpts = dbOpts.WithLogger(opts.Logger)
	} else {
		dbOpts = dbOpts.WithLogger(defaultLogger{})
	}

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Store{db: db, quizTTL: opts.QuizTTL}, nil
}

// OpenInMemory opens a store with no backing directory.
func OpenInMemory() (*Store, error) {
	return Open(Options{})
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) SetLastFileID(fileID string) error {
	return s.put(keyLastFileID, fileID, 0)
}

func (s *Store) LastFileID() (string, error) {
	var id string
	err := s.get(keyLastFileID, &id)
	return id, err
}

func (s *Store) PutQuiz(c QuizCache) error {
	if c.FileID == "" {
		return errors.New("store: quiz cache without fileId")
	}
	return s.put(prefixQuizCache+c.FileID, c, s.quizTTL)
}

func (s *Store) Quiz(fileID string) (QuizCache, error) {
	var c QuizCache
	err := s.get(prefixQuizCache+fileID, &c)
	return c, err
}

func (s *Store) PutReadingStats(st ReadingStats) error {
	if st.FileID == "" {
		return errors.New("store: reading stats without fileId")
	}
	return s.put(prefixReadingStat+st.FileID, st, 0)
}

func (s *Store) ReadingStats(fileID string) (ReadingStats, error) {
	var st ReadingStats
	err := s.get(prefixReadingStat+fileID, &st)
	return st, err
}

func (s *Store) put(key string, v any, ttl time.Duration) error {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), data)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

func (s *Store) get(key string, v any) error {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("store: read %s: %w", key, err)
	}

	if err := msgpack.Unmarshal(data, v); err != nil {
		return fmt.Errorf("store: decode %s: %w", key, err)
	}
	return nil
}

// defaultLogger routes badger output through the standard logger, dropping
// debug and info chatter.
type defaultLogger struct{}

func (defaultLogger) Errorf(f string, v ...interface{})   { log.Printf("[badger] ERROR: "+f, v...) }
func (defaultLogger) Warningf(f string, v ...interface{}) { log.Printf("[badger] WARN: "+f, v...) }
func (defaultLogger) Infof(string, ...interface{})        {}
func (defaultLogger) Debugf(string, ...interface{})       {}
