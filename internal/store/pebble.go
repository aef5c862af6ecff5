package store

import (
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"go.uber.org/zap"

	"msort/internal/logutil"
)

// pebbleLogger pebble.Logger 를 zap 으로 넘긴다. WAL 재생 같은 Info 로그는 Debug 로 내린다
type pebbleLogger struct {
	s *zap.SugaredLogger
}

func (l pebbleLogger) Infof(f string, v ...interface{})  { l.s.Debugf(f, v...) }
func (l pebbleLogger) Errorf(f string, v ...interface{}) { l.s.Errorf(f, v...) }
func (l pebbleLogger) Fatalf(f string, v ...interface{}) { l.s.Fatalf(f, v...) }

type pebbleStore struct {
	db  *pebble.DB
	seq atomic.Uint64
}

func openPebble(dir string) (*pebbleStore, error) {
	db, err := pebble.Open(dir, &pebble.Options{
		Logger: pebbleLogger{s: logutil.L().Named("pebble").Sugar()},
	})
	if err != nil {
		return nil, errors.Wrap(err, "pebble: open")
	}

	s := &pebbleStore{db: db}
	last, err := s.lastResultSeq()
	if err != nil {
		db.Close()
		return nil, err
	}
	s.seq.Store(last)
	return s, nil
}

func (s *pebbleStore) resultIter() (*pebble.Iterator, error) {
	it, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: resultPrefix,
		UpperBound: prefixEnd(resultPrefix),
	})
	return it, errors.Wrap(err, "pebble: iterator")
}

func (s *pebbleStore) lastResultSeq() (uint64, error) {
	it, err := s.resultIter()
	if err != nil {
		return 0, err
	}
	defer it.Close()

	if it.Last() {
		return resultSeq(it.Key()), nil
	}
	return 0, errors.Wrap(it.Error(), "pebble: scan results")
}

func (s *pebbleStore) PutDataset(name string, data []int) error {
	return errors.Wrap(s.db.Set(datasetKey(name), encodeInts(data), pebble.Sync), "pebble: put dataset")
}

func (s *pebbleStore) Dataset(name string) ([]int, error) {
	v, closer, err := s.db.Get(datasetKey(name))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, errors.Wrapf(ErrNotFound, "dataset %q", name)
	}
	if err != nil {
		return nil, errors.Wrap(err, "pebble: get dataset")
	}
	defer closer.Close()
	return decodeInts(v)
}

func (s *pebbleStore) AppendResult(rec []byte) error {
	key := resultKey(s.seq.Add(1))
	return errors.Wrap(s.db.Set(key, rec, pebble.Sync), "pebble: append result")
}

func (s *pebbleStore) Results() ([][]byte, error) {
	it, err := s.resultIter()
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var out [][]byte
	for it.First(); it.Valid(); it.Next() {
		out = append(out, append([]byte{}, it.Value()...))
	}
	return out, errors.Wrap(it.Error(), "pebble: results")
}

func (s *pebbleStore) Close() error {
	return errors.Wrap(s.db.Close(), "pebble: close")
}
