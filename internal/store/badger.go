package store

import (
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"

	"msort/internal/logutil"
)

// badgerLogger badger.Logger 를 zap 으로 넘긴다
type badgerLogger struct {
	s *zap.SugaredLogger
}

func (l badgerLogger) Errorf(f string, v ...interface{})   { l.s.Errorf(f, v...) }
func (l badgerLogger) Warningf(f string, v ...interface{}) { l.s.Warnf(f, v...) }
func (l badgerLogger) Infof(f string, v ...interface{})    { l.s.Debugf(f, v...) }
func (l badgerLogger) Debugf(f string, v ...interface{})   { l.s.Debugf(f, v...) }

type badgerStore struct {
	db  *badger.DB
	seq atomic.Uint64
}

func openBadger(dir string) (*badgerStore, error) {
	opts := badger.DefaultOptions(dir).
		WithLogger(badgerLogger{s: logutil.L().Named("badger").Sugar()})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "badger: open")
	}

	s := &badgerStore{db: db}
	last, err := s.lastResultSeq()
	if err != nil {
		db.Close()
		return nil, err
	}
	s.seq.Store(last)
	return s, nil
}

func (s *badgerStore) lastResultSeq() (uint64, error) {
	var last uint64
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		// 역방향 탐색은 prefix 끝 바로 뒤에서 시작
		it.Seek(prefixEnd(resultPrefix))
		if it.ValidForPrefix(resultPrefix) {
			last = resultSeq(it.Item().Key())
		}
		return nil
	})
	return last, errors.Wrap(err, "badger: scan results")
}

func (s *badgerStore) PutDataset(name string, data []int) error {
	return errors.Wrap(s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(datasetKey(name), encodeInts(data))
	}), "badger: put dataset")
}

func (s *badgerStore) Dataset(name string) ([]int, error) {
	var data []int
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(datasetKey(name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return errors.Wrapf(ErrNotFound, "dataset %q", name)
		}
		if err != nil {
			return errors.Wrap(err, "badger: get dataset")
		}
		return item.Value(func(v []byte) error {
			data, err = decodeInts(v)
			return err
		})
	})
	return data, err
}

func (s *badgerStore) AppendResult(rec []byte) error {
	key := resultKey(s.seq.Add(1))
	return errors.Wrap(s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, rec)
	}), "badger: append result")
}

func (s *badgerStore) Results() ([][]byte, error) {
	var out [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = resultPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			v, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			out = append(out, v)
		}
		return nil
	})
	return out, errors.Wrap(err, "badger: results")
}

func (s *badgerStore) Close() error {
	return errors.Wrap(s.db.Close(), "badger: close")
}
