package store

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"go.etcd.io/bbolt"
)

const bboltDBFile = "msort.db"

var (
	datasetBucket = []byte("datasets")
	resultBucket  = []byte("results")
)

type bboltStore struct {
	db *bbolt.DB
}

func openBbolt(dir string) (*bboltStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "bbolt: create dir")
	}
	db, err := bbolt.Open(filepath.Join(dir, bboltDBFile), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "bbolt: open")
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{datasetBucket, resultBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "bbolt: create buckets")
	}
	return &bboltStore{db: db}, nil
}

func (s *bboltStore) PutDataset(name string, data []int) error {
	return errors.Wrap(s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(datasetBucket).Put([]byte(name), encodeInts(data))
	}), "bbolt: put dataset")
}

func (s *bboltStore) Dataset(name string) ([]int, error) {
	var data []int
	err := s.db.View(func(tx *bbolt.Tx) error {
		// Get 이 돌려준 슬라이스는 트랜잭션 안에서만 유효하지만 decodeInts 가 새로 할당한다
		v := tx.Bucket(datasetBucket).Get([]byte(name))
		if v == nil {
			return errors.Wrapf(ErrNotFound, "dataset %q", name)
		}
		var err error
		data, err = decodeInts(v)
		return err
	})
	return data, err
}

func (s *bboltStore) AppendResult(rec []byte) error {
	return errors.Wrap(s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(resultBucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(resultKey(seq), rec)
	}), "bbolt: append result")
}

func (s *bboltStore) Results() ([][]byte, error) {
	var out [][]byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(resultBucket).ForEach(func(_, v []byte) error {
			out = append(out, append([]byte{}, v...))
			return nil
		})
	})
	return out, errors.Wrap(err, "bbolt: results")
}

func (s *bboltStore) Close() error {
	return errors.Wrap(s.db.Close(), "bbolt: close")
}
