// Package store 벤치마크 입력 데이터와 결과를 임베디드 KV 저장소에 보관한다.
// bbolt, BadgerDB, PebbleDB 세 가지 백엔드를 같은 인터페이스로 쓴다.
package store

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
)

const (
	KindBbolt  = "bbolt"
	KindBadger = "badger"
	KindPebble = "pebble"
)

var (
	ErrNotFound    = errors.New("store: not found")
	ErrUnknownKind = errors.New("store: unknown backend")
	ErrCorrupt     = errors.New("store: corrupt dataset encoding")
)

// Store 데이터셋은 이름으로, 결과는 추가 순서대로 보관한다
type Store interface {
	PutDataset(name string, data []int) error
	// Dataset 없으면 ErrNotFound
	Dataset(name string) ([]int, error)
	AppendResult(rec []byte) error
	// Results 추가한 순서대로 돌려준다
	Results() ([][]byte, error)
	Close() error
}

// Kinds 지원하는 백엔드 이름
func Kinds() []string {
	return []string{KindBbolt, KindBadger, KindPebble}
}

// Open kind 백엔드를 path 디렉터리에 연다
func Open(kind, path string) (Store, error) {
	switch kind {
	case KindBbolt:
		return openBbolt(path)
	case KindBadger:
		return openBadger(path)
	case KindPebble:
		return openPebble(path)
	}
	return nil, errors.Wrapf(ErrUnknownKind, "%q", kind)
}

var (
	datasetPrefix = []byte("d/")
	resultPrefix  = []byte("r/")
)

func datasetKey(name string) []byte {
	return append(append([]byte{}, datasetPrefix...), name...)
}

// resultKey 빅엔디언 순번이라 키 순서 = 추가 순서
func resultKey(seq uint64) []byte {
	k := make([]byte, 0, len(resultPrefix)+8)
	k = append(k, resultPrefix...)
	return binary.BigEndian.AppendUint64(k, seq)
}

func resultSeq(key []byte) uint64 {
	if len(key) < len(resultPrefix)+8 {
		return 0
	}
	return binary.BigEndian.Uint64(key[len(resultPrefix):])
}

// prefixEnd prefix 로 시작하는 모든 키보다 큰 가장 작은 키
func prefixEnd(prefix []byte) []byte {
	end := append([]byte{}, prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

// encodeInts 길이 뒤에 varint 로 원소를 이어 붙인다
func encodeInts(data []int) []byte {
	buf := make([]byte, 0, binary.MaxVarintLen64+len(data)*3)
	buf = binary.AppendUvarint(buf, uint64(len(data)))
	for _, v := range data {
		buf = binary.AppendVarint(buf, int64(v))
	}
	return buf
}

func decodeInts(buf []byte) ([]int, error) {
	n, read := binary.Uvarint(buf)
	if read <= 0 {
		return nil, errors.Wrap(ErrCorrupt, "length")
	}
	buf = buf[read:]
	// 원소당 최소 1바이트
	if n > uint64(len(buf)) {
		return nil, errors.Wrapf(ErrCorrupt, "length %d exceeds payload %d", n, len(buf))
	}

	data := make([]int, n)
	for i := range data {
		v, read := binary.Varint(buf)
		if read <= 0 {
			return nil, errors.Wrapf(ErrCorrupt, "element %d", i)
		}
		data[i] = int(v)
		buf = buf[read:]
	}
	if len(buf) != 0 {
		return nil, errors.Wrapf(ErrCorrupt, "%d trailing bytes", len(buf))
	}
	return data, nil
}
