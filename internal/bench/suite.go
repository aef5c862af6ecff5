package bench

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"msort/internal/logutil"
	"msort/internal/msort"
	"msort/internal/store"
)

// SuiteConfig 크기 × 모드 × 반복 벤치마크 설정
type SuiteConfig struct {
	Sizes  []int
	Runs   int
	Budget int
	// Tasks task_based 모드 정렬기. nil 이면 기본 작업 풀
	Tasks *msort.TaskSorter
	Max   int
	Seed  int64
	// FileModeFrom 이상인 크기는 파일에 쓴 뒤 매 반복마다 다시 읽는다. 0 이면 쓰지 않음
	FileModeFrom int
	// Dir 파일 모드 데이터 파일 위치
	Dir string
	// Store 가 있으면 입력 데이터와 결과를 저장한다
	Store store.Store
}

// DatasetName 저장소에 넣는 입력 데이터 이름
func DatasetName(size int, seed int64) string {
	return fmt.Sprintf("random-%d-seed-%d", size, seed)
}

// Suite 모든 크기와 모드에 대해 Runs 번씩 측정한다
func Suite(cfg SuiteConfig) ([]Result, error) {
	var results []Result
	for _, size := range cfg.Sizes {
		sizeResults, err := runSize(cfg, size)
		results = append(results, sizeResults...)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// DataFileName 파일 모드에서 size 크기 입력을 쓰는 경로
func DataFileName(dir string, size int) string {
	return filepath.Join(dir, fmt.Sprintf("test_data_%d.txt", size))
}

// runSize 한 크기의 모든 모드와 반복. 파일 모드 데이터 파일은 끝나면 지운다
func runSize(cfg SuiteConfig, size int) ([]Result, error) {
	log := logutil.L()
	var results []Result

	data := GenerateData(size, cfg.Max, cfg.Seed)
	want := slices.Clone(data)
	slices.Sort(want)

	if cfg.Store != nil {
		if err := cfg.Store.PutDataset(DatasetName(size, cfg.Seed), data); err != nil {
			return nil, err
		}
	}

	storage := StorageMemory
	var filename string
	if cfg.FileModeFrom > 0 && size >= cfg.FileModeFrom {
		storage = StorageFile
		filename = DataFileName(cfg.Dir, size)
		if err := WriteDataToFile(data, filename); err != nil {
			return nil, err
		}
		defer func() {
			if err := os.Remove(filename); err != nil {
				log.Warn("remove data file", zap.String("file", filename), zap.Error(err))
			}
		}()
	}
	log.Info("benchmark size",
		zap.Int("size", size),
		zap.String("storage", storage))

	for _, mode := range msort.Modes() {
		for run := 1; run <= cfg.Runs; run++ {
			input := data
			if filename != "" {
				// 매번 파일에서 읽기
				fileData, err := ReadDataFromFile(filename)
				if err != nil {
					return results, err
				}
				input = fileData
			}

			sorter := msort.Sorter{Mode: mode, Budget: cfg.Budget, Tasks: cfg.Tasks}
			result, sorted, err := Run(sorter, input, storage)
			if err != nil {
				return results, err
			}
			result.TestRun = run
			result.Verified = FirstMismatch(sorted, want) < 0
			if !result.Verified {
				log.Warn("sorted output differs from reference",
					zap.String("mode", result.Mode),
					zap.Int("size", size))
			}
			log.Debug("benchmark run",
				zap.String("mode", result.Mode),
				zap.Int("run", run),
				zap.Duration("duration", result.Duration))

			if cfg.Store != nil {
				if err := persist(cfg.Store, result); err != nil {
					return results, err
				}
			}
			results = append(results, result)
		}
	}
	return results, nil
}

func persist(s store.Store, r Result) error {
	rec, err := json.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "encode result")
	}
	return s.AppendResult(rec)
}

// LoadResults 저장소에 쌓인 결과를 모두 읽는다
func LoadResults(s store.Store) ([]Result, error) {
	recs, err := s.Results()
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(recs))
	for i, rec := range recs {
		var r Result
		if err := json.Unmarshal(rec, &r); err != nil {
			return nil, errors.Wrapf(err, "decode result %d", i)
		}
		results = append(results, r)
	}
	return results, nil
}
