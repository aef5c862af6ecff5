// Package bench 머지소트 모드별 실행 시간과 메모리 사용량을 재고 결과를 보고서로 남긴다.
package bench

import (
	"runtime"
	"slices"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"msort/internal/msort"
)

const (
	StorageMemory = "memory"
	StorageFile   = "file"
)

// Result 벤치마크 결과를 저장하는 구조체
type Result struct {
	Mode         string        `json:"mode"`
	DataSize     int           `json:"data_size"`
	Budget       int           `json:"budget,omitempty"` // thread_bounded 에서만 기록
	StorageType  string        `json:"storage_type"`
	TestRun      int           `json:"test_run"`
	Duration     time.Duration `json:"duration"`
	MemoryUsage  uint64        `json:"memory_usage_bytes"`
	Mallocs      uint64        `json:"mallocs"`
	GoroutineNum int           `json:"goroutine_num"`
	Verified     bool          `json:"verified"`
}

// systemStats 측정 구간의 시작/끝 메모리 통계
type systemStats struct {
	startTime time.Time
	startMem  runtime.MemStats
	endMem    runtime.MemStats
}

func startStats() *systemStats {
	runtime.GC()

	s := &systemStats{}
	runtime.ReadMemStats(&s.startMem)
	s.startTime = time.Now()
	return s
}

func (s *systemStats) endStats() (time.Duration, uint64, uint64) {
	duration := time.Since(s.startTime)
	runtime.ReadMemStats(&s.endMem)

	return duration,
		s.endMem.TotalAlloc - s.startMem.TotalAlloc,
		s.endMem.Mallocs - s.startMem.Mallocs
}

// Run data 의 복사본을 sorter 로 정렬하며 측정한다. 정렬된 복사본도 함께 돌려준다.
func Run(sorter msort.Sorter, data []int, storage string) (Result, []int, error) {
	result := Result{
		Mode:         sorter.Mode.String(),
		DataSize:     len(data),
		StorageType:  storage,
		GoroutineNum: runtime.NumGoroutine(),
	}

	if sorter.Mode == msort.ModeThreadBounded {
		result.Budget = sorter.Budget
	}

	testData := slices.Clone(data)

	stats := startStats()
	if _, err := sorter.Sort(testData); err != nil {
		return result, nil, err
	}
	result.Duration, result.MemoryUsage, result.Mallocs = stats.endStats()

	return result, testData, nil
}

// Mismatch 모드 결과가 기준 정렬과 처음 어긋난 위치
type Mismatch struct {
	Mode  string
	Index int
	Got   int
	Want  int
}

// FirstMismatch got 과 want 가 처음 다른 위치. 같으면 -1
func FirstMismatch(got, want []int) int {
	for i := 0; i < min(len(got), len(want)); i++ {
		if got[i] != want[i] {
			return i
		}
	}
	if len(got) != len(want) {
		return min(len(got), len(want))
	}
	return -1
}

// Compare 모든 모드로 data 의 복사본을 동시에 정렬하고 slices.Sort 결과와 원소 단위로 비교한다.
// tasks 가 nil 이면 기본 작업 풀을 쓴다.
func Compare(data []int, budget int, tasks *msort.TaskSorter) ([]Mismatch, error) {
	want := slices.Clone(data)
	slices.Sort(want)

	modes := msort.Modes()
	outputs := make([][]int, len(modes))

	var g errgroup.Group
	for i, mode := range modes {
		i, mode := i, mode
		g.Go(func() error {
			out := slices.Clone(data)
			sorter := msort.Sorter{Mode: mode, Budget: budget, Tasks: tasks}
			if _, err := sorter.Sort(out); err != nil {
				return errors.Wrapf(err, "mode %s", mode)
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var mismatches []Mismatch
	for i, mode := range modes {
		idx := FirstMismatch(outputs[i], want)
		if idx < 0 {
			continue
		}
		m := Mismatch{Mode: mode.String(), Index: idx}
		if idx < len(outputs[i]) {
			m.Got = outputs[i][idx]
		}
		if idx < len(want) {
			m.Want = want[idx]
		}
		mismatches = append(mismatches, m)
	}
	return mismatches, nil
}
