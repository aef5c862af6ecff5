package msort

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"msort/internal/logutil"
	"msort/internal/taskpool"
)

// Mode 정렬 스케줄링 방식
type Mode int

const (
	ModeSequential Mode = iota
	ModeThreadBounded
	ModeTaskBased
)

var modeNames = map[Mode]string{
	ModeSequential:    "sequential",
	ModeThreadBounded: "thread_bounded",
	ModeTaskBased:     "task_based",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// Modes 모든 모드 (보고서 순서)
func Modes() []Mode {
	return []Mode{ModeSequential, ModeThreadBounded, ModeTaskBased}
}

// ParseMode "sequential", "thread_bounded", "task_based"
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, errors.Wrapf(ErrInvalidArgument, "unknown mode %q", s)
}

// State 세 변형이 공유하는 정렬 호출 상태
type State int

const (
	StateUnsorted State = iota
	StateSplitting
	StateAwaitingChildren
	StateMerging
	StateSorted
)

func (s State) String() string {
	switch s {
	case StateUnsorted:
		return "Unsorted"
	case StateSplitting:
		return "Splitting"
	case StateAwaitingChildren:
		return "AwaitingChildren"
	case StateMerging:
		return "Merging"
	case StateSorted:
		return "Sorted"
	}
	return "Unknown"
}

// Sorter 모드, 스레드 예산, 작업 기반 정렬기를 묶는다.
// Tasks 가 nil 이면 taskpool.Default() 와 TaskThreshold 를 쓴다.
type Sorter struct {
	Mode   Mode
	Budget int
	Tasks  *TaskSorter
}

// Sort seq 를 제자리 정렬하고 같은 슬라이스를 돌려준다.
// Budget 은 ModeThreadBounded 에서만 쓰인다.
func (s Sorter) Sort(seq []int) ([]int, error) {
	logutil.L().Debug("sort",
		zap.Stringer("mode", s.Mode),
		zap.Int("n", len(seq)),
		zap.Int("budget", s.Budget))

	switch s.Mode {
	case ModeSequential:
		Sequential(seq)
	case ModeThreadBounded:
		if s.Budget < 0 {
			return nil, errors.Wrapf(ErrInvalidArgument, "negative thread budget %d", s.Budget)
		}
		Threaded(seq, s.Budget)
	case ModeTaskBased:
		tasks := s.Tasks
		if tasks == nil {
			tasks = NewTaskSorter(taskpool.Default())
		}
		tasks.Sort(seq)
	default:
		return nil, errors.Wrapf(ErrInvalidArgument, "unknown mode %d", int(s.Mode))
	}
	return seq, nil
}

// Sort seq 를 mode 로 제자리 정렬한다. budget 은 ModeThreadBounded 에서만 쓰인다.
func Sort(seq []int, mode Mode, budget int) ([]int, error) {
	return Sorter{Mode: mode, Budget: budget}.Sort(seq)
}
