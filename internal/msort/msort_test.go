package msort

import (
	"math/rand"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msort/internal/taskpool"
)

func makeRandomInts(n, max int) []int {
	r := rand.New(rand.NewSource(42))
	ints := make([]int, n)
	for i := range ints {
		ints[i] = r.Intn(max)
	}
	return ints
}

func sortedCopy(in []int) []int {
	out := slices.Clone(in)
	slices.Sort(out)
	return out
}

func TestMerge(t *testing.T) {
	dst := make([]int, 6)
	require.NoError(t, Merge(dst, []int{1, 5, 9}, []int{2, 2, 6}))
	assert.Equal(t, []int{1, 2, 2, 5, 6, 9}, dst)

	dst = make([]int, 3)
	require.NoError(t, Merge(dst, nil, []int{1, 2, 3}))
	assert.Equal(t, []int{1, 2, 3}, dst)

	require.NoError(t, Merge(dst, []int{4, 5, 6}, nil))
	assert.Equal(t, []int{4, 5, 6}, dst)
}

func TestMergeSizeMismatch(t *testing.T) {
	err := Merge(make([]int, 2), []int{1, 2}, []int{3})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSizeMismatch))
}

func allSorts(pool *taskpool.Pool) map[string]func([]int) {
	return map[string]func([]int){
		"sequential":       Sequential,
		"thread_bounded_1": func(a []int) { Threaded(a, 1) },
		"thread_bounded_4": func(a []int) { Threaded(a, 4) },
		"thread_bounded_7": func(a []int) { Threaded(a, 7) },
		"task_based":       func(a []int) { Tasked(pool, a) },
		"task_based_small": func(a []int) { NewTaskSorter(pool, WithThreshold(2)).Sort(a) },
	}
}

func TestDemoArray(t *testing.T) {
	pool := taskpool.New(4)
	defer pool.Close()

	for name, fn := range allSorts(pool) {
		t.Run(name, func(t *testing.T) {
			arr := []int{38, 27, 43, 3, 9, 82, 10}
			fn(arr)
			assert.Equal(t, []int{3, 9, 10, 27, 38, 43, 82}, arr)
		})
	}
}

func TestBoundaries(t *testing.T) {
	pool := taskpool.New(2)
	defer pool.Close()

	for name, fn := range allSorts(pool) {
		t.Run(name, func(t *testing.T) {
			empty := []int{}
			fn(empty)
			assert.Empty(t, empty)

			var nilSlice []int
			fn(nilSlice)
			assert.Nil(t, nilSlice)

			one := []int{-5}
			fn(one)
			assert.Equal(t, []int{-5}, one)
		})
	}
}

func TestPermutationAndAgreement(t *testing.T) {
	pool := taskpool.New(4)
	defer pool.Close()

	for _, n := range []int{2, 3, 17, 1000, 1001, 4097, 25000} {
		in := makeRandomInts(n, 100)
		want := sortedCopy(in)
		for name, fn := range allSorts(pool) {
			got := slices.Clone(in)
			fn(got)
			require.Equal(t, want, got, "%s n=%d", name, n)
		}
	}
}

func TestNegativeValues(t *testing.T) {
	in := []int{0, -1, 5, -100, 42, -1, 7}
	got := slices.Clone(in)
	Threaded(got, 3)
	assert.Equal(t, sortedCopy(in), got)
}

func TestIdempotent(t *testing.T) {
	pool := taskpool.New(4)
	defer pool.Close()

	sorted := sortedCopy(makeRandomInts(5000, 1000))
	for name, fn := range allSorts(pool) {
		got := slices.Clone(sorted)
		fn(got)
		assert.Equal(t, sorted, got, name)
	}
}

func TestSplitBudget(t *testing.T) {
	for threads := 0; threads <= 33; threads++ {
		l, r := SplitBudget(threads)
		assert.Equal(t, threads, l+r)
		assert.Equal(t, threads/2, l)
		assert.Equal(t, threads-threads/2, r)
	}
	l, r := SplitBudget(5)
	assert.Equal(t, 2, l)
	assert.Equal(t, 3, r)
}

func TestPlanBudgetConservation(t *testing.T) {
	var walk func(p *PlanNode)
	walk = func(p *PlanNode) {
		if !p.Parallel {
			assert.Empty(t, p.Children)
			assert.True(t, p.Size <= 1 || p.Budget <= 1)
			return
		}
		require.Len(t, p.Children, 2)
		l, r := p.Children[0], p.Children[1]
		assert.Equal(t, p.Budget, l.Budget+r.Budget)
		assert.Equal(t, p.Budget/2, l.Budget)
		assert.Equal(t, p.Size, l.Size+r.Size)
		assert.Equal(t, p.Size/2, l.Size)
		walk(l)
		walk(r)
	}

	for _, threads := range []int{0, 1, 2, 3, 7, 8, 16} {
		walk(PlanBudget(1_000, threads))
	}

	// 8 스레드: 7 개의 내부 노드가 각각 2 개씩 띄운다
	assert.Equal(t, 14, PlanBudget(1_000, 8).Goroutines())
	assert.Equal(t, 0, PlanBudget(1, 8).Goroutines())
	assert.Equal(t, 0, PlanBudget(1_000, 1).Goroutines())
}

type splitNode struct {
	size, budget int
}

func TestThreadedBudgetSplits(t *testing.T) {
	for _, n := range []int{37, 1_000} {
		for _, threads := range []int{2, 3, 5, 7, 8, 16} {
			var (
				mu  sync.Mutex
				got []splitNode
			)
			arr := makeRandomInts(n, 10_000)
			want := sortedCopy(arr)

			Threaded(arr, threads, WithSplitHook(func(size, budget, l, r int) {
				assert.Equal(t, budget, l+r, "n=%d threads=%d", n, threads)
				assert.Equal(t, budget/2, l, "n=%d threads=%d", n, threads)
				mu.Lock()
				got = append(got, splitNode{size, budget})
				mu.Unlock()
			}))
			assert.Equal(t, want, arr)

			// 실제 분할이 PlanBudget 의 병렬 노드와 같아야 한다
			var planned []splitNode
			var walk func(p *PlanNode)
			walk = func(p *PlanNode) {
				if !p.Parallel {
					return
				}
				planned = append(planned, splitNode{p.Size, p.Budget})
				for _, c := range p.Children {
					walk(c)
				}
			}
			walk(PlanBudget(n, threads))
			assert.ElementsMatch(t, planned, got, "n=%d threads=%d", n, threads)
		}
	}

	calls := 0
	Threaded([]int{3, 1, 2}, 1, WithSplitHook(func(int, int, int, int) { calls++ }))
	assert.Zero(t, calls)
}

func TestThreadedHalvesRunConcurrently(t *testing.T) {
	var started sync.WaitGroup
	started.Add(2)
	both := make(chan struct{})
	go func() {
		started.Wait()
		close(both)
	}()

	// 예산 2 에서는 루트만 두 고루틴으로 나뉜다. 둘 다 시작해야 서로 진행한다
	var overlapped atomic.Int32
	ts := threaded{onStart: func(int) {
		started.Done()
		select {
		case <-both:
			overlapped.Add(1)
		case <-time.After(5 * time.Second):
		}
	}}

	arr := []int{4, 3, 2, 1}
	ts.sort(arr, 2)
	assert.Equal(t, []int{1, 2, 3, 4}, arr)
	assert.Equal(t, int32(2), overlapped.Load())
}

// expectedSubmissions 루트를 뺀 노드 중 기준보다 큰 것의 수
func expectedSubmissions(n, threshold int) int64 {
	if n <= 1 {
		return 0
	}
	mid := n / 2
	var total int64
	for _, part := range []int{mid, n - mid} {
		if part > threshold {
			total++
		}
		total += expectedSubmissions(part, threshold)
	}
	return total
}

func TestTaskThresholdGating(t *testing.T) {
	var requests atomic.Int64
	pool := taskpool.New(4, taskpool.WithSubmitHook(func() { requests.Add(1) }))
	defer pool.Close()

	small := makeRandomInts(2000, 1000)
	Tasked(pool, small)
	// 2000 → 1000 + 1000, 둘 다 기준 이하
	assert.Equal(t, int64(0), requests.Load())
	assert.True(t, slices.IsSorted(small))

	for _, n := range []int{4000, 4001, 123_457} {
		requests.Store(0)
		in := makeRandomInts(n, 1000)
		Tasked(pool, in)
		assert.True(t, slices.IsSorted(in))
		assert.Equal(t, expectedSubmissions(n, TaskThreshold), requests.Load(), "n=%d", n)
	}
	assert.Equal(t, int64(2), expectedSubmissions(4000, TaskThreshold))
	assert.Equal(t, int64(3), expectedSubmissions(4001, TaskThreshold))
}

func TestTaskStateTransitions(t *testing.T) {
	pool := taskpool.New(1)
	defer pool.Close()

	var mu sync.Mutex
	var states []State
	tracer := func(s State, size int) {
		mu.Lock()
		defer mu.Unlock()
		if size == 2 {
			states = append(states, s)
		}
	}
	NewTaskSorter(pool, WithTracer(tracer)).Sort([]int{2, 1})
	assert.Equal(t, []State{
		StateUnsorted, StateSplitting, StateAwaitingChildren, StateMerging, StateSorted,
	}, states)

	states = nil
	var sizes []int
	NewTaskSorter(pool, WithTracer(func(s State, size int) {
		sizes = append(sizes, size)
		states = append(states, s)
	})).Sort([]int{1})
	assert.Equal(t, []State{StateUnsorted, StateSorted}, states)
	assert.Equal(t, []int{1, 1}, sizes)
}

func TestSort(t *testing.T) {
	for _, mode := range Modes() {
		in := []int{38, 27, 43, 3, 9, 82, 10}
		out, err := Sort(in, mode, 4)
		require.NoError(t, err, mode.String())
		assert.Equal(t, []int{3, 9, 10, 27, 38, 43, 82}, out)
		assert.Equal(t, out, in)
	}

	_, err := Sort([]int{2, 1}, ModeThreadBounded, -1)
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	// 예산은 thread_bounded 에서만 읽는다
	out, err := Sort([]int{2, 1}, ModeSequential, -1)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, out)

	_, err = Sort([]int{2, 1}, Mode(99), 1)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes() {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMode("bogo")
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	assert.Equal(t, "unknown", Mode(42).String())
	assert.Equal(t, "AwaitingChildren", StateAwaitingChildren.String())
}

func TestStressMillion(t *testing.T) {
	if testing.Short() {
		t.Skip("large input")
	}
	in := makeRandomInts(1_000_000, 10000)
	want := sortedCopy(in)

	for _, mode := range Modes() {
		got := slices.Clone(in)
		_, err := Sort(got, mode, 8)
		require.NoError(t, err)
		require.Equal(t, want, got, mode.String())
	}
}

func TestSorterCustomTasks(t *testing.T) {
	var requests atomic.Int64
	pool := taskpool.New(2, taskpool.WithSubmitHook(func() { requests.Add(1) }))
	defer pool.Close()

	s := Sorter{Mode: ModeTaskBased, Tasks: NewTaskSorter(pool, WithThreshold(2))}
	out, err := s.Sort([]int{38, 27, 43, 3, 9, 82, 10})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 9, 10, 27, 38, 43, 82}, out)
	// 7 → 3 + 4, 4 → 2 + 2: 기준 2 를 넘는 것은 3 과 4 뿐
	assert.Equal(t, int64(2), requests.Load())
}
