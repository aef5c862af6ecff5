package bench

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"

	"msort/internal/msort"
)

type group struct {
	size    int
	storage string
}

// groups 결과에 나타난 (크기, 저장 방식) 조합을 크기 순으로
func groups(results []Result) []group {
	var out []group
	for _, r := range results {
		g := group{r.DataSize, r.StorageType}
		if !slices.Contains(out, g) {
			out = append(out, g)
		}
	}
	slices.SortFunc(out, func(a, b group) int {
		if a.size != b.size {
			return a.size - b.size
		}
		return strings.Compare(a.storage, b.storage)
	})
	return out
}

// Average 한 모드의 평균
type Average struct {
	Mode     string
	Runs     int
	Duration time.Duration
	Memory   uint64
}

// Averages size/storage 조합에서 모드별 평균
func Averages(results []Result, size int, storage string) []Average {
	var out []Average
	for _, mode := range msort.Modes() {
		var avg Average
		avg.Mode = mode.String()
		var totalDuration time.Duration
		var totalMemory uint64
		for _, r := range results {
			if r.Mode == avg.Mode && r.DataSize == size && r.StorageType == storage {
				totalDuration += r.Duration
				totalMemory += r.MemoryUsage
				avg.Runs++
			}
		}
		if avg.Runs == 0 {
			continue
		}
		avg.Duration = totalDuration / time.Duration(avg.Runs)
		avg.Memory = totalMemory / uint64(avg.Runs)
		out = append(out, avg)
	}
	return out
}

// RenderMarkdown 실행별 표와 평균 요약
func RenderMarkdown(results []Result, now time.Time) string {
	var builder strings.Builder

	builder.WriteString("# Merge sort benchmark\n\n")
	builder.WriteString(fmt.Sprintf("Run at: %s\n", now.Format("2006-01-02 15:04:05")))
	builder.WriteString(fmt.Sprintf("CPU cores: %d\n", runtime.NumCPU()))
	builder.WriteString(fmt.Sprintf("GOMAXPROCS: %d\n\n", runtime.GOMAXPROCS(0)))

	gs := groups(results)
	for _, g := range gs {
		builder.WriteString(fmt.Sprintf("## %s - %s elements\n\n", g.storage, humanize.Comma(int64(g.size))))
		builder.WriteString("| Mode | Run | Budget | Duration | Memory | Mallocs | Goroutines | Verified |\n")
		builder.WriteString("|------|-----|--------|----------|--------|---------|------------|----------|\n")
		for _, r := range results {
			if r.DataSize != g.size || r.StorageType != g.storage {
				continue
			}
			builder.WriteString(fmt.Sprintf("| %s | %d | %s | %v | %s | %s | %d | %t |\n",
				r.Mode, r.TestRun, budgetLabel(r), r.Duration, humanize.IBytes(r.MemoryUsage),
				humanize.Comma(int64(r.Mallocs)), r.GoroutineNum, r.Verified))
		}
		builder.WriteString("\n")
	}

	builder.WriteString("## Summary\n\n")
	for _, g := range gs {
		builder.WriteString(fmt.Sprintf("### %s - %s elements (average)\n\n", g.storage, humanize.Comma(int64(g.size))))
		builder.WriteString("| Mode | Runs | Avg duration | Avg memory |\n")
		builder.WriteString("|------|------|--------------|------------|\n")
		for _, avg := range Averages(results, g.size, g.storage) {
			builder.WriteString(fmt.Sprintf("| %s | %d | %v | %s |\n",
				avg.Mode, avg.Runs, avg.Duration, humanize.IBytes(avg.Memory)))
		}
		builder.WriteString("\n")
	}
	return builder.String()
}

// SaveMarkdown 보고서를 path 에 쓴다
func SaveMarkdown(results []Result, path string) error {
	return writeFile(path, func(w *bufio.Writer) error {
		_, err := w.WriteString(RenderMarkdown(results, time.Now()))
		return err
	})
}

// SaveJSON 결과를 들여쓰기 된 JSON 배열로 쓴다
func SaveJSON(results []Result, path string) error {
	return writeFile(path, func(w *bufio.Writer) error {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(results)
	})
}

func writeFile(path string, fn func(w *bufio.Writer) error) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "close %s", path)
		}
	}()

	writer := bufio.NewWriterSize(file, 32*1024)
	if err := fn(writer); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return errors.Wrapf(writer.Flush(), "flush %s", path)
}

// budgetLabel 예산을 쓰지 않는 모드는 "-"
func budgetLabel(r Result) string {
	if r.Mode != msort.ModeThreadBounded.String() {
		return "-"
	}
	return strconv.Itoa(r.Budget)
}
