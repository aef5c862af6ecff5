package bench

import (
	"bufio"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// GenerateData [0, max) 범위의 난수 size 개. 같은 seed 면 같은 데이터
func GenerateData(size, max int, seed int64) []int {
	r := rand.New(rand.NewSource(seed))

	data := make([]int, size)
	for i := range data {
		data[i] = r.Intn(max)
	}
	return data
}

// WriteDataToFile 한 줄에 하나씩 정수를 쓴다
func WriteDataToFile(data []int, filename string) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "create data file")
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "close data file")
		}
	}()

	// 큰 버퍼 사용으로 I/O 성능 향상
	writer := bufio.NewWriterSize(file, 64*1024)

	// 문자열 빌더 사용으로 메모리 할당 최적화
	var builder strings.Builder
	builder.Grow(10000 * 8)

	for i, num := range data {
		if i > 0 {
			builder.WriteByte('\n')
		}
		builder.WriteString(strconv.Itoa(num))

		// 주기적으로 플러시 (메모리 사용량 제어)
		if i%10000 == 0 {
			if _, err := writer.WriteString(builder.String()); err != nil {
				return errors.Wrap(err, "write data file")
			}
			builder.Reset()
		}
	}

	if builder.Len() > 0 {
		if _, err := writer.WriteString(builder.String()); err != nil {
			return errors.Wrap(err, "write data file")
		}
	}

	return errors.Wrap(writer.Flush(), "flush data file")
}

// ReadDataFromFile WriteDataToFile 이 쓴 파일을 읽는다. 빈 줄은 건너뛴다.
func ReadDataFromFile(filename string) ([]int, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "open data file")
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "stat data file")
	}

	// 대략적인 숫자 개수 추정 (평균 4자리 + 개행)
	data := make([]int, 0, int(fileInfo.Size()/5))

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), bufio.MaxScanTokenSize)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		num, err := strconv.Atoi(text)
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d", filename, line)
		}
		data = append(data, num)
	}

	return data, errors.Wrap(scanner.Err(), "scan data file")
}
