package msort

import "github.com/cockroachdb/errors"

// Merge 정렬된 left, right 를 dst 에 안정 병합한다.
// 값이 같으면 left 를 먼저 내보낸다.
func Merge(dst, left, right []int) error {
	if len(dst) < len(left)+len(right) {
		return errors.Wrapf(ErrSizeMismatch, "dst=%d left=%d right=%d", len(dst), len(left), len(right))
	}
	merge(dst, left, right)
	return nil
}

// merge 크기 검사 없는 내부 병합 (재귀 호출이 버퍼 크기를 보장)
func merge(dst, left, right []int) {
	i, j, k := 0, 0, 0

	for i < len(left) && j < len(right) {
		if left[i] <= right[j] {
			dst[k] = left[i]
			i++
		} else {
			dst[k] = right[j]
			j++
		}
		k++
	}

	// 남은 구간은 그대로 복사
	k += copy(dst[k:], left[i:])
	copy(dst[k:], right[j:])
}

// split arr 의 두 절반을 새 버퍼로 복사한다.
func split(arr []int) (left, right []int) {
	mid := len(arr) / 2
	left = make([]int, mid)
	right = make([]int, len(arr)-mid)
	copy(left, arr[:mid])
	copy(right, arr[mid:])
	return left, right
}
