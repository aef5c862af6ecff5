package msort

// Sequential 순차 머지소트. arr 을 제자리에서 오름차순 정렬한다.
func Sequential(arr []int) {
	if len(arr) <= 1 {
		return
	}

	left, right := split(arr)
	Sequential(left)
	Sequential(right)

	merge(arr, left, right)
}
