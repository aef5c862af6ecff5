package ownership

// SharedScope 복제본이 안쪽 블록에서 먼저 놓이고, 마지막 핸들이 놓일 때 자원이 해제된다
func SharedScope(opts ...Option) {
	ptr1 := NewShared("shared", 1, opts...)
	defer ptr1.Release()

	func() {
		ptr2 := ptr1.Clone()
		defer ptr2.Release()
	}()
}

// ExclusiveScope 함수가 끝날 때 자원이 해제된다
func ExclusiveScope(opts ...Option) {
	ptr := NewExclusive("exclusive", 1, opts...)
	defer ptr.Release()
}

// ManualCleanup 객체를 만들고 1, 3 번을 먼저 해제한 뒤 나머지를 해제하는 순서를 재현한다.
// 각 단계 이후 남은 객체 이름을 돌려준다. count 보다 큰 번호는 건너뛴다.
func ManualCleanup(count, size int, opts ...Option) (created, afterPartial, afterAll []string, err error) {
	reg := NewRegistry(count, size, opts...)
	created = reg.Live()

	for _, i := range FirstReleased {
		if i >= count {
			continue
		}
		if err := reg.Release(i); err != nil {
			return created, reg.Live(), nil, err
		}
	}
	afterPartial = reg.Live()

	reg.ReleaseAll()
	afterAll = reg.Live()
	return created, afterPartial, afterAll, nil
}
