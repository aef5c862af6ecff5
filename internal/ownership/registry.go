package ownership

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/cockroachdb/errors"
)

const (
	ObjectCount = 5
	DataSize    = 1_000_000
)

// FirstReleased 수동 해제 예제에서 먼저 놓는 슬롯
var FirstReleased = []int{1, 3}

var ErrOutOfRange = errors.New("ownership: object index out of range")

// Object 이름과 value 로 채운 큰 배열
type Object struct {
	Name string
	Data []int
}

func NewObject(name string, value, size int) *Object {
	obj := &Object{Name: name, Data: make([]int, size)}
	for i := range obj.Data {
		obj.Data[i] = value
	}
	return obj
}

// Bytes Data 가 차지하는 바이트 수
func (o *Object) Bytes() uint64 {
	return uint64(len(o.Data)) * uint64(unsafe.Sizeof(int(0)))
}

// Usage 살아 있는 객체 하나의 메모리 사용량
type Usage struct {
	Name  string
	Bytes uint64
}

// Registry 고정 슬롯의 객체 목록. 해제한 슬롯은 nil 이 된다
type Registry struct {
	opts options

	mu      sync.Mutex
	objects []*Object
}

// NewRegistry object_0 … object_{count-1} 을 만든다. i 번째 객체는 i 로 채운다
func NewRegistry(count, size int, opts ...Option) *Registry {
	r := &Registry{opts: newOptions(opts), objects: make([]*Object, count)}
	for i := range r.objects {
		r.objects[i] = NewObject(fmt.Sprintf("object_%d", i), i, size)
		r.opts.emit(Event{Kind: Acquired, Name: r.objects[i].Name, Refs: 1})
	}
	return r
}

// Release i 번째 슬롯을 비운다. 이미 비었으면 아무것도 하지 않는다
func (r *Registry) Release(i int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.objects) {
		return errors.Wrapf(ErrOutOfRange, "index %d of %d", i, len(r.objects))
	}
	r.releaseLocked(i)
	return nil
}

func (r *Registry) releaseLocked(i int) {
	obj := r.objects[i]
	if obj == nil {
		return
	}
	r.objects[i] = nil
	r.opts.emit(Event{Kind: Released, Name: obj.Name})
}

// ReleaseAll 남은 객체를 슬롯 순서대로 해제
func (r *Registry) ReleaseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.objects {
		r.releaseLocked(i)
	}
}

// Live 살아 있는 객체 이름
func (r *Registry) Live() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for _, obj := range r.objects {
		if obj != nil {
			names = append(names, obj.Name)
		}
	}
	return names
}

// Usage 살아 있는 객체별 메모리 사용량
func (r *Registry) Usage() []Usage {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Usage
	for _, obj := range r.objects {
		if obj != nil {
			out = append(out, Usage{Name: obj.Name, Bytes: obj.Bytes()})
		}
	}
	return out
}

// Get i 번째 객체. 해제됐으면 nil
func (r *Registry) Get(i int) (*Object, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.objects) {
		return nil, errors.Wrapf(ErrOutOfRange, "index %d of %d", i, len(r.objects))
	}
	return r.objects[i], nil
}
