// Package draw строит распределение "кто кому дарит" для группы.
//
// Результат - случайная перестановка без неподвижных точек (никто не дарит
// подарок самому себе). Перестановка получается выборкой с отклонением:
// равномерная перестановка генерируется заново, пока в ней есть неподвижная
// точка. После исчерпания попыток используется циклический сдвиг на одну позицию.
package draw

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"
	"sync"
)

// DefaultMaxAttempts ограничивает число попыток выборки с отклонением
const DefaultMaxAttempts = 100

// MinSize - минимальное число участников жеребьёвки
const MinSize = 3

// ErrTooFew возвращается, если участников меньше MinSize
var ErrTooFew = errors.New("draw: at least 3 participants required")

// ErrDuplicateID возвращается, если идентификатор встречается дважды
var ErrDuplicateID = errors.New("draw: duplicate participant id")

// Edge - одно ребро даритель -> получатель
type Edge[T comparable] struct {
	Giver    T
	Receiver T
}

// Source поставляет случайные перестановки. *rand.Rand удовлетворяет интерфейсу.
type Source interface {
	Perm(n int) []int
}

// Result содержит рёбра и сведения о том, как они получены
type Result[T comparable] struct {
	Edges    []Edge[T]
	Attempts int
	Fallback bool
}

// Engine выполняет жеребьёвку
type Engine struct {
	mu          sync.Mutex
	src         Source
	maxAttempts int
}

// NewEngine создает движок с заданным источником случайности
func NewEngine(src Source, maxAttempts int) *Engine {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Engine{src: src, maxAttempts: maxAttempts}
}

// NewSeededEngine создает движок на math/rand, засеянном из crypto/rand
func NewSeededEngine(maxAttempts int) (*Engine, error) {
	seed, err := newSeed()
	if err != nil {
		return nil, err
	}
	return NewEngine(rand.New(rand.NewSource(seed)), maxAttempts), nil
}

func newSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Derange возвращает перестановку ids без неподвижных точек в виде рёбер.
// Порядок рёбер совпадает с порядком дарителей во входном списке.
func Derange[T comparable](e *Engine, ids []T) (Result[T], error) {
	n := len(ids)
	if n < MinSize {
		return Result[T]{}, ErrTooFew
	}
	seen := make(map[T]struct{}, n)
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return Result[T]{}, ErrDuplicateID
		}
		seen[id] = struct{}{}
	}

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		perm := e.perm(n)
		if len(perm) != n || hasFixedPoint(perm) {
			continue
		}
		edges := make([]Edge[T], n)
		for i, j := range perm {
			edges[i] = Edge[T]{Giver: ids[i], Receiver: ids[j]}
		}
		return Result[T]{Edges: edges, Attempts: attempt}, nil
	}

	return Result[T]{Edges: rotate(ids), Attempts: e.maxAttempts, Fallback: true}, nil
}

func (e *Engine) perm(n int) []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.src.Perm(n)
}

func hasFixedPoint(perm []int) bool {
	for i, j := range perm {
		if i == j {
			return true
		}
	}
	return false
}

// rotate сдвигает список на одну позицию: ids[i] дарит ids[(i+1) mod n]
func rotate[T comparable](ids []T) []Edge[T] {
	n := len(ids)
	edges := make([]Edge[T], n)
	for i := range ids {
		edges[i] = Edge[T]{Giver: ids[i], Receiver: ids[(i+1)%n]}
	}
	return edges
}
