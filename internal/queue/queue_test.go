package queue

import (
	"sync"
	"testing"
)

// leg is a small struct for exercising the generic queue
type leg struct {
	ID        int
	Remaining int
}

func TestQueue_New(t *testing.T) {
	q := New[leg]()
	if q == nil {
		t.Fatal("expected non-nil queue")
	}
	if !q.Empty() {
		t.Error("expected empty queue")
	}
	if q.Len() != 0 {
		t.Errorf("expected length 0, got %d", q.Len())
	}
}

func TestQueue_PushPopOrder(t *testing.T) {
	q := New[leg]()
	q.Push(leg{ID: 1}, leg{ID: 2})
	q.Push(leg{ID: 3})

	for want := 1; want <= 3; want++ {
		got := q.Pop()
		if got.ID != want {
			t.Fatalf("expected ID %d, got %d", want, got.ID)
		}
	}
	if !q.Empty() {
		t.Error("expected empty queue after popping everything")
	}
}

func TestQueue_PopEmptyReturnsZero(t *testing.T) {
	q := New[leg]()
	if got := q.Pop(); got != (leg{}) {
		t.Errorf("expected zero value, got %+v", got)
	}
}

func TestQueue_FrontMutatesInPlace(t *testing.T) {
	q := New[leg]()

	if _, ok := q.Front(); ok {
		t.Fatal("expected no front on empty queue")
	}

	q.Push(leg{ID: 1, Remaining: 2}, leg{ID: 2, Remaining: 5})

	front, ok := q.Front()
	if !ok {
		t.Fatal("expected a front item")
	}
	front.Remaining--

	front, _ = q.Front()
	if front.ID != 1 || front.Remaining != 1 {
		t.Errorf("expected {1 1}, got %+v", *front)
	}

	q.Pop()
	front, _ = q.Front()
	if front.ID != 2 {
		t.Errorf("expected front ID 2 after pop, got %d", front.ID)
	}
}

func TestQueue_CompactsAfterManyPops(t *testing.T) {
	q := New[int]()
	for i := 0; i < 3*compactThreshold; i++ {
		q.Push(i)
	}
	for i := 0; i < 2*compactThreshold; i++ {
		if got := q.Pop(); got != i {
			t.Fatalf("expected %d, got %d", i, got)
		}
	}

	if q.head >= compactThreshold {
		t.Errorf("expected head to be compacted, got %d", q.head)
	}
	if q.Len() != compactThreshold {
		t.Errorf("expected %d items, got %d", compactThreshold, q.Len())
	}
	if got := q.Pop(); got != 2*compactThreshold {
		t.Errorf("expected %d after compaction, got %d", 2*compactThreshold, got)
	}
}

func TestQueue_Each(t *testing.T) {
	q := New[int]()
	q.Push(1, 2, 3, 4)
	q.Pop()

	var seen []int
	q.Each(func(v int) bool {
		seen = append(seen, v)
		return v < 3
	})

	if len(seen) != 2 || seen[0] != 2 || seen[1] != 3 {
		t.Errorf("expected [2 3], got %v", seen)
	}
}

func TestQueue_FrontRefetchAfterPush(t *testing.T) {
	q := New[leg]()
	q.Push(leg{ID: 1, Remaining: 3})

	front, _ := q.Front()
	front.Remaining--

	// Growing the queue may move the backing slice, so the front is fetched again.
	for i := 2; i <= 2*compactThreshold; i++ {
		q.Push(leg{ID: i})
	}
	front, _ = q.Front()
	if front.ID != 1 || front.Remaining != 2 {
		t.Errorf("expected {1 2}, got %+v", *front)
	}
	front.Remaining--

	if got := q.Pop(); got.Remaining != 1 {
		t.Errorf("expected remaining 1 after in-place update, got %d", got.Remaining)
	}
}

func TestQueue_GetAndEmpty(t *testing.T) {
	q := New[leg]()
	q.Push(leg{ID: 1}, leg{ID: 2}, leg{ID: 3})
	q.Pop()

	result := q.GetAndEmpty()

	if len(result) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result))
	}
	if result[0].ID != 2 || result[1].ID != 3 {
		t.Errorf("unexpected items: %+v", result)
	}
	if !q.Empty() {
		t.Error("expected empty queue after GetAndEmpty")
	}

	q.Push(leg{ID: 4})
	if q.Pop().ID != 4 {
		t.Error("expected queue to be reusable after GetAndEmpty")
	}
}

func TestQueue_Concurrent(t *testing.T) {
	q := New[leg]()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			q.Push(leg{ID: id})
		}(i)
	}
	wg.Wait()

	if q.Len() != 100 {
		t.Errorf("expected 100 items, got %d", q.Len())
	}

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Pop()
		}()
	}
	wg.Wait()

	if q.Len() != 50 {
		t.Errorf("expected 50 items after pops, got %d", q.Len())
	}
}

func TestQueue_ConcurrentGetAndEmpty(t *testing.T) {
	q := New[leg]()
	for i := 0; i < 100; i++ {
		q.Push(leg{ID: i})
	}

	var wg sync.WaitGroup
	results := make(chan []leg, 10)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- q.GetAndEmpty()
		}()
	}
	wg.Wait()
	close(results)

	total := 0
	for r := range results {
		total += len(r)
	}
	if total != 100 {
		t.Errorf("expected total 100 items, got %d", total)
	}
}
