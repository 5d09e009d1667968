package bus

import (
	"reflect"
	"sync"
	"testing"
)

func TestPublishReachesAllSubscribersInOrder(t *testing.T) {
	b := New[int]()

	var a, c []int
	b.Subscribe(func(v int) { a = append(a, v) })
	b.Subscribe(func(v int) { c = append(c, v) })

	for i := 0; i < 5; i++ {
		b.Publish(i)
	}

	want := []int{0, 1, 2, 3, 4}
	if !reflect.DeepEqual(a, want) {
		t.Errorf("first subscriber got %v, want %v", a, want)
	}
	if !reflect.DeepEqual(c, want) {
		t.Errorf("second subscriber got %v, want %v", c, want)
	}
}

func TestLateSubscriberSeesNoReplay(t *testing.T) {
	b := New[string]()
	b.Publish("early")

	var got []string
	b.Subscribe(func(v string) { got = append(got, v) })
	b.Publish("late")

	if !reflect.DeepEqual(got, []string{"late"}) {
		t.Errorf("got %v, want [late]", got)
	}
}

func TestUnsubscribeStopsOnlyThatSubscriber(t *testing.T) {
	b := New[int]()

	var kept, dropped []int
	b.Subscribe(func(v int) { kept = append(kept, v) })
	unsubscribe := b.Subscribe(func(v int) { dropped = append(dropped, v) })

	b.Publish(1)
	unsubscribe()
	unsubscribe()
	b.Publish(2)

	if !reflect.DeepEqual(kept, []int{1, 2}) {
		t.Errorf("kept = %v", kept)
	}
	if !reflect.DeepEqual(dropped, []int{1}) {
		t.Errorf("dropped = %v", dropped)
	}
	if b.Len() != 1 {
		t.Errorf("Len() = %d, want 1", b.Len())
	}
}

func TestUnsubscribeFromHandler(t *testing.T) {
	b := New[int]()

	var got []int
	var unsubscribe func()
	unsubscribe = b.Subscribe(func(v int) {
		got = append(got, v)
		unsubscribe()
	})

	b.Publish(1)
	b.Publish(2)

	if !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("got %v, want [1]", got)
	}
}

func TestConcurrentPublishersKeepSubscribersConsistent(t *testing.T) {
	b := New[int]()

	var mu sync.Mutex
	var first, second []int
	b.Subscribe(func(v int) { mu.Lock(); first = append(first, v); mu.Unlock() })
	b.Subscribe(func(v int) { mu.Lock(); second = append(second, v); mu.Unlock() })

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			b.Publish(v)
		}(i)
	}
	wg.Wait()

	if len(first) != 50 || !reflect.DeepEqual(first, second) {
		t.Errorf("subscribers diverged: %v vs %v", first, second)
	}
}
