package bus

import (
	"strconv"
	"sync/atomic"
	"testing"
)

func makeHandler(c *int64) EventHandler {
	return func(Event) error {
		atomic.AddInt64(c, 1)
		return nil
	}
}

func BenchmarkPublishManySubscribers(b *testing.B) {
	for _, subs := range []int{1, 4, 16, 64, 256} {
		b.Run("subs="+strconv.Itoa(subs), func(b *testing.B) {
			bus := New()
			var c int64
			for range subs {
				_, _ = bus.Subscribe("tick", makeHandler(&c))
			}
			e := NewEvent("tick", "bench", nil, nil)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = bus.Publish(e)
			}
		})
	}
}

func BenchmarkPublishWithObserver(b *testing.B) {
	bus := New()
	bus.AddObserver(&testObserver{})
	var c int64
	_, _ = bus.Subscribe("tick", makeHandler(&c))
	e := NewEvent("tick", "bench", nil, nil)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = bus.Publish(e)
	}
}
