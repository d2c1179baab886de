package store

import "sync"

// Observable 状态变更通知
// 每个订阅者只保留最新一份快照：消费者跟不上时旧快照被替换
type Observable[T any] struct {
	mu      sync.Mutex
	nextID  int
	subs    map[int]chan T
	dropped int64
}

// NewObservable 创建 Observable
func NewObservable[T any]() *Observable[T] {
	return &Observable[T]{subs: make(map[int]chan T)}
}

// Subscribe 返回变更通道与取消函数，取消后通道被关闭
func (o *Observable[T]) Subscribe() (<-chan T, func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := o.nextID
	o.nextID++
	ch := make(chan T, 1)
	o.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			if c, ok := o.subs[id]; ok {
				delete(o.subs, id)
				close(c)
			}
		})
	}
}

// Publish 非阻塞地向所有订阅者发送快照
func (o *Observable[T]) Publish(v T) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, ch := range o.subs {
		select {
		case ch <- v:
			continue
		default:
		}
		// 通道已满：丢弃旧快照再放入新的
		select {
		case <-ch:
			o.dropped++
		default:
		}
		select {
		case ch <- v:
		default:
		}
	}
}

// Subscribers 当前订阅数
func (o *Observable[T]) Subscribers() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.subs)
}

// Dropped 被替换掉的旧快照数量
func (o *Observable[T]) Dropped() int64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.dropped
}

// Close 关闭全部订阅
func (o *Observable[T]) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for id, ch := range o.subs {
		delete(o.subs, id)
		close(ch)
	}
}
