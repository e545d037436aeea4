package event

import (
	"sync"
	"time"

	"github.com/SairajMN/autocrowd/internal/logger"
)

// 每个订阅者的缓冲队列长度
const subscriberQueueSize = 64

// Event 总线上流转的事实
type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Bus 进程内事件总线，按事件类型把事实分发给订阅者
type Bus struct {
	mu        sync.RWMutex
	nextSubId uint64
	subs      map[uint64]*subscriber
	byType    map[string]map[uint64]chan Event
}

type subscriber struct {
	ch    chan Event
	types []string
}

// NewBus 创建事件总线
func NewBus() *Bus {
	return &Bus{
		subs:   make(map[uint64]*subscriber),
		byType: make(map[string]map[uint64]chan Event),
	}
}

// Subscribe 订阅若干事件类型，返回订阅ID和接收通道
func (b *Bus) Subscribe(eventTypes ...string) (uint64, <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextSubId++
	id := b.nextSubId
	sub := &subscriber{
		ch:    make(chan Event, subscriberQueueSize),
		types: eventTypes,
	}
	b.subs[id] = sub
	for _, t := range eventTypes {
		if b.byType[t] == nil {
			b.byType[t] = make(map[uint64]chan Event)
		}
		b.byType[t][id] = sub.ch
	}
	return id, sub.ch
}

// Unsubscribe 取消订阅并关闭通道
func (b *Bus) Unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subs[id]
	if !ok {
		return
	}
	for _, t := range sub.types {
		delete(b.byType[t], id)
	}
	delete(b.subs, id)
	close(sub.ch)
}

// Publish 发布事实。数据库流水才是权威记录，总线分发是尽力而为：
// 订阅者队列满时丢弃并告警，不阻塞发布方
func (b *Bus) Publish(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.byType[evt.Type] {
		select {
		case ch <- evt:
		default:
			logger.Warn("Event subscriber %d queue full, dropping %s event", id, evt.Type)
		}
	}
}
