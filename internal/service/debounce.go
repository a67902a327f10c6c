package service

import (
	"log"
	"sync"
	"time"
)

// DefaultTicketDebounceDelay 是票號輸入合併寫入的安靜期
const DefaultTicketDebounceDelay = 500 * time.Millisecond

// TicketDebouncer 把連續的票號輸入合併為一次持久化寫入
//
// Set 重置計時器，安靜期過後以最後一次的值調用 write；
// Flush 取消未到期的計時器並立即寫入，確保失焦後不會再有
// 過期的防抖寫入覆蓋較新的值
type TicketDebouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	write   func(key, value string) error
	timers  map[string]*time.Timer
	pending map[string]string
}

func NewTicketDebouncer(delay time.Duration, write func(key, value string) error) *TicketDebouncer {
	return &TicketDebouncer{
		delay:   delay,
		write:   write,
		timers:  make(map[string]*time.Timer),
		pending: make(map[string]string),
	}
}

// Set 記錄最新輸入值並重新開始安靜期計時
func (d *TicketDebouncer) Set(key, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[key] = value
	if timer, ok := d.timers[key]; ok {
		timer.Stop()
	}
	d.timers[key] = time.AfterFunc(d.delay, func() {
		d.fire(key)
	})
}

// Flush 立即提交尚未寫入的值，沒有待寫入值時不做任何事
func (d *TicketDebouncer) Flush(key string) error {
	d.mu.Lock()
	if timer, ok := d.timers[key]; ok {
		timer.Stop()
		delete(d.timers, key)
	}
	value, ok := d.pending[key]
	if ok {
		delete(d.pending, key)
	}
	d.mu.Unlock()

	if !ok {
		return nil
	}
	return d.write(key, value)
}

// Cancel 丟棄待寫入的值並停止計時器（視圖關閉時調用）
func (d *TicketDebouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if timer, ok := d.timers[key]; ok {
		timer.Stop()
		delete(d.timers, key)
	}
	delete(d.pending, key)
}

// fire 由計時器觸發，值可能已被 Flush 搶先提交
func (d *TicketDebouncer) fire(key string) {
	d.mu.Lock()
	value, ok := d.pending[key]
	if ok {
		delete(d.pending, key)
	}
	delete(d.timers, key)
	d.mu.Unlock()

	if !ok {
		return
	}
	if err := d.write(key, value); err != nil {
		log.Printf("debounced write error: %v", err)
	}
}
