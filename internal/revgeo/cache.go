package revgeo

import (
	"container/list"
	"sync"
	"time"
)

// 文档注释：进程内 LRU（geohash 为键）
// 背景：同一区域的点击定位在短时间内反复出现，命中时不再拉取边界数据
// 约束：容量与 TTL 由构造参数决定；过期项在读取时淘汰
type LRU struct {
	mu   sync.Mutex
	cap  int
	ttl  time.Duration
	now  func() time.Time
	lst  *list.List
	dict map[string]*list.Element
}

type entry struct {
	k   string
	v   Result
	exp time.Time
}

func NewLRU(capacity int, ttl time.Duration) *LRU {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRU{cap: capacity, ttl: ttl, now: time.Now, lst: list.New(), dict: make(map[string]*list.Element)}
}

func (c *LRU) Get(k string) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.dict[k]
	if !ok {
		return Result{}, false
	}
	it := e.Value.(entry)
	if !c.now().Before(it.exp) {
		c.lst.Remove(e)
		delete(c.dict, k)
		return Result{}, false
	}
	c.lst.MoveToFront(e)
	return it.v, true
}

func (c *LRU) Set(k string, v Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it := entry{k: k, v: v, exp: c.now().Add(c.ttl)}
	if e, ok := c.dict[k]; ok {
		e.Value = it
		c.lst.MoveToFront(e)
		return
	}
	c.dict[k] = c.lst.PushFront(it)
	for c.lst.Len() > c.cap {
		back := c.lst.Back()
		delete(c.dict, back.Value.(entry).k)
		c.lst.Remove(back)
	}
}

func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lst.Len()
}
