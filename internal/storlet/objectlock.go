package storlet

import "sync"

// objectLocks 按对象 ID 加锁，同一对象的 PUT 与回填互斥
// 不再被引用的锁会被回收
type objectLocks struct {
	mu    sync.Mutex
	locks map[string]*objectLock
}

type objectLock struct {
	mu   sync.Mutex
	refs int
}

func newObjectLocks() *objectLocks {
	return &objectLocks{locks: make(map[string]*objectLock)}
}

// lock 返回的函数用于解锁
func (l *objectLocks) lock(id string) func() {
	l.mu.Lock()
	ol, ok := l.locks[id]
	if !ok {
		ol = &objectLock{}
		l.locks[id] = ol
	}
	ol.refs++
	l.mu.Unlock()

	ol.mu.Lock()
	return func() {
		ol.mu.Unlock()
		l.mu.Lock()
		ol.refs--
		if ol.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

func (l *objectLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

// refs 返回持有或等待某个对象锁的调用数
func (l *objectLocks) refs(id string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if ol, ok := l.locks[id]; ok {
		return ol.refs
	}
	return 0
}
