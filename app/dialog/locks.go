package dialog

import "sync"

// podLocks serializes transitions per pod. Entries are dropped when unused.
type podLocks struct {
	mu sync.Mutex
	m  map[string]*podLock
}

type podLock struct {
	mu   sync.Mutex
	refs int
}

func newPodLocks() *podLocks {
	return &podLocks{m: make(map[string]*podLock)}
}

// lock blocks until pod is free and returns the matching unlock.
func (l *podLocks) lock(pod string) func() {
	l.mu.Lock()
	pl, ok := l.m[pod]
	if !ok {
		pl = &podLock{}
		l.m[pod] = pl
	}
	pl.refs++
	l.mu.Unlock()

	pl.mu.Lock()
	return func() {
		pl.mu.Unlock()
		l.mu.Lock()
		pl.refs--
		if pl.refs == 0 {
			delete(l.m, pod)
		}
		l.mu.Unlock()
	}
}

func (l *podLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}
