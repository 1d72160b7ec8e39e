package host

import (
	"sort"
	"sync"
)

// DefaultPriority is the priority used when none is given.
const DefaultPriority = 10

type hookEntry struct {
	priority int
	order    int
	fn       func()
}

type filterEntry struct {
	priority int
	order    int
	fn       func(any) any
}

// AddAction subscribes fn to hook. An optional priority orders callbacks;
// lower runs first.
func (h *Host) AddAction(hook string, fn func(), priority ...int) {
	p := DefaultPriority
	if len(priority) > 0 {
		p = priority[0]
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.order++
	h.actions[hook] = append(h.actions[hook], hookEntry{priority: p, order: h.order, fn: fn})
}

// Once subscribes fn for at-most-once delivery, no matter how often hook
// fires.
func (h *Host) Once(hook string, fn func(), priority ...int) {
	var once sync.Once
	h.AddAction(hook, func() { once.Do(fn) }, priority...)
}

// AddActionOrRun subscribes fn to hook, or runs fn right away when hook has
// already completed at least once. Builders created after a phase has passed
// use it so their registrations are not lost.
func (h *Host) AddActionOrRun(hook string, fn func(), priority ...int) {
	h.mu.Lock()
	completed := h.fired[hook] > 0 && h.running[hook] == 0
	h.mu.Unlock()
	if completed {
		fn()
		return
	}
	h.AddAction(hook, fn, priority...)
}

// OnceOrRun is Once for subscribers that may arrive after hook completed:
// fn then runs right away instead of waiting for a firing that may never
// come.
func (h *Host) OnceOrRun(hook string, fn func(), priority ...int) {
	var once sync.Once
	h.AddActionOrRun(hook, func() { once.Do(fn) }, priority...)
}

// DoAction fires hook.
func (h *Host) DoAction(hook string) {
	h.mu.Lock()
	h.fired[hook]++
	h.running[hook]++
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		h.running[hook]--
		h.mu.Unlock()
	}()

	h.logger.Debug("action fired", "hook", hook)

	done := make(map[int]bool)
	current := minPriority
	for {
		next, ok := h.nextAction(hook, current, done)
		if !ok {
			return
		}
		done[next.order] = true
		current = next.priority
		next.fn()
	}
}

const minPriority = -1 << 31

// nextAction picks the first callback not yet run whose priority is at least
// current.
func (h *Host) nextAction(hook string, current int, done map[int]bool) (hookEntry, bool) {
	h.mu.Lock()
	entries := make([]hookEntry, len(h.actions[hook]))
	copy(entries, h.actions[hook])
	h.mu.Unlock()

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].priority != entries[j].priority {
			return entries[i].priority < entries[j].priority
		}
		return entries[i].order < entries[j].order
	})
	for _, e := range entries {
		if done[e.order] || e.priority < current {
			continue
		}
		return e, true
	}
	return hookEntry{}, false
}

// DidAction returns how many times hook has fired.
func (h *Host) DidAction(hook string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fired[hook]
}

// AddFilter subscribes fn to the named filter.
func (h *Host) AddFilter(name string, fn func(any) any, priority ...int) {
	p := DefaultPriority
	if len(priority) > 0 {
		p = priority[0]
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.order++
	h.filters[name] = append(h.filters[name], filterEntry{priority: p, order: h.order, fn: fn})
}

// ApplyFilters passes value through every filter subscribed to name.
func (h *Host) ApplyFilters(name string, value any) any {
	h.mu.Lock()
	entries := make([]filterEntry, len(h.filters[name]))
	copy(entries, h.filters[name])
	h.mu.Unlock()

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].priority != entries[j].priority {
			return entries[i].priority < entries[j].priority
		}
		return entries[i].order < entries[j].order
	})
	for _, e := range entries {
		value = e.fn(value)
	}
	return value
}
