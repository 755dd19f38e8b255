package sim

import "time"

// Event is an occurrence scheduled on the virtual time line.
type Event struct {
	WakeTime time.Duration
	Handler  func(*Event) uint8
	Next     *Event

	queued bool
}

const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

// Clock is the virtual time base of the simulated part. Events are kept in a
// list sorted by WakeTime; Advance dispatches them in order.
type Clock struct {
	now  time.Duration
	list *Event
}

// Now returns the virtual time since power-on.
func (c *Clock) Now() time.Duration {
	return c.now
}

// Schedule inserts an event, moving it if it is already queued.
func (c *Clock) Schedule(e *Event) {
	if e.queued {
		c.Cancel(e)
	}
	c.insert(e)
}

// Cancel removes an event from the list. Cancelling an idle event is a no-op.
func (c *Clock) Cancel(e *Event) {
	if !e.queued {
		return
	}
	if c.list == e {
		c.list = e.Next
	} else {
		for cur := c.list; cur != nil; cur = cur.Next {
			if cur.Next == e {
				cur.Next = e.Next
				break
			}
		}
	}
	e.Next = nil
	e.queued = false
}

// insert places e in WakeTime order, after any events due at the same time.
func (c *Clock) insert(e *Event) {
	e.queued = true
	if c.list == nil || e.WakeTime < c.list.WakeTime {
		e.Next = c.list
		c.list = e
		return
	}

	current := c.list
	for current.Next != nil && current.Next.WakeTime <= e.WakeTime {
		current = current.Next
	}

	e.Next = current.Next
	current.Next = e
}

// Advance moves virtual time forward by d, dispatching every event that
// falls due on the way. A handler returning SF_RESCHEDULE is re-queued at its
// updated WakeTime unless it already re-queued itself.
func (c *Clock) Advance(d time.Duration) {
	if d < 0 {
		return
	}
	target := c.now + d

	for c.list != nil && c.list.WakeTime <= target {
		e := c.list
		c.list = e.Next
		e.Next = nil
		e.queued = false

		if e.WakeTime > c.now {
			c.now = e.WakeTime
		}

		if e.Handler(e) == SF_RESCHEDULE && !e.queued {
			c.insert(e)
		}
	}

	c.now = target
}

// clear drops every queued event; time keeps running.
func (c *Clock) clear() {
	for e := c.list; e != nil; {
		next := e.Next
		e.Next = nil
		e.queued = false
		e = next
	}
	c.list = nil
}
