// Package notify holds the single transient message shown to the user.
package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/msomdec/blog-desk/internal/domain"
	"github.com/msomdec/blog-desk/internal/observe"
)

// DefaultTTL is how long a notification stays visible without interaction.
const DefaultTTL = 6 * time.Second

// Channel shows at most one notification at a time. A newer notification
// replaces the current one and restarts the auto-dismiss timer.
// Subscribers see changes in the order they were made and must not call back
// into the channel.
type Channel struct {
	ttl time.Duration

	// pub is held across each change and its publication.
	pub sync.Mutex

	mu      sync.Mutex
	current *domain.Notification
	timer   *time.Timer
	gen     uint64

	subs observe.Subject[*domain.Notification]
}

// New creates a channel whose notifications auto-dismiss after ttl.
// A non-positive ttl uses DefaultTTL.
func New(ttl time.Duration) *Channel {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Channel{ttl: ttl}
}

// Notify replaces the visible notification.
func (c *Channel) Notify(text string, severity domain.Severity) {
	n := &domain.Notification{Text: text, Severity: severity}

	c.pub.Lock()
	defer c.pub.Unlock()

	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.current = n
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.ttl, func() { c.expire(gen) })
	c.mu.Unlock()

	c.subs.Publish(copyNotification(n))
}

// Success shows a success message.
func (c *Channel) Success(text string) {
	c.Notify(text, domain.SeveritySuccess)
}

// Info shows an informational message.
func (c *Channel) Info(text string) {
	c.Notify(text, domain.SeverityInfo)
}

// Warning shows a warning.
func (c *Channel) Warning(text string) {
	c.Notify(text, domain.SeverityWarning)
}

// Error shows err prefixed with what was being attempted, e.g.
// "Failed to delete post: forbidden".
func (c *Channel) Error(prefix string, err error) {
	text := prefix
	if err != nil {
		text = fmt.Sprintf("%s: %s", prefix, err.Error())
	}
	c.Notify(text, domain.SeverityError)
}

// Dismiss hides the current notification immediately.
func (c *Channel) Dismiss() {
	c.pub.Lock()
	defer c.pub.Unlock()

	c.mu.Lock()
	if c.current == nil {
		c.mu.Unlock()
		return
	}
	c.gen++
	c.clearLocked()
	c.mu.Unlock()

	c.subs.Publish(nil)
}

// Current returns the visible notification, if any.
func (c *Channel) Current() (domain.Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return domain.Notification{}, false
	}
	return *c.current, true
}

// Subscribe registers fn to receive every change; nil means nothing is visible.
func (c *Channel) Subscribe(fn func(*domain.Notification)) func() {
	return c.subs.Subscribe(fn)
}

// Close stops the pending auto-dismiss timer.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// expire dismisses the notification identified by gen if it is still current.
func (c *Channel) expire(gen uint64) {
	c.pub.Lock()
	defer c.pub.Unlock()

	c.mu.Lock()
	if gen != c.gen || c.current == nil {
		c.mu.Unlock()
		return
	}
	c.clearLocked()
	c.mu.Unlock()

	c.subs.Publish(nil)
}

func (c *Channel) clearLocked() {
	c.current = nil
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func copyNotification(n *domain.Notification) *domain.Notification {
	c := *n
	return &c
}
