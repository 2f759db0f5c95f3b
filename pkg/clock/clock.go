// Package clock 帧驱动的计时器，由模拟循环按固定步长推进
package clock

import "time"

// Timer 一次性计时器
type Timer struct {
	duration time.Duration
	elapsed  time.Duration
}

// NewTimer 创建计时器
func NewTimer(d time.Duration) Timer {
	return Timer{duration: d}
}

// Tick 推进计时器
func (t *Timer) Tick(dt time.Duration) {
	if dt <= 0 {
		return
	}
	t.elapsed += dt
	if t.elapsed > t.duration {
		t.elapsed = t.duration
	}
}

func (t Timer) Finished() bool {
	return t.elapsed >= t.duration
}

// Remaining 剩余时间
func (t Timer) Remaining() time.Duration {
	return t.duration - t.elapsed
}

func (t Timer) Duration() time.Duration {
	return t.duration
}

// Cooldown 冷却：初始可用，触发后需等待 duration 才能再次使用
type Cooldown struct {
	duration time.Duration
	cooling  bool
	timer    Timer
}

// NewCooldown 创建冷却，初始状态为可用
func NewCooldown(d time.Duration) Cooldown {
	return Cooldown{duration: d}
}

func (c Cooldown) Ready() bool {
	return !c.cooling
}

// Trigger 进入冷却
func (c *Cooldown) Trigger() {
	c.cooling = true
	c.timer = NewTimer(c.duration)
}

// Tick 推进冷却
func (c *Cooldown) Tick(dt time.Duration) {
	if !c.cooling {
		return
	}
	c.timer.Tick(dt)
	if c.timer.Finished() {
		c.cooling = false
	}
}

func (c Cooldown) Duration() time.Duration {
	return c.duration
}

// Steps 周期计数：累计时间，每满一个周期走一步，不足一个周期的余量留到下一次
type Steps struct {
	period time.Duration
	acc    time.Duration
}

// NewSteps 创建周期计数，第一次 Tick 立即走一步
func NewSteps(period time.Duration) Steps {
	return Steps{period: period, acc: period}
}

// Tick 推进 dt，返回其间走过的步数
func (s *Steps) Tick(dt time.Duration) int {
	if s.period <= 0 || dt < 0 {
		return 0
	}
	s.acc += dt
	n := int(s.acc / s.period)
	s.acc -= time.Duration(n) * s.period
	return n
}
