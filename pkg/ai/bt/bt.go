// Package bt 最小的行为树实现
package bt

import "math/rand"

type Status int

const (
	StatusSuccess Status = iota
	StatusFailure
	StatusRunning
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusFailure:
		return "Failure"
	case StatusRunning:
		return "Running"
	}
	return "Unknown"
}

type Node interface {
	Tick(bb Blackboard) Status
}

type Blackboard interface{}

// Selector 选择节点：遇到 Success 或 Running 停止，全 Failure 才 Failure
type Selector struct {
	Children []Node
}

func (s *Selector) Tick(bb Blackboard) Status {
	for _, child := range s.Children {
		switch child.Tick(bb) {
		case StatusSuccess:
			return StatusSuccess
		case StatusRunning:
			return StatusRunning
		case StatusFailure:
			continue
		}
	}
	return StatusFailure
}

// Sequence 顺序节点：遇到 Failure 停止，全 Success 才 Success
type Sequence struct {
	Children []Node
}

func (s *Sequence) Tick(bb Blackboard) Status {
	for _, child := range s.Children {
		switch child.Tick(bb) {
		case StatusFailure:
			return StatusFailure
		case StatusRunning:
			return StatusRunning
		case StatusSuccess:
			continue
		}
	}
	return StatusSuccess
}

type ConditionFunc func(bb Blackboard) bool

type Condition struct {
	Check ConditionFunc
}

func (c *Condition) Tick(bb Blackboard) Status {
	if c.Check == nil {
		return StatusFailure
	}
	if c.Check(bb) {
		return StatusSuccess
	}
	return StatusFailure
}

type ActionFunc func(bb Blackboard) Status

type Action struct {
	Do ActionFunc
}

func (a *Action) Tick(bb Blackboard) Status {
	if a.Do == nil {
		return StatusFailure
	}
	return a.Do(bb)
}

// Chance 以 Probability 的概率执行子节点，否则返回 Failure
type Chance struct {
	Probability float64
	RNG         *rand.Rand
	Child       Node
}

func (c *Chance) Tick(bb Blackboard) Status {
	if c.Child == nil || c.RNG.Float64() >= c.Probability {
		return StatusFailure
	}
	return c.Child.Tick(bb)
}

// Shuffled 按 Order 指定的顺序尝试 Children，遇到非 Failure 停止
// Mistake 非空时，每一步都可以把本该尝试的子节点换成另一个
type Shuffled struct {
	Children []Node
	Order    []int
	Mistake  func(i int) int
}

func (s *Shuffled) Tick(bb Blackboard) Status {
	for _, i := range s.Order {
		if s.Mistake != nil {
			i = s.Mistake(i)
		}
		if i < 0 || i >= len(s.Children) {
			continue
		}
		if status := s.Children[i].Tick(bb); status != StatusFailure {
			return status
		}
	}
	return StatusFailure
}
