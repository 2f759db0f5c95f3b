package server

import "bombhazard/pkg/core"

type EventKind int

const (
	EventUnknown EventKind = iota
	EventJoin
	EventInput
	EventPing
	EventPong
	EventReconnect
)

func (k EventKind) String() string {
	switch k {
	case EventJoin:
		return "join"
	case EventInput:
		return "input"
	case EventPing:
		return "ping"
	case EventPong:
		return "pong"
	case EventReconnect:
		return "reconnect"
	}
	return "unknown"
}

type JoinEvent struct {
	PlayerName string
}

type InputEvent struct {
	PlayerID int32
	Seq      int32
	Inputs   []core.Input
}

// Merge 合并一批输入：方向取最后一帧，炸弹键任意一帧按下即生效
func (e *InputEvent) Merge() core.Input {
	var merged core.Input
	for _, in := range e.Inputs {
		bomb := merged.Bomb || in.Bomb
		merged = in
		merged.Bomb = bomb
	}
	return merged
}

type PingEvent struct {
	ClientTime int64
}

type PongEvent struct {
	ClientTime  int64
	ServerTime  int64
	ServerFrame int32
}

type ReconnectEvent struct {
	SessionToken string
}

type ServerEvent struct {
	Kind      EventKind
	Join      *JoinEvent
	Input     *InputEvent
	Ping      *PingEvent
	Pong      *PongEvent
	Reconnect *ReconnectEvent
}
