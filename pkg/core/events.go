package core

import "bombhazard/pkg/grid"

// EventKind 模拟事件类型
type EventKind uint8

const (
	EventBombPlaced EventKind = iota
	EventExplosion
	EventBrickBurning
	EventBrickDestroyed
	EventItemSpawned
	EventItemPicked
	EventItemBurned
	EventPlayerDied
	EventWallOfDeathActivated
	EventWallPlaced
	EventRoundOver
)

func (k EventKind) String() string {
	switch k {
	case EventBombPlaced:
		return "BombPlaced"
	case EventExplosion:
		return "Explosion"
	case EventBrickBurning:
		return "BrickBurning"
	case EventBrickDestroyed:
		return "BrickDestroyed"
	case EventItemSpawned:
		return "ItemSpawned"
	case EventItemPicked:
		return "ItemPicked"
	case EventItemBurned:
		return "ItemBurned"
	case EventPlayerDied:
		return "PlayerDied"
	case EventWallOfDeathActivated:
		return "WallOfDeathActivated"
	case EventWallPlaced:
		return "WallPlaced"
	case EventRoundOver:
		return "RoundOver"
	}
	return "Unknown"
}

// DeathCause 死因
type DeathCause uint8

const (
	DeathByFire DeathCause = iota
	DeathByWallOfDeath
)

func (c DeathCause) String() string {
	if c == DeathByWallOfDeath {
		return "WallOfDeath"
	}
	return "Fire"
}

// Event 一帧内发生的事件，供服务器记录日志和广播
type Event struct {
	Kind     EventKind
	Frame    int32
	Pos      grid.Position
	PlayerID int32 // 相关玩家，RoundOver 时为胜者
	Item     ItemType
	Cause    DeathCause
}
