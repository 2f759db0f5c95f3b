package ai

import (
	"math/rand"

	"bombhazard/pkg/ai/bt"
	"bombhazard/pkg/core"
	"bombhazard/pkg/grid"
	"bombhazard/pkg/hazard"
)

// Intention 本帧决策的意图，用于日志
type Intention int

const (
	IntentionNone Intention = iota
	IntentionMoveToSafety
	IntentionKillPlayers
	IntentionRandomMove
	IntentionPickUpItem
	IntentionPlaceBombNearPlayers
	IntentionDestroyBlocks
	IntentionHuntPlayers
	IntentionFlee
)

func (i Intention) String() string {
	switch i {
	case IntentionMoveToSafety:
		return "MoveToSafety"
	case IntentionKillPlayers:
		return "KillPlayers"
	case IntentionRandomMove:
		return "RandomMove"
	case IntentionPickUpItem:
		return "PickUpItem"
	case IntentionPlaceBombNearPlayers:
		return "PlaceBombNearPlayers"
	case IntentionDestroyBlocks:
		return "DestroyBlocks"
	case IntentionHuntPlayers:
		return "HuntPlayers"
	case IntentionFlee:
		return "Flee"
	}
	return "None"
}

// navMode 没有其他行动时的导航方式
type navMode int

const (
	navUnset navMode = iota
	navHunt
	navFlee
)

type Blackboard struct {
	Game   *core.Game
	Player *core.Player
	RNG    *rand.Rand
	Config *AIConfig

	Snapshot hazard.Snapshot
	Mover    hazard.Mover
	Pos      grid.Position

	Enemies []grid.Position
	Items   grid.PositionSet
	Stone   grid.PositionSet

	Action    hazard.Action
	Intention Intention

	bombTried bool // 本帧已经评估过放炸弹
	nav       navMode
}

func (bb *Blackboard) ResetFrame(game *core.Game, player *core.Player) {
	bb.Game = game
	bb.Player = player
	bb.Snapshot = game.Snapshot(bb.Config.DangerMargin)
	bb.Mover = player.Mover()
	bb.Pos = player.Pos

	bb.Enemies = bb.Enemies[:0]
	for _, other := range game.AlivePlayers() {
		if other.ID != player.ID && other.Team() != player.Team() {
			bb.Enemies = append(bb.Enemies, other.Pos)
		}
	}
	bb.Items = grid.NewPositionSet()
	for _, item := range game.Items {
		bb.Items.Add(item.Pos)
	}
	bb.Stone = game.Map.StoneWalls()

	bb.Action = hazard.Action{}
	bb.Intention = IntentionNone
	bb.bombTried = false
	bb.nav = navUnset
}

func (bb *Blackboard) AsBT() bt.Blackboard {
	return bb
}

// walkable 可以通行且安全
func (bb *Blackboard) walkable(p grid.Position) bool {
	return bb.Snapshot.Passable(p, bb.Mover) && bb.Snapshot.Safe(p)
}

// pick 从方向集合中随机选一个
func (bb *Blackboard) pick(dirs grid.DirectionSet) (grid.Direction, bool) {
	if dirs.Empty() {
		return 0, false
	}
	s := dirs.Slice()
	return s[bb.RNG.Intn(len(s))], true
}

func (bb *Blackboard) move(dir grid.Direction, intention Intention) bt.Status {
	bb.Action = hazard.Action{Kind: hazard.ActionMove, Dir: dir}
	bb.Intention = intention
	return bt.StatusSuccess
}

func (bb *Blackboard) dropBomb(intention Intention) bt.Status {
	bb.Action = hazard.Action{Kind: hazard.ActionDropBomb}
	bb.Intention = intention
	return bt.StatusSuccess
}
