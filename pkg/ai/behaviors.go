package ai

import (
	"bombhazard/pkg/ai/bt"
	"bombhazard/pkg/grid"
)

// 决策列表中各行为的编号，priorityOrder 给出尝试顺序
const (
	cmdEscape = iota
	cmdPickUpItem
	cmdDestroyBlocks
	cmdKillPlayers
	cmdBombNearPlayers
	cmdHunt
	cmdRandomMove
	cmdFlee
	cmdCount
)

var priorityOrder = []int{cmdEscape, cmdKillPlayers, cmdRandomMove, cmdPickUpItem, cmdBombNearPlayers, cmdDestroyBlocks, cmdHunt, cmdFlee}

// randomMoveChance 没有更好的事可做时随机走一步的概率
const randomMoveChance = 0.125

func condInDanger(bb bt.Blackboard) bool {
	board := bb.(*Blackboard)
	return !board.Snapshot.Safe(board.Pos)
}

func actMoveToSafety(bb bt.Blackboard) bt.Status {
	board := bb.(*Blackboard)
	dir, ok := board.pick(board.Snapshot.EscapeDirections(board.Pos, board.Mover))
	if !ok {
		return bt.StatusFailure
	}
	return board.move(dir, IntentionMoveToSafety)
}

func actPickUpItem(bb bt.Blackboard) bt.Status {
	board := bb.(*Blackboard)
	dir, ok := board.pick(detectItems(board))
	if !ok {
		return bt.StatusFailure
	}
	return board.move(dir, IntentionPickUpItem)
}

func actDestroyBlocks(bb bt.Blackboard) bt.Status {
	board := bb.(*Blackboard)
	action, ok := board.Snapshot.DestroyBlocks(board.Pos, board.Mover)
	if !ok {
		return bt.StatusFailure
	}
	board.Action = action
	board.Intention = IntentionDestroyBlocks
	return bt.StatusSuccess
}

// canBomb 还有炸弹，且放下后能逃生；每帧只评估一次
func canBomb(board *Blackboard, worthIt func() bool) bool {
	if board.bombTried {
		return false
	}
	board.bombTried = true
	return board.Mover.BombsAvailable > 0 && worthIt() &&
		board.Snapshot.CanPlaceAndEscape(board.Pos, board.Mover.BombRange, board.Mover)
}

func actKillPlayers(bb bt.Blackboard) bt.Status {
	board := bb.(*Blackboard)
	if !canBomb(board, func() bool {
		return CanKill(board.Pos, board.Mover.BombRange, board.Enemies, board.Stone)
	}) {
		return bt.StatusFailure
	}
	return board.dropBomb(IntentionKillPlayers)
}

func actBombNearPlayers(bb bt.Blackboard) bt.Status {
	board := bb.(*Blackboard)
	if !canBomb(board, func() bool {
		return PlayersInRange(board.Pos, board.Enemies, board.Mover.BombRange)
	}) {
		return bt.StatusFailure
	}
	return board.dropBomb(IntentionPlaceBombNearPlayers)
}

func condNavUnset(bb bt.Blackboard) bool {
	return bb.(*Blackboard).nav == navUnset
}

func actRandomMove(bb bt.Blackboard) bt.Status {
	board := bb.(*Blackboard)
	dir := grid.Directions[board.RNG.Intn(len(grid.Directions))]
	if !board.walkable(board.Pos.Offset(dir, 1)) {
		return bt.StatusFailure
	}
	return board.move(dir, IntentionRandomMove)
}

// chooseNav 记录兜底导航方式，本身总是失败以便继续尝试后面的行为
func chooseNav(mode navMode) bt.ActionFunc {
	return func(bb bt.Blackboard) bt.Status {
		board := bb.(*Blackboard)
		if board.nav == navUnset {
			board.nav = mode
		}
		return bt.StatusFailure
	}
}

// actNavigate 以上行为都没有结果时追击或逃离
func actNavigate(bb bt.Blackboard) bt.Status {
	board := bb.(*Blackboard)
	if board.nav == navHunt {
		if dir, ok := board.pick(hunt(board)); ok {
			return board.move(dir, IntentionHuntPlayers)
		}
		return bt.StatusFailure
	}
	if dir, ok := board.pick(flee(board)); ok {
		return board.move(dir, IntentionFlee)
	}
	return bt.StatusFailure
}
