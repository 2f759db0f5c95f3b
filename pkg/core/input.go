package core

import "bombhazard/pkg/grid"

// Input 表示一帧内玩家的输入
type Input struct {
	Up    bool
	Down  bool
	Left  bool
	Right bool
	Bomb  bool
}

// Direction 解析移动方向，同时按下多个方向键时按 上、下、左、右 的顺序取第一个
func (in Input) Direction() (grid.Direction, bool) {
	switch {
	case in.Up:
		return grid.DirUp, true
	case in.Down:
		return grid.DirDown, true
	case in.Left:
		return grid.DirLeft, true
	case in.Right:
		return grid.DirRight, true
	}
	return 0, false
}

// InputFor 把方向转换为输入
func InputFor(dir grid.Direction) Input {
	switch dir {
	case grid.DirUp:
		return Input{Up: true}
	case grid.DirDown:
		return Input{Down: true}
	case grid.DirLeft:
		return Input{Left: true}
	case grid.DirRight:
		return Input{Right: true}
	}
	return Input{}
}

// ApplyInput 将输入应用到指定玩家，先移动再放炸弹
// 返回本次是否放下了炸弹
func ApplyInput(game *Game, playerID int32, input Input) bool {
	if game == nil || game.Over {
		return false
	}

	player := game.Player(playerID)
	if player == nil || player.Dead {
		return false
	}

	if dir, ok := input.Direction(); ok {
		player.Move(dir, game)
	}

	if input.Bomb {
		return player.PlaceBomb(game) != nil
	}
	return false
}
