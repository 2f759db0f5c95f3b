package protocol

import (
	"bombhazard/pkg/core"
	"bombhazard/pkg/grid"
	"bombhazard/pkg/wallofdeath"
)

// ========== Direction 转换 ==========

// CoreDirectionToProto 将 grid.Direction 转换为线上方向
func CoreDirectionToProto(dir grid.Direction) Direction {
	switch dir {
	case grid.DirUp:
		return DirectionUp
	case grid.DirDown:
		return DirectionDown
	case grid.DirLeft:
		return DirectionLeft
	case grid.DirRight:
		return DirectionRight
	}
	return DirectionUnspecified
}

// ProtoDirectionToCore 将线上方向转换为 grid.Direction，未指定时返回 false
func ProtoDirectionToCore(dir Direction) (grid.Direction, bool) {
	switch dir {
	case DirectionUp:
		return grid.DirUp, true
	case DirectionDown:
		return grid.DirDown, true
	case DirectionLeft:
		return grid.DirLeft, true
	case DirectionRight:
		return grid.DirRight, true
	}
	return grid.DirDown, false
}

// ========== CharacterType 转换 ==========

// 线上角色从 1 开始，0 表示未指定

// CoreCharacterTypeToProto 将 core.CharacterType 转换为线上值
func CoreCharacterTypeToProto(char core.CharacterType) int32 {
	return int32(char) + 1
}

// ProtoCharacterTypeToCore 将线上值转换为 core.CharacterType
func ProtoCharacterTypeToCore(char int32) core.CharacterType {
	if char <= 0 {
		return core.CharacterForSeat(0)
	}
	return core.CharacterType(char - 1)
}

// ========== 实体转换 ==========

// CorePositionToProto 转换坐标
func CorePositionToProto(p grid.Position) Position {
	return Position{Y: int32(p.Y), X: int32(p.X)}
}

// ProtoPositionToCore 转换坐标
func ProtoPositionToCore(p Position) grid.Position {
	return grid.Position{Y: int(p.Y), X: int(p.X)}
}

// CorePositionsToProto 按坐标顺序转换集合
func CorePositionsToProto(set grid.PositionSet) []Position {
	sorted := set.Sorted()
	out := make([]Position, 0, len(sorted))
	for _, p := range sorted {
		out = append(out, CorePositionToProto(p))
	}
	return out
}

// CorePlayerToProto 转换单个玩家
func CorePlayerToProto(p *core.Player) PlayerState {
	return PlayerState{
		ID:             p.ID,
		Character:      CoreCharacterTypeToProto(p.Character),
		Pos:            CorePositionToProto(p.Pos),
		Direction:      CoreDirectionToProto(p.Direction),
		Dead:           p.Dead,
		BombsAvailable: int32(p.BombsAvailable),
		BombRange:      int32(p.BombRange),
		WallHack:       p.WallHack,
		BombPush:       p.BombPush,
		Bot:            p.Bot,
	}
}

// CorePlayersToProto 转换玩家列表
func CorePlayersToProto(players []*core.Player) []PlayerState {
	out := make([]PlayerState, 0, len(players))
	for _, p := range players {
		out = append(out, CorePlayerToProto(p))
	}
	return out
}

// CoreBombsToProto 转换炸弹列表
func CoreBombsToProto(bombs []*core.Bomb) []BombState {
	out := make([]BombState, 0, len(bombs))
	for _, b := range bombs {
		state := BombState{
			ID:     b.ID,
			Pos:    CorePositionToProto(b.Pos),
			Range:  int32(b.Range),
			FuseMs: int32(b.Fuse.Remaining().Milliseconds()),
			Moving: b.Moving,
		}
		if b.HasOwner {
			state.OwnerID = b.OwnerID
		}
		out = append(out, state)
	}
	return out
}

// CoreFiresToProto 转换火焰格子
func CoreFiresToProto(fires []*core.Fire) []Position {
	out := make([]Position, 0, len(fires))
	for _, f := range fires {
		out = append(out, CorePositionToProto(f.Pos))
	}
	return out
}

// CoreItemsToProto 转换道具列表，道具类型从 1 开始
func CoreItemsToProto(items []*core.Item) []ItemState {
	out := make([]ItemState, 0, len(items))
	for _, item := range items {
		out = append(out, ItemState{
			ID:   item.ID,
			Pos:  CorePositionToProto(item.Pos),
			Type: int32(item.Type) + 1,
		})
	}
	return out
}

// CoreWallOfDeathToProto 转换死亡之墙，nil 表示本局没有死亡之墙
func CoreWallOfDeathToProto(w *wallofdeath.WallOfDeath) *WallOfDeathState {
	if w == nil {
		return nil
	}
	pos, dir := w.Position()
	return &WallOfDeathState{
		State:       int32(w.State()),
		Pos:         CorePositionToProto(pos),
		Direction:   CoreDirectionToProto(dir),
		RemainingMs: w.Remaining().Milliseconds(),
	}
}

// CoreGameToProto 构造完整状态
func CoreGameToProto(g *core.Game) *GameState {
	bricks := g.Map.Bricks()
	crumbling := grid.NewPositionSet()
	for p := range bricks {
		if g.Map.IsCrumbling(p) {
			crumbling.Add(p)
		}
	}

	return &GameState{
		FrameID:     g.FrameID,
		Players:     CorePlayersToProto(g.Players),
		Bombs:       CoreBombsToProto(g.Bombs),
		Fires:       CoreFiresToProto(g.Fires),
		Bricks:      CorePositionsToProto(bricks),
		Walls:       CorePositionsToProto(g.Map.StoneWalls()),
		Items:       CoreItemsToProto(g.Items),
		WallOfDeath: CoreWallOfDeathToProto(g.WallOfDeath),
		RemainingMs: g.Remaining().Milliseconds(),
		Crumbling:   CorePositionsToProto(crumbling),
	}
}

// CoreEventToProto 转换事件，枚举值都从 1 开始
func CoreEventToProto(e core.Event) GameEvent {
	event := GameEvent{
		FrameID:  e.Frame,
		Kind:     int32(e.Kind) + 1,
		Pos:      CorePositionToProto(e.Pos),
		PlayerID: e.PlayerID,
	}
	switch e.Kind {
	case core.EventItemSpawned, core.EventItemPicked, core.EventItemBurned:
		event.Item = int32(e.Item) + 1
	case core.EventPlayerDied:
		event.Cause = int32(e.Cause) + 1
	}
	return event
}

// ProtoInputToCore 转换单帧输入
func ProtoInputToCore(in InputData) core.Input {
	return core.Input{
		Up:    in.Up,
		Down:  in.Down,
		Left:  in.Left,
		Right: in.Right,
		Bomb:  in.Bomb,
	}
}
