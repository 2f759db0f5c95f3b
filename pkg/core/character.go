package core

// CharacterType 角色外观，对战中同时作为队伍标识
type CharacterType int32

const (
	CharacterWhite CharacterType = iota
	CharacterBlack
	CharacterRed
	CharacterBlue
	CharacterGreen
	CharacterYellow
	CharacterPurple
	CharacterOrange
)

// String 返回角色类型的字符串表示
func (c CharacterType) String() string {
	switch c {
	case CharacterWhite:
		return "经典白"
	case CharacterBlack:
		return "暗夜黑"
	case CharacterRed:
		return "烈焰红"
	case CharacterBlue:
		return "冰霜蓝"
	case CharacterGreen:
		return "森林绿"
	case CharacterYellow:
		return "闪电黄"
	case CharacterPurple:
		return "幻影紫"
	case CharacterOrange:
		return "落日橙"
	}
	return "未知"
}

// CharacterForSeat 按座位号分配角色
func CharacterForSeat(seat int) CharacterType {
	return CharacterType(seat % MaxPlayers)
}
