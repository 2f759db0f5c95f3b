package core

import "time"

// 地图配置
const (
	DefaultMapRows     = 11
	DefaultMapColumns  = 15
	DefaultFillPercent = 60 // 可通行格子中放置砖块的比例
	MinMapSize         = 7
)

// 游戏帧率
const (
	FPS            = 60
	FixedDeltaTime = time.Second / FPS
)

// 玩家配置
const (
	DefaultBombsAvailable = 1
	DefaultBombRange      = 2
	DefaultMoveCooldown   = 150 * time.Millisecond
	MaxPlayers            = 8
)

// 炸弹配置
const (
	BombFuse        = 2 * time.Second
	ShortenedFuse   = 50 * time.Millisecond // 被火焰点燃后的引线
	FireDuration    = 500 * time.Millisecond
	CrumbleDuration = 500 * time.Millisecond
	PushedBombStep  = 10 * time.Millisecond // 被推动的炸弹每移动一格的间隔
)

// 对局配置
const (
	DefaultRoundDuration = 2 * time.Minute
	ItemSpawnChance      = 0.1
)
