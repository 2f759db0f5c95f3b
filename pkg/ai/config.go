package ai

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty 机器人难度
type Difficulty int

const (
	DifficultyEasy Difficulty = iota
	DifficultyMedium
	DifficultyHard
)

func (d Difficulty) String() string {
	switch d {
	case DifficultyEasy:
		return "easy"
	case DifficultyMedium:
		return "medium"
	case DifficultyHard:
		return "hard"
	}
	return "unknown"
}

// ParseDifficulty 解析配置文件中的难度名称
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return DifficultyEasy, nil
	case "medium", "normal", "":
		return DifficultyMedium, nil
	case "hard":
		return DifficultyHard, nil
	}
	return 0, fmt.Errorf("unknown bot difficulty %q", s)
}

// AIConfig 定义 AI 的行为参数，用于控制 AI 的智力水平
type AIConfig struct {
	Difficulty Difficulty

	// MistakePercent 失误概率（百分比）：整帧不行动，或把某一步决策换成随机决策
	MistakePercent int

	// MoveCooldown 两次移动之间的间隔，值越小 AI 反应越快
	MoveCooldown time.Duration

	// DangerMargin 评估危险时假设每枚炸弹的范围多出的格子数
	DangerMargin int
}

// 预设配置：简单难度
var AIConfigEasy = AIConfig{
	Difficulty:     DifficultyEasy,
	MistakePercent: 30,
	MoveCooldown:   300 * time.Millisecond,
	DangerMargin:   2,
}

// 预设配置：普通难度
var AIConfigMedium = AIConfig{
	Difficulty:     DifficultyMedium,
	MistakePercent: 15,
	MoveCooldown:   250 * time.Millisecond,
	DangerMargin:   2,
}

// 预设配置：困难难度
var AIConfigHard = AIConfig{
	Difficulty:     DifficultyHard,
	MistakePercent: 0, // 无失误
	MoveCooldown:   200 * time.Millisecond,
	DangerMargin:   2,
}

// ConfigFor 返回难度对应的预设配置
func ConfigFor(d Difficulty) AIConfig {
	switch d {
	case DifficultyEasy:
		return AIConfigEasy
	case DifficultyHard:
		return AIConfigHard
	}
	return AIConfigMedium
}
