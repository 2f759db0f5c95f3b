package ai

import (
	"math/rand"

	"bombhazard/pkg/ai/bt"
	"bombhazard/pkg/core"
	"bombhazard/pkg/hazard"
)

type AIController struct {
	PlayerID int32
	rnd      *rand.Rand
	config   *AIConfig

	blackboard Blackboard
	tree       bt.Node
}

// NewAIController 创建 AI 控制器，使用默认配置（普通难度）
func NewAIController(playerID int32, seed int64) *AIController {
	return NewAIControllerWithConfig(playerID, AIConfigMedium, seed)
}

// NewAIControllerWithConfig 创建 AI 控制器，使用指定配置
func NewAIControllerWithConfig(playerID int32, config AIConfig, seed int64) *AIController {
	rnd := rand.New(rand.NewSource(seed + int64(playerID)))

	controller := &AIController{
		PlayerID: playerID,
		rnd:      rnd,
		config:   &config,
	}

	controller.blackboard = Blackboard{
		RNG:    rnd,
		Config: controller.config,
	}

	commands := make([]bt.Node, cmdCount)
	commands[cmdEscape] = &bt.Sequence{Children: []bt.Node{
		&bt.Condition{Check: condInDanger},
		&bt.Action{Do: actMoveToSafety},
	}}
	commands[cmdPickUpItem] = &bt.Action{Do: actPickUpItem}
	commands[cmdDestroyBlocks] = &bt.Action{Do: actDestroyBlocks}
	commands[cmdKillPlayers] = &bt.Action{Do: actKillPlayers}
	commands[cmdBombNearPlayers] = &bt.Action{Do: actBombNearPlayers}
	commands[cmdHunt] = &bt.Action{Do: chooseNav(navHunt)}
	commands[cmdRandomMove] = &bt.Sequence{Children: []bt.Node{
		&bt.Condition{Check: condNavUnset},
		&bt.Chance{Probability: randomMoveChance, RNG: rnd, Child: &bt.Action{Do: actRandomMove}},
	}}
	commands[cmdFlee] = &bt.Action{Do: chooseNav(navFlee)}

	controller.tree = &bt.Selector{Children: []bt.Node{
		&bt.Shuffled{Children: commands, Order: priorityOrder, Mistake: controller.mistake},
		&bt.Action{Do: actNavigate},
	}}

	return controller
}

// mistake 按失误率把本该执行的行为换成随机行为
func (c *AIController) mistake(i int) int {
	if c.missed() {
		return c.rnd.Intn(cmdCount)
	}
	return i
}

func (c *AIController) missed() bool {
	return c.config.MistakePercent > 0 && c.rnd.Intn(100) < c.config.MistakePercent
}

// Decide 为本帧生成输入
// 移动冷却中时不产生移动输入
func (c *AIController) Decide(game *core.Game) core.Input {
	player := game.Player(c.PlayerID)
	if player == nil || player.Dead || game.Over {
		return core.Input{}
	}

	// 失误：整帧什么都不做
	if c.missed() {
		c.blackboard.Intention = IntentionNone
		return core.Input{}
	}

	c.blackboard.ResetFrame(game, player)
	_ = c.tree.Tick(c.blackboard.AsBT())

	action := c.blackboard.Action
	switch action.Kind {
	case hazard.ActionMove:
		if !player.MoveCooldown.Ready() {
			return core.Input{}
		}
		return core.InputFor(action.Dir)
	case hazard.ActionDropBomb:
		return core.Input{Bomb: true}
	}
	return core.Input{}
}

// LastIntention 最近一次决策的意图
func (c *AIController) LastIntention() Intention {
	return c.blackboard.Intention
}
