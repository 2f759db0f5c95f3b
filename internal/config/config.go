package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"bombhazard/pkg/ai"
	"bombhazard/pkg/core"
)

var ErrInvalidConfig = errors.New("invalid config")

// Server 对战服务器的全部配置
type Server struct {
	Network  Network  `yaml:"network"`
	Room     Room     `yaml:"room"`
	Security Security `yaml:"security"`
	Flood    Flood    `yaml:"flood"`
	Timeouts Timeouts `yaml:"timeouts"`
}

// Network 监听配置
type Network struct {
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`
	Protocol    string `yaml:"protocol"` // tcp | kcp | ws
}

// Addr 监听地址 host:port
func (n Network) Addr() string {
	return net.JoinHostPort(n.BindAddress, strconv.Itoa(n.Port))
}

// Room 房间与对局参数
type Room struct {
	MaxPlayers    int           `yaml:"max_players"`
	TPS           int           `yaml:"tps"`
	Bots          int           `yaml:"bots"`
	BotDifficulty string        `yaml:"bot_difficulty"`
	RoundDuration time.Duration `yaml:"round_duration"`
	MapRows       int           `yaml:"map_rows"`
	MapColumns    int           `yaml:"map_columns"`
	FillPercent   int           `yaml:"fill_percent"`
	MoveCooldown  time.Duration `yaml:"move_cooldown"`
	ResetDelay    time.Duration `yaml:"reset_delay"` // 结算后多久重开
	Seed          int64         `yaml:"seed"`        // 0 表示每局随机
}

// TickDuration 每帧的固定时长
func (r Room) TickDuration() time.Duration {
	return time.Second / time.Duration(r.TPS)
}

// Security 会话令牌
type Security struct {
	JWTSecret  string        `yaml:"jwt_secret"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// Flood 输入限流，超出的输入直接丢弃
type Flood struct {
	InputRate  float64 `yaml:"input_rate"` // 每秒
	InputBurst int     `yaml:"input_burst"`
}

// Timeouts 连接相关的超时与缓冲
type Timeouts struct {
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	HeartbeatTimeout  time.Duration `yaml:"heartbeat_timeout"`
	SendQueueSize     int           `yaml:"send_queue_size"`
}

// Default 返回默认配置
func Default() Server {
	return Server{
		Network: Network{
			BindAddress: "0.0.0.0",
			Port:        8080,
			Protocol:    "tcp",
		},
		Room: Room{
			MaxPlayers:    4,
			TPS:           core.FPS,
			Bots:          0,
			BotDifficulty: "medium",
			RoundDuration: core.DefaultRoundDuration,
			MapRows:       core.DefaultMapRows,
			MapColumns:    core.DefaultMapColumns,
			FillPercent:   core.DefaultFillPercent,
			MoveCooldown:  core.DefaultMoveCooldown,
			ResetDelay:    3 * time.Second,
		},
		Security: Security{
			SessionTTL: 5 * time.Minute,
		},
		Flood: Flood{
			InputRate:  120,
			InputBurst: 30,
		},
		Timeouts: Timeouts{
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      time.Second,
			HeartbeatInterval: 5 * time.Second,
			HeartbeatTimeout:  15 * time.Second,
			SendQueueSize:     256,
		},
	}
}

// Load 从 YAML 文件加载配置，文件不存在时返回默认配置
func Load(path string) (Server, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate 检查配置是否可用
func (c Server) Validate() error {
	switch c.Network.Protocol {
	case "tcp", "kcp", "ws":
	default:
		return fmt.Errorf("%w: protocol %q", ErrInvalidConfig, c.Network.Protocol)
	}
	if c.Network.Port < 0 || c.Network.Port > 65535 {
		return fmt.Errorf("%w: port %d", ErrInvalidConfig, c.Network.Port)
	}

	r := c.Room
	switch {
	case r.MapRows < core.MinMapSize || r.MapColumns < core.MinMapSize:
		return fmt.Errorf("%w: map %dx%d smaller than %dx%d", ErrInvalidConfig, r.MapRows, r.MapColumns, core.MinMapSize, core.MinMapSize)
	case r.MapRows%2 == 0 || r.MapColumns%2 == 0:
		return fmt.Errorf("%w: map dimensions must be odd, got %dx%d", ErrInvalidConfig, r.MapRows, r.MapColumns)
	case r.TPS <= 0:
		return fmt.Errorf("%w: tps %d", ErrInvalidConfig, r.TPS)
	case r.MaxPlayers < 1 || r.MaxPlayers > core.MaxPlayers:
		return fmt.Errorf("%w: max_players %d", ErrInvalidConfig, r.MaxPlayers)
	case r.Bots < 0 || r.Bots >= r.MaxPlayers:
		return fmt.Errorf("%w: bots %d must leave a seat for players", ErrInvalidConfig, r.Bots)
	case r.FillPercent < 0 || r.FillPercent > 100:
		return fmt.Errorf("%w: fill_percent %d", ErrInvalidConfig, r.FillPercent)
	case r.RoundDuration <= 0:
		return fmt.Errorf("%w: round_duration %v", ErrInvalidConfig, r.RoundDuration)
	case r.MoveCooldown < 0:
		return fmt.Errorf("%w: move_cooldown %v", ErrInvalidConfig, r.MoveCooldown)
	}
	if _, err := ai.ParseDifficulty(r.BotDifficulty); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if c.Security.SessionTTL <= 0 {
		return fmt.Errorf("%w: session_ttl %v", ErrInvalidConfig, c.Security.SessionTTL)
	}
	if c.Flood.InputRate <= 0 || c.Flood.InputBurst <= 0 {
		return fmt.Errorf("%w: input_rate %v input_burst %d", ErrInvalidConfig, c.Flood.InputRate, c.Flood.InputBurst)
	}

	t := c.Timeouts
	if t.ReadTimeout <= 0 || t.WriteTimeout <= 0 || t.SendQueueSize <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidConfig)
	}
	if t.HeartbeatInterval <= 0 || t.HeartbeatTimeout < t.HeartbeatInterval {
		return fmt.Errorf("%w: heartbeat %v / %v", ErrInvalidConfig, t.HeartbeatInterval, t.HeartbeatTimeout)
	}
	// 客户端只回 Pong 时也不能触发读超时
	if t.ReadTimeout <= t.HeartbeatInterval {
		return fmt.Errorf("%w: read_timeout %v must exceed heartbeat_interval %v", ErrInvalidConfig, t.ReadTimeout, t.HeartbeatInterval)
	}
	return nil
}
