package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"bombhazard/internal/config"
	"bombhazard/internal/server"
	"bombhazard/pkg/logger"
)

func main() {
	// 命令行参数，非零值覆盖配置文件
	configPath := flag.String("config", "config/server.yaml", "配置文件路径")
	port := flag.Int("port", 0, "监听端口")
	proto := flag.String("proto", "", "传输协议: tcp, kcp 或 ws")
	bots := flag.Int("bots", -1, "机器人数量")
	difficulty := flag.String("difficulty", "", "机器人难度: easy, medium, hard")
	seed := flag.Int64("seed", 0, "地图种子，0 表示随机")
	flag.Parse()

	logger.Init()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("加载配置失败")
	}
	if *port > 0 {
		cfg.Network.Port = *port
	}
	if *proto != "" {
		cfg.Network.Protocol = *proto
	}
	if *bots >= 0 {
		cfg.Room.Bots = *bots
	}
	if *difficulty != "" {
		cfg.Room.BotDifficulty = *difficulty
	}
	if *seed != 0 {
		cfg.Room.Seed = *seed
	}

	gameServer, err := server.NewGameServer(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("配置无效")
	}

	logger.Log.WithFields(logrus.Fields{
		"addr":        cfg.Network.Addr(),
		"protocol":    cfg.Network.Protocol,
		"max_players": cfg.Room.MaxPlayers,
		"tps":         cfg.Room.TPS,
		"bots":        cfg.Room.Bots,
		"difficulty":  cfg.Room.BotDifficulty,
		"map":         []int{cfg.Room.MapRows, cfg.Room.MapColumns},
	}).Info("Bomberman 对战服务器启动")

	// 等待中断信号
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := gameServer.Run(ctx); err != nil {
		logger.Log.WithError(err).Fatal("服务器异常退出")
	}

	logger.Log.Info("服务器已关闭，再见！")
}
