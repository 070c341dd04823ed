// 生成开发用的示例课程：一个两级、每级两个子主题的模块，以及能力测试
//
// 用法: go run scripts/seed.go [-title 模块名称]

package main

import (
	"certify_backend/internal/config"
	"certify_backend/pkg/cache"
	"certify_backend/pkg/database"
	"certify_backend/pkg/logger"
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"
)

func main() {
	title := flag.String("title", "Certified Practitioner", "模块名称")
	aptitude := flag.Bool("aptitude", true, "同时创建能力测试")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(&cfg.Database, true)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	subTopic := func(i, j int) database.SubTopicSeed {
		return database.SubTopicSeed{
			Title:     fmt.Sprintf("Topic %d.%d", i, j),
			Published: 3,
			Test:      &database.TestSeed{Title: fmt.Sprintf("Topic %d.%d quiz", i, j), Questions: 10, PassingScore: 70, TimeLimit: 15},
		}
	}
	seed := database.ModuleSeed{Title: *title, Test: &database.TestSeed{Title: *title + " exam", Questions: 40, PassingScore: 75, TimeLimit: 90}}
	for i := 1; i <= 2; i++ {
		seed.Levels = append(seed.Levels, database.LevelSeed{
			Title:     fmt.Sprintf("Level %d", i),
			SubTopics: []database.SubTopicSeed{subTopic(i, 1), subTopic(i, 2)},
			Test:      &database.TestSeed{Title: fmt.Sprintf("Level %d test", i), Questions: 20, PassingScore: 70, TimeLimit: 30},
		})
	}

	m, err := database.SeedModule(db, seed)
	if err != nil {
		log.Fatalf("创建模块失败: %v", err)
	}
	logger.Log.Info("module seeded", zap.Uint("moduleID", m.Module.ID), zap.Int("subTopics", len(m.SubTopicIDs())))

	if *aptitude {
		t, err := database.SeedAptitudeTest(db, database.TestSeed{Title: "Aptitude", Questions: 30, PassingScore: 70, TimeLimit: 45})
		if err != nil {
			log.Fatalf("创建能力测试失败: %v", err)
		}
		logger.Log.Info("aptitude test seeded", zap.Uint("testID", t.ID))
	}

	// 结构缓存可能还保存着旧的模块结构
	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("redis unavailable, skip cache invalidation", zap.Error(err))
		return
	}
	if rdb != nil {
		defer rdb.Close()
		sc := cache.NewStructureCache(rdb, time.Duration(cfg.Redis.StructureTTL)*time.Second)
		if err := sc.InvalidateModule(context.Background(), m.Module.ID); err != nil {
			logger.Log.Warn("cache invalidation failed", zap.Error(err))
		}
	}
}
