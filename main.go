package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bicarb-server/internal/app"
	"bicarb-server/internal/config"
	"bicarb-server/internal/db"
	"bicarb-server/internal/router"
	"bicarb-server/internal/service"

	"github.com/gin-gonic/gin"
)

func main() {
	configDir := flag.String("config", "config", "配置目录")
	flag.Parse()

	config.InitConfig(*configDir)
	db.InitDB()

	gin.SetMode(config.Get().Server.Mode)

	a := app.New(db.DB)

	r := gin.Default()
	router.NewRouter(a).Init(r)

	srv := &http.Server{
		Addr:    ":" + config.Get().Server.Port,
		Handler: r,
	}

	go func() {
		log.Printf("🚀 服务启动成功，运行在 :%s\n", config.Get().Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ 服务启动失败: %s\n", err)
		}
	}()

	// 等待中断信号关闭服务器（设置 5 秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("❌ 服务强制关闭:", err)
	}
	if err := service.CloseRedisClient(); err != nil {
		log.Printf("⚠️ %v", err)
	}
	log.Println("✅ 服务已退出")
}
