package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"syscall"

	"github.com/kharido-next/internal/app"
	"github.com/kharido-next/internal/config"
	"github.com/kharido-next/internal/logger"
	"github.com/kharido-next/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiDim    = "\033[2m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
)

var weakSecretMarkers = []string{
	"change-me",
	"change-in-production",
	"your-secret-key",
}

func main() {
	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.Parse()

	printStartupBanner()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	checkJWTSecret(cfg, stdLog)

	if err := setupDatabase(cfg); err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

func setupDatabase(cfg *config.Config) error {
	pool := models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, pool); err != nil {
		return err
	}
	return models.AutoMigrate()
}

// checkJWTSecret 生产环境拒绝弱密钥，开发环境仅告警
func checkJWTSecret(cfg *config.Config, stdLog *log.Logger) {
	if !isWeakSecret(cfg.UserJWT.SecretKey) {
		return
	}
	if cfg.Server.Mode == "release" {
		stdLog.Fatalf("JWT secret 过弱或仍为默认值，请在生产环境中配置强随机密钥")
		return
	}
	stdLog.Printf("警告: JWT secret 过弱或仍为默认值，建议在生产环境中更换")
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	for _, marker := range weakSecretMarkers {
		if strings.Contains(normalized, marker) {
			return true
		}
	}
	return false
}

func printStartupBanner() {
	fmt.Println(ansiCyan + "██╗  ██╗██╗  ██╗ █████╗ ██████╗ ██╗██████╗  ██████╗ " + ansiReset)
	fmt.Println(ansiCyan + "██║ ██╔╝██║  ██║██╔══██╗██╔══██╗██║██╔══██╗██╔═══██╗" + ansiReset)
	fmt.Println(ansiCyan + "█████╔╝ ███████║███████║██████╔╝██║██║  ██║██║   ██║" + ansiReset)
	fmt.Println(ansiCyan + "██╔═██╗ ██╔══██║██╔══██║██╔══██╗██║██║  ██║██║   ██║" + ansiReset)
	fmt.Println(ansiCyan + "██║  ██╗██║  ██║██║  ██║██║  ██║██║██████╔╝╚██████╔╝" + ansiReset)
	fmt.Println(ansiCyan + "╚═╝  ╚═╝╚═╝  ╚═╝╚═╝  ╚═╝╚═╝  ╚═╝╚═╝╚═════╝  ╚═════╝ " + ansiReset)
	fmt.Println(ansiGreen + ansiBold + "Kharido-Next Checkout API" + ansiReset)
	fmt.Println(ansiYellow + "• Repo: https://github.com/kharido-next" + ansiReset)
	fmt.Println(ansiDim + "--------------------------------------------------------------" + ansiReset)
}
