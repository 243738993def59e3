package db

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"bicarb-server/internal/config"
	"bicarb-server/internal/consts"
	"bicarb-server/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	var err error
	cfg := config.Get()
	var dialector gorm.Dialector

	switch cfg.Database.Type {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.Name,
		)
		if cfg.Database.SSL {
			dsn += "&tls=true"
		}
		dialector = mysql.Open(dsn)
	case "postgres":
		sslMode := "disable"
		if cfg.Database.SSL {
			sslMode = "require"
		}
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			cfg.Database.Host,
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.Name,
			cfg.Database.Port,
			sslMode,
		)
		dialector = postgres.Open(dsn)
	case "sqlite":
		fallthrough
	default:
		// 自动创建数据库目录
		dbDir := filepath.Dir(cfg.Database.Filename)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			log.Fatalf("❌ 无法创建数据库目录 '%s': %v", dbDir, err)
		}
		dialector = sqlite.Open(cfg.Database.Filename)
	}

	DB, err = gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Fatal("❌ 数据库连接失败: ", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatal("❌ 数据库迁移失败: ", err)
	}

	log.Println("✅ 数据库初始化成功")
}

// Migrate 建表并保证预定义用户组存在。
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&model.Group{},
		&model.User{},
		&model.Category{},
		&model.Topic{},
		&model.Post{},
		&model.Notification{},
		&model.Report{},
		&model.SearchDocument{},
	); err != nil {
		return err
	}
	return seedGroups(gdb)
}

// seedGroups 写入 1/2/3 号预定义用户组（已存在则跳过）。
func seedGroups(gdb *gorm.DB) error {
	predefined := []model.Group{
		{ID: model.GroupAdmin, Name: "admin", Color: "#e53935", Permissions: strings.Join(consts.AdminPermissions(), ",")},
		{ID: model.GroupMod, Name: "mod", Color: "#fb8c00", Permissions: strings.Join(consts.ModPermissions(), ",")},
		{ID: model.GroupUser, Name: "user", Permissions: strings.Join(consts.UserPermissions(), ",")},
	}
	for _, g := range predefined {
		var count int64
		if err := gdb.Model(&model.Group{}).Where("id = ?", g.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			g := g
			if err := gdb.Create(&g).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
