package config

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Email      EmailConfig      `mapstructure:"email"`
	Encryption EncryptionConfig `mapstructure:"encryption"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    string `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
	BaseURL string `mapstructure:"base_url"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Charset  string `mapstructure:"charset"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret      string        `mapstructure:"secret"`
	ExpireHours int           `mapstructure:"expire_hours"`
	ExpireTime  time.Duration `mapstructure:"-"`
}

// EmailConfig 邮件配置
type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// EncryptionConfig 密码保险箱加密配置
type EncryptionConfig struct {
	Key string `mapstructure:"key"`
}

var (
	// GlobalConfig 全局配置实例
	GlobalConfig *Config
)

// LoadConfig 加载配置
// 优先级: 环境变量 > 外部配置文件 > 嵌入的默认配置
// configPath: 可选的外部配置文件路径
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// 1. 首先加载嵌入的默认配置
	if err := v.ReadConfig(bytes.NewReader(DefaultConfigYAML)); err != nil {
		return nil, fmt.Errorf("读取内置配置失败: %w", err)
	}

	// 2. 尝试加载外部配置文件（可选，用于覆盖默认配置）
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.MergeInConfig(); err != nil {
			log.Printf("警告: 无法读取指定配置文件 %s: %v", configPath, err)
		} else {
			log.Printf("已合并外部配置文件: %s", configPath)
		}
	} else {
		externalViper := viper.New()
		externalViper.SetConfigName("config")
		externalViper.SetConfigType("yaml")
		externalViper.AddConfigPath(".")
		externalViper.AddConfigPath("./config")
		externalViper.AddConfigPath("/etc/lifebook")
		externalViper.AddConfigPath("$HOME/.lifebook")

		if err := externalViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(externalViper.AllSettings()); err != nil {
				log.Printf("警告: 合并外部配置失败: %v", err)
			} else {
				log.Printf("已合并外部配置文件: %s", externalViper.ConfigFileUsed())
			}
		}
	}

	// 3. 支持环境变量覆盖（LIFEBOOK_SERVER_PORT 等）
	v.SetEnvPrefix("LIFEBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// 设置 JWT 过期时间
	if cfg.JWT.ExpireHours <= 0 {
		cfg.JWT.ExpireHours = 24
	}
	cfg.JWT.ExpireTime = time.Duration(cfg.JWT.ExpireHours) * time.Hour

	if cfg.Encryption.Key == "" {
		return nil, fmt.Errorf("encryption.key 未配置，密码保险箱无法工作")
	}

	GlobalConfig = &cfg
	return &cfg, nil
}

// MustLoadConfig 加载配置，失败则 panic
func MustLoadConfig(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		panic(fmt.Sprintf("加载配置失败: %v", err))
	}
	return cfg
}

// GetConfig 获取全局配置
func GetConfig() *Config {
	if GlobalConfig == nil {
		panic("配置未初始化，请先调用 LoadConfig")
	}
	return GlobalConfig
}

// SafeErrorMessage 生产环境下不向客户端暴露内部错误详情，避免信息泄露
// debug 模式（或配置未初始化的开发场景）返回原始错误，方便排查
func SafeErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if GlobalConfig != nil && GlobalConfig.Server.Mode == "release" {
		return fallback
	}
	return err.Error()
}

// PrintConfig 打印当前配置（隐藏敏感信息）
func PrintConfig() {
	if GlobalConfig == nil {
		return
	}
	log.Printf("当前配置:")
	log.Printf("  服务器: %s (模式: %s)", GlobalConfig.Server.Port, GlobalConfig.Server.Mode)
	log.Printf("  数据库: %s@%s:%s/%s",
		GlobalConfig.Database.Username,
		GlobalConfig.Database.Host,
		GlobalConfig.Database.Port,
		GlobalConfig.Database.DBName)
	log.Printf("  邮件服务: %v", GlobalConfig.Email.Enabled)
}
