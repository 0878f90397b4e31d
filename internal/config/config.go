// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Render    RenderConfig    `mapstructure:"render"`
	OCR       OCRConfig       `mapstructure:"ocr"`
	Vision    VisionConfig    `mapstructure:"vision"`
	Tables    TablesConfig    `mapstructure:"tables"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Index     IndexConfig     `mapstructure:"index"`
	Redis     RedisConfig     `mapstructure:"redis"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// RenderConfig 存储文档转页面图片的配置。
type RenderConfig struct {
	DPI int `mapstructure:"dpi"`
}

// OCRConfig 存储 Tesseract OCR 引擎相关的配置。
type OCRConfig struct {
	Language string `mapstructure:"language"`
}

// VisionConfig 存储视觉大模型相关的配置。
type VisionConfig struct {
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// TablesConfig 存储表格抽取外部工具的配置。
// Command 为空时表格抽取方法整体关闭（按方法缺席处理）。
type TablesConfig struct {
	Command string `mapstructure:"command"`
}

// LLMConfig 存储文本生成大模型相关的配置。
type LLMConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// EmbeddingConfig 存储 Embedding 模型相关的配置。
type EmbeddingConfig struct {
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	Model      string `mapstructure:"model"`
	Dimensions int    `mapstructure:"dimensions"`
}

// IndexConfig 存储语义索引后端的配置。
// Backend 取值 "memory"（默认，进程内索引）或 "elasticsearch"。
type IndexConfig struct {
	Backend       string              `mapstructure:"backend"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

// ElasticsearchConfig 存储 Elasticsearch 相关的配置。
type ElasticsearchConfig struct {
	Addresses string `mapstructure:"addresses"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	IndexName string `mapstructure:"index_name"`
}

// RedisConfig 存储 Redis 的配置。Addr 为空时问答历史功能整体关闭。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Init 初始化配置加载，从指定的路径读取 YAML 文件并解析到 Conf 变量中。
func Init(configPath string) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("读取配置文件失败: %w", err))
	}

	if err := viper.Unmarshal(&Conf); err != nil {
		panic(fmt.Errorf("无法将配置解析到结构体中: %w", err))
	}

	applyDefaults()
}

// applyDefaults 为未配置的项填充默认值。
func applyDefaults() {
	if Conf.Render.DPI <= 0 {
		Conf.Render.DPI = 300
	}
	if Conf.OCR.Language == "" {
		Conf.OCR.Language = "eng"
	}
	if Conf.Vision.TimeoutSeconds <= 0 {
		Conf.Vision.TimeoutSeconds = 180
	}
	if Conf.LLM.TimeoutSeconds <= 0 {
		Conf.LLM.TimeoutSeconds = 120
	}
	if Conf.Index.Backend == "" {
		Conf.Index.Backend = "memory"
	}
}
