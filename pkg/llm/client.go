// Package llm 提供了与 Ollama 文本/视觉生成接口交互的客户端。
package llm

import (
	"bytes"
	"clauselens-go/internal/config"
	"clauselens-go/pkg/log"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client 定义了生成类调用的接口。
type Client interface {
	// Generate 以单条 prompt 调用文本生成接口，返回完整生成内容。
	Generate(ctx context.Context, prompt string) (string, error)
	// GenerateWithImage 附带一张 base64 编码的图片调用视觉模型。
	GenerateWithImage(ctx context.Context, model, prompt, imageBase64 string) (string, error)
	// ModelName 返回配置的文本生成模型名。
	ModelName() string
}

type ollamaClient struct {
	cfg          config.LLMConfig
	textClient   *http.Client
	visionClient *http.Client
}

// NewClient 根据配置创建一个新的 LLM 客户端。
// 文本生成与视觉调用使用各自的超时（硬上限，不重试）。
func NewClient(cfg config.LLMConfig, visionTimeoutSeconds int) Client {
	return &ollamaClient{
		cfg:          cfg,
		textClient:   &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		visionClient: &http.Client{Timeout: time.Duration(visionTimeoutSeconds) * time.Second},
	}
}

// generateRequest 对应 Ollama /api/generate 的请求体。
type generateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images,omitempty"`
	Stream bool     `json:"stream"`
}

// generateResponse 对应 Ollama /api/generate 的响应体。
type generateResponse struct {
	Response string `json:"response"`
}

// Generate 调用文本生成接口并返回完整响应。
func (c *ollamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, c.textClient, generateRequest{
		Model:  c.cfg.Model,
		Prompt: prompt,
		Stream: false,
	})
}

// GenerateWithImage 调用视觉模型，images 字段携带单张 base64 图片。
func (c *ollamaClient) GenerateWithImage(ctx context.Context, model, prompt, imageBase64 string) (string, error) {
	return c.generate(ctx, c.visionClient, generateRequest{
		Model:  model,
		Prompt: prompt,
		Images: []string{imageBase64},
		Stream: false,
	})
}

func (c *ollamaClient) ModelName() string {
	return c.cfg.Model
}

func (c *ollamaClient) generate(ctx context.Context, client *http.Client, reqBody generateRequest) (string, error) {
	log.Infof("[LLMClient] 开始调用生成接口, model: %s, prompt_len: %d, images: %d",
		reqBody.Model, len(reqBody.Prompt), len(reqBody.Images))

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/generate", bytes.NewReader(reqBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		log.Errorf("[LLMClient] 调用生成接口失败, model: %s, error: %v", reqBody.Model, err)
		return "", fmt.Errorf("failed to call generate api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		log.Errorf("[LLMClient] 生成接口返回非 200 状态码: %s, body: %s", resp.Status, string(bodyBytes))
		return "", fmt.Errorf("generate api returned non-200 status: %s", resp.Status)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		log.Errorf("[LLMClient] 解析生成接口响应失败, error: %v", err)
		return "", fmt.Errorf("failed to decode generate response: %w", err)
	}

	log.Infof("[LLMClient] 生成成功, model: %s, response_len: %d", reqBody.Model, len(genResp.Response))
	return genResp.Response, nil
}
