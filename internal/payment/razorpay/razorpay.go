package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	defaultAPIBase  = "https://api.razorpay.com/v1"
	defaultCurrency = "INR"
	defaultTimeout  = 10 * time.Second
)

var (
	ErrConfigInvalid    = errors.New("razorpay config invalid")
	ErrAmountInvalid    = errors.New("razorpay amount invalid")
	ErrRequestFailed    = errors.New("razorpay request failed")
	ErrResponseInvalid  = errors.New("razorpay response invalid")
	ErrSignatureInvalid = errors.New("razorpay signature invalid")
)

// Config Razorpay 网关配置
type Config struct {
	KeyID     string `json:"key_id"`     // API Key ID
	KeySecret string `json:"key_secret"` // API Key Secret
	APIBase   string `json:"api_base"`   // 接口地址
	Currency  string `json:"currency"`   // 结算币种
	TimeoutMS int    `json:"timeout_ms"` // 请求超时（毫秒）
}

// CreateInput 网关下单输入
type CreateInput struct {
	Receipt string          // 商户侧订单号
	Amount  decimal.Decimal // 金额（卢比）
	Notes   map[string]string
}

// CreateResult 网关下单结果
type CreateResult struct {
	GatewayOrderID string
	AmountPaise    int64
	Currency       string
	Raw            map[string]interface{}
}

// CallbackInput 支付回调凭据
type CallbackInput struct {
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
}

// ParseConfig 解析配置
func ParseConfig(raw map[string]interface{}) (*Config, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: empty config", ErrConfigInvalid)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal config failed", ErrConfigInvalid)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: unmarshal config failed", ErrConfigInvalid)
	}
	cfg.normalize()
	return &cfg, nil
}

// ValidateConfig 校验配置完整性
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.KeyID) == "" {
		return fmt.Errorf("%w: key_id is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.KeySecret) == "" {
		return fmt.Errorf("%w: key_secret is required", ErrConfigInvalid)
	}
	return nil
}

func (c *Config) normalize() {
	c.KeyID = strings.TrimSpace(c.KeyID)
	c.KeySecret = strings.TrimSpace(c.KeySecret)
	c.APIBase = strings.TrimRight(strings.TrimSpace(c.APIBase), "/")
	if c.APIBase == "" {
		c.APIBase = defaultAPIBase
	}
	c.Currency = strings.ToUpper(strings.TrimSpace(c.Currency))
	if c.Currency == "" {
		c.Currency = defaultCurrency
	}
}

func (c *Config) timeout() time.Duration {
	if c.TimeoutMS > 0 {
		return time.Duration(c.TimeoutMS) * time.Millisecond
	}
	return defaultTimeout
}

// ToPaise 将卢比金额转换为整数 paise
func ToPaise(amount decimal.Decimal) (int64, error) {
	paise := amount.Mul(decimal.NewFromInt(100)).Round(0)
	if !paise.IsPositive() {
		return 0, ErrAmountInvalid
	}
	return paise.IntPart(), nil
}

// CreateOrder 创建 Razorpay 订单
func CreateOrder(ctx context.Context, cfg *Config, input CreateInput) (*CreateResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Receipt) == "" {
		return nil, fmt.Errorf("%w: receipt is required", ErrConfigInvalid)
	}
	paise, err := ToPaise(input.Amount)
	if err != nil {
		return nil, err
	}
	payload := map[string]interface{}{
		"amount":   paise,
		"currency": cfg.Currency,
		"receipt":  input.Receipt,
	}
	if len(input.Notes) > 0 {
		payload["notes"] = input.Notes
	}
	respBytes, err := postJSON(ctx, cfg, cfg.APIBase+"/orders", payload)
	if err != nil {
		return nil, err
	}

	var raw map[string]interface{}
	_ = json.Unmarshal(respBytes, &raw)
	var resp struct {
		ID       string `json:"id"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Status   string `json:"status"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, ErrResponseInvalid
	}
	if strings.TrimSpace(resp.ID) == "" {
		return nil, fmt.Errorf("%w: missing order id", ErrResponseInvalid)
	}
	return &CreateResult{
		GatewayOrderID: strings.TrimSpace(resp.ID),
		AmountPaise:    resp.Amount,
		Currency:       strings.TrimSpace(resp.Currency),
		Raw:            raw,
	}, nil
}

// VerifySignature 验证支付回调签名
// 签名为 HMAC-SHA256(order_id + "|" + payment_id, key_secret) 的十六进制串
func VerifySignature(cfg *Config, input CallbackInput) error {
	if cfg == nil || strings.TrimSpace(cfg.KeySecret) == "" {
		return ErrConfigInvalid
	}
	orderID := strings.TrimSpace(input.GatewayOrderID)
	paymentID := strings.TrimSpace(input.GatewayPaymentID)
	signature := strings.ToLower(strings.TrimSpace(input.Signature))
	if orderID == "" || paymentID == "" || signature == "" {
		return ErrSignatureInvalid
	}
	expected := SignPayload(orderID+"|"+paymentID, cfg.KeySecret)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		return ErrSignatureInvalid
	}
	return nil
}

// SignPayload 计算 HMAC-SHA256 签名
func SignPayload(payload, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// BuildCheckoutOptions 生成前端收银台参数
func BuildCheckoutOptions(cfg *Config, result *CreateResult, prefill map[string]string) map[string]interface{} {
	if cfg == nil || result == nil {
		return nil
	}
	options := map[string]interface{}{
		"key":      cfg.KeyID,
		"amount":   result.AmountPaise,
		"currency": result.Currency,
		"order_id": result.GatewayOrderID,
	}
	if len(prefill) > 0 {
		options["prefill"] = prefill
	}
	return options
}

func postJSON(ctx context.Context, cfg *Config, endpoint string, payload map[string]interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, ErrRequestFailed
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, ErrRequestFailed
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(cfg.KeyID, cfg.KeySecret)
	client := &http.Client{Timeout: cfg.timeout()}
	resp, err := client.Do(req)
	if err != nil {
		return nil, ErrRequestFailed
	}
	defer resp.Body.Close()
	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ErrRequestFailed
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error struct {
				Code        string `json:"code"`
				Description string `json:"description"`
			} `json:"error"`
		}
		if json.Unmarshal(respBytes, &apiErr) == nil && apiErr.Error.Description != "" {
			return nil, fmt.Errorf("%w: %s", ErrRequestFailed, apiErr.Error.Description)
		}
		return nil, ErrRequestFailed
	}
	return respBytes, nil
}
