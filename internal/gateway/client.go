package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"hotel-booking/pkg/utils"
)

// ResultCodeSuccess is the provider's code for a captured payment.
// ResultCodeUserDenied is returned when the guest declines the confirmation
// prompt in the wallet app; it maps to the same failed payment state but is
// logged separately.
const (
	ResultCodeSuccess    = 0
	ResultCodeUserDenied = 1006
)

// CreatePaymentRequest is the outbound JSON body for payment initiation.
type CreatePaymentRequest struct {
	PartnerCode  string `json:"partnerCode"`
	PartnerName  string `json:"partnerName"`
	StoreID      string `json:"storeId"`
	RequestID    string `json:"requestId"`
	Amount       string `json:"amount"`
	OrderID      string `json:"orderId"`
	OrderInfo    string `json:"orderInfo"`
	RedirectURL  string `json:"redirectUrl"`
	IPNURL       string `json:"ipnUrl"`
	Lang         string `json:"lang"`
	RequestType  string `json:"requestType"`
	AutoCapture  bool   `json:"autoCapture"`
	ExtraData    string `json:"extraData"`
	OrderGroupID string `json:"orderGroupId"`
	Signature    string `json:"signature"`
}

// CreatePaymentResponse is the provider's reply to an initiation call.
type CreatePaymentResponse struct {
	PartnerCode string `json:"partnerCode"`
	OrderID     string `json:"orderId"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	ResponseTime int64 `json:"responseTime"`
	Message     string `json:"message"`
	ResultCode  int    `json:"resultCode"`
	PayURL      string `json:"payUrl"`
}

// PaymentOrder is what the booking side asks the gateway to collect.
type PaymentOrder struct {
	OrderID   string
	RequestID string
	Amount    float64
	OrderInfo string
	ExtraData string
}

// Client talks to the external wallet provider.
type Client struct {
	config utils.GatewayConfig
	http   *http.Client
	log    *zap.Logger
}

func NewClient(config utils.GatewayConfig, log *zap.Logger) *Client {
	return &Client{
		config: config,
		http:   &http.Client{Timeout: 30 * time.Second},
		log:    log.With(zap.String("component", "gateway")),
	}
}

// CreatePayment builds the signed initiation request, posts it to the
// provider and returns the payUrl the guest is redirected to.
func (c *Client) CreatePayment(ctx context.Context, order PaymentOrder) (string, error) {
	amount := strconv.FormatInt(int64(math.Round(order.Amount)), 10)

	// Provider-mandated key order for the initiation signature.
	signature := Sign(c.config.SecretKey, []Field{
		{"accessKey", c.config.AccessKey},
		{"amount", amount},
		{"extraData", order.ExtraData},
		{"ipnUrl", c.config.IPNURL},
		{"orderId", order.OrderID},
		{"orderInfo", order.OrderInfo},
		{"partnerCode", c.config.PartnerCode},
		{"redirectUrl", c.config.RedirectURL},
		{"requestId", order.RequestID},
		{"requestType", "captureWallet"},
	})

	reqBody := CreatePaymentRequest{
		PartnerCode:  c.config.PartnerCode,
		PartnerName:  c.config.PartnerName,
		StoreID:      c.config.StoreID,
		RequestID:    order.RequestID,
		Amount:       amount,
		OrderID:      order.OrderID,
		OrderInfo:    order.OrderInfo,
		RedirectURL:  c.config.RedirectURL,
		IPNURL:       c.config.IPNURL,
		Lang:         "vi",
		RequestType:  "captureWallet",
		AutoCapture:  true,
		ExtraData:    order.ExtraData,
		OrderGroupID: "",
		Signature:    signature,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal payment request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build payment request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.Error("Payment initiation call failed",
			zap.Error(err),
			zap.String("order_id", order.OrderID),
		)
		return "", utils.NewGatewayError(err, "payment provider unreachable")
	}
	defer resp.Body.Close()

	var result CreatePaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", utils.NewGatewayError(err, "decode payment provider response")
	}

	if result.ResultCode != ResultCodeSuccess {
		c.log.Warn("Payment initiation rejected",
			zap.Int("result_code", result.ResultCode),
			zap.String("message", result.Message),
			zap.String("order_id", order.OrderID),
		)
		return "", utils.NewGatewayError(nil, "payment initiation rejected: code %d (%s)", result.ResultCode, result.Message)
	}

	c.log.Info("Payment initiated",
		zap.String("order_id", order.OrderID),
		zap.String("request_id", order.RequestID),
		zap.String("amount", amount),
	)

	return result.PayURL, nil
}

// VerifyCallback rebuilds the canonical string from the callback payload in
// the provider-mandated field order and checks the supplied signature. Any
// mismatch means the callback is forged or tampered and must not touch state.
func (c *Client) VerifyCallback(cb *Callback) bool {
	fields := []Field{
		{"accessKey", c.config.AccessKey},
		{"amount", strconv.FormatInt(cb.Amount, 10)},
		{"extraData", cb.ExtraData},
		{"message", cb.Message},
		{"orderId", cb.OrderID},
		{"orderInfo", cb.OrderInfo},
		{"orderType", cb.OrderType},
		{"partnerCode", cb.PartnerCode},
		{"payType", cb.PayType},
		{"requestId", cb.RequestID},
		{"responseTime", strconv.FormatInt(cb.ResponseTime, 10)},
		{"resultCode", strconv.Itoa(cb.ResultCode)},
		{"transId", strconv.FormatInt(cb.TransID, 10)},
	}
	return VerifySignature(c.config.SecretKey, fields, cb.Signature)
}

// Callback is the inbound IPN body from the provider.
type Callback struct {
	PartnerCode  string `json:"partnerCode"`
	OrderID      string `json:"orderId"`
	RequestID    string `json:"requestId"`
	Amount       int64  `json:"amount"`
	OrderInfo    string `json:"orderInfo"`
	OrderType    string `json:"orderType"`
	TransID      int64  `json:"transId"`
	ResultCode   int    `json:"resultCode"`
	Message      string `json:"message"`
	PayType      string `json:"payType"`
	ResponseTime int64  `json:"responseTime"`
	ExtraData    string `json:"extraData"`
	Signature    string `json:"signature"`
}
