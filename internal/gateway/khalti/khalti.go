// Package khalti talks to the Khalti payment gateway.
package khalti

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"storefront/internal/apperr"
	"storefront/internal/config"
)

const verifyPath = "/payment/verify/"

// CustomerInfo identifies the payer on the gateway's checkout form.
type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CheckoutPayload is handed to the browser to open Khalti's checkout widget.
type CheckoutPayload struct {
	PublicKey       string       `json:"public_key"`
	Amount          int64        `json:"amount"`
	ProductIdentity string       `json:"product_identity"`
	ProductName     string       `json:"product_name"`
	CustomerInfo    CustomerInfo `json:"customer_info"`
}

// Verification is the gateway's answer to a successful verify call.
type Verification struct {
	Idx    string `json:"idx"`
	Amount int64  `json:"amount"`
	State  struct {
		Name string `json:"name"`
	} `json:"state"`
	// Raw is the response body as received.
	Raw []byte `json:"-"`
}

// Client calls the Khalti verification API.
type Client struct {
	baseURL   string
	secretKey string
	publicKey string
	timeout   time.Duration
}

// NewClient creates a new Client.
func NewClient(cfg config.KhaltiConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		secretKey: cfg.SecretKey,
		publicKey: cfg.PublicKey,
		timeout:   timeout,
	}
}

// ToPaisa converts an amount in rupees to the gateway's minor unit.
func ToPaisa(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).IntPart()
}

// Checkout builds the widget payload for an order.
func (c *Client) Checkout(orderID, orderNumber string, amount decimal.Decimal, customer CustomerInfo) CheckoutPayload {
	return CheckoutPayload{
		PublicKey:       c.publicKey,
		Amount:          ToPaisa(amount),
		ProductIdentity: orderID,
		ProductName:     "Order #" + orderNumber,
		CustomerInfo:    customer,
	}
}

// Verify confirms a payment token for amount paisa. It makes a single
// attempt bounded by the client timeout or the context deadline, whichever
// is sooner. A non-200 answer is an upstream error carrying the body verbatim.
func (c *Client) Verify(ctx context.Context, token string, amount int64) (*Verification, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Upstream("payment gateway unreachable", err.Error(), err)
	}
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	agent := fiber.Post(c.baseURL + verifyPath)
	agent.Set(fiber.HeaderAuthorization, "Key "+c.secretKey)
	agent.Timeout(timeout)

	args := fiber.AcquireArgs()
	args.Set("token", token)
	args.Set("amount", strconv.FormatInt(amount, 10))
	agent.Form(args)
	fiber.ReleaseArgs(args)

	if err := agent.Parse(); err != nil {
		return nil, fmt.Errorf("failed to build verify request: %w", err)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, apperr.Upstream("payment gateway unreachable", errs[0].Error(), errs[0])
	}
	if code != fiber.StatusOK {
		return nil, apperr.Upstream("payment verification failed", string(body), nil)
	}

	var v Verification
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, apperr.Upstream("unreadable verification response", string(body), err)
	}
	v.Raw = body
	return &v, nil
}
