package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ShashankBhake/st-shield-backend/models"
)

const DefaultRazorpayBaseURL = "https://api.razorpay.com/v1"

// RazorpayProvider implements PaymentProvider against the Razorpay REST API.
type RazorpayProvider struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
}

// NewRazorpayProvider returns ErrNotConfigured when either credential is empty.
func NewRazorpayProvider(keyID, keySecret, baseURL string) (*RazorpayProvider, error) {
	if keyID == "" || keySecret == "" {
		return nil, ErrNotConfigured
	}
	if baseURL == "" {
		baseURL = DefaultRazorpayBaseURL
	}
	return &RazorpayProvider{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

func (r *RazorpayProvider) KeySecret() string { return r.keySecret }

// ---- Razorpay API request/response structs ----

type razorpayOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt,omitempty"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type razorpayOrder struct {
	ID       string `json:"id"`
	Entity   string `json:"entity"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type razorpayPayment struct {
	ID       string `json:"id"`
	Entity   string `json:"entity"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	OrderID  string `json:"order_id"`
	Method   string `json:"method"`
	Email    string `json:"email"`
	Contact  string `json:"contact"`
}

type razorpayErrorBody struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// ---- PaymentProvider implementation ----

func (r *RazorpayProvider) CreateOrder(ctx context.Context, req models.ProviderOrderRequest) (models.ProviderOrder, error) {
	body := razorpayOrderRequest{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	}

	var resp razorpayOrder
	if err := r.doRequest(ctx, http.MethodPost, "/orders", body, &resp); err != nil {
		return models.ProviderOrder{}, fmt.Errorf("razorpay CreateOrder: %w", err)
	}
	if resp.ID == "" {
		return models.ProviderOrder{}, fmt.Errorf("razorpay CreateOrder: response missing order id")
	}

	return models.ProviderOrder{
		ID:       resp.ID,
		Amount:   resp.Amount,
		Currency: resp.Currency,
		Receipt:  resp.Receipt,
		Status:   resp.Status,
	}, nil
}

func (r *RazorpayProvider) FetchPayment(ctx context.Context, paymentID string) (models.ProviderPayment, error) {
	var resp razorpayPayment
	if err := r.doRequest(ctx, http.MethodGet, "/payments/"+url.PathEscape(paymentID), nil, &resp); err != nil {
		return models.ProviderPayment{}, fmt.Errorf("razorpay FetchPayment: %w", err)
	}

	return models.ProviderPayment{
		ID:       resp.ID,
		OrderID:  resp.OrderID,
		Amount:   resp.Amount,
		Currency: resp.Currency,
		Status:   resp.Status,
		Method:   resp.Method,
		Email:    resp.Email,
		Contact:  resp.Contact,
	}, nil
}

// ---- HTTP helper ----

func (r *RazorpayProvider) doRequest(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(r.keyID, r.keySecret)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Code: http.StatusText(resp.StatusCode)}
		var eb razorpayErrorBody
		if json.Unmarshal(respBytes, &eb) == nil && eb.Error.Code != "" {
			apiErr.Code = eb.Error.Code
			apiErr.Description = eb.Error.Description
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(respBytes, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
