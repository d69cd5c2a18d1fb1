package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// PaypalProvider drives the PayPal REST payments API: create a payment,
// send the payer to the approval URL, execute on return.
type PaypalProvider struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	client       *http.Client
}

func NewPaypalProvider(baseURL, clientID, clientSecret string, timeout time.Duration) *PaypalProvider {
	if baseURL == "" {
		baseURL = "https://api.sandbox.paypal.com"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &PaypalProvider{
		BaseURL:      baseURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		client:       &http.Client{Timeout: timeout},
	}
}

type paypalTokenResp struct {
	AccessToken string `json:"access_token"`
}

// getToken fetches a client-credentials token. PayPal tokens are
// cacheable but a fresh token per call keeps the provider stateless.
func (p *PaypalProvider) getToken(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(p.ClientID, p.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token %d %s", ErrUnavailable, resp.StatusCode, string(respBody))
	}
	var out paypalTokenResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrUnavailable)
	}
	return out.AccessToken, nil
}

type paypalAmount struct {
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

type paypalCreateReq struct {
	Intent string `json:"intent"`
	Payer  struct {
		PaymentMethod string `json:"payment_method"`
	} `json:"payer"`
	Transactions []struct {
		Amount      paypalAmount `json:"amount"`
		Description string       `json:"description,omitempty"`
	} `json:"transactions"`
	RedirectURLs struct {
		ReturnURL string `json:"return_url"`
		CancelURL string `json:"cancel_url"`
	} `json:"redirect_urls"`
}

type paypalPaymentResp struct {
	ID    string `json:"id"`
	State string `json:"state"`
	Links []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	} `json:"links"`
	Transactions []struct {
		Amount paypalAmount `json:"amount"`
	} `json:"transactions"`
}

func centsToUnits(cents int64) string {
	return strconv.FormatFloat(float64(cents)/100, 'f', 2, 64)
}

func unitsToCents(units string) int64 {
	f, err := strconv.ParseFloat(units, 64)
	if err != nil {
		return 0
	}
	return int64(f*100 + 0.5)
}

func (p *PaypalProvider) OpenAuthorization(ctx context.Context, reqIn AuthorizationRequest) (*Authorization, error) {
	token, err := p.getToken(ctx)
	if err != nil {
		return nil, err
	}
	var payload paypalCreateReq
	payload.Intent = "sale"
	payload.Payer.PaymentMethod = "paypal"
	payload.Transactions = make([]struct {
		Amount      paypalAmount `json:"amount"`
		Description string       `json:"description,omitempty"`
	}, 1)
	payload.Transactions[0].Amount = paypalAmount{Total: centsToUnits(reqIn.AmountCents), Currency: reqIn.Currency}
	payload.Transactions[0].Description = reqIn.Description
	payload.RedirectURLs.ReturnURL = reqIn.ReturnURL
	payload.RedirectURLs.CancelURL = reqIn.CancelURL

	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/v1/payments/payment", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("[GATEWAY] create payment status=%d body=%s", resp.StatusCode, string(respBody))
		return nil, fmt.Errorf("%w: create %d", ErrUnavailable, resp.StatusCode)
	}
	var out paypalPaymentResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	approval := ""
	for _, l := range out.Links {
		if l.Rel == "approval_url" {
			approval = l.Href
		}
	}
	if out.ID == "" || approval == "" {
		return nil, fmt.Errorf("%w: missing payment id or approval url", ErrUnavailable)
	}
	return &Authorization{ProviderRef: out.ID, RedirectURL: approval}, nil
}

func (p *PaypalProvider) ConfirmAuthorization(ctx context.Context, providerRef, payerRef string) (*Confirmation, error) {
	token, err := p.getToken(ctx)
	if err != nil {
		return nil, err
	}
	body, _ := json.Marshal(map[string]string{"payer_id": payerRef})
	execURL := fmt.Sprintf("%s/v1/payments/payment/%s/execute", p.BaseURL, providerRef)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, execURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: execute %d", ErrUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("[GATEWAY] execute rejected ref=%s status=%d body=%s", providerRef, resp.StatusCode, string(respBody))
		return nil, fmt.Errorf("%w: execute %d", ErrRejected, resp.StatusCode)
	}
	var out paypalPaymentResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if out.State != "approved" {
		return &Confirmation{Approved: false}, nil
	}
	var confirmed int64
	if len(out.Transactions) > 0 {
		confirmed = unitsToCents(out.Transactions[0].Amount.Total)
	}
	return &Confirmation{Approved: true, ConfirmedCents: confirmed}, nil
}
