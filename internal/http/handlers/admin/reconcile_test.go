package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bestie-next/internal/constants"
	"github.com/bestie-next/internal/payment/stripe"
	"github.com/bestie-next/internal/provider"
	"github.com/bestie-next/internal/service"

	"github.com/gin-gonic/gin"
)

// emptyGateway 无客户记录的提供方桩
type emptyGateway struct{}

func (emptyGateway) ListCustomersByEmail(ctx context.Context, email string) ([]stripe.Customer, error) {
	return nil, nil
}

func (emptyGateway) ListCharges(ctx context.Context, customerID string) ([]stripe.Charge, error) {
	return nil, nil
}

func (emptyGateway) ListInvoices(ctx context.Context, customerID string) ([]stripe.Invoice, error) {
	return nil, nil
}

func (emptyGateway) ListSubscriptions(ctx context.Context, customerID string) ([]stripe.Subscription, error) {
	return nil, nil
}

func (emptyGateway) ListCheckoutSessions(ctx context.Context, customerID string) ([]stripe.CheckoutSession, error) {
	return nil, nil
}

func (emptyGateway) GetCustomer(ctx context.Context, customerID string) (*stripe.Customer, error) {
	return nil, nil
}

func (emptyGateway) GetCharge(ctx context.Context, chargeID string) (*stripe.Charge, error) {
	return nil, nil
}

func (emptyGateway) GetPaymentIntent(ctx context.Context, paymentIntentID string) (*stripe.PaymentIntent, error) {
	return nil, nil
}

func newHistoryLookupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	gateways := service.NewGatewaySetWithGateways(constants.StripeModeLive, map[string]service.StripeGateway{
		constants.StripeModeLive: emptyGateway{},
		constants.StripeModeTest: emptyGateway{},
	})
	handler := New(&provider.Container{
		HistoryService: service.NewHistoryService(gateways, nil, nil),
	})
	r := gin.New()
	r.POST("/admin/donations/history", handler.LookupDonationHistory)
	return r
}

type historyLookupResponse struct {
	StatusCode int    `json:"status_code"`
	Msg        string `json:"msg"`
	Data       struct {
		Donations  []json.RawMessage `json:"donations"`
		StripeMode string            `json:"stripe_mode"`
	} `json:"data"`
}

func postHistoryLookup(t *testing.T, r *gin.Engine, body string) historyLookupResponse {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/donations/history", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	var resp historyLookupResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return resp
}

func TestLookupDonationHistoryHonorsModeOverride(t *testing.T) {
	r := newHistoryLookupRouter()

	resp := postHistoryLookup(t, r, `{"email":"ghost@example.com","stripe_mode":"test"}`)
	if resp.StatusCode != 0 {
		t.Fatalf("status_code want 0 got %d (%s)", resp.StatusCode, resp.Msg)
	}
	if resp.Data.StripeMode != constants.StripeModeTest {
		t.Fatalf("admin lookup must honor mode override, want test got %s", resp.Data.StripeMode)
	}
	if len(resp.Data.Donations) != 0 {
		t.Fatalf("unknown email must yield empty history, got %d entries", len(resp.Data.Donations))
	}
}

func TestLookupDonationHistoryDefaultsToPlatformMode(t *testing.T) {
	r := newHistoryLookupRouter()

	resp := postHistoryLookup(t, r, `{"email":"ghost@example.com"}`)
	if resp.StatusCode != 0 {
		t.Fatalf("status_code want 0 got %d (%s)", resp.StatusCode, resp.Msg)
	}
	if resp.Data.StripeMode != constants.StripeModeLive {
		t.Fatalf("missing override must fall back to default mode, want live got %s", resp.Data.StripeMode)
	}
}

func TestLookupDonationHistoryRequiresEmail(t *testing.T) {
	r := newHistoryLookupRouter()

	resp := postHistoryLookup(t, r, `{"stripe_mode":"test"}`)
	if resp.StatusCode != 400 {
		t.Fatalf("status_code want 400 got %d", resp.StatusCode)
	}
}
