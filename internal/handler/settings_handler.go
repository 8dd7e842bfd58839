package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/bookstore/internal/model"
	"github.com/hitoshi/bookstore/internal/settings"
)

// SettingsServiceInterface は店舗設定ハンドラーが必要とするサービスインターフェース。
type SettingsServiceInterface interface {
	Get(ctx context.Context) (*model.Settings, error)
	Update(ctx context.Context, userID string, in settings.UpdateInput) (*model.Settings, error)
	Quote(ctx context.Context, rawSubtotal string) (*model.Quote, error)
}

// SettingsHandler は税率・送料設定と見積もりのHTTPハンドラー。
type SettingsHandler struct {
	service SettingsServiceInterface
	errors  errorResponder
}

// NewSettingsHandler はSettingsHandlerを生成する。
func NewSettingsHandler(service SettingsServiceInterface, m MetricsRecorder) *SettingsHandler {
	return &SettingsHandler{
		service: service,
		errors:  errorResponder{metrics: metricsOrNoop(m)},
	}
}

// settingsResponse は店舗設定のAPIレスポンス。
type settingsResponse struct {
	TaxRate      float64    `json:"tax_rate"`
	ShippingCost float64    `json:"shipping_cost"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

func toSettingsResponse(s *model.Settings) settingsResponse {
	resp := settingsResponse{
		TaxRate:      s.TaxRate,
		ShippingCost: s.ShippingCost,
	}
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		resp.UpdatedAt = &t
	}
	return resp
}

// quoteResponse は見積もりのAPIレスポンス。
type quoteResponse struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}

// GetSettings は現在の設定を返す。
// GET /api/admin/settings
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.Get(r.Context())
	if err != nil {
		h.errors.handle(w, r, settings.UpdateSchema.Name, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(s))
}

// UpdateSettings は税率と送料を更新する。
// 値はJSONの数値と数値文字列のどちらでも受け付ける。
// PUT /api/admin/settings
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var in settings.UpdateInput
	if !decodeJSON(w, r, &in) {
		return
	}

	s, err := h.service.Update(r.Context(), user.ID, in)
	if err != nil {
		h.errors.handle(w, r, settings.UpdateSchema.Name, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(s))
}

// Quote は小計に対する税・送料・合計を返す。
// GET /api/quote?subtotal=12.50
func (h *SettingsHandler) Quote(w http.ResponseWriter, r *http.Request) {
	q, err := h.service.Quote(r.Context(), r.URL.Query().Get("subtotal"))
	if err != nil {
		h.errors.handle(w, r, "quote", err)
		return
	}
	writeJSON(w, http.StatusOK, quoteResponse{
		Subtotal: q.Subtotal,
		Tax:      q.Tax,
		Shipping: q.Shipping,
		Total:    q.Total,
	})
}
