package handler

import (
	"net/http"
	"testing"
)

func TestRedemptionFlow(t *testing.T) {
	api, tracker := setupTestAPI(t)
	seedDays(t, tracker, "2024-03", 16)

	c, w := newJSONContext(http.MethodGet, "/api/redemption", nil)
	api.GetRedemption(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var status struct {
		UnredeemedCount int    `json:"unredeemedCount"`
		AvailableTier   string `json:"availableTier"`
	}
	decodeBody(t, w, &status)
	if status.UnredeemedCount != 16 || status.AvailableTier != "small" {
		t.Fatalf("unexpected status: %+v", status)
	}

	c, w = newJSONContext(http.MethodPost, "/api/redemption", map[string]string{"tier": "large"})
	api.Redeem(c)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409 for unavailable tier, got %d", w.Code)
	}

	c, w = newJSONContext(http.MethodPost, "/api/redemption", map[string]string{"tier": "small"})
	api.Redeem(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var result struct {
		Consumed          int    `json:"consumed"`
		LastRedeemedIndex int    `json:"lastRedeemedIndex"`
		GiftItem          string `json:"giftItem"`
	}
	decodeBody(t, w, &result)
	if result.Consumed != 16 || result.LastRedeemedIndex != 15 || result.GiftItem == "" {
		t.Fatalf("unexpected redemption: %+v", result)
	}

	c, w = newJSONContext(http.MethodPost, "/api/redemption", map[string]string{"tier": "small"})
	api.Redeem(c)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409 after consuming all records, got %d", w.Code)
	}
}

func TestRedeemRequiresBody(t *testing.T) {
	api, _ := setupTestAPI(t)

	c, w := newJSONContext(http.MethodPost, "/api/redemption", nil)
	api.Redeem(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}
