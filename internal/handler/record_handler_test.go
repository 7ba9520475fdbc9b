package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCreateRecordAcceptsLooseValues(t *testing.T) {
	api, tracker := setupTestAPI(t)

	c, w := newJSONContext(http.MethodPost, "/api/records", map[string]any{
		"date":         "2024-03-05T08:00:00",
		"activityType": "跑步",
		"duration":     "45分钟",
		"distance":     "5.5km",
		"note":         "<b>morning</b>",
	})
	api.CreateRecord(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	records := tracker.Snapshot().Records
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	got := records[0]
	if got.Date != "2024-03-05" || got.ActivityType != "running" || got.Duration != 45 || got.Distance != 5.5 {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.Note != "morning" {
		t.Fatalf("expected note to be sanitized, got %q", got.Note)
	}
}

func TestCreateRecordLegacyFieldNames(t *testing.T) {
	api, tracker := setupTestAPI(t)

	c, w := newJSONContext(http.MethodPost, "/api/records", map[string]any{
		"date":       "2024-03-06",
		"type":       "cycling",
		"sportsTime": 60,
	})
	api.CreateRecord(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	if records := tracker.Snapshot().Records; len(records) != 1 || records[0].Duration != 60 {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestCreateRecordRejectsInvalidDate(t *testing.T) {
	api, _ := setupTestAPI(t)

	c, w := newJSONContext(http.MethodPost, "/api/records", map[string]any{
		"date":         "not-a-date",
		"activityType": "running",
	})
	api.CreateRecord(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestCreateRecordRejectsMissingType(t *testing.T) {
	api, _ := setupTestAPI(t)

	c, w := newJSONContext(http.MethodPost, "/api/records", map[string]any{
		"date": "2024-03-06",
	})
	api.CreateRecord(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestListRecordsFiltersByType(t *testing.T) {
	api, tracker := setupTestAPI(t)
	seedDays(t, tracker, "2024-03", 3)

	c, w := newJSONContext(http.MethodPost, "/api/records", map[string]any{
		"date":         "2024-03-10",
		"activityType": "walking",
		"duration":     20,
	})
	api.CreateRecord(c)
	if w.Code != http.StatusCreated {
		t.Fatalf("seed walking record: %d", w.Code)
	}

	c, w = newJSONContext(http.MethodGet, "/api/records?type=running&range=month", nil)
	api.ListRecords(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Records []struct {
			Date         string `json:"date"`
			ActivityType string `json:"activityType"`
		} `json:"records"`
		Stats struct {
			TotalCount   int `json:"totalCount"`
			TotalMinutes int `json:"totalMinutes"`
		} `json:"stats"`
	}
	decodeBody(t, w, &resp)

	if len(resp.Records) != 3 || resp.Stats.TotalCount != 3 {
		t.Fatalf("expected 3 running records, got %+v", resp)
	}
	if resp.Records[0].Date != "2024-03-03" {
		t.Fatalf("expected newest first, got %s", resp.Records[0].Date)
	}
	if resp.Stats.TotalMinutes != 90 {
		t.Fatalf("expected 90 minutes, got %d", resp.Stats.TotalMinutes)
	}
}

func TestDeleteRecord(t *testing.T) {
	api, tracker := setupTestAPI(t)
	seedDays(t, tracker, "2024-03", 2)

	c, w := newJSONContext(http.MethodDelete, "/api/records/2024-03-01", nil)
	c.Params = []gin.Param{{Key: "date", Value: "2024-03-01"}}
	api.DeleteRecord(c)
	c.Writer.WriteHeaderNow()

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}
	if records := tracker.Snapshot().Records; len(records) != 1 || records[0].Date != "2024-03-02" {
		t.Fatalf("unexpected remaining records: %+v", records)
	}
}
