package storage

import (
	"errors"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sample(status string, at time.Time) *Reload {
	return &Reload{
		Timestamp:   at,
		Source:      "web",
		Version:     "1.0",
		Command:     "/reloaditemfilter",
		WindowTitle: "Path of Exile 2",
		Status:      status,
		EventCount:  18,
		SettleMs:    100,
		LatencyMs:   130,
	}
}

func TestSaveAndGetReloads(t *testing.T) {
	db := openTestDB(t)
	now := time.Now()

	older := sample("ok", now.Add(-time.Minute))
	newer := sample("clipboard_unavailable", now)
	newer.EventCount = 0
	newer.ErrorMessage = "clipboard unavailable: busy"

	for _, r := range []*Reload{older, newer} {
		if err := db.SaveReload(r); err != nil {
			t.Fatalf("SaveReload: %v", err)
		}
		if r.ID == 0 {
			t.Fatal("SaveReload did not set ID")
		}
	}

	got, err := db.GetReloads(10, 0)
	if err != nil {
		t.Fatalf("GetReloads: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d reloads, want 2", len(got))
	}
	if got[0].ID != newer.ID || got[1].ID != older.ID {
		t.Errorf("order = [%d %d], want newest first", got[0].ID, got[1].ID)
	}
	if got[0].ErrorMessage != newer.ErrorMessage || got[1].ErrorMessage != "" {
		t.Errorf("error messages = %q, %q", got[0].ErrorMessage, got[1].ErrorMessage)
	}
	if d := got[1].Timestamp.Sub(older.Timestamp); d > time.Millisecond || d < -time.Millisecond {
		t.Errorf("timestamp drift %v", d)
	}

	page, err := db.GetReloads(1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 1 || page[0].ID != older.ID {
		t.Errorf("offset page = %+v", page)
	}
}

func TestDeleteReload(t *testing.T) {
	db := openTestDB(t)
	r := sample("ok", time.Now())
	if err := db.SaveReload(r); err != nil {
		t.Fatal(err)
	}

	if err := db.DeleteReload(r.ID); err != nil {
		t.Fatalf("DeleteReload: %v", err)
	}
	if err := db.DeleteReload(r.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}

	n, err := db.GetReloadCount()
	if err != nil || n != 0 {
		t.Errorf("count = %d, %v", n, err)
	}
}

func TestStats(t *testing.T) {
	db := openTestDB(t)
	now := time.Now()

	for _, status := range []string{"ok", "ok", "window_not_found", "input_rejected"} {
		if err := db.SaveReload(sample(status, now)); err != nil {
			t.Fatal(err)
		}
	}
	// Outside the 7 day window.
	if err := db.SaveReload(sample("ok", now.AddDate(0, 0, -30))); err != nil {
		t.Fatal(err)
	}

	overall, err := db.GetOverallStats(7)
	if err != nil {
		t.Fatalf("GetOverallStats: %v", err)
	}
	if overall.TotalReloads != 4 || overall.SuccessCount != 2 || overall.SkippedCount != 1 || overall.FailureCount != 1 {
		t.Errorf("overall = %+v", overall)
	}
	if overall.TotalEvents != 72 || overall.AvgSettleMs != 100 {
		t.Errorf("overall = %+v", overall)
	}

	daily, err := db.GetDailyStats(7)
	if err != nil {
		t.Fatalf("GetDailyStats: %v", err)
	}
	total := 0
	for _, d := range daily {
		total += d.TotalReloads
	}
	if total != 4 {
		t.Errorf("daily totals = %d, want 4", total)
	}

	byStatus, err := db.GetStatusStats(7)
	if err != nil {
		t.Fatalf("GetStatusStats: %v", err)
	}
	if len(byStatus) != 3 || byStatus[0].Status != "ok" || byStatus[0].Count != 2 {
		t.Errorf("status stats = %+v", byStatus)
	}

	ranged, err := db.GetStatsForDateRange(now.AddDate(0, 0, -31), now.Add(time.Second))
	if err != nil {
		t.Fatalf("GetStatsForDateRange: %v", err)
	}
	if ranged.TotalReloads != 5 {
		t.Errorf("ranged total = %d, want 5", ranged.TotalReloads)
	}
}

func TestStats_EmptyDatabase(t *testing.T) {
	db := openTestDB(t)

	overall, err := db.GetOverallStats(7)
	if err != nil {
		t.Fatalf("GetOverallStats: %v", err)
	}
	if overall.TotalReloads != 0 || overall.SuccessCount != 0 {
		t.Errorf("overall = %+v", overall)
	}
}
