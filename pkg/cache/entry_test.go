package cache

import (
	"testing"
	"time"
)

func TestEntry_IsExpired(t *testing.T) {
	tests := []struct {
		name    string
		expires time.Time
		want    bool
	}{
		{"expired", time.Now().Add(-time.Hour), true},
		{"fresh", time.Now().Add(time.Hour), false},
		{"zero expiry", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Entry{Expires: tt.expires}
			if got := e.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntry_TTL(t *testing.T) {
	e := &Entry{Expires: time.Now().Add(time.Hour)}
	if ttl := e.TTL(); ttl < 59*time.Minute || ttl > time.Hour {
		t.Errorf("TTL() = %v, want about 1h", ttl)
	}

	e = &Entry{Expires: time.Now().Add(-time.Hour)}
	if ttl := e.TTL(); ttl != 0 {
		t.Errorf("TTL() = %v, want 0", ttl)
	}
}

func TestEntry_CanRevalidate(t *testing.T) {
	var nilEntry *Entry
	if nilEntry.CanRevalidate() {
		t.Error("nil entry should not be revalidatable")
	}
	if (&Entry{}).CanRevalidate() {
		t.Error("entry without validators should not be revalidatable")
	}
	if !(&Entry{ETag: `"x"`}).CanRevalidate() {
		t.Error("entry with ETag should be revalidatable")
	}
	if !(&Entry{LastModified: time.Now()}).CanRevalidate() {
		t.Error("entry with Last-Modified should be revalidatable")
	}
}
