package client

import (
	"testing"

	"github.com/wealthdesk/wealthdesk/pkg/errors"
)

func newProspect(t *testing.T) *Client {
	t.Helper()
	c, err := New("Asha Mehta", "asha@example.com", "+91 98000 00000", RiskModerate)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestNew(t *testing.T) {
	c := newProspect(t)
	if c.Status != StatusProspect {
		t.Errorf("Status = %q, want %q", c.Status, StatusProspect)
	}
	if c.ConvertedAt != nil {
		t.Error("ConvertedAt should be nil for a prospect")
	}
	if c.ID == "" {
		t.Error("New() should assign an ID")
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		cName   string
		email   string
		profile RiskProfile
		wantErr bool
	}{
		{"valid", "A", "a@b.co", RiskAggressive, false},
		{"empty name", "", "a@b.co", RiskModerate, true},
		{"whitespace name", "   ", "a@b.co", RiskModerate, true},
		{"bad email", "A", "not-an-email", RiskModerate, true},
		{"empty email", "A", "", RiskModerate, true},
		{"unknown profile", "A", "a@b.co", RiskProfile("yolo"), true},
		{"empty profile defaults", "A", "a@b.co", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cName, tt.email, "", tt.profile)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && tt.profile == "" && c.RiskProfile != RiskModerate {
				t.Errorf("RiskProfile = %q, want default %q", c.RiskProfile, RiskModerate)
			}
		})
	}
}

func TestNewNormalisesEmail(t *testing.T) {
	c, err := New("A", "  Asha@Example.COM ", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if c.Email != "asha@example.com" {
		t.Errorf("Email = %q, want lower-cased trimmed form", c.Email)
	}
}

func TestConvert(t *testing.T) {
	c := newProspect(t)
	if err := c.Convert(); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if c.Status != StatusActive {
		t.Errorf("Status = %q, want %q", c.Status, StatusActive)
	}
	if c.ConvertedAt == nil {
		t.Error("ConvertedAt should be set after conversion")
	}

	// Converting twice is illegal.
	err := c.Convert()
	if !errors.IsCode(err, errors.ErrCodeClientStatusInvalid) {
		t.Errorf("second Convert() error = %v, want %v", err, errors.ErrCodeClientStatusInvalid)
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		wantErr bool
	}{
		{"prospect to active", StatusProspect, StatusActive, false},
		{"active to inactive", StatusActive, StatusInactive, false},
		{"inactive to active", StatusInactive, StatusActive, false},
		{"prospect to inactive", StatusProspect, StatusInactive, true},
		{"active to prospect", StatusActive, StatusProspect, true},
		{"inactive to prospect", StatusInactive, StatusProspect, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newProspect(t)
			c.Status = tt.from
			err := c.UpdateStatus(tt.to)
			if (err != nil) != tt.wantErr {
				t.Fatalf("UpdateStatus(%q->%q) error = %v, wantErr %v", tt.from, tt.to, err, tt.wantErr)
			}
			if err == nil && c.Status != tt.to {
				t.Errorf("Status = %q, want %q", c.Status, tt.to)
			}
		})
	}
}

func TestUpdateStatusViaConvertStampsTime(t *testing.T) {
	c := newProspect(t)
	if err := c.UpdateStatus(StatusActive); err != nil {
		t.Fatal(err)
	}
	if c.ConvertedAt == nil {
		t.Error("UpdateStatus(prospect->active) should stamp ConvertedAt")
	}
}

func TestUpdateDetails(t *testing.T) {
	c := newProspect(t)
	v := c.Version

	if err := c.UpdateDetails("New Name", "", "12345", "", RiskAggressive); err != nil {
		t.Fatalf("UpdateDetails() error = %v", err)
	}
	if c.Name != "New Name" || c.Phone != "12345" || c.RiskProfile != RiskAggressive {
		t.Errorf("unexpected state after update: %+v", c)
	}
	if c.Email != "asha@example.com" {
		t.Errorf("empty email argument should not clear email, got %q", c.Email)
	}
	if c.Version != v+1 {
		t.Errorf("Version = %d, want %d", c.Version, v+1)
	}

	if err := c.UpdateDetails("", "broken", "", "", ""); err == nil {
		t.Error("UpdateDetails() should reject malformed email")
	}
}
