// Package client implements the client bounded context: the Client entity
// with its prospect-to-client lifecycle and the repository port. Prospects
// and clients share one entity distinguished by status; conversion is a
// state transition, not a copy between tables.
package client

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/wealthdesk/wealthdesk/pkg/errors"
	"github.com/wealthdesk/wealthdesk/pkg/types/common"
)

// Status is the lifecycle state of a client record.
type Status string

const (
	// StatusProspect is a lead that has not yet signed on.
	StatusProspect Status = "prospect"
	// StatusActive is a converted, serviced client.
	StatusActive Status = "active"
	// StatusInactive is a dormant client whose book is retained.
	StatusInactive Status = "inactive"
)

// allowedTransitions defines the valid next states from each status.
//
//	prospect -> active
//	active   -> inactive
//	inactive -> active
var allowedTransitions = map[Status][]Status{
	StatusProspect: {StatusActive},
	StatusActive:   {StatusInactive},
	StatusInactive: {StatusActive},
}

// RiskProfile classifies a client's risk appetite.
type RiskProfile string

const (
	RiskConservative RiskProfile = "conservative"
	RiskModerate     RiskProfile = "moderate"
	RiskAggressive   RiskProfile = "aggressive"
)

var validRiskProfiles = map[RiskProfile]bool{
	RiskConservative: true,
	RiskModerate:     true,
	RiskAggressive:   true,
}

var reEmail = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Client is the aggregate root of the client bounded context.
type Client struct {
	common.BaseEntity

	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone,omitempty"`
	Status      Status      `json:"status"`
	RiskProfile RiskProfile `json:"risk_profile"`
	Notes       string      `json:"notes,omitempty"`

	// ConvertedAt records the prospect-to-client conversion instant; nil
	// while the record is still a prospect.
	ConvertedAt *time.Time `json:"converted_at,omitempty"`
}

// New creates a Client in the prospect state, enforcing:
//   - name must be non-empty.
//   - email must be non-empty and plausibly formed.
//   - riskProfile, when given, must be a known value; empty defaults to
//     moderate.
func New(name, email, phone string, riskProfile RiskProfile) (*Client, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.InvalidParam("client name must not be empty")
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if !reEmail.MatchString(email) {
		return nil, errors.InvalidParam(fmt.Sprintf("invalid email %q", email))
	}
	if riskProfile == "" {
		riskProfile = RiskModerate
	}
	if !validRiskProfiles[riskProfile] {
		return nil, errors.InvalidParam(fmt.Sprintf("unknown risk profile %q", riskProfile))
	}

	now := time.Now().UTC()
	return &Client{
		BaseEntity: common.BaseEntity{
			ID:        common.NewID(),
			CreatedAt: now,
			UpdatedAt: now,
			Version:   1,
		},
		Name:        strings.TrimSpace(name),
		Email:       email,
		Phone:       strings.TrimSpace(phone),
		Status:      StatusProspect,
		RiskProfile: riskProfile,
	}, nil
}

// Convert promotes a prospect to an active client and stamps ConvertedAt.
func (c *Client) Convert() error {
	if c.Status != StatusProspect {
		return errors.New(errors.ErrCodeClientStatusInvalid,
			fmt.Sprintf("client %s has status %q; only prospects can be converted", c.ID, c.Status))
	}
	now := time.Now().UTC()
	c.Status = StatusActive
	c.ConvertedAt = &now
	c.Touch()
	return nil
}

// UpdateStatus transitions the client, enforcing the lifecycle state
// machine. Convert must be used for the prospect-to-active transition so
// that ConvertedAt is recorded.
func (c *Client) UpdateStatus(next Status) error {
	if c.Status == StatusProspect && next == StatusActive {
		return c.Convert()
	}
	for _, allowed := range allowedTransitions[c.Status] {
		if allowed == next {
			c.Status = next
			c.Touch()
			return nil
		}
	}
	return errors.New(errors.ErrCodeClientStatusInvalid,
		fmt.Sprintf("illegal status transition %q to %q for client %s", c.Status, next, c.ID))
}

// UpdateDetails replaces the mutable contact fields. Empty arguments leave
// the current value in place.
func (c *Client) UpdateDetails(name, email, phone, notes string, riskProfile RiskProfile) error {
	if name != "" {
		c.Name = strings.TrimSpace(name)
	}
	if email != "" {
		email = strings.TrimSpace(strings.ToLower(email))
		if !reEmail.MatchString(email) {
			return errors.InvalidParam(fmt.Sprintf("invalid email %q", email))
		}
		c.Email = email
	}
	if phone != "" {
		c.Phone = strings.TrimSpace(phone)
	}
	if notes != "" {
		c.Notes = notes
	}
	if riskProfile != "" {
		if !validRiskProfiles[riskProfile] {
			return errors.InvalidParam(fmt.Sprintf("unknown risk profile %q", riskProfile))
		}
		c.RiskProfile = riskProfile
	}
	c.Touch()
	return nil
}

// IsProspect reports whether the record is still an unconverted lead.
func (c *Client) IsProspect() bool {
	return c.Status == StatusProspect
}
