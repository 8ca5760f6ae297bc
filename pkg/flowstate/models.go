// Copyright (c) 2025 BoostDesk. All Rights Reserved.

package flowstate

import (
	"time"

	"github.com/boostdesk/ticket-bot/pkg/order"
	"github.com/shopspring/decimal"
)

// Step marks how far an order flow has progressed.
type Step string

const (
	StepCollectingDetails Step = "collecting_details"
	StepPaymentMethod     Step = "payment_method"
	StepConfirming        Step = "confirming"
	StepDone              Step = "done"
)

// FlowState is the in-progress order of a single user.
type FlowState struct {
	UserID   string         `json:"user_id"`
	Username string         `json:"username"`
	Type     order.Category `json:"type"`

	// Current and Desired hold trophy counts or tier labels depending on Type.
	Current order.Target `json:"current"`
	Desired order.Target `json:"desired"`

	BrawlerLevel *int   `json:"brawler_level,omitempty"`
	P11Count     *int   `json:"p11_count,omitempty"`
	Brawler      string `json:"brawler,omitempty"`
	Request      string `json:"request,omitempty"`

	// Derived from the pricing engine, never set directly by user input.
	BasePrice       *decimal.Decimal `json:"base_price,omitempty"`
	PriceMultiplier *decimal.Decimal `json:"price_multiplier,omitempty"`
	Price           *decimal.Decimal `json:"price,omitempty"`

	PaymentMethod order.PaymentMethod `json:"payment_method,omitempty"`
	Step          Step                `json:"step"`
	Processing    bool                `json:"processing,omitempty"`
	Timestamp     int64               `json:"timestamp"`
}

// New creates a fresh flow for a user at the detail collection step.
func New(userID, username string, category order.Category, now time.Time) *FlowState {
	return &FlowState{
		UserID:    userID,
		Username:  username,
		Type:      category,
		Step:      StepCollectingDetails,
		Timestamp: now.UnixMilli(),
	}
}

// Touch refreshes the flow timestamp.
func (s *FlowState) Touch(now time.Time) {
	s.Timestamp = now.UnixMilli()
}

// UpdatedAt returns the flow timestamp as a time.
func (s *FlowState) UpdatedAt() time.Time {
	return time.UnixMilli(s.Timestamp)
}

// Priced reports whether a price has been computed for the flow.
func (s *FlowState) Priced() bool {
	return s.Price != nil
}

// ClearPrice drops all derived price fields.
func (s *FlowState) ClearPrice() {
	s.BasePrice = nil
	s.PriceMultiplier = nil
	s.Price = nil
}

// Clone returns a deep copy so stored state is never shared with callers.
func (s *FlowState) Clone() *FlowState {
	if s == nil {
		return nil
	}
	c := *s
	c.BrawlerLevel = cloneInt(s.BrawlerLevel)
	c.P11Count = cloneInt(s.P11Count)
	c.BasePrice = cloneDecimal(s.BasePrice)
	c.PriceMultiplier = cloneDecimal(s.PriceMultiplier)
	c.Price = cloneDecimal(s.Price)
	return &c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

func cloneDecimal(v *decimal.Decimal) *decimal.Decimal {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}
