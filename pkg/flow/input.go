package flow

import "github.com/boostdesk/ticket-bot/pkg/order"

// Input is one user interaction fed to Controller.Advance. The set of inputs
// is closed: only the types in this file implement it.
type Input interface {
	isInput()
}

// StartInput begins a new order, replacing any unfinished one.
type StartInput struct {
	Category order.Category
	Username string
}

// TrophyDetails is the trophy modal submission. Values are raw text as typed
// by the user; BrawlerLevel may be empty.
type TrophyDetails struct {
	Current      string
	Desired      string
	BrawlerLevel string
}

// BulkDetails is the bulk trophy modal submission.
type BulkDetails struct {
	Current string
	Desired string
}

// RankedDetails carries the P11 count asked before rank selection. An empty
// count means the customer did not provide one.
type RankedDetails struct {
	P11Count string
}

// MasteryDetails carries the brawler a mastery boost is for.
type MasteryDetails struct {
	Brawler string
}

// OtherDetails is a free text request for services without a fixed price.
type OtherDetails struct {
	Request string
}

// TierSide selects which end of a ranked or mastery boost a TierSelection sets.
type TierSide int

const (
	SideCurrent TierSide = iota
	SideDesired
)

func (s TierSide) String() string {
	if s == SideDesired {
		return "desired"
	}
	return "current"
}

// TierSelection is a rank or mastery level picked from a menu.
type TierSelection struct {
	Side  TierSide
	Label string
}

// PaymentSelection is the payment method picked from the payment menu.
type PaymentSelection struct {
	Method string
}

// Confirmation is the confirm button of the order recap.
type Confirmation struct{}

// Cancellation is the cancel button of the order recap.
type Cancellation struct{}

func (StartInput) isInput()       {}
func (TrophyDetails) isInput()    {}
func (BulkDetails) isInput()      {}
func (RankedDetails) isInput()    {}
func (MasteryDetails) isInput()   {}
func (OtherDetails) isInput()     {}
func (TierSelection) isInput()    {}
func (PaymentSelection) isInput() {}
func (Confirmation) isInput()     {}
func (Cancellation) isInput()     {}
