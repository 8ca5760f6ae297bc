package flow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/boostdesk/ticket-bot/pkg/flowstate"
	"github.com/boostdesk/ticket-bot/pkg/metrics"
	"github.com/boostdesk/ticket-bot/pkg/order"
	"github.com/boostdesk/ticket-bot/pkg/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	maxRequestLength = 1000
	maxBrawlerLength = 50
)

// Handoff provisions a ticket for a confirmed order.
type Handoff interface {
	Handoff(ctx context.Context, o *order.Order) (*order.Ticket, error)
}

// Result is the outcome of a successful Advance.
type Result struct {
	State  *flowstate.FlowState
	Ticket *order.Ticket
	// Cleared is true when the flow was removed from the store.
	Cleared bool
}

// Controller drives each user's order flow from category selection to ticket
// hand-off. All mutations of one user's flow are serialized.
type Controller struct {
	store   flowstate.Store
	handoff Handoff
	locks   *flowstate.KeyedMutex
	metrics *metrics.Collectors
	now     func() time.Time
	newID   func() string
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides the time source used for flow timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithMetrics records flow events in the given collectors.
func WithMetrics(m *metrics.Collectors) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithIDGenerator overrides how order IDs are generated.
func WithIDGenerator(newID func() string) Option {
	return func(c *Controller) { c.newID = newID }
}

// NewController creates a flow controller backed by store that hands
// confirmed orders to handoff.
func NewController(store flowstate.Store, handoff Handoff, opts ...Option) *Controller {
	c := &Controller{
		store:   store,
		handoff: handoff,
		locks:   flowstate.NewKeyedMutex(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start begins a new order for a user, overwriting any unfinished one.
func (c *Controller) Start(ctx context.Context, userID, username string, category order.Category) (*flowstate.FlowState, error) {
	unlock := c.locks.Lock(userID)
	defer unlock()

	return c.start(ctx, userID, StartInput{Category: category, Username: username})
}

// GetOrCreate returns the user's flow, creating an empty Other flow when
// there is none.
func (c *Controller) GetOrCreate(ctx context.Context, userID string) (*flowstate.FlowState, error) {
	unlock := c.locks.Lock(userID)
	defer unlock()

	state, err := c.store.Get(ctx, userID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, flowstate.ErrNotFound) {
		return nil, fmt.Errorf("failed to load flow: %w", err)
	}

	state = flowstate.New(userID, "", order.CategoryOther, c.now())
	if err := c.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to save flow: %w", err)
	}
	return state, nil
}

// Clear removes the user's flow.
func (c *Controller) Clear(ctx context.Context, userID string) error {
	unlock := c.locks.Lock(userID)
	defer unlock()

	if err := c.store.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear flow: %w", err)
	}
	return nil
}

// Advance applies one user input to the user's flow. Rejected inputs return
// a *ValidationError and leave the stored flow untouched.
func (c *Controller) Advance(ctx context.Context, userID string, in Input) (*Result, error) {
	var unlock func()
	if _, ok := in.(Confirmation); ok {
		// The lock is held for the whole hand-off; a second confirmation
		// must not queue behind it.
		var held bool
		if unlock, held = c.locks.TryLock(userID); !held {
			return nil, ErrAlreadyProcessing
		}
	} else {
		unlock = c.locks.Lock(userID)
	}
	defer unlock()

	switch v := in.(type) {
	case StartInput:
		state, err := c.start(ctx, userID, v)
		if err != nil {
			return nil, err
		}
		return &Result{State: state}, nil
	case Cancellation:
		return c.cancel(ctx, userID)
	case Confirmation:
		return c.confirm(ctx, userID)
	}

	state, err := c.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch v := in.(type) {
	case TrophyDetails:
		err = c.applyTrophyDetails(state, v)
	case BulkDetails:
		err = c.applyBulkDetails(state, v)
	case RankedDetails:
		err = c.applyRankedDetails(state, v)
	case MasteryDetails:
		err = c.applyMasteryDetails(state, v)
	case OtherDetails:
		err = c.applyOtherDetails(state, v)
	case TierSelection:
		err = c.applyTierSelection(state, v)
	case PaymentSelection:
		err = c.applyPaymentSelection(state, v)
	default:
		err = fmt.Errorf("%w: %T", ErrUnknownInput, in)
	}
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			c.metrics.ValidationFailed(verr.Field)
			logrus.Infof("rejected %s for user %s: %s", verr.Field, userID, verr.Message)
		}
		return nil, err
	}

	state.Touch(c.now())
	if err := c.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to save flow: %w", err)
	}
	return &Result{State: state}, nil
}

func (c *Controller) start(ctx context.Context, userID string, in StartInput) (*flowstate.FlowState, error) {
	if !in.Category.Valid() {
		return nil, invalid("category", "Please choose a valid boost type.")
	}

	state := flowstate.New(userID, in.Username, in.Category, c.now())
	if err := c.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to save flow: %w", err)
	}

	c.metrics.FlowStarted(string(in.Category))
	logrus.Infof("started %s flow for user %s", in.Category, userID)
	return state, nil
}

func (c *Controller) load(ctx context.Context, userID string) (*flowstate.FlowState, error) {
	state, err := c.store.Get(ctx, userID)
	if errors.Is(err, flowstate.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load flow: %w", err)
	}
	return state, nil
}

func requireCategory(state *flowstate.FlowState, category order.Category) error {
	if state.Type != category {
		return fmt.Errorf("%w: flow is %s, input is for %s", ErrCategoryMismatch, state.Type, category)
	}
	return nil
}

func requireStep(state *flowstate.FlowState, allowed ...flowstate.Step) error {
	for _, s := range allowed {
		if state.Step == s {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrWrongStep, state.Step)
}

// detailSteps are the steps at which order details may still be changed.
var detailSteps = []flowstate.Step{flowstate.StepCollectingDetails, flowstate.StepPaymentMethod}

func (c *Controller) applyTrophyDetails(state *flowstate.FlowState, in TrophyDetails) error {
	if err := requireCategory(state, order.CategoryTrophies); err != nil {
		return err
	}
	if err := requireStep(state, detailSteps...); err != nil {
		return err
	}

	current, desired, err := parseTrophyRange(in.Current, in.Desired)
	if err != nil {
		return err
	}
	level, err := parsePowerLevel(in.BrawlerLevel)
	if err != nil {
		return err
	}

	state.Current = order.TrophyTarget(current)
	state.Desired = order.TrophyTarget(desired)
	state.BrawlerLevel = level
	return c.applyQuote(state)
}

func (c *Controller) applyBulkDetails(state *flowstate.FlowState, in BulkDetails) error {
	if err := requireCategory(state, order.CategoryBulk); err != nil {
		return err
	}
	if err := requireStep(state, detailSteps...); err != nil {
		return err
	}

	current, desired, err := parseTrophyRange(in.Current, in.Desired)
	if err != nil {
		return err
	}

	state.Current = order.TrophyTarget(current)
	state.Desired = order.TrophyTarget(desired)
	return c.applyQuote(state)
}

func (c *Controller) applyRankedDetails(state *flowstate.FlowState, in RankedDetails) error {
	if err := requireCategory(state, order.CategoryRanked); err != nil {
		return err
	}
	if err := requireStep(state, detailSteps...); err != nil {
		return err
	}

	count, err := parseP11Count(in.P11Count)
	if err != nil {
		return err
	}

	state.P11Count = count
	if state.Priced() {
		return c.applyQuote(state)
	}
	return nil
}

func (c *Controller) applyMasteryDetails(state *flowstate.FlowState, in MasteryDetails) error {
	if err := requireCategory(state, order.CategoryMastery); err != nil {
		return err
	}
	if err := requireStep(state, detailSteps...); err != nil {
		return err
	}

	brawler := strings.TrimSpace(in.Brawler)
	if brawler == "" {
		return invalid("brawler", "Please enter the brawler name.")
	}
	if len(brawler) > maxBrawlerLength {
		return invalid("brawler", "The brawler name is too long.")
	}

	state.Brawler = brawler
	return nil
}

func (c *Controller) applyOtherDetails(state *flowstate.FlowState, in OtherDetails) error {
	if err := requireCategory(state, order.CategoryOther); err != nil {
		return err
	}
	if err := requireStep(state, detailSteps...); err != nil {
		return err
	}

	request := strings.TrimSpace(in.Request)
	if request == "" {
		return invalid("request", "Please describe what you would like to order.")
	}
	if len(request) > maxRequestLength {
		return invalid("request", fmt.Sprintf("Please keep your request under %d characters.", maxRequestLength))
	}

	state.Request = request
	state.ClearPrice()
	state.Step = flowstate.StepPaymentMethod
	return nil
}

func (c *Controller) applyTierSelection(state *flowstate.FlowState, in TierSelection) error {
	if !state.Type.TierBased() {
		return fmt.Errorf("%w: tier selection for %s flow", ErrCategoryMismatch, state.Type)
	}

	tierOrder, label, err := normalizeTier(state.Type, in.Label)
	if err != nil {
		return err
	}

	switch in.Side {
	case SideCurrent:
		if err := requireStep(state, flowstate.StepCollectingDetails); err != nil {
			return err
		}
		// Nothing ranks above the last tier, so it cannot be boosted from.
		if pricing.IndexOf(tierOrder, label) == len(tierOrder)-1 {
			return invalid("current", topTierMessage(state.Type))
		}
		state.Current = order.TierTarget(label)
		state.Desired = order.Target{}
		state.ClearPrice()
		return nil

	case SideDesired:
		if err := requireStep(state, detailSteps...); err != nil {
			return err
		}
		if state.Current.Tier == "" {
			return invalid("current", "Please select your current tier first.")
		}
		if pricing.IndexOf(tierOrder, label) <= pricing.IndexOf(tierOrder, state.Current.Tier) {
			return invalid("desired", notHigherMessage(state.Type))
		}
		state.Desired = order.TierTarget(label)
		return c.applyQuote(state)
	}

	return fmt.Errorf("%w: tier side %d", ErrUnknownInput, in.Side)
}

func (c *Controller) applyPaymentSelection(state *flowstate.FlowState, in PaymentSelection) error {
	if err := requireStep(state, flowstate.StepPaymentMethod, flowstate.StepConfirming); err != nil {
		return err
	}

	method, err := order.ParsePaymentMethod(in.Method)
	if err != nil {
		return invalid("payment_method", "Please select a valid payment method.")
	}

	if state.Type != order.CategoryOther {
		if !state.Priced() {
			return fmt.Errorf("%w: flow has no stored price", ErrPricingFailed)
		}
		q, err := c.quote(state)
		if err != nil {
			logrus.Errorf("failed to recompute price for user %s: %v", state.UserID, err)
			return fmt.Errorf("%w: %v", ErrPricingFailed, err)
		}
		if !q.Total.Equal(*state.Price) {
			logrus.Errorf("recomputed price %s differs from stored %s for user %s", q.Total, state.Price, state.UserID)
			return fmt.Errorf("%w: recomputed price %s differs from stored %s", ErrPricingFailed, q.Total, state.Price)
		}
	}

	state.PaymentMethod = method
	state.Step = flowstate.StepConfirming
	return nil
}

func (c *Controller) confirm(ctx context.Context, userID string) (*Result, error) {
	state, err := c.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if state.Processing {
		return nil, ErrAlreadyProcessing
	}
	if err := requireStep(state, flowstate.StepConfirming); err != nil {
		return nil, err
	}

	state.Processing = true
	state.Touch(c.now())
	if err := c.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to mark flow as processing: %w", err)
	}

	o := c.buildOrder(state)
	logrus.Infof("handing off order %s for user %s (%s)", o.ID, userID, o.Summary())

	ticket, err := c.handoff.Handoff(ctx, o)
	if err != nil {
		logrus.Errorf("handoff failed for order %s (user %s): %v", o.ID, userID, err)
		c.metrics.HandoffFailed(string(state.Type))

		state.Processing = false
		if saveErr := c.store.Save(ctx, state); saveErr != nil {
			logrus.Errorf("failed to release processing flag for user %s: %v", userID, saveErr)
		}
		return nil, &ProvisioningError{Err: err}
	}

	c.metrics.TicketCreated(string(state.Type), string(state.PaymentMethod))

	state.Processing = false
	state.Step = flowstate.StepDone
	if err := c.store.Delete(ctx, userID); err != nil {
		logrus.Errorf("failed to clear flow for user %s after handoff: %v", userID, err)
		if saveErr := c.store.Save(ctx, state); saveErr != nil {
			logrus.Errorf("failed to mark flow done for user %s: %v", userID, saveErr)
		}
		return &Result{State: state, Ticket: ticket}, nil
	}

	logrus.Infof("order %s completed for user %s", o.ID, userID)
	return &Result{State: state, Ticket: ticket, Cleared: true}, nil
}

func (c *Controller) cancel(ctx context.Context, userID string) (*Result, error) {
	state, err := c.store.Get(ctx, userID)
	if err != nil && !errors.Is(err, flowstate.ErrNotFound) {
		return nil, fmt.Errorf("failed to load flow: %w", err)
	}
	if state != nil && state.Processing {
		return nil, ErrAlreadyProcessing
	}

	if err := c.store.Delete(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to clear flow: %w", err)
	}

	if state != nil {
		c.metrics.FlowCancelled(string(state.Type))
	}
	logrus.Infof("cancelled flow for user %s", userID)
	return &Result{State: state, Cleared: true}, nil
}

func (c *Controller) quote(state *flowstate.FlowState) (pricing.Quote, error) {
	return pricing.Compute(pricing.Request{
		Category:   state.Type,
		Current:    state.Current,
		Desired:    state.Desired,
		PowerLevel: state.BrawlerLevel,
		P11Count:   state.P11Count,
	})
}

// applyQuote stores a fresh quote on the flow and moves it to payment selection.
func (c *Controller) applyQuote(state *flowstate.FlowState) error {
	q, err := c.quote(state)
	if err != nil {
		logrus.Errorf("price calculation failed for user %s (%s %s -> %s): %v",
			state.UserID, state.Type, state.Current, state.Desired, err)
		return fmt.Errorf("%w: %v", ErrPricingFailed, err)
	}
	if !q.Total.IsPositive() {
		return fmt.Errorf("%w: non-positive total %s", ErrPricingFailed, q.Total)
	}

	state.BasePrice = &q.Base
	state.PriceMultiplier = &q.Multiplier
	state.Price = &q.Total
	state.Step = flowstate.StepPaymentMethod

	c.metrics.QuoteIssued(string(state.Type), q.Total.InexactFloat64())
	return nil
}

func (c *Controller) buildOrder(state *flowstate.FlowState) *order.Order {
	o := &order.Order{
		ID:            c.newID(),
		UserID:        state.UserID,
		Username:      state.Username,
		Category:      state.Type,
		Current:       state.Current,
		Desired:       state.Desired,
		BrawlerLevel:  state.BrawlerLevel,
		P11Count:      state.P11Count,
		Brawler:       state.Brawler,
		Request:       state.Request,
		Price:         decimal.Zero,
		PaymentMethod: state.PaymentMethod,
		CreatedAt:     c.now(),
	}
	if state.Price != nil {
		o.Price = *state.Price
	}
	return o
}

func parseTrophyRange(rawCurrent, rawDesired string) (int, int, error) {
	current, err := strconv.Atoi(strings.TrimSpace(rawCurrent))
	if err != nil {
		return 0, 0, invalid("current", "Please enter valid numbers for trophy counts.")
	}
	desired, err := strconv.Atoi(strings.TrimSpace(rawDesired))
	if err != nil {
		return 0, 0, invalid("desired", "Please enter valid numbers for trophy counts.")
	}
	if current < 0 || desired < 0 {
		return 0, 0, invalid("current", "Trophy counts cannot be negative.")
	}
	if desired <= current {
		return 0, 0, invalid("desired", "The desired trophy count must be higher than the current trophy count.")
	}
	return current, desired, nil
}

func parsePowerLevel(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	level, err := strconv.Atoi(raw)
	if err != nil || level < 1 || level > pricing.MaxPowerLevel {
		return nil, invalid("brawler_level", "Please enter a valid power level (1-11).")
	}
	return &level, nil
}

func parseP11Count(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	count, err := strconv.Atoi(raw)
	if err != nil || count < 0 {
		return nil, invalid("p11_count", "Please enter a valid number for your P11 count.")
	}
	return &count, nil
}

func normalizeTier(category order.Category, label string) ([]string, string, error) {
	if category == order.CategoryRanked {
		l, err := pricing.NormalizeRankLabel(label)
		if err != nil {
			return nil, "", invalid("tier", "Please select a valid rank.")
		}
		return pricing.RankedOrder, l, nil
	}
	l, err := pricing.NormalizeMasteryLabel(label)
	if err != nil {
		return nil, "", invalid("tier", "Please select a valid mastery level.")
	}
	return pricing.MasteryOrder, l, nil
}

func topTierMessage(category order.Category) string {
	if category == order.CategoryRanked {
		return "You are already at the highest rank."
	}
	return "You are already at the highest mastery level."
}

func notHigherMessage(category order.Category) string {
	if category == order.CategoryRanked {
		return "The desired rank must be higher than the current rank."
	}
	return "The desired mastery level must be higher than the current level."
}
