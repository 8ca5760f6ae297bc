package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/boostdesk/ticket-bot/pkg/common"
	"github.com/boostdesk/ticket-bot/pkg/flow"
	"github.com/boostdesk/ticket-bot/pkg/flowstate"
	"github.com/boostdesk/ticket-bot/pkg/order"
	"github.com/bwmarrin/discordgo"
)

const interactionTimeout = 2 * time.Minute

// FlowController is the part of flow.Controller the router drives.
type FlowController interface {
	Advance(ctx context.Context, userID string, in flow.Input) (*flow.Result, error)
	GetOrCreate(ctx context.Context, userID string) (*flowstate.FlowState, error)
}

type event struct {
	interaction *discordgo.Interaction
	user        *discordgo.User
	customID    string
	values      []string
	fields      map[string]string
}

func (e *event) value() string {
	if len(e.values) == 0 {
		return ""
	}
	return e.values[0]
}

type handler func(scope *common.Scope, ev *event) error

// Router dispatches panel buttons, detail modals and order menus to the flow
// controller and renders the next step back to the user.
type Router struct {
	session    Session
	flow       FlowController
	components map[string]handler
	modals     map[string]handler
}

// NewRouter creates a router answering interactions through session.
func NewRouter(session Session, controller FlowController) *Router {
	r := &Router{
		session:    session,
		flow:       controller,
		components: make(map[string]handler),
		modals:     make(map[string]handler),
	}

	for _, c := range order.Categories {
		r.components[TicketButtonID(c)] = r.startHandler(c)
	}
	r.components[RankedCurrentSelect] = r.tierHandler(flow.SideCurrent)
	r.components[MasteryCurrentSelect] = r.tierHandler(flow.SideCurrent)
	r.components[RankedDesiredSelect] = r.tierHandler(flow.SideDesired)
	r.components[MasteryDesiredSelect] = r.tierHandler(flow.SideDesired)
	r.components[PaymentMethodSelect] = r.handlePayment
	r.components[ConfirmButton] = r.handleConfirm
	r.components[CancelButton] = r.handleCancel

	r.modals[ModalID(order.CategoryTrophies)] = r.handleTrophyModal
	r.modals[ModalID(order.CategoryBulk)] = r.handleBulkModal
	r.modals[ModalID(order.CategoryRanked)] = r.handleRankedModal
	r.modals[ModalID(order.CategoryMastery)] = r.handleMasteryModal
	r.modals[ModalID(order.CategoryOther)] = r.handleOtherModal

	return r
}

// HandleInteraction is registered with discordgo's AddHandler.
func (r *Router) HandleInteraction(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	r.Handle(ctx, i)
}

// Handle dispatches one interaction. Unknown custom IDs are ignored.
func (r *Router) Handle(ctx context.Context, i *discordgo.InteractionCreate) {
	if i == nil || i.Interaction == nil {
		return
	}

	ev := &event{interaction: i.Interaction, user: interactionUser(i.Interaction)}
	if ev.user == nil {
		return
	}

	var h handler
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData()
		ev.customID = data.CustomID
		ev.values = data.Values
		h = r.components[data.CustomID]
	case discordgo.InteractionModalSubmit:
		data := i.ModalSubmitData()
		ev.customID = data.CustomID
		ev.fields = modalValues(data)
		h = r.modals[data.CustomID]
	default:
		return
	}
	if h == nil {
		return
	}

	scope := common.NewScope(ctx, "discord.interaction")
	defer scope.Finish()
	scope.SetAttributes("user_id", ev.user.ID)
	scope.SetAttributes("custom_id", ev.customID)
	scope.WithField("user_id", ev.user.ID).WithField("custom_id", ev.customID)

	if err := h(scope, ev); err != nil {
		r.reportError(scope, ev, err)
	}
}

func (r *Router) startHandler(c order.Category) handler {
	return func(scope *common.Scope, ev *event) error {
		if _, err := r.flow.Advance(scope.Ctx, ev.user.ID, flow.StartInput{Category: c, Username: ev.user.Username}); err != nil {
			return err
		}
		return r.session.InteractionRespond(ev.interaction, DetailsModal(c), discordgo.WithContext(scope.Ctx))
	}
}

func (r *Router) handleTrophyModal(scope *common.Scope, ev *event) error {
	res, err := r.flow.Advance(scope.Ctx, ev.user.ID, flow.TrophyDetails{
		Current:      ev.fields[inputCurrent],
		Desired:      ev.fields[inputDesired],
		BrawlerLevel: ev.fields[inputBrawlerLevel],
	})
	if err != nil {
		return err
	}
	return r.reply(scope.Ctx, ev, PaymentMenu(res.State))
}

func (r *Router) handleBulkModal(scope *common.Scope, ev *event) error {
	res, err := r.flow.Advance(scope.Ctx, ev.user.ID, flow.BulkDetails{
		Current: ev.fields[inputCurrent],
		Desired: ev.fields[inputDesired],
	})
	if err != nil {
		return err
	}
	return r.reply(scope.Ctx, ev, PaymentMenu(res.State))
}

func (r *Router) handleRankedModal(scope *common.Scope, ev *event) error {
	res, err := r.flow.Advance(scope.Ctx, ev.user.ID, flow.RankedDetails{P11Count: ev.fields[inputP11Count]})
	if err != nil {
		return err
	}
	return r.reply(scope.Ctx, ev, r.nextTierStep(res.State))
}

func (r *Router) handleMasteryModal(scope *common.Scope, ev *event) error {
	res, err := r.flow.Advance(scope.Ctx, ev.user.ID, flow.MasteryDetails{Brawler: ev.fields[inputBrawler]})
	if err != nil {
		return err
	}
	return r.reply(scope.Ctx, ev, r.nextTierStep(res.State))
}

// The Other modal is also reachable after the flow expired, so an empty Other
// flow is created first when needed.
func (r *Router) handleOtherModal(scope *common.Scope, ev *event) error {
	if _, err := r.flow.GetOrCreate(scope.Ctx, ev.user.ID); err != nil {
		return err
	}
	res, err := r.flow.Advance(scope.Ctx, ev.user.ID, flow.OtherDetails{Request: ev.fields[inputRequest]})
	if err != nil {
		return err
	}
	return r.reply(scope.Ctx, ev, PaymentMenu(res.State))
}

func (r *Router) nextTierStep(s *flowstate.FlowState) *discordgo.InteractionResponseData {
	if s.Priced() {
		return PaymentMenu(s)
	}
	return TierSelect(s, flow.SideCurrent)
}

func (r *Router) tierHandler(side flow.TierSide) handler {
	return func(scope *common.Scope, ev *event) error {
		res, err := r.flow.Advance(scope.Ctx, ev.user.ID, flow.TierSelection{Side: side, Label: ev.value()})
		if err != nil {
			return err
		}
		if side == flow.SideCurrent {
			return r.update(scope.Ctx, ev, TierSelect(res.State, flow.SideDesired))
		}
		return r.update(scope.Ctx, ev, PaymentMenu(res.State))
	}
}

func (r *Router) handlePayment(scope *common.Scope, ev *event) error {
	res, err := r.flow.Advance(scope.Ctx, ev.user.ID, flow.PaymentSelection{Method: ev.value()})
	if err != nil {
		return err
	}
	return r.update(scope.Ctx, ev, ConfirmMessage(res.State))
}

// Ticket creation can outlast the interaction deadline, so the response is
// deferred and the outcome sent as a followup.
func (r *Router) handleConfirm(scope *common.Scope, ev *event) error {
	err := r.session.InteractionRespond(ev.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}, discordgo.WithContext(scope.Ctx))
	if err != nil {
		return fmt.Errorf("failed to defer confirmation: %w", err)
	}

	handoff := scope.NewChildScope("flow.confirm")
	var content string
	res, err := r.flow.Advance(handoff.Ctx, ev.user.ID, flow.Confirmation{})
	if err != nil {
		r.logError(handoff, err)
		content = flow.UserMessage(err)
	} else {
		handoff.TraceEvent("ticket created")
		content = "Your ticket has been created!"
		if res.Ticket != nil && res.Ticket.ChannelID != "" {
			content = fmt.Sprintf("Your ticket has been created: <#%s>", res.Ticket.ChannelID)
		}
		handoff.Log.Infof("order confirmed, ticket %+v", res.Ticket)
	}
	handoff.Finish()

	_, err = r.session.FollowupMessageCreate(ev.interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	}, discordgo.WithContext(scope.Ctx))
	if err != nil {
		scope.Log.Errorf("failed to send confirmation followup: %v", err)
	}
	return nil
}

func (r *Router) handleCancel(scope *common.Scope, ev *event) error {
	if _, err := r.flow.Advance(scope.Ctx, ev.user.ID, flow.Cancellation{}); err != nil {
		return err
	}
	return r.update(scope.Ctx, ev, &discordgo.InteractionResponseData{
		Content:    "Order cancelled.",
		Embeds:     []*discordgo.MessageEmbed{},
		Components: []discordgo.MessageComponent{},
	})
}

func (r *Router) reply(ctx context.Context, ev *event, data *discordgo.InteractionResponseData) error {
	return r.session.InteractionRespond(ev.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}, discordgo.WithContext(ctx))
}

func (r *Router) update(ctx context.Context, ev *event, data *discordgo.InteractionResponseData) error {
	return r.session.InteractionRespond(ev.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: data,
	}, discordgo.WithContext(ctx))
}

func (r *Router) reportError(scope *common.Scope, ev *event, err error) {
	r.logError(scope, err)

	respErr := r.reply(scope.Ctx, ev, &discordgo.InteractionResponseData{
		Content: flow.UserMessage(err),
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if respErr != nil {
		scope.Log.Errorf("failed to send error response: %v", respErr)
	}
}

func (r *Router) logError(scope *common.Scope, err error) {
	if flow.IsUserError(err) {
		scope.Log.Infof("interaction rejected: %v", err)
		return
	}
	scope.TraceError(err)
	scope.Log.Errorf("interaction failed: %v", err)
}

func interactionUser(i *discordgo.Interaction) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

func modalValues(data discordgo.ModalSubmitInteractionData) map[string]string {
	values := make(map[string]string)
	for _, c := range data.Components {
		var row []discordgo.MessageComponent
		switch v := c.(type) {
		case *discordgo.ActionsRow:
			row = v.Components
		case discordgo.ActionsRow:
			row = v.Components
		}
		for _, inner := range row {
			switch in := inner.(type) {
			case *discordgo.TextInput:
				values[in.CustomID] = strings.TrimSpace(in.Value)
			case discordgo.TextInput:
				values[in.CustomID] = strings.TrimSpace(in.Value)
			}
		}
	}
	return values
}
