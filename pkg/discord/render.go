package discord

import (
	"fmt"
	"strconv"
	"time"

	"github.com/boostdesk/ticket-bot/pkg/flow"
	"github.com/boostdesk/ticket-bot/pkg/flowstate"
	"github.com/boostdesk/ticket-bot/pkg/order"
	"github.com/boostdesk/ticket-bot/pkg/pricing"
	"github.com/bwmarrin/discordgo"
)

const embedColor = 0x2B2D31

// Component and modal custom IDs.
const (
	ticketButtonPrefix = "ticket_"
	modalPrefix        = "modal_"

	RankedCurrentSelect  = "ranked_current"
	RankedDesiredSelect  = "ranked_desired"
	MasteryCurrentSelect = "mastery_current"
	MasteryDesiredSelect = "mastery_desired"
	PaymentMethodSelect  = "payment_method_select"
	ConfirmButton        = "confirm_ticket"
	CancelButton         = "cancel_ticket"

	inputCurrent      = "current"
	inputDesired      = "desired"
	inputBrawlerLevel = "brawler_level"
	inputP11Count     = "p11_count"
	inputBrawler      = "brawler"
	inputRequest      = "request"
)

// TicketButtonID returns the panel button custom ID for a category.
func TicketButtonID(c order.Category) string {
	return ticketButtonPrefix + string(c)
}

// ModalID returns the details modal custom ID for a category.
func ModalID(c order.Category) string {
	return modalPrefix + string(c)
}

// PanelMessage is the public order panel with one button per category.
func PanelMessage() *discordgo.MessageSend {
	buttons := make([]discordgo.MessageComponent, 0, len(order.Categories))
	for _, c := range order.Categories {
		style := discordgo.PrimaryButton
		if c == order.CategoryOther {
			style = discordgo.SecondaryButton
		}
		buttons = append(buttons, discordgo.Button{
			Label:    c.Label(),
			Style:    style,
			CustomID: TicketButtonID(c),
		})
	}

	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "Order a Boost",
			Description: "Choose the type of boost you want. You will get a price before anything is ordered.",
			Color:       embedColor,
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: buttons},
		},
	}
}

func textInput(id, label, placeholder string, style discordgo.TextInputStyle, required bool, maxLength int) discordgo.MessageComponent {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.TextInput{
				CustomID:    id,
				Label:       label,
				Style:       style,
				Placeholder: placeholder,
				Required:    required,
				MaxLength:   maxLength,
			},
		},
	}
}

// DetailsModal returns the modal asking for the order details of a category.
func DetailsModal(c order.Category) *discordgo.InteractionResponse {
	var components []discordgo.MessageComponent
	switch c {
	case order.CategoryTrophies:
		components = []discordgo.MessageComponent{
			textInput(inputCurrent, "Current trophies", "e.g. 400", discordgo.TextInputShort, true, 6),
			textInput(inputDesired, "Desired trophies", "e.g. 600", discordgo.TextInputShort, true, 6),
			textInput(inputBrawlerLevel, "Brawler power level (1-11)", "optional", discordgo.TextInputShort, false, 2),
		}
	case order.CategoryBulk:
		components = []discordgo.MessageComponent{
			textInput(inputCurrent, "Current total trophies", "e.g. 25000", discordgo.TextInputShort, true, 7),
			textInput(inputDesired, "Desired total trophies", "e.g. 30000", discordgo.TextInputShort, true, 7),
		}
	case order.CategoryRanked:
		components = []discordgo.MessageComponent{
			textInput(inputP11Count, "How many power 11 brawlers do you have?", "optional", discordgo.TextInputShort, false, 3),
		}
	case order.CategoryMastery:
		components = []discordgo.MessageComponent{
			textInput(inputBrawler, "Brawler", "e.g. Shelly", discordgo.TextInputShort, true, 50),
		}
	default:
		components = []discordgo.MessageComponent{
			textInput(inputRequest, "What would you like to order?", "Describe your request", discordgo.TextInputParagraph, true, 1000),
		}
	}

	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   ModalID(c),
			Title:      c.Label(),
			Components: components,
		},
	}
}

func tierSelectID(c order.Category, side flow.TierSide) string {
	if c == order.CategoryRanked {
		if side == flow.SideDesired {
			return RankedDesiredSelect
		}
		return RankedCurrentSelect
	}
	if side == flow.SideDesired {
		return MasteryDesiredSelect
	}
	return MasteryCurrentSelect
}

// TierSelect asks for the current or desired tier of a ranked or mastery
// order. Desired options only include tiers above the current one.
func TierSelect(s *flowstate.FlowState, side flow.TierSide) *discordgo.InteractionResponseData {
	tierOrder := pricing.MasteryOrder
	noun := "mastery level"
	if s.Type == order.CategoryRanked {
		tierOrder = pricing.RankedOrder
		noun = "rank"
	}

	// Nobody can be boosted from the top tier.
	tiers := tierOrder[:len(tierOrder)-1]
	if side == flow.SideDesired {
		tiers = tierOrder[pricing.IndexOf(tierOrder, s.Current.Tier)+1:]
	}

	options := make([]discordgo.SelectMenuOption, 0, len(tiers))
	for _, label := range tiers {
		options = append(options, discordgo.SelectMenuOption{Label: label, Value: label})
	}

	return &discordgo.InteractionResponseData{
		Content: fmt.Sprintf("Select your %s %s.", side, noun),
		Flags:   discordgo.MessageFlagsEphemeral,
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    tierSelectID(s.Type, side),
					Placeholder: fmt.Sprintf("Select %s %s", side, noun),
					Options:     options,
				},
			}},
		},
	}
}

// PaymentMenu shows the quote and asks for a payment method.
func PaymentMenu(s *flowstate.FlowState) *discordgo.InteractionResponseData {
	options := make([]discordgo.SelectMenuOption, 0, len(order.PaymentMethods))
	for _, m := range order.PaymentMethods {
		options = append(options, discordgo.SelectMenuOption{
			Label:   m.Label(),
			Value:   string(m),
			Default: m == s.PaymentMethod,
		})
	}

	return &discordgo.InteractionResponseData{
		Flags:  discordgo.MessageFlagsEphemeral,
		Embeds: []*discordgo.MessageEmbed{PriceEmbed(s)},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    PaymentMethodSelect,
					Placeholder: "Select a payment method",
					Options:     options,
				},
			}},
		},
	}
}

// ConfirmMessage recaps the order and asks the customer to confirm it.
func ConfirmMessage(s *flowstate.FlowState) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		Flags:  discordgo.MessageFlagsEphemeral,
		Embeds: []*discordgo.MessageEmbed{PriceEmbed(s)},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Confirm", Style: discordgo.SuccessButton, CustomID: ConfirmButton},
				discordgo.Button{Label: "Cancel", Style: discordgo.DangerButton, CustomID: CancelButton},
			}},
		},
	}
}

// PriceEmbed shows the order details and quote of an in-progress flow.
func PriceEmbed(s *flowstate.FlowState) *discordgo.MessageEmbed {
	o := &order.Order{
		Category:      s.Type,
		Current:       s.Current,
		Desired:       s.Desired,
		BrawlerLevel:  s.BrawlerLevel,
		P11Count:      s.P11Count,
		Brawler:       s.Brawler,
		Request:       s.Request,
		PaymentMethod: s.PaymentMethod,
	}
	if s.Price != nil {
		o.Price = *s.Price
	}

	embed := &discordgo.MessageEmbed{
		Title:  "Your Order",
		Color:  embedColor,
		Fields: orderFields(o),
	}
	if o.Priced() {
		embed.Description = fmt.Sprintf("Your price is **€%s**.", o.Price.StringFixed(2))
	} else {
		embed.Description = "Staff will quote your request in the ticket."
	}
	return embed
}

// OrderRecapEmbed is posted in the new ticket channel.
func OrderRecapEmbed(o *order.Order) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Order Recap",
		Description: fmt.Sprintf("Thank you <@%s>! Staff will be with you shortly.", o.UserID),
		Color:       embedColor,
		Fields:      orderFields(o),
		Footer:      &discordgo.MessageEmbedFooter{Text: "Order " + o.ID},
		Timestamp:   o.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// OrderLogEmbed is posted in the staff log channel.
func OrderLogEmbed(o *order.Order, t *order.Ticket) *discordgo.MessageEmbed {
	description := fmt.Sprintf("<@%s> ordered %s", o.UserID, o.Summary())
	if o.Priced() {
		description += fmt.Sprintf(" for €%s", o.Price.StringFixed(2))
	}
	if t != nil && t.ChannelID != "" {
		description += fmt.Sprintf(" in <#%s>", t.ChannelID)
	}
	return &discordgo.MessageEmbed{
		Title:       "New Order",
		Description: description,
		Color:       embedColor,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Order " + o.ID},
	}
}

func orderFields(o *order.Order) []*discordgo.MessageEmbedField {
	fields := []*discordgo.MessageEmbedField{
		{Name: "Boost Type", Value: o.Category.Label(), Inline: true},
	}
	if o.HasRange() {
		fields = append(fields,
			&discordgo.MessageEmbedField{Name: "Current", Value: o.Current.String(), Inline: true},
			&discordgo.MessageEmbedField{Name: "Desired", Value: o.Desired.String(), Inline: true},
		)
	}
	if o.BrawlerLevel != nil {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Power Level", Value: strconv.Itoa(*o.BrawlerLevel), Inline: true})
	}
	if o.P11Count != nil {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "P11 Brawlers", Value: strconv.Itoa(*o.P11Count), Inline: true})
	}
	if o.Brawler != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Brawler", Value: o.Brawler, Inline: true})
	}
	if o.Request != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Request", Value: o.Request})
	}
	if o.Priced() {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Price", Value: "€" + o.Price.StringFixed(2), Inline: true})
	}
	if o.PaymentMethod != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Payment Method", Value: o.PaymentMethod.Label(), Inline: true})
	}
	return fields
}
