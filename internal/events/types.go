// internal/events/types.go
package events

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// EventType represents the type of event.
type EventType string

const (
	// Platform administration events
	PlatformInitialized EventType = "platform.initialized"
	OwnerChanged        EventType = "platform.owner_changed"
	FeesChanged         EventType = "platform.fees_changed"
	TotalSupplyChanged  EventType = "platform.total_supply_changed"
	VirtualSolChanged   EventType = "platform.virtual_sol_changed"
	TargetChanged       EventType = "platform.target_changed"
	FeesWithdrawn       EventType = "platform.fees_withdrawn"

	// Token lifecycle events
	TokenCreated   EventType = "token.created"
	TokenGraduated EventType = "token.graduated"

	// Trade events
	TokensBought EventType = "trade.bought"
	TokensSold   EventType = "trade.sold"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

func newBase(t EventType) BaseEvent {
	return BaseEvent{EventType: t, EventTime: time.Now().UTC()}
}

// PlatformInitializedEvent is emitted once when the registry is created.
type PlatformInitializedEvent struct {
	BaseEvent
	Owner  solana.PublicKey
	FeeBps uint64
}

func NewPlatformInitialized(owner solana.PublicKey, feeBps uint64) PlatformInitializedEvent {
	return PlatformInitializedEvent{BaseEvent: newBase(PlatformInitialized), Owner: owner, FeeBps: feeBps}
}

// AdminChangeEvent covers the owner-authorized field replacements on the
// registry. Field names the changed parameter, Value carries its new value.
type AdminChangeEvent struct {
	BaseEvent
	Field string
	Value uint64
	Owner solana.PublicKey // new owner, only set for owner changes
}

func NewAdminChange(t EventType, field string, value uint64) AdminChangeEvent {
	return AdminChangeEvent{BaseEvent: newBase(t), Field: field, Value: value}
}

func NewOwnerChanged(newOwner solana.PublicKey) AdminChangeEvent {
	return AdminChangeEvent{BaseEvent: newBase(OwnerChanged), Field: "owner", Owner: newOwner}
}

// FeesWithdrawnEvent is emitted when the owner drains accumulated fees.
type FeesWithdrawnEvent struct {
	BaseEvent
	Amount uint64
}

func NewFeesWithdrawn(amount uint64) FeesWithdrawnEvent {
	return FeesWithdrawnEvent{BaseEvent: newBase(FeesWithdrawn), Amount: amount}
}

// TokenCreatedEvent is emitted when a new token launch is registered.
type TokenCreatedEvent struct {
	BaseEvent
	Token           solana.PublicKey
	Name            string
	MetadataAddress string
}

func NewTokenCreated(token solana.PublicKey, name, metadataAddress string) TokenCreatedEvent {
	return TokenCreatedEvent{BaseEvent: newBase(TokenCreated), Token: token, Name: name, MetadataAddress: metadataAddress}
}

// TradeEvent is emitted for every committed buy or sell.
type TradeEvent struct {
	BaseEvent
	Token     solana.PublicKey
	Trader    solana.PublicKey
	SolAmount uint64 // lamports in for buys, lamports out for sells
	Tokens    uint64 // tokens out for buys, tokens in for sells
	Fee       uint64
}

func NewTrade(t EventType, token, trader solana.PublicKey, solAmount, tokens, fee uint64) TradeEvent {
	return TradeEvent{BaseEvent: newBase(t), Token: token, Trader: trader, SolAmount: solAmount, Tokens: tokens, Fee: fee}
}

// TokenGraduatedEvent is emitted the moment real liquidity reaches the
// configured target pool balance.
type TokenGraduatedEvent struct {
	BaseEvent
	Token         solana.PublicKey
	RealLiquidity uint64
}

func NewTokenGraduated(token solana.PublicKey, realLiquidity uint64) TokenGraduatedEvent {
	return TokenGraduatedEvent{BaseEvent: newBase(TokenGraduated), Token: token, RealLiquidity: realLiquidity}
}
