package order

import (
	"fmt"
	"time"
)

// Actor identifies who requests a status change.
type Actor string

const (
	ActorSystem   Actor = "system"
	ActorAdmin    Actor = "admin"
	ActorDelivery Actor = "delivery"
)

type rule struct {
	actors []Actor
	// only restricts the rule to the listed order types; empty means any.
	only []Type
	// except excludes the listed order types.
	except []Type
}

type edge struct{ from, to Status }

var transitions = map[edge]rule{
	{StatusPendingPayment, StatusPending}:   {actors: []Actor{ActorSystem, ActorAdmin}},
	{StatusPendingPayment, StatusCancelled}: {actors: []Actor{ActorSystem, ActorAdmin}},
	{StatusPending, StatusReady}:            {actors: []Actor{ActorAdmin}},
	{StatusReady, StatusOnWay}:              {actors: []Actor{ActorAdmin, ActorDelivery}, only: []Type{TypeDelivery}},
	{StatusReady, StatusDelivered}:          {actors: []Actor{ActorAdmin, ActorDelivery}, except: []Type{TypeDelivery}},
	{StatusOnWay, StatusDelivered}:          {actors: []Actor{ActorAdmin, ActorDelivery}},

	// administrative reopen
	{StatusReady, StatusPending}:     {actors: []Actor{ActorAdmin}},
	{StatusOnWay, StatusPending}:     {actors: []Actor{ActorAdmin}},
	{StatusDelivered, StatusPending}: {actors: []Actor{ActorAdmin}},
	{StatusCancelled, StatusPending}: {actors: []Actor{ActorAdmin}},
}

// CanTransition reports whether actor may move an order of type t from one status to another.
func CanTransition(from, to Status, t Type, actor Actor) bool {
	r, ok := transitions[edge{from, to}]
	if !ok {
		return false
	}
	if len(r.only) > 0 && !containsType(r.only, t) {
		return false
	}
	if containsType(r.except, t) {
		return false
	}
	for _, a := range r.actors {
		if a == actor {
			return true
		}
	}
	return false
}

// NextStatuses lists the statuses actor may move the order to.
func (o *Order) NextStatuses(actor Actor) []Status {
	all := []Status{StatusPendingPayment, StatusPending, StatusReady, StatusOnWay, StatusDelivered, StatusCancelled}
	var out []Status
	for _, s := range all {
		if CanTransition(o.Status, s, o.OrderType, actor) {
			out = append(out, s)
		}
	}
	return out
}

// Transition moves the order to the given status. Moving to on_way records the courier.
func (o *Order) Transition(to Status, actor Actor, deliveryPerson string, now time.Time) error {
	if !CanTransition(o.Status, to, o.OrderType, actor) {
		return fmt.Errorf("%w: %s -> %s by %s on %s order", ErrInvalidTransition, o.Status, to, actor, o.OrderType)
	}
	o.Status = to
	if to == StatusOnWay && deliveryPerson != "" {
		o.DeliveryPerson = deliveryPerson
	}
	o.touch(now)
	return nil
}

func containsType(ts []Type, t Type) bool {
	for _, x := range ts {
		if x == t {
			return true
		}
	}
	return false
}
