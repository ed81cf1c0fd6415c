package enums

import "testing"

func TestOrderStatusMembership(t *testing.T) {
	for _, s := range OrderStatuses() {
		if !s.IsValid() {
			t.Fatalf("status %s should be valid", s)
		}
	}
	if OrderStatus("shipped").IsValid() {
		t.Fatal("unknown status must not validate")
	}
	if _, err := ParseOrderStatus("shipped"); err == nil {
		t.Fatal("expected parse error for unknown status")
	}
}

func TestOrderStatusAdjacency(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusReady, false},
		{OrderStatusConfirmed, OrderStatusPreparing, true},
		{OrderStatusPreparing, OrderStatusReady, true},
		{OrderStatusReady, OrderStatusDelivered, true},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusConfirmed, OrderStatusConfirmed, true},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Fatalf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	if !OrderStatusDelivered.IsTerminal() || !OrderStatusCancelled.IsTerminal() {
		t.Fatal("delivered and cancelled are terminal")
	}
	if OrderStatusPending.IsTerminal() {
		t.Fatal("pending is not terminal")
	}
	if OrderStatus("bogus").IsTerminal() {
		t.Fatal("unknown status is not terminal, it is invalid")
	}
}
