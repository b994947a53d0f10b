package enums

import "testing"

func TestOrderStatusTransitions(t *testing.T) {
	allowed := []struct {
		from OrderStatus
		to   OrderStatus
	}{
		{OrderStatusPending, OrderStatusProcessing},
		{OrderStatusPending, OrderStatusCancelled},
		{OrderStatusProcessing, OrderStatusShipped},
		{OrderStatusProcessing, OrderStatusCancelled},
		{OrderStatusShipped, OrderStatusDelivered},
	}
	for _, tt := range allowed {
		if !tt.from.CanTransitionTo(tt.to) {
			t.Fatalf("expected %s -> %s to be allowed", tt.from, tt.to)
		}
	}

	denied := []struct {
		from OrderStatus
		to   OrderStatus
	}{
		{OrderStatusPending, OrderStatusShipped},
		{OrderStatusPending, OrderStatusDelivered},
		{OrderStatusProcessing, OrderStatusDelivered},
		{OrderStatusShipped, OrderStatusCancelled},
		{OrderStatusShipped, OrderStatusPending},
		{OrderStatusDelivered, OrderStatusShipped},
		{OrderStatusDelivered, OrderStatusCancelled},
		{OrderStatusCancelled, OrderStatusPending},
		{OrderStatusCancelled, OrderStatusProcessing},
	}
	for _, tt := range denied {
		if tt.from.CanTransitionTo(tt.to) {
			t.Fatalf("expected %s -> %s to be rejected", tt.from, tt.to)
		}
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	if !OrderStatusDelivered.IsTerminal() {
		t.Fatal("delivered should be terminal")
	}
	if !OrderStatusCancelled.IsTerminal() {
		t.Fatal("cancelled should be terminal")
	}
	if OrderStatusPending.IsTerminal() {
		t.Fatal("pending should not be terminal")
	}
	if OrderStatus("bogus").IsTerminal() {
		t.Fatal("unknown status should not report terminal")
	}
}

func TestParseOrderStatus(t *testing.T) {
	if got, err := ParseOrderStatus("shipped"); err != nil || got != OrderStatusShipped {
		t.Fatalf("ParseOrderStatus(shipped) = %v, %v", got, err)
	}
	if _, err := ParseOrderStatus("returned"); err == nil {
		t.Fatal("expected parse failure for unknown status")
	}
}
