package core

import "testing"

func TestTurnConstructors(t *testing.T) {
	u := UserTurn("hello")
	if u.Role != RoleUser || u.Content != "hello" {
		t.Errorf("UserTurn = %+v", u)
	}

	a := AssistantTurn("hi")
	if a.Role != RoleAssistant || a.Content != "hi" {
		t.Errorf("AssistantTurn = %+v", a)
	}
}

func TestAssistantTurnFromReply(t *testing.T) {
	r := EmptyReply()
	r.Answer = "two matches"
	r.Products = append(r.Products, Product{Title: "Drain Pump", PartID: "PS1"})
	r.FollowUp = append(r.FollowUp, "Want install steps?")

	turn := AssistantTurnFromReply(r)
	if turn.Role != RoleAssistant {
		t.Errorf("role = %q", turn.Role)
	}
	if turn.Content != "two matches" {
		t.Errorf("content = %q", turn.Content)
	}
	if len(turn.Products) != 1 || turn.Products[0].PartID != "PS1" {
		t.Errorf("products = %+v", turn.Products)
	}
	if len(turn.FollowUp) != 1 {
		t.Errorf("follow-up = %+v", turn.FollowUp)
	}
}

func TestProductKey(t *testing.T) {
	if got := (Product{Title: "Pump", PartID: "PS1"}).Key(); got != "PS1" {
		t.Errorf("Key() = %q, want part id", got)
	}
	if got := (Product{Title: "Pump"}).Key(); got != "Pump" {
		t.Errorf("Key() = %q, want title fallback", got)
	}
}

func TestEmptyReplyShape(t *testing.T) {
	r := EmptyReply()
	if r.Products == nil || r.Orders == nil || r.FollowUp == nil || r.References == nil {
		t.Fatalf("EmptyReply has nil collections: %+v", r)
	}
	if len(r.Products)+len(r.Orders)+len(r.FollowUp)+len(r.References) != 0 {
		t.Fatalf("EmptyReply not empty: %+v", r)
	}
}
