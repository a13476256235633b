package auth

import (
	"context"
	"testing"

	"github.com/rogerio-castellano/pharmacy-dashboard/internal/models"
)

func TestUserContext(t *testing.T) {
	ctx := WithUser(context.Background(), 7, models.RoleCashier)

	if got := UserID(ctx); got != 7 {
		t.Errorf("expected user id 7, got %d", got)
	}
	if got := Role(ctx); got != models.RoleCashier {
		t.Errorf("expected role cashier, got %q", got)
	}

	if UserID(context.Background()) != 0 || Role(context.Background()) != "" {
		t.Error("expected zero values without a user")
	}
}
