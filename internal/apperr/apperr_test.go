package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("creating account: %w", Duplicate("Account with this name already exists"))
	assert.Equal(t, Conflict, KindOf(wrapped))
	assert.Equal(t, "Account with this name already exists", Message(wrapped))

	plain := errors.New("connection refused")
	assert.Equal(t, Internal, KindOf(plain))
	assert.Equal(t, "Something went wrong", Message(plain))
}

func TestBlockedf(t *testing.T) {
	err := Blockedf("Cannot delete account with %d transaction(s)", 3)
	assert.Equal(t, Blocked, KindOf(err))
	assert.Equal(t, "Cannot delete account with 3 transaction(s)", Message(err))
}
