package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/itemkeeper/internal/client/api"
	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	other := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"unauthorized", &api.Error{StatusCode: 401, Message: "Unauthorized"}, errSessionExpired.Error()},
		{"server message", &api.Error{StatusCode: 409, Message: "User already exists"}, "User already exists"},
		{"unavailable", fmt.Errorf("%w: dial", api.ErrUnavailable), "server unavailable, try again later"},
		{"context", context.Canceled, "context canceled"},
		{"other", other, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := describe(tt.err)
			if tt.want == "" {
				assert.NoError(t, got)
				return
			}
			assert.EqualError(t, got, tt.want)
		})
	}
}
