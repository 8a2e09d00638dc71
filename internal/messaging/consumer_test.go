package messaging

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-taskbridge/internal/models"
)

func TestPermanent(t *testing.T) {
	base := errors.New("bad payload")

	assert.Nil(t, Permanent(nil))
	assert.True(t, IsPermanent(Permanent(base)))
	assert.True(t, IsPermanent(fmt.Errorf("handler: %w", Permanent(base))))
	assert.True(t, errors.Is(Permanent(base), base))
	assert.False(t, IsPermanent(base))
}

func TestParseMessage(t *testing.T) {
	var msg models.TaskRequestMessage
	require.NoError(t, ParseMessage([]byte(`{"kind":"order","request_id":"r1","order":{"order_id":4,"project_id":2}}`), &msg))
	assert.Equal(t, models.TaskKindOrder, msg.Kind)
	assert.Equal(t, "task.order", msg.RoutingKey())
	require.NotNil(t, msg.Order)
	assert.Equal(t, int64(4), msg.Order.OrderID)

	err := ParseMessage([]byte(`{"kind":`), &msg)
	require.Error(t, err)
	assert.True(t, IsPermanent(err))
}
