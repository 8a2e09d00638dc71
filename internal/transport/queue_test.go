package transport

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-taskbridge/internal/logger"
	"pos-taskbridge/internal/models"
)

type fakeTaskPublisher struct {
	msgs []*models.TaskRequestMessage
	err  error
}

func (p *fakeTaskPublisher) PublishTaskRequest(_ context.Context, msg *models.TaskRequestMessage) error {
	p.msgs = append(p.msgs, msg)
	return p.err
}

func TestQueueSubmitter(t *testing.T) {
	pub := &fakeTaskPublisher{}
	s := NewQueueSubmitter(pub, logger.Discard())

	res, err := s.CreatePreparationTask(context.Background(), models.NewOrderData(3))
	require.NoError(t, err)
	assert.True(t, res.Success)

	res, err = s.CreateTask(context.Background(), models.TaskRequest{OrderID: 9, ProjectID: 3})
	require.NoError(t, err)
	assert.True(t, res.Success)

	require.Len(t, pub.msgs, 2)
	assert.Equal(t, models.TaskKindPreparation, pub.msgs[0].Kind)
	assert.Equal(t, "task.preparation", pub.msgs[0].RoutingKey())
	assert.Equal(t, int64(3), pub.msgs[0].OrderData.ProjectID)
	assert.Equal(t, models.TaskKindOrder, pub.msgs[1].Kind)
	assert.Equal(t, int64(9), pub.msgs[1].Order.OrderID)
	assert.NotEmpty(t, pub.msgs[1].RequestID)
}

func TestQueueSubmitter_PublishFailure(t *testing.T) {
	s := NewQueueSubmitter(&fakeTaskPublisher{err: errors.New("channel closed")}, logger.Discard())

	_, err := s.CreateTask(context.Background(), models.TaskRequest{OrderID: 9})

	var terr *models.TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "create_task", terr.Op)
}
