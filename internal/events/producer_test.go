package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WithoutBrokersIsNop(t *testing.T) {
	p := New(nil)
	_, ok := p.(Nop)
	require.True(t, ok)

	assert.NoError(t, p.PublishEvent(context.Background(), TopicBlogs, "k", map[string]any{"type": "blog_created"}))
	assert.NoError(t, p.Close())
}

func TestNew_WithBrokers(t *testing.T) {
	p := New([]string{"localhost:9092"})
	prod, ok := p.(*Producer)
	require.True(t, ok)
	assert.Equal(t, "localhost:9092", prod.writer.Addr.String())
	assert.NoError(t, p.Close())
}

func TestPublishEvent_MarshalError(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"})
	defer p.Close()

	err := p.PublishEvent(context.Background(), TopicUsers, "k", map[string]any{"bad": make(chan int)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json.Marshal")
}
