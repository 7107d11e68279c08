package blacklist

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"playermarket-api/internal/storage"
)

func TestSubscriberApplyDispatchesByChannel(t *testing.T) {
	mirror := NewMirror()
	s := NewSubscriber(nil, mirror, nil)

	s.apply(storage.ChannelBlacklistAdd, "stone")
	assert.True(t, mirror.Contains("stone"))

	s.apply(storage.ChannelBlacklistRemove, "stone")
	assert.False(t, mirror.Contains("stone"))
}

func TestSubscriberApplyIgnoresUnknownChannel(t *testing.T) {
	mirror := NewMirror()
	s := NewSubscriber(nil, mirror, nil)

	s.apply("market-something-else", "stone")
	assert.False(t, mirror.Contains("stone"))
	assert.Equal(t, 0, mirror.Len())
}

func TestSubscriberApplyRemoveIsHarmlessWhenAbsent(t *testing.T) {
	mirror := NewMirror()
	s := NewSubscriber(nil, mirror, nil)

	// A process may receive the echo of its own mutation after applying it
	// locally; re-applying must not disturb the mirror.
	s.apply(storage.ChannelBlacklistRemove, "stone")
	assert.Equal(t, 0, mirror.Len())

	s.apply(storage.ChannelBlacklistAdd, "dirt")
	s.apply(storage.ChannelBlacklistAdd, "dirt")
	assert.Equal(t, 1, mirror.Len())
}
