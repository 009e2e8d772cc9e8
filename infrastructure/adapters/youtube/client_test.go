package youtube

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softwarewrighter/hybrid-vid/internal/ports"
)

func TestClient_UploadVideo(t *testing.T) {
	t.Run("reports not implemented", func(t *testing.T) {
		client := NewClient("UC123")

		id, err := client.UploadVideo(context.Background(), "final.mp4", "title", "desc")

		require.Error(t, err)
		assert.Empty(t, id)
		assert.ErrorIs(t, err, ports.ErrNotImplemented)

		var adapterErr *ports.AdapterError
		require.True(t, errors.As(err, &adapterErr))
		assert.Equal(t, "youtube", adapterErr.Service)
		assert.Equal(t, "upload_video", adapterErr.Operation)
	})

	t.Run("honors cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewClient("").UploadVideo(ctx, "final.mp4", "", "")

		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, ports.ErrNotImplemented)
	})
}
