// Package youtube adapts the YouTube upload API to ports.VideoUploader.
package youtube

import (
	"context"

	"github.com/softwarewrighter/hybrid-vid/internal/ports"
)

const serviceName = "youtube"

var _ ports.VideoUploader = (*Client)(nil)

// Client uploads videos to YouTube. Uploading is not implemented yet and
// every call fails with ports.ErrNotImplemented.
type Client struct {
	// ChannelID selects the destination channel.
	ChannelID string
}

// NewClient creates a client for channelID.
func NewClient(channelID string) *Client {
	return &Client{ChannelID: channelID}
}

// UploadVideo implements ports.VideoUploader.
func (c *Client) UploadVideo(ctx context.Context, _, _, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", ports.NewAdapterError(serviceName, "upload_video", err)
	}
	return "", ports.NewAdapterError(serviceName, "upload_video", ports.ErrNotImplemented)
}
