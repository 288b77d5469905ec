package client

import (
	"context"
	"testing"

	"course-marketplace/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCloudinaryClient(t *testing.T) {
	media, err := NewCloudinaryClient(&config.Cloudinary{
		CloudName: "demo",
		APIKey:    "key",
		APISecret: "secret",
		Folder:    "courses",
	})
	require.NoError(t, err)

	impl, ok := media.(*cloudinaryClientImpl)
	require.True(t, ok)
	assert.Equal(t, "courses", impl.folder)
	assert.Equal(t, "demo", impl.cld.Config.Cloud.CloudName)
}

func TestCloudinaryClient_DestroyRequiresPublicID(t *testing.T) {
	media, err := NewCloudinaryClient(&config.Cloudinary{CloudName: "demo", APIKey: "key", APISecret: "secret"})
	require.NoError(t, err)

	err = media.Destroy(context.Background(), "")
	assert.EqualError(t, err, "empty public id")
}
