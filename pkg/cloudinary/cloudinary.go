package cloudinary

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"
)

// Client stores profile avatars.
type Client interface {
	UploadAvatar(ctx context.Context, file io.Reader, folder, publicID string) (url string, err error)
	DeleteByURL(ctx context.Context, url string) error
}

// Avatar delivery params
const (
	AvatarSize  = 400
	avatarEager = "q_auto,f_auto,w_400,h_400,c_fill,g_face"
)

var (
	eagerAsyncFalse = false
	overwriteTrue   = true
)

// BuildAvatarURL returns an optimized delivery URL for an existing public ID.
func BuildAvatarURL(cloudName, publicID string, size int) string {
	if size <= 0 {
		size = AvatarSize
	}
	return fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/q_auto,f_auto,w_%d,h_%d,c_fill,g_face/%s",
		cloudName, size, size, publicID)
}

// PublicIDFromURL extracts the public ID from a Cloudinary delivery URL. Transformation
// segments, the version segment and the file extension are dropped.
func PublicIDFromURL(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || !strings.HasSuffix(u.Host, "cloudinary.com") {
		return "", false
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	idx := -1
	for i, p := range parts {
		if p == "upload" {
			idx = i
			break
		}
	}
	if idx < 0 || idx == len(parts)-1 {
		return "", false
	}
	rest := parts[idx+1:]
	for len(rest) > 1 && (strings.Contains(rest[0], ",") || isTransformation(rest[0])) {
		rest = rest[1:]
	}
	if len(rest) > 1 && isVersion(rest[0]) {
		rest = rest[1:]
	}
	id := strings.Join(rest, "/")
	id = strings.TrimSuffix(id, path.Ext(id))
	if id == "" {
		return "", false
	}
	return id, true
}

// isTransformation matches single-parameter segments such as w_400 or c_fill.
func isTransformation(seg string) bool {
	return len(seg) > 2 && seg[1] == '_' && !strings.Contains(seg, ".")
}

func isVersion(seg string) bool {
	if len(seg) < 2 || seg[0] != 'v' {
		return false
	}
	for _, r := range seg[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

type clientImpl struct {
	cloudName string
	uploader  *uploader.API
}

// UploadAvatar uploads a square, face-cropped avatar and returns its optimized URL.
func (c *clientImpl) UploadAvatar(ctx context.Context, file io.Reader, folder, publicID string) (string, error) {
	result, err := c.uploader.Upload(ctx, file, uploader.UploadParams{
		Folder:     folder,
		PublicID:   publicID,
		Overwrite:  &overwriteTrue,
		Eager:      avatarEager,
		EagerAsync: &eagerAsyncFalse,
	})
	if err != nil {
		return "", err
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", result.Error.Message)
	}
	if len(result.Eager) > 0 && result.Eager[0].SecureURL != "" {
		return result.Eager[0].SecureURL, nil
	}
	if result.SecureURL != "" {
		return result.SecureURL, nil
	}
	return BuildAvatarURL(c.cloudName, result.PublicID, AvatarSize), nil
}

// DeleteByURL removes the asset behind a previously returned URL. URLs that do not
// point at Cloudinary are ignored.
func (c *clientImpl) DeleteByURL(ctx context.Context, rawURL string) error {
	publicID, ok := PublicIDFromURL(rawURL)
	if !ok {
		return nil
	}
	result, err := c.uploader.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return err
	}
	if result.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy: %s", result.Error.Message)
	}
	return nil
}

// NewClientFromParams builds a Client from Cloudinary cloud name, API key, and secret.
func NewClientFromParams(cloudName, apiKey, apiSecret string) (Client, error) {
	cfg, err := config.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	up, err := uploader.NewWithConfiguration(cfg)
	if err != nil {
		return nil, err
	}
	return &clientImpl{
		cloudName: cloudName,
		uploader:  up,
	}, nil
}
