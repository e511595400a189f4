package external

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// UploadedImage identifies an image held by the media store.
type UploadedImage struct {
	URL      string `json:"secure_url"`
	PublicID string `json:"public_id"`
}

// MediaStore uploads and deletes images.
type MediaStore interface {
	Upload(ctx context.Context, folder, filename string, r io.Reader) (*UploadedImage, error)
	Destroy(ctx context.Context, publicID string) error
}

type CloudinaryConfig struct {
	BaseURL   string
	CloudName string
	APIKey    string
	APISecret string
}

// CloudinaryClient performs signed uploads against the Cloudinary upload API.
type CloudinaryClient struct {
	cfg    CloudinaryConfig
	client *resty.Client
	now    func() time.Time
}

func NewCloudinaryClient(cfg CloudinaryConfig) *CloudinaryClient {
	c := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(60 * time.Second)
	return &CloudinaryClient{cfg: cfg, client: c, now: time.Now}
}

// sign builds the api signature: params sorted by key, joined as k=v with
// '&', the secret appended, then SHA-1 hex.
func (c *CloudinaryClient) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "&") + c.cfg.APISecret))
	return hex.EncodeToString(sum[:])
}

func (c *CloudinaryClient) signed(params map[string]string) map[string]string {
	params["timestamp"] = strconv.FormatInt(c.now().Unix(), 10)
	form := map[string]string{"api_key": c.cfg.APIKey, "signature": c.sign(params)}
	for k, v := range params {
		form[k] = v
	}
	return form
}

func (c *CloudinaryClient) Upload(ctx context.Context, folder, filename string, r io.Reader) (*UploadedImage, error) {
	params := map[string]string{}
	if folder != "" {
		params["folder"] = folder
	}

	var out UploadedImage
	resp, err := c.client.R().
		SetContext(ctx).
		SetFormData(c.signed(params)).
		SetFileReader("file", filename, r).
		SetResult(&out).
		Post("/v1_1/" + c.cfg.CloudName + "/image/upload")
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("upload image: status %d", resp.StatusCode())
	}
	return &out, nil
}

func (c *CloudinaryClient) Destroy(ctx context.Context, publicID string) error {
	var out struct {
		Result string `json:"result"`
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetFormData(c.signed(map[string]string{"public_id": publicID})).
		SetResult(&out).
		Post("/v1_1/" + c.cfg.CloudName + "/image/destroy")
	if err != nil {
		return fmt.Errorf("destroy image: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("destroy image: status %d", resp.StatusCode())
	}
	if out.Result != "ok" && out.Result != "not found" {
		return fmt.Errorf("destroy image: %s", out.Result)
	}
	return nil
}
