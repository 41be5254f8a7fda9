package ali

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss"
	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss/credentials"
	"github.com/google/uuid"

	"github.com/reusedev/draw-mcp/config"
)

const defaultDirectory = "draw-mcp/"

var OssClient *ossClient

type ossClient struct {
	client     *oss.Client
	endpoint   string
	bucketName string
	directory  string
}

// InitOSS wires the optional mirror. Uploads are skipped entirely when
// it is never called.
func InitOSS(cfg config.AliOss) error {
	credential := credentials.NewStaticCredentialsProvider(cfg.AccessKeyId, cfg.AccessKeySecret, "")
	c := oss.LoadDefaultConfig().
		WithCredentialsProvider(credential).
		WithEndpoint(cfg.Endpoint).WithRegion(cfg.Region)
	client := oss.NewClient(c)
	if client == nil {
		return fmt.Errorf("create oss client failed")
	}
	directory := cfg.Directory
	if directory == "" {
		directory = defaultDirectory
	} else if !strings.HasSuffix(directory, "/") {
		directory += "/"
	}
	OssClient = &ossClient{
		client:     client,
		endpoint:   cfg.Endpoint,
		bucketName: cfg.Bucket,
		directory:  directory,
	}
	return nil
}

func Enabled() bool {
	return OssClient != nil
}

// UploadImage stores b under {directory}{uuid}.{ext} and returns the
// object's public URL.
func (o *ossClient) UploadImage(ctx context.Context, b []byte, ext string, mimeType string) (string, error) {
	key := o.directory + uuid.New().String() + "." + ext
	request := &oss.PutObjectRequest{
		Bucket:      oss.Ptr(o.bucketName),
		Key:         oss.Ptr(key),
		Body:        bytes.NewReader(b),
		ContentType: oss.Ptr(mimeType),
	}
	if _, err := o.client.PutObject(ctx, request); err != nil {
		return "", err
	}
	return o.URL(key), nil
}

// URL builds the virtual-hosted bucket URL for key.
func (o *ossClient) URL(key string) string {
	host := strings.TrimPrefix(strings.TrimPrefix(o.endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", o.bucketName, host, key)
}
