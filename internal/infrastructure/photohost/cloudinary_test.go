package photohost

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type stubUploader struct {
	params uploader.UploadParams
	resp   *uploader.UploadResult
	err    error
}

func (s *stubUploader) Upload(_ context.Context, _ interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	s.params = params
	return s.resp, s.err
}

func TestCloudinary_UploadImage(t *testing.T) {
	stub := &stubUploader{resp: &uploader.UploadResult{SecureURL: "https://res.cloudinary.com/demo/image/upload/v1/students/2023_001.png"}}
	host := &Cloudinary{upload: stub}

	url, err := host.UploadImage(context.Background(), "students/2023_001", strings.NewReader("img"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.Contains(url, "students/2023_001") {
		t.Fatalf("unexpected url %q", url)
	}
	if stub.params.PublicID != "students/2023_001" {
		t.Fatalf("unexpected public id %q", stub.params.PublicID)
	}
	if stub.params.Overwrite == nil || !*stub.params.Overwrite {
		t.Fatalf("expected overwrite to be set")
	}
	if stub.params.ResourceType != "image" {
		t.Fatalf("unexpected resource type %q", stub.params.ResourceType)
	}
}

func TestCloudinary_UploadImage_APIError(t *testing.T) {
	stub := &stubUploader{resp: &uploader.UploadResult{Error: api.ErrorResp{Message: "Invalid image file"}}}
	host := &Cloudinary{upload: stub}

	if _, err := host.UploadImage(context.Background(), "students/x", strings.NewReader("img")); err == nil || !strings.Contains(err.Error(), "Invalid image file") {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestCloudinary_UploadImage_TransportError(t *testing.T) {
	stub := &stubUploader{err: errors.New("timeout")}
	host := &Cloudinary{upload: stub}

	if _, err := host.UploadImage(context.Background(), "students/x", strings.NewReader("img")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestCloudinaryConfig_Enabled(t *testing.T) {
	if (CloudinaryConfig{CloudName: "a", APIKey: "b"}).Enabled() {
		t.Fatalf("expected partial config to be disabled")
	}
	if !(CloudinaryConfig{CloudName: "a", APIKey: "b", APISecret: "c"}).Enabled() {
		t.Fatalf("expected full config to be enabled")
	}
}
