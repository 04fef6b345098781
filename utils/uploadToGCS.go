package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

const maxAvatarSizeBytes int64 = 5 * 1024 * 1024

// avatar dimensions are capped before upload; originals are never stored
const avatarMaxEdge = 512

var avatarMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// getGoogleClient initializes a Google Cloud Storage client.
// Prefer ADC (service account / GOOGLE_APPLICATION_CREDENTIALS). For local
// use, explicit JSON can be provided via GCS_CREDENTIALS_JSON.
func getGoogleClient(ctx context.Context) (*storage.Client, error) {
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		client, err := storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// UploadProfileImage validates, downscales and stores a profile picture,
// returning its public URL.
func UploadProfileImage(ctx context.Context, userId int, file *multipart.FileHeader) (string, error) {
	if file.Size > maxAvatarSizeBytes {
		return "", NewValidationError("profile picture must be 5MB or smaller")
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}

	mimeType := http.DetectContentType(data)
	if !avatarMimeTypes[mimeType] {
		return "", NewValidationError("profile picture must be a JPEG or PNG image")
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", NewValidationError("profile picture could not be decoded")
	}
	if img.Bounds().Dx() > avatarMaxEdge || img.Bounds().Dy() > avatarMaxEdge {
		img = imaging.Fit(img, avatarMaxEdge, avatarMaxEdge, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return "", err
	}

	bucketName := os.Getenv("GCS_BUCKET")
	if bucketName == "" {
		return "", errors.New("GCS_BUCKET is required")
	}

	client, err := getGoogleClient(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	objectName := fmt.Sprintf("avatars/user-%d-%s.jpg", userId, uuid.NewString())
	wc := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	wc.ContentType = "image/jpeg"
	wc.Metadata = map[string]string{
		"x-goog-acl": "public-read",
	}
	if _, err := wc.Write(buf.Bytes()); err != nil {
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", err
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucketName, objectName), nil
}
