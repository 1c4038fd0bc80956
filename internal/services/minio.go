package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"matzip_back_end/internal/database"

	"github.com/minio/minio-go/v7"
)

// UploadProfilePhoto pousse la photo de profil dans MinIO sous un nom stable
// par utilisateur (un upload remplace le précédent)
func UploadProfilePhoto(userID string, file *multipart.FileHeader) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}

	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	bucket := os.Getenv("MINIO_BUCKET")
	objectName := fmt.Sprintf("profiles/%s%s", userID, filepath.Ext(file.Filename))

	_, err = database.MinIO.PutObject(context.Background(), bucket, objectName, f, file.Size,
		minio.PutObjectOptions{ContentType: file.Header.Get("Content-Type")})
	if err != nil {
		return "", err
	}

	return objectName, nil
}

// PresignedPhotoURL génère une URL de lecture temporaire pour une photo
func PresignedPhotoURL(objectName string) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}

	bucket := os.Getenv("MINIO_BUCKET")
	u, err := database.MinIO.PresignedGetObject(context.Background(), bucket, objectName,
		24*time.Hour, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// DeleteProfilePhoto supprime la photo de profil (suppression de compte)
func DeleteProfilePhoto(objectName string) error {
	if database.MinIO == nil || objectName == "" {
		return nil
	}
	bucket := os.Getenv("MINIO_BUCKET")
	return database.MinIO.RemoveObject(context.Background(), bucket, objectName,
		minio.RemoveObjectOptions{})
}
