package file

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Documents are stored under per-user folders: documents/<userID> in the
// general case, documents/clients/<userID> for clients managed by an
// account manager. Account deletion clears both.
const (
	DocumentFolderPrefix       = "documents"
	ClientDocumentFolderPrefix = "documents/clients"

	signedURLTTL = time.Hour
)

type Uploader interface {
	UploadFile(fileName, folder string) (string, error)
	SignedURL(publicID string) (string, error)
	DeleteFolder(prefix string) error
}

type FileUploader struct {
	cloud_name string
	api_key    string
	api_secret string
}

func New(cloud_name, api_key, api_secret string) *FileUploader {
	return &FileUploader{
		cloud_name: cloud_name,
		api_key:    api_key,
		api_secret: api_secret,
	}
}

func UserFolder(userID string) string {
	return fmt.Sprintf("%s/%s", DocumentFolderPrefix, userID)
}

func ClientFolder(userID string) string {
	return fmt.Sprintf("%s/%s", ClientDocumentFolderPrefix, userID)
}

func (f *FileUploader) UploadFile(fileName, folder string) (string, error) {
	cld, err := cloudinary.NewFromParams(f.cloud_name, f.api_key, f.api_secret)
	if err != nil {
		return "", err
	}

	ctx := context.Background()
	uploadResult, err := cld.Upload.Upload(ctx, fileName, uploader.UploadParams{
		Folder: folder,
		Type:   "authenticated",
	})
	if err != nil {
		return "", err
	}

	return uploadResult.PublicID, nil
}

// SignedURL returns a signed delivery URL for a stored document. The URL
// expires after one hour; there is no rotation or revocation beyond expiry.
func (f *FileUploader) SignedURL(publicID string) (string, error) {
	cld, err := cloudinary.NewFromParams(f.cloud_name, f.api_key, f.api_secret)
	if err != nil {
		return "", err
	}

	expiresAt := time.Now().Add(signedURLTTL)

	return cld.Upload.PrivateDownloadURL(uploader.PrivateDownloadURLParams{
		PublicID:     publicID,
		DeliveryType: "authenticated",
		ExpiresAt:    &expiresAt,
	})
}

// DeleteFolder removes every asset stored under the given folder prefix.
func (f *FileUploader) DeleteFolder(prefix string) error {
	cld, err := cloudinary.NewFromParams(f.cloud_name, f.api_key, f.api_secret)
	if err != nil {
		return err
	}

	ctx := context.Background()
	_, err = cld.Admin.DeleteAssetsByPrefix(ctx, admin.DeleteAssetsByPrefixParams{
		Prefix: api.CldAPIArray{prefix},
	})

	return err
}
