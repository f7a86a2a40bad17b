package helpers

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var (
	lowerRe   = regexp.MustCompile(`[a-z]`)
	upperRe   = regexp.MustCompile(`[A-Z]`)
	numberRe  = regexp.MustCompile(`\d`)
	specialRe = regexp.MustCompile(`[@$!%*?&#^_\-]`)
)

func IsPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	return lowerRe.MatchString(password) &&
		upperRe.MatchString(password) &&
		numberRe.MatchString(password) &&
		specialRe.MatchString(password)
}

// ParsePage reads page and limit query values. Bad input falls back to
// zero so the caller's defaults apply.
func ParsePage(page, limit string) (int, int) {
	p, err := strconv.Atoi(strings.TrimSpace(page))
	if err != nil {
		p = 0
	}
	l, err := strconv.Atoi(strings.TrimSpace(limit))
	if err != nil {
		l = 0
	}
	return p, l
}

const cloudinaryHost = "res.cloudinary.com"

// CloudinaryUploader stores event images on Cloudinary.
type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	logger *slog.Logger
}

func NewCloudinaryUploader(cld *cloudinary.Cloudinary, logger *slog.Logger) *CloudinaryUploader {
	return &CloudinaryUploader{cld: cld, logger: logger}
}

// UploadImages uploads each source (a URL, data URI or local path) into
// folder and returns the secure URLs in order. Sources that already live
// on Cloudinary are kept as they are.
func (u *CloudinaryUploader) UploadImages(ctx context.Context, sources []string, folder string) ([]string, error) {
	urls := make([]string, 0, len(sources))
	for i, src := range sources {
		src = strings.TrimSpace(src)
		if src == "" {
			u.logger.Debug("skipping empty image source", "index", i)
			continue
		}
		if strings.Contains(src, cloudinaryHost) {
			urls = append(urls, src)
			continue
		}
		res, err := u.cld.Upload.Upload(ctx, src, uploader.UploadParams{
			Folder: folder,
			Tags:   []string{"eventhub"},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to upload image %d: %w", i, err)
		}
		if res.Error.Message != "" {
			return nil, fmt.Errorf("failed to upload image %d: %s", i, res.Error.Message)
		}
		urls = append(urls, res.SecureURL)
	}
	return urls, nil
}
