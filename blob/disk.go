package blob

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

const thumbWidth = 200

// Disk stores blobs under root/<bucket>/<path> and serves them through the
// router's static file handler at baseURL/static/<bucket>/<path>.
type Disk struct {
	Root    string
	BaseURL string
}

func NewDisk(root, baseURL string) *Disk {
	return &Disk{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (d *Disk) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) error {
	full := filepath.Join(d.Root, bucket, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(full), err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", full, err)
	}

	if strings.HasPrefix(contentType, "image/") {
		if err := d.writeThumbnail(full, data); err != nil {
			// Thumbnails are a nicety; the original is already saved.
			log.Printf("thumbnail for %s: %v", path, err)
		}
	}
	return nil
}

func (d *Disk) writeThumbnail(origPath string, data []byte) error {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	resized := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
	name := strings.TrimSuffix(filepath.Base(origPath), filepath.Ext(origPath)) + ".jpg"
	thumbPath := filepath.Join(filepath.Dir(origPath), "thumb", name)

	if err := os.MkdirAll(filepath.Dir(thumbPath), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(thumbPath), err)
	}
	out, err := os.Create(thumbPath)
	if err != nil {
		return fmt.Errorf("create thumbnail: %w", err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, resized, &jpeg.Options{Quality: 85}); err != nil {
		return fmt.Errorf("encode thumbnail: %w", err)
	}
	return nil
}

func (d *Disk) PublicURL(bucket, path string) string {
	return d.BaseURL + "/static/" + bucket + "/" + path
}
