package prism

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// FileSources reads shader, font and image files from disk. Relative paths
// resolve against Dir.
type FileSources struct {
	Dir string
}

func (s FileSources) path(p string) string {
	if filepath.IsAbs(p) || s.Dir == "" {
		return p
	}
	return filepath.Join(s.Dir, p)
}

func (s FileSources) ReadText(path string) (string, error) {
	b, err := os.ReadFile(s.path(path))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// LoadImage decodes a PNG, JPEG, BMP, TIFF or WebP file into a texture.
func (s FileSources) LoadImage(path string) (Texture, error) {
	img, err := decodeImageFile(s.path(path))
	if err != nil {
		return nil, err
	}
	return newStaticTexture(img), nil
}

func decodeImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	Logger().Debug("image decoded", "path", path, "format", format, "bounds", img.Bounds().String())
	return img, nil
}
