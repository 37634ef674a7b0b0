package game

import (
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io/fs"
	"log"
	"path"

	"github.com/hajimehoshi/ebiten/v2"
)

// ResourceManager loads bone textures from a filesystem and caches them.
// Image paths are resolved relative to root, the directory the unit files
// live in, so a unit's `image: images/head.png` sits next to it.
//
// Thread Safety Note:
// This implementation is NOT thread-safe. The cache is a plain map; the
// viewer only touches it from the ebiten update goroutine.
//
// Usage:
//
//	rm := NewResourceManager(embedded.FS(), "data/skeletons")
//	img, err := rm.LoadImage("images/head.png")
//	if err != nil {
//	    log.Printf("Failed to load image: %v", err)
//	}
type ResourceManager struct {
	fsys       fs.FS
	root       string
	imageCache map[string]*ebiten.Image // Cache for loaded images: path -> Image
}

// NewResourceManager creates a ResourceManager reading from fsys under root.
// An empty root reads from the top of fsys.
func NewResourceManager(fsys fs.FS, root string) *ResourceManager {
	return &ResourceManager{
		fsys:       fsys,
		root:       root,
		imageCache: make(map[string]*ebiten.Image),
	}
}

// LoadImage loads an image and caches it for future use.
// If the image has already been loaded, it returns the cached version.
//
// Error handling:
//   - Returns an error if the file does not exist or cannot be opened.
//   - Returns an error if the image format is not supported or the file is corrupted.
//   - Does not panic; all errors are returned to the caller for handling.
func (rm *ResourceManager) LoadImage(p string) (*ebiten.Image, error) {
	if cachedImage, exists := rm.imageCache[p]; exists {
		return cachedImage, nil
	}

	full := rm.resolve(p)
	file, err := rm.fsys.Open(full)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file %s: %w", full, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", full, err)
	}

	ebitenImg := ebiten.NewImageFromImage(img)
	rm.imageCache[p] = ebitenImg
	return ebitenImg, nil
}

// GetImage retrieves a previously loaded image from the cache.
// If the image has not been loaded yet, it returns nil.
func (rm *ResourceManager) GetImage(p string) *ebiten.Image {
	return rm.imageCache[p]
}

// InvalidateImages drops every cached image so the next LoadImage reads
// from the filesystem again. Images already handed out stay valid.
func (rm *ResourceManager) InvalidateImages() {
	n := len(rm.imageCache)
	clear(rm.imageCache)
	if n > 0 {
		log.Printf("[ResourceManager] Dropped %d cached images", n)
	}
}

// resolve maps an image reference to a path inside fsys.
func (rm *ResourceManager) resolve(p string) string {
	if rm.root == "" {
		return path.Clean(p)
	}
	return path.Join(rm.root, p)
}
