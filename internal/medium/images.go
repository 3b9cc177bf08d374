// internal/medium/images.go
package medium

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const maxThumbnailWidth = 1200

var unsafeFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// imageURL picks the widest srcset candidate among the <source> elements in
// sel, falling back to the first <img src>.
func imageURL(sel *goquery.Selection) string {
	best, bestWidth := "", 0
	sel.Find("source[srcset]").Each(func(_ int, s *goquery.Selection) {
		srcset, _ := s.Attr("srcset")
		for _, item := range strings.Split(srcset, ",") {
			fields := strings.Fields(item)
			if len(fields) != 2 {
				continue
			}
			w, err := strconv.Atoi(strings.TrimSuffix(fields[1], "w"))
			if err != nil {
				continue
			}
			if w > bestWidth {
				best, bestWidth = fields[0], w
			}
		}
	})
	if best != "" {
		return best
	}
	img := sel.Find("img[src]").First()
	if sel.Is("img[src]") {
		img = sel
	}
	src, _ := img.Attr("src")
	return strings.TrimSpace(src)
}

// imageFilename derives a local file name from an image URL: the last path
// segment without query, with characters unsafe on common filesystems
// replaced. Names without an extension get ".png".
func imageFilename(rawURL string) string {
	name, _, _ := strings.Cut(rawURL, "?")
	name, _, _ = strings.Cut(name, "#")
	name = path.Base(name)
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == "_" {
		name = "image"
	}
	if !strings.Contains(name, ".") {
		name += ".png"
	}
	return name
}

// uniqueName returns name, or name with a counter before the extension if it
// was already used in this import.
func uniqueName(name string, used map[string]bool) string {
	candidate := name
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for counter := 2; used[candidate]; counter++ {
		candidate = fmt.Sprintf("%s-%d%s", base, counter, ext)
	}
	used[candidate] = true
	return candidate
}

// thumbnailPNG decodes data (png, jpeg, gif or webp), scales it down to
// maxThumbnailWidth and encodes it as PNG.
func thumbnailPNG(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxThumbnailWidth {
		newH := h * maxThumbnailWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxThumbnailWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
