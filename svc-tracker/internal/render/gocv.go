// Package render draws tracks onto frames with OpenCV and saves them to disk.
package render

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"path/filepath"

	"gocv.io/x/gocv"

	api "github.com/etesami/iou-tracking-system/api"
)

var (
	confirmedColor = color.RGBA{0, 255, 0, 0}
	tentativeColor = color.RGBA{255, 255, 0, 0}
)

type Config struct {
	SaveImagePath      string
	SaveImageFrequency int
}

type Renderer struct {
	config *Config
}

func New(c *Config) *Renderer {
	if c.SaveImageFrequency < 1 {
		c.SaveImageFrequency = 1
	}
	return &Renderer{config: c}
}

// Render decodes the frame, overlays every track and writes it to
// SaveImagePath on every SaveImageFrequency-th frame.
func (r *Renderer) Render(sourceId string, frameId int64, frame []byte, tracks []api.Track) error {
	if frameId%int64(r.config.SaveImageFrequency) != 0 {
		return nil
	}

	img, err := gocv.IMDecode(frame, gocv.IMReadColor)
	if err != nil {
		return fmt.Errorf("error decoding image: %w", err)
	}
	defer img.Close()
	if img.Empty() {
		return fmt.Errorf("decoded image is empty")
	}

	drawTracks(&img, tracks)

	filename := filepath.Join(r.config.SaveImagePath, fmt.Sprintf("%s_%d_tracker.jpg", sourceId, frameId))
	if ok := gocv.IMWrite(filename, img); !ok {
		return fmt.Errorf("failed to write frame to %s", filename)
	}
	log.Printf("Frame [%d]: drew %d tracks, written to [%s]", frameId, len(tracks), filename)
	return nil
}

func drawTracks(img *gocv.Mat, tracks []api.Track) {
	for _, t := range tracks {
		c := confirmedColor
		if !t.Confirmed {
			c = tentativeColor
		}
		b := t.Bbox
		rect := image.Rect(int(b.X1), int(b.Y1), int(b.X2), int(b.Y2))
		gocv.Rectangle(img, rect, c, 2)
		gocv.PutText(img, api.Caption(t), image.Point{rect.Min.X + 4, rect.Min.Y + 18}, gocv.FontHersheyPlain, 1.2, c, 1)
	}
}
