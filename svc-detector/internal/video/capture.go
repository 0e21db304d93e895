// Package video reads frames from a file or stream with OpenCV and hands
// them out JPEG-encoded, ready to travel with a detection batch.
package video

import (
	"fmt"
	"image"
	"io"
	"log"
	"sync"

	"gocv.io/x/gocv"
)

// ErrSourceExhausted is returned once the source produced maxEmptyFrames
// unreadable frames in a row. It wraps io.EOF.
var ErrSourceExhausted = fmt.Errorf("video source exhausted: %w", io.EOF)

const maxEmptyFrames = 10

type Config struct {
	VideoSource string
	ImageWidth  int // 0 keeps the source size
	ImageHeight int
}

// Input manages a single video capture.
type Input struct {
	config      *Config
	mu          sync.Mutex
	capture     *gocv.VideoCapture
	img         gocv.Mat
	emptyFrames int
	frameCount  int
}

// Open opens the video source. It is a file path or a stream URL.
func Open(c *Config) (*Input, error) {
	capture, err := gocv.OpenVideoCapture(c.VideoSource)
	if err != nil {
		return nil, fmt.Errorf("error opening video source %s: %w", c.VideoSource, err)
	}
	log.Printf("Opened video source: [%s]\n", c.VideoSource)
	return &Input{
		config:  c,
		capture: capture,
		img:     gocv.NewMat(),
	}, nil
}

// Next reads the next frame and returns it as JPEG bytes. An unreadable frame
// returns (nil, nil) until too many arrive in a row.
func (vi *Input) Next() ([]byte, error) {
	vi.mu.Lock()
	defer vi.mu.Unlock()

	if ok := vi.capture.Read(&vi.img); !ok || vi.img.Empty() {
		vi.emptyFrames++
		if vi.emptyFrames > maxEmptyFrames {
			return nil, ErrSourceExhausted
		}
		return nil, nil
	}
	vi.emptyFrames = 0
	vi.frameCount++

	frame := vi.img
	if vi.config.ImageWidth > 0 && vi.config.ImageHeight > 0 {
		resized := gocv.NewMat()
		defer resized.Close()
		gocv.Resize(vi.img, &resized, image.Pt(vi.config.ImageWidth, vi.config.ImageHeight), 0, 0, gocv.InterpolationDefault)
		frame = resized
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, frame)
	if err != nil {
		return nil, fmt.Errorf("error encoding frame %d: %w", vi.frameCount, err)
	}
	defer buf.Close()
	return append([]byte(nil), buf.GetBytes()...), nil
}

// Close releases the capture.
func (vi *Input) Close() error {
	vi.mu.Lock()
	defer vi.mu.Unlock()
	vi.img.Close()
	err := vi.capture.Close()
	log.Println("Video input closed.")
	return err
}
