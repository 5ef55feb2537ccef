// Package workflow drives one capture-and-recognize cycle at a time: launch a
// capture, normalize the picture, recognize its text and update the view.
//
// All controller state is owned by the goroutine running Run. The capture
// wait and the recognition call happen on their own goroutines and post their
// completions back onto that loop.
package workflow

import (
	"context"
	"errors"
	"image"
	"log/slog"

	"github.com/lehigh-university-libraries/textsnap/internal/capture"
	"github.com/lehigh-university-libraries/textsnap/internal/models"
	"github.com/lehigh-university-libraries/textsnap/internal/orientation"
)

// Notices shown to the user
const (
	MsgFailedToTakePicture = "Failed to take picture"
	MsgRecognitionFailed   = "Recognition failed"
	MsgNoTextsRecognized   = "No texts recognized"
)

// Notifier displays a transient, dismissible message
type Notifier interface {
	Notify(message string)
}

// View displays the current picture and recognized blocks
type View interface {
	// ShowImage replaces the preview; nil clears it.
	ShowImage(img *models.CapturedImage)
	// SetBlocks replaces the list; nil clears it.
	SetBlocks(blocks []string)
}

// Recognizer extracts text blocks from an upright picture
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (*models.RecognitionResult, error)
}

// PictureStore hands out the fixed picture path and its content identifier
type PictureStore interface {
	Path() (string, error)
	URI(path string) string
}

// Status is the terminal state of a cycle
type Status string

const (
	StatusUnavailable       Status = "unavailable"
	StatusCanceled          Status = "canceled"
	StatusFailed            Status = "failed"
	StatusDecodeFailed      Status = "decode_failed"
	StatusRecognitionFailed Status = "recognition_failed"
	StatusEmpty             Status = "empty"
	StatusRecognized        Status = "recognized"
	StatusStale             Status = "stale"
)

// Settlement reports how a cycle ended
type Settlement struct {
	Token     uint64
	RequestID string
	Status    Status
	Blocks    int
	Err       error
}

type Option func(*Controller)

// WithSettledHook registers fn to be called on the loop goroutine whenever a
// cycle reaches a terminal state
func WithSettledHook(fn func(Settlement)) Option {
	return func(c *Controller) {
		c.onSettled = fn
	}
}

// WithQueueSize sets how many posted events may wait for the loop
func WithQueueSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.events = make(chan func(), n)
		}
	}
}

type Controller struct {
	store      PictureStore
	capturer   capture.Capturer
	recognizer Recognizer
	view       View
	notifier   Notifier
	onSettled  func(Settlement)

	events chan func()
	done   chan struct{}

	// owned by the loop goroutine
	ctx    context.Context
	token  uint64
	image  *models.CapturedImage
	result *models.RecognitionResult
}

func New(store PictureStore, capturer capture.Capturer, recognizer Recognizer, view View, notifier Notifier, opts ...Option) *Controller {
	c := &Controller{
		store:      store,
		capturer:   capturer,
		recognizer: recognizer,
		view:       view,
		notifier:   notifier,
		events:     make(chan func(), 16),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run processes events until ctx is done. It must be called exactly once.
func (c *Controller) Run(ctx context.Context) error {
	c.ctx = ctx
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-c.events:
			fn()
		}
	}
}

// post queues fn for the loop. Events posted after Run returned are dropped.
func (c *Controller) post(fn func()) {
	select {
	case c.events <- fn:
	case <-c.done:
	}
}

// InitiateCapture asks the capturer to take a new picture
func (c *Controller) InitiateCapture(ctx context.Context) {
	c.post(func() { c.initiateCapture(ctx) })
}

// HandleCaptureResult feeds a finished capture into the cycle. Surfaces
// that obtain pictures without a Capturer (uploads, files) call it directly.
func (c *Controller) HandleCaptureResult(res capture.Result) {
	c.post(func() { c.handleCaptureResult(res) })
}

func (c *Controller) initiateCapture(ctx context.Context) {
	path, err := c.store.Path()
	if err != nil {
		slog.Debug("Picture storage unavailable, capture skipped", "err", err)
		c.settle(Settlement{Status: StatusUnavailable, Err: err})
		return
	}

	req := capture.NewRequest(path, c.store.URI(path))
	results, err := c.capturer.Launch(ctx, req)
	if errors.Is(err, capture.ErrNoCaptureApp) {
		slog.Debug("No capture application available", "err", err)
		c.settle(Settlement{RequestID: req.ID, Status: StatusUnavailable, Err: err})
		return
	}
	if err != nil {
		slog.Warn("Unable to launch capture", "request_id", req.ID, "err", err)
		c.settle(Settlement{RequestID: req.ID, Status: StatusFailed, Err: err})
		return
	}

	go func() {
		if res, ok := <-results; ok {
			c.HandleCaptureResult(res)
		}
	}()
}

func (c *Controller) handleCaptureResult(res capture.Result) {
	switch res.Outcome {
	case capture.Canceled:
		slog.Debug("Capture canceled", "request_id", res.Request.ID, "err", res.Err)
		c.settle(Settlement{RequestID: res.Request.ID, Status: StatusCanceled, Err: res.Err})
		return
	case capture.Failed:
		slog.Warn("Capture failed", "request_id", res.Request.ID, "err", res.Err)
		c.settle(Settlement{RequestID: res.Request.ID, Status: StatusFailed, Err: res.Err})
		return
	}

	c.token++
	token := c.token

	img, o, rotation, err := orientation.Load(res.Request.Path)
	if err != nil {
		slog.Warn("Unable to decode picture", "path", res.Request.Path, "err", err)
		c.image, c.result = nil, nil
		c.view.ShowImage(nil)
		c.view.SetBlocks(nil)
		c.notifier.Notify(MsgFailedToTakePicture)
		c.settle(Settlement{Token: token, RequestID: res.Request.ID, Status: StatusDecodeFailed, Err: err})
		return
	}

	c.image = models.NewCapturedImage(img, res.Request.Path, o.String(), rotation)
	c.result = nil
	slog.Info("Picture captured", "request_id", res.Request.ID, "orientation", o.String(), "rotation", rotation, "width", c.image.Width, "height", c.image.Height)

	c.view.ShowImage(c.image)
	c.view.SetBlocks(nil)
	c.runRecognition(token, res.Request.ID, c.image)
}

func (c *Controller) runRecognition(token uint64, requestID string, captured *models.CapturedImage) {
	ctx := c.ctx
	go func() {
		result, err := c.recognizer.Recognize(ctx, captured.Image)
		c.post(func() { c.renderResult(token, requestID, result, err) })
	}()
}

func (c *Controller) renderResult(token uint64, requestID string, result *models.RecognitionResult, err error) {
	if token != c.token {
		slog.Debug("Discarding stale recognition result", "token", token, "current", c.token, "request_id", requestID)
		c.settle(Settlement{Token: token, RequestID: requestID, Status: StatusStale, Err: err})
		return
	}

	if err != nil {
		slog.Error("Text recognition failed", "request_id", requestID, "err", err)
		c.notifier.Notify(MsgRecognitionFailed)
		c.settle(Settlement{Token: token, RequestID: requestID, Status: StatusRecognitionFailed, Err: err})
		return
	}

	c.result = result
	if result == nil || len(result.Blocks) == 0 {
		c.notifier.Notify(MsgNoTextsRecognized)
		c.settle(Settlement{Token: token, RequestID: requestID, Status: StatusEmpty})
		return
	}

	c.view.SetBlocks(result.Blocks)
	c.settle(Settlement{Token: token, RequestID: requestID, Status: StatusRecognized, Blocks: len(result.Blocks)})
}

func (c *Controller) settle(s Settlement) {
	if c.onSettled != nil {
		c.onSettled(s)
	}
}
