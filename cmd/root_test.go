package cmd

import (
	"bytes"
	"encoding/json"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func isolate(t *testing.T) {
	t.Helper()
	for _, env := range []string{"TEXTSNAP_PROVIDER", "TEXTSNAP_MODEL", "TEXTSNAP_CAPTURE_COMMAND", "OLLAMA_HOST", "OLLAMA_URL", "OLLAMA_MODEL"} {
		t.Setenv(env, "")
	}
	t.Setenv("TEXTSNAP_PICTURE_DIR", t.TempDir())
}

func TestInvalidLogLevel(t *testing.T) {
	isolate(t)
	_, _, err := execute(t, "recognize", "x.jpg", "--log-level", "loud")
	assert.ErrorContains(t, err, "invalid log level")
}

func TestRecognizeMissingFile(t *testing.T) {
	isolate(t)
	_, _, err := execute(t, "recognize", filepath.Join(t.TempDir(), "missing.jpg"))
	assert.ErrorContains(t, err, "failed to open picture")
}

func TestRecognizeUnknownProvider(t *testing.T) {
	isolate(t)
	_, _, err := execute(t, "recognize", "x.jpg", "--provider", "firebase")
	assert.ErrorContains(t, err, "unsupported recognition provider")
}

func TestCaptureWithoutCaptureApp(t *testing.T) {
	isolate(t)
	t.Setenv("TEXTSNAP_CAPTURE_COMMAND", "definitely-not-a-camera-program-xyz {path}")

	out, errOut, err := execute(t, "capture")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NotContains(t, errOut, "!")
}

func TestCaptureWithoutPictureStorage(t *testing.T) {
	isolate(t)
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))
	t.Setenv("TEXTSNAP_PICTURE_DIR", filepath.Join(blocker, "Pictures"))
	t.Setenv("TEXTSNAP_CAPTURE_COMMAND", "sh -c true {path}")

	out, errOut, err := execute(t, "capture")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NotContains(t, errOut, "!")
}

func TestDeviceCapturerDetachesStdin(t *testing.T) {
	capturer := newDeviceCapturer("fswebcam --no-banner {path}")
	assert.Nil(t, capturer.Stdin)
	assert.Equal(t, []string{"fswebcam", "--no-banner", "{path}"}, capturer.Command)
}

func TestRecognizeWithOllama(t *testing.T) {
	isolate(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "MENU\n\nSoup 4.50\nBread 2.00"})
	}))
	defer server.Close()
	t.Setenv("OLLAMA_URL", server.URL)

	picture := filepath.Join(t.TempDir(), "menu.jpg")
	require.NoError(t, imaging.Save(imaging.New(20, 10, color.White), picture))
	preview := filepath.Join(t.TempDir(), "upright.jpg")

	out, _, err := execute(t, "recognize", picture, "--provider", "ollama", "--model", "llava", "--preview", preview)
	require.NoError(t, err)
	assert.Equal(t, "  1 MENU\n  2 Soup 4.50\n    Bread 2.00\n", out)

	saved, err := imaging.Open(preview)
	require.NoError(t, err)
	assert.Equal(t, 20, saved.Bounds().Dx())
}

func TestRecognizeEmptyResult(t *testing.T) {
	isolate(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "   "})
	}))
	defer server.Close()
	t.Setenv("OLLAMA_URL", server.URL)

	picture := filepath.Join(t.TempDir(), "blank.png")
	require.NoError(t, imaging.Save(imaging.New(4, 4, color.White), picture))

	out, errOut, err := execute(t, "recognize", picture, "--provider", "ollama")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "! No texts recognized")
}
