package capture

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"
)

func blankFrame() gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 480, 640, gocv.MatTypeCV8UC3)
}

func TestMockCamera_Playback(t *testing.T) {
	frame1 := blankFrame()
	defer frame1.Close()
	frame2 := blankFrame()
	defer frame2.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame1, &frame2}, false)

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("read before Open: err = %v", err)
	}

	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cam.Close()

	if got := cam.Size(); got != image.Pt(640, 480) {
		t.Errorf("Size() = %v", got)
	}

	for i := 0; i < 2; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() %d error = %v", i, err)
		}
		f.Close()
	}

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrEndOfStream) {
		t.Errorf("third read: err = %v, want ErrEndOfStream", err)
	}
	if cam.Reads() != 2 {
		t.Errorf("Reads() = %d", cam.Reads())
	}
}

func TestMockCamera_Loop(t *testing.T) {
	frame := blankFrame()
	defer frame.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame}, true)
	cam.Open()
	defer cam.Close()

	for i := 0; i < 5; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() iteration %d error = %v", i, err)
		}
		f.Close()
	}
}

func TestMockCamera_EmptyLoop(t *testing.T) {
	cam := NewMockCamera(nil, true)
	cam.Open()

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrEndOfStream) {
		t.Errorf("err = %v, want ErrEndOfStream", err)
	}
	if got := cam.Size(); got != (image.Point{}) {
		t.Errorf("Size() = %v", got)
	}
}

func TestMockCamera_Flip(t *testing.T) {
	frame := blankFrame()
	defer frame.Close()
	gocv.Rectangle(&frame, image.Rect(0, 0, 10, 10), color.RGBA{R: 255, A: 255}, -1)

	cam := NewMockCamera([]*gocv.Mat{&frame}, false).WithFlip(true).WithFPS(12)
	cam.Open()

	if cam.FPS() != 12 {
		t.Errorf("FPS() = %d", cam.FPS())
	}

	f, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	defer f.Close()

	if v := f.GetVecbAt(5, 634); v[2] != 255 {
		t.Errorf("mirrored pixel = %v, want red", v)
	}
	if v := f.GetVecbAt(5, 5); v[2] != 0 {
		t.Errorf("original corner = %v, want black", v)
	}
	if v := frame.GetVecbAt(5, 5); v[2] != 255 {
		t.Error("source frame was modified")
	}
}
